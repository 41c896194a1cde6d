package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/dorivaldermetrio-hash/crm-sub000/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// NewMongoClient connects to MongoDB and verifies the connection.
func NewMongoClient(ctx context.Context, uri string, logger *zap.Logger) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	logger.Info("Successfully connected to the database!", zap.String("driver", "mongo"))
	return client, nil
}

type mongoContactRepository struct {
	coll    *mongo.Collection
	channel models.Channel
	logger  *zap.Logger
}

func NewMongoContactRepository(db *mongo.Database, channel models.Channel, logger *zap.Logger) ContactRepository {
	return &mongoContactRepository{
		coll:    db.Collection(channel.ContactsTable()),
		channel: channel,
		logger:  logger.With(zap.String("channel", string(channel))),
	}
}

func (r *mongoContactRepository) Channel() models.Channel {
	return r.channel
}

func (r *mongoContactRepository) CountContacts(ctx context.Context, since time.Time) (int, error) {
	filter := bson.M{}
	if !since.IsZero() {
		filter["created_at"] = bson.M{"$gte": since}
	}
	count, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *mongoContactRepository) GetAllContacts(ctx context.Context) ([]*models.Contact, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var contacts []*models.Contact
	if err := cursor.All(ctx, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

func (r *mongoContactRepository) UpsertContact(ctx context.Context, contact *models.Contact) error {
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = time.Now()
	}

	_, err := r.coll.UpdateOne(ctx, bson.M{"external_id": contact.ExternalID}, contactUpdate(contact), options.Update().SetUpsert(true))
	if err != nil {
		r.logger.Error("Failed to upsert contact", zap.String("external_id", contact.ExternalID), zap.Error(err))
		return err
	}
	return nil
}

// contactUpdate builds the upsert document for contact. Absent optional
// fields are unset and created_at is only written on insert.
func contactUpdate(contact *models.Contact) bson.M {
	set := bson.M{
		"name": contact.Name,
		"tags": contact.Tags,
	}
	unset := bson.M{}
	setOrUnset(set, unset, "status", contact.Status)
	setOrUnset(set, unset, "product_interest", contact.ProductInterest)
	if contact.LastMessageAt != nil {
		set["last_message_at"] = *contact.LastMessageAt
	} else {
		unset["last_message_at"] = ""
	}

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"created_at": contact.CreatedAt},
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

func setOrUnset(set, unset bson.M, field, value string) {
	if value == "" {
		unset[field] = ""
		return
	}
	set[field] = value
}

type mongoConversationRepository struct {
	coll    *mongo.Collection
	channel models.Channel
	logger  *zap.Logger
}

func NewMongoConversationRepository(db *mongo.Database, channel models.Channel, logger *zap.Logger) ConversationRepository {
	return &mongoConversationRepository{
		coll:    db.Collection(channel.ConversationsTable()),
		channel: channel,
		logger:  logger.With(zap.String("channel", string(channel))),
	}
}

func (r *mongoConversationRepository) Channel() models.Channel {
	return r.channel
}

func (r *mongoConversationRepository) GetAllConversations(ctx context.Context) ([]*models.Conversation, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var conversations []*models.Conversation
	if err := cursor.All(ctx, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

func (r *mongoConversationRepository) AppendMessage(ctx context.Context, contactExternalID string, msg models.Message) error {
	update := bson.M{
		"$push": bson.M{"messages": msg},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	_, err := r.coll.UpdateOne(ctx, bson.M{"contact_external_id": contactExternalID}, update, options.Update().SetUpsert(true))
	if err != nil {
		r.logger.Error("Failed to append message", zap.String("contact_external_id", contactExternalID), zap.Error(err))
		return err
	}
	return nil
}

type mongoProductRepository struct {
	coll   *mongo.Collection
	logger *zap.Logger
}

func NewMongoProductRepository(db *mongo.Database, logger *zap.Logger) ProductRepository {
	return &mongoProductRepository{coll: db.Collection("products"), logger: logger}
}

func (r *mongoProductRepository) GetActivatedProducts(ctx context.Context) ([]*models.Product, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"activated": "yes"}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var products []*models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *mongoProductRepository) UpsertProduct(ctx context.Context, product *models.Product) error {
	if product.Activated == "" {
		product.Activated = "yes"
	}
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"name": product.Name},
		bson.M{"$set": bson.M{"activated": product.Activated}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert product %q: %w", product.Name, err)
	}
	return nil
}

// ensureMongoIndexes creates the unique keys the upserts rely on.
func ensureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)
	for _, channel := range models.Channels {
		if _, err := db.Collection(channel.ContactsTable()).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "external_id", Value: 1}}, Options: unique,
		}); err != nil {
			return err
		}
		if _, err := db.Collection(channel.ContactsTable()).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "created_at", Value: 1}},
		}); err != nil {
			return err
		}
		if _, err := db.Collection(channel.ConversationsTable()).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "contact_external_id", Value: 1}}, Options: unique,
		}); err != nil {
			return err
		}
	}
	_, err := db.Collection("products").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}}, Options: unique,
	})
	return err
}
