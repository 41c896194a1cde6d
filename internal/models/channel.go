package models

// Channel identifies one of the messaging surfaces. Each channel keeps its
// contacts and conversations in separate tables/collections.
type Channel string

const (
	ChannelWhatsApp  Channel = "whatsapp"
	ChannelInstagram Channel = "instagram"
)

// Channels lists every supported channel in reporting order.
var Channels = []Channel{ChannelWhatsApp, ChannelInstagram}

// DisplayName is the label used in report payloads.
func (c Channel) DisplayName() string {
	switch c {
	case ChannelWhatsApp:
		return "WhatsApp"
	case ChannelInstagram:
		return "Instagram"
	}
	return string(c)
}

// ContactsTable is the table (or collection) holding the channel's contacts.
func (c Channel) ContactsTable() string {
	return string(c) + "_contacts"
}

// ConversationsTable is the table (or collection) holding the channel's conversations.
func (c Channel) ConversationsTable() string {
	return string(c) + "_conversations"
}

// Valid reports whether c is a supported channel.
func (c Channel) Valid() bool {
	return c == ChannelWhatsApp || c == ChannelInstagram
}
