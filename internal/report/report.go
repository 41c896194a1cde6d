package report

import (
	"time"

	"github.com/dorivaldermetrio-hash/crm-sub000/internal/models"
)

// Report is the payload served by GET /api/relatorios.
type Report struct {
	Success  bool           `json:"success"`
	Period   string         `json:"periodo"`
	Metrics  Headline       `json:"metricas"`
	Funnel   Funnel         `json:"funil"`
	Messages MessageStats   `json:"mensagens"`
	Products ProductStats   `json:"produtos"`
	Tags     map[string]int `json:"tags"`
	Channels map[string]int `json:"canais"`
}

// Headline holds the top-level numbers. Contact totals are period-scoped.
type Headline struct {
	TotalContacts          int     `json:"totalContatos"`
	TotalWhatsAppContacts  int     `json:"totalContatosWhatsApp"`
	TotalInstagramContacts int     `json:"totalContatosInstagram"`
	ActiveContacts         int     `json:"contatosAtivos"`
	TotalReceivedMessages  int     `json:"totalMensagensRecebidas"`
	TotalSentMessages      int     `json:"totalMensagensEnviadas"`
	ConversionRate         float64 `json:"taxaConversao"`
}

// Funnel is computed over every contact, regardless of period.
type Funnel struct {
	Distribution     map[string]int     `json:"distribuicao"`
	StageConversions map[string]float64 `json:"conversaoPorEtapa"`
}

type MessageStats struct {
	// ByStatus is always zero for every stage. It is kept so existing
	// dashboards keep decoding the payload.
	ByStatus map[string]int `json:"porStatus"`
	Daily    []DailyCount   `json:"temporal"`
}

type ProductStats struct {
	Top     []ProductCount `json:"topProdutos"`
	Unknown int            `json:"desconhecidos"`
}

// Compose assembles a report from a dataset. rawPeriod is echoed back as
// given; window must be the one resolved from it at now.
//
// Metric scopes differ on purpose:
//
//	totalContatos*, canais           created inside window
//	totalMensagens*                  sent inside window
//	funil, tags, produtos            every contact
//	contatosAtivos                   last ActiveLookback before now
//	mensagens.temporal               last SeriesDays days
func Compose(ds *Dataset, rawPeriod string, window Window, now time.Time) *Report {
	contacts := ds.AllContacts()
	conversations := ds.AllConversations()

	totalContacts := 0
	channels := make(map[string]int, len(models.Channels))
	for _, channel := range models.Channels {
		totalContacts += ds.ContactCounts[channel]
		channels[channel.DisplayName()] = ds.ContactCounts[channel]
	}

	funnel := CountFunnel(contacts)
	directions := CountDirections(conversations, window)
	top, unknown := TallyProducts(contacts, ds.Products)

	byStatus := make(map[string]int, len(models.FunnelStages))
	for _, stage := range models.FunnelStages {
		byStatus[stage.String()] = 0
	}

	return &Report{
		Success: true,
		Period:  rawPeriod,
		Metrics: Headline{
			TotalContacts:          totalContacts,
			TotalWhatsAppContacts:  ds.ContactCounts[models.ChannelWhatsApp],
			TotalInstagramContacts: ds.ContactCounts[models.ChannelInstagram],
			ActiveContacts:         CountActive(contacts, now),
			TotalReceivedMessages:  directions.Received,
			TotalSentMessages:      directions.Sent,
			ConversionRate:         ConversionRate(funnel[models.StageEscalatedToHuman], totalContacts),
		},
		Funnel: Funnel{
			Distribution:     funnel.Distribution(),
			StageConversions: funnel.StageConversions(),
		},
		Messages: MessageStats{
			ByStatus: byStatus,
			Daily:    DailySeries(conversations, now),
		},
		Products: ProductStats{
			Top:     top,
			Unknown: unknown,
		},
		Tags:     TallyTags(contacts),
		Channels: channels,
	}
}
