package report

import (
	"math"

	"github.com/dorivaldermetrio-hash/crm-sub000/internal/models"
)

// FunnelCounts is the number of contacts in each funnel stage.
type FunnelCounts map[models.FunnelStage]int

// CountFunnel buckets contacts by stage. Contacts with an unrecognized
// status are not counted.
func CountFunnel(contacts []*models.Contact) FunnelCounts {
	counts := make(FunnelCounts, len(models.FunnelStages))
	for _, stage := range models.FunnelStages {
		counts[stage] = 0
	}
	for _, contact := range contacts {
		stage := contact.Stage()
		if stage == models.StageUnrecognized {
			continue
		}
		counts[stage]++
	}
	return counts
}

// Distribution keys the counts by stage name.
func (f FunnelCounts) Distribution() map[string]int {
	out := make(map[string]int, len(models.FunnelStages))
	for _, stage := range models.FunnelStages {
		out[stage.String()] = f[stage]
	}
	return out
}

// Total is the number of classified contacts.
func (f FunnelCounts) Total() int {
	total := 0
	for _, n := range f {
		total += n
	}
	return total
}

// stageTransitions are the reported stage-to-stage conversions.
var stageTransitions = []struct {
	name     string
	from, to models.FunnelStage
}{
	{"novoParaTriagem", models.StageNewContact, models.StageTriageInProgress},
	{"triagemParaConcluida", models.StageTriageInProgress, models.StageLegalTriageComplete},
	{"concluidaParaUrgente", models.StageLegalTriageComplete, models.StageUrgentCase},
	{"urgenteParaTransferido", models.StageUrgentCase, models.StageEscalatedToHuman},
}

// StageConversions returns count(to)/count(from)*100 for every transition.
// Values are not rounded.
func (f FunnelCounts) StageConversions() map[string]float64 {
	out := make(map[string]float64, len(stageTransitions))
	for _, t := range stageTransitions {
		out[t.name] = percentage(f[t.to], f[t.from])
	}
	return out
}

// ConversionRate is the share of contacts escalated to a human, as a
// percentage of total rounded to two decimals.
func ConversionRate(escalated, total int) float64 {
	return round2(percentage(escalated, total))
}

func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
