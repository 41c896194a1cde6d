package models

// FunnelStage is the pipeline state of a contact.
type FunnelStage int

const (
	StageNewContact FunnelStage = iota
	StageTriageInProgress
	StageLegalTriageComplete
	StageUrgentCase
	StageEscalatedToHuman
	StageNotALegalCase
	// StageUnrecognized is a non-empty status outside the known set. It is
	// not counted in any funnel bucket.
	StageUnrecognized
)

// FunnelStages lists the countable stages in pipeline order.
var FunnelStages = []FunnelStage{
	StageNewContact,
	StageTriageInProgress,
	StageLegalTriageComplete,
	StageUrgentCase,
	StageEscalatedToHuman,
	StageNotALegalCase,
}

var stageNames = map[FunnelStage]string{
	StageNewContact:          "Novo Contato",
	StageTriageInProgress:    "Triagem em Andamento",
	StageLegalTriageComplete: "Triagem Jurídica Concluída",
	StageUrgentCase:          "Caso Urgente",
	StageEscalatedToHuman:    "Transferido para Humano",
	StageNotALegalCase:       "Não é Caso Jurídico",
}

// String returns the stored status value of the stage.
func (s FunnelStage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unrecognized"
}

// ClassifyStatus maps a stored status to its stage. An absent status is a
// new contact; an unknown one is StageUnrecognized.
func ClassifyStatus(status string) FunnelStage {
	if status == "" {
		return StageNewContact
	}
	for _, stage := range FunnelStages {
		if stageNames[stage] == status {
			return stage
		}
	}
	return StageUnrecognized
}
