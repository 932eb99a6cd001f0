package intake

type SectionID string

const (
	SectionReason        SectionID = "motivo_consulta"
	SectionAnthropometry SectionID = "antropometria"
	SectionVitals        SectionID = "sinais_vitais"
	SectionProcedures    SectionID = "procedimentos"
	SectionRisk          SectionID = "classificacao_risco"
	SectionOutcome       SectionID = "desfecho"
)

// Section describes one block of the intake form. Sections hold no values;
// they group fields for display.
type Section struct {
	ID          SectionID `json:"id"`
	Title       string    `json:"title"`
	Fields      []Field   `json:"fields"`
	Collapsible bool      `json:"collapsible"`
}

var sections = []Section{
	{
		ID:     SectionReason,
		Title:  "Motivo da consulta",
		Fields: []Field{FieldReason, FieldNarrative},
	},
	{
		ID:          SectionAnthropometry,
		Title:       "Antropometria",
		Fields:      []Field{FieldWeight, FieldHeight, FieldWaist, FieldCalf, FieldHead},
		Collapsible: true,
	},
	{
		ID:    SectionVitals,
		Title: "Sinais vitais",
		Fields: []Field{
			FieldSystolic, FieldDiastolic, FieldHeartRate, FieldRespiratoryRate,
			FieldTemperature, FieldSaturation, FieldGlucose, FieldGlucoseMoment,
		},
		Collapsible: true,
	},
	{
		ID:          SectionProcedures,
		Title:       "Procedimentos",
		Fields:      []Field{FieldProcedures},
		Collapsible: true,
	},
	{
		ID:     SectionRisk,
		Title:  "Classificação de risco/vulnerabilidade",
		Fields: []Field{FieldRisk},
	},
	{
		ID:    SectionOutcome,
		Title: "Desfecho da escuta inicial",
		Fields: []Field{
			FieldOutcome, FieldOutcomeProfessional, FieldOutcomeTeam, FieldServiceTypes,
			FieldScheduleDate, FieldScheduleTime, FieldNotes,
		},
	},
}

// Sections returns the form layout in display order.
func Sections() []Section {
	out := make([]Section, len(sections))
	for i, s := range sections {
		s.Fields = append([]Field(nil), s.Fields...)
		out[i] = s
	}
	return out
}

// FieldView is one field as the form currently shows it.
type FieldView struct {
	Field    Field  `json:"field"`
	Value    string `json:"value"`
	Display  string `json:"display,omitempty"`
	Error    string `json:"error,omitempty"`
	Warning  string `json:"warning,omitempty"`
	Required bool   `json:"required,omitempty"`
}

type SectionView struct {
	ID          SectionID   `json:"id"`
	Title       string      `json:"title"`
	Collapsible bool        `json:"collapsible"`
	Fields      []FieldView `json:"fields"`
}

// requiredFields reports which fields must be filled before submit given the
// outcome kind chosen so far.
func requiredFields(kind OutcomeKind) map[Field]bool {
	req := map[Field]bool{FieldReason: true, FieldRisk: true, FieldOutcome: true}
	all, anyOf := RequiredOutcomeFields(kind)
	for _, f := range all {
		req[f] = true
	}
	for _, f := range anyOf {
		req[f] = true
	}
	return req
}
