package intake

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Field is the wire name of one bound form field.
type Field string

const (
	FieldReason              Field = "motivoConsulta"
	FieldNarrative           Field = "descricao"
	FieldWeight              Field = "peso"
	FieldHeight              Field = "altura"
	FieldWaist               Field = "circunferenciaAbdominal"
	FieldCalf                Field = "perimetroPanturrilha"
	FieldHead                Field = "perimetroCefalico"
	FieldSystolic            Field = "pressaoSistolica"
	FieldDiastolic           Field = "pressaoDiastolica"
	FieldHeartRate           Field = "frequenciaCardiaca"
	FieldRespiratoryRate     Field = "frequenciaRespiratoria"
	FieldTemperature         Field = "temperatura"
	FieldSaturation          Field = "saturacao"
	FieldGlucose             Field = "glicemia"
	FieldGlucoseMoment       Field = "momentoColeta"
	FieldProcedures          Field = "procedimentos"
	FieldRisk                Field = "classificacaoRisco"
	FieldOutcome             Field = "desfecho"
	FieldOutcomeProfessional Field = "profissionalDesfecho"
	FieldOutcomeTeam         Field = "equipeDesfecho"
	FieldServiceTypes        Field = "tipoServico"
	FieldScheduleDate        Field = "dataAgendamento"
	FieldScheduleTime        Field = "horarioAgendamento"
	FieldNotes               Field = "observacoes"
)

var (
	ErrSessionNotFound = errors.New("intake session not found")
	ErrFormClosed      = errors.New("intake form is closed")
	ErrUnknownField    = errors.New("unknown intake field")
	ErrNotSelectable   = errors.New("field is not bound to a catalogue")
)

// FieldErrors maps fields to the message shown next to them. It is returned
// by Submit when the form cannot be sent.
type FieldErrors map[Field]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for f := range fe {
		keys = append(keys, string(f))
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, fe[Field(k)])
	}
	return "intake has field errors: " + strings.Join(parts, "; ")
}

type RiskLevel string

const (
	RiskNonAcute     RiskLevel = "nao_aguda"
	RiskLow          RiskLevel = "baixo"
	RiskIntermediate RiskLevel = "intermediario"
	RiskHigh         RiskLevel = "alto"
)

var RiskLevels = []RiskLevel{RiskNonAcute, RiskLow, RiskIntermediate, RiskHigh}

// Priority orders risks for the attendance queue; higher is seen first.
func (r RiskLevel) Priority() int {
	switch r {
	case RiskHigh:
		return 3
	case RiskIntermediate:
		return 2
	case RiskLow:
		return 1
	default:
		return 0
	}
}

type GlucoseMoment string

const (
	GlucoseFasting      GlucoseMoment = "jejum"
	GlucosePreprandial  GlucoseMoment = "pre_prandial"
	GlucosePostprandial GlucoseMoment = "pos_prandial"
	GlucoseUnspecified  GlucoseMoment = "nao_especificado"
)

type OutcomeKind string

const (
	OutcomeRelease   OutcomeKind = "liberar"
	OutcomeAddToList OutcomeKind = "adicionar_lista"
	OutcomeSchedule  OutcomeKind = "agendar"
)

type Anthropometry struct {
	Weight string `json:"peso,omitempty"`
	Height string `json:"altura,omitempty"`
	Waist  string `json:"circunferenciaAbdominal,omitempty"`
	Calf   string `json:"perimetroPanturrilha,omitempty"`
	Head   string `json:"perimetroCefalico,omitempty"`
}

type VitalSigns struct {
	Systolic        string        `json:"pressaoSistolica,omitempty"`
	Diastolic       string        `json:"pressaoDiastolica,omitempty"`
	HeartRate       string        `json:"frequenciaCardiaca,omitempty"`
	RespiratoryRate string        `json:"frequenciaRespiratoria,omitempty"`
	Temperature     string        `json:"temperatura,omitempty"`
	Saturation      string        `json:"saturacao,omitempty"`
	Glucose         string        `json:"glicemia,omitempty"`
	GlucoseMoment   GlucoseMoment `json:"momentoColeta,omitempty"`
}

// OutcomeDraft is the outcome section as typed; it becomes an Outcome only
// at submit.
type OutcomeDraft struct {
	Kind         OutcomeKind `json:"desfecho,omitempty"`
	Professional string      `json:"profissionalDesfecho,omitempty"`
	Team         string      `json:"equipeDesfecho,omitempty"`
	ServiceTypes string      `json:"tipoServico,omitempty"`
	Date         string      `json:"dataAgendamento,omitempty"`
	Time         string      `json:"horarioAgendamento,omitempty"`
	Notes        string      `json:"observacoes,omitempty"`
}

// EncounterIntakeForm is the mutable record behind one open form.
type EncounterIntakeForm struct {
	Reason        string        `json:"motivoConsulta,omitempty"`
	Narrative     string        `json:"descricao,omitempty"`
	Anthropometry Anthropometry `json:"antropometria"`
	VitalSigns    VitalSigns    `json:"sinaisVitais"`
	Procedures    string        `json:"procedimentos,omitempty"`
	Risk          RiskLevel     `json:"classificacaoRisco,omitempty"`
	OutcomeDraft
}

// Intake is the plain object handed to the submit sink.
type Intake struct {
	PatientID         string        `json:"pacienteId,omitempty"`
	EncounterID       string        `json:"atendimentoId,omitempty"`
	Reason            string        `json:"motivoConsulta"`
	Narrative         string        `json:"descricao,omitempty"`
	Anthropometry     Anthropometry `json:"antropometria"`
	VitalSigns        VitalSigns    `json:"sinaisVitais"`
	BMI               *BMI          `json:"imc,omitempty"`
	Procedures        string        `json:"procedimentos,omitempty"`
	DerivedProcedures []string      `json:"procedimentosAutomaticos"`
	Risk              RiskLevel     `json:"classificacaoRisco"`
	Outcome           Outcome       `json:"desfecho"`
	StartedAt         time.Time     `json:"inicioAtendimento"`
	EndedAt           time.Time     `json:"fimAtendimento"`
}

// splitList turns a "; "-joined field into its trimmed, non-empty items.
// The result is never nil.
func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ";") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
