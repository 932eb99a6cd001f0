package intake

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	msgRequired           = "Campo obrigatório"
	msgProfessionalOrTeam = "Informe o profissional ou a equipe"
	msgInvalidDate        = "Data inválida"
	msgInvalidTime        = "Horário inválido"
	msgPastDate           = "A data do agendamento não pode estar no passado"
	msgPastTime           = "O horário do agendamento não pode estar no passado"
	msgNumericOnly        = "Apenas números e vírgula são permitidos"
	msgInvalidOption      = "Opção inválida"
)

// Severity grades a field verdict.
type Severity string

const (
	SeverityNone  Severity = "none"
	SeverityWarn  Severity = "warn"
	SeverityBlock Severity = "block"
)

// Verdict is the outcome of validating one field value.
type Verdict struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message,omitempty"`
}

var okVerdict = Verdict{Severity: SeverityNone}

type fieldRange struct {
	label    string
	min, max float64
	unit     string
	// outOfRange is the severity of an in-format value outside [min, max].
	outOfRange Severity
}

var ranges = map[Field]fieldRange{
	FieldWeight:          {"Peso", 0.5, 500, "kg", SeverityBlock},
	FieldHeight:          {"Altura", 20, 250, "cm", SeverityBlock},
	FieldWaist:           {"Circunferência abdominal", 20, 250, "cm", SeverityBlock},
	FieldCalf:            {"Perímetro da panturrilha", 10, 99, "cm", SeverityBlock},
	FieldHead:            {"Perímetro cefálico", 10, 99, "cm", SeverityBlock},
	FieldSystolic:        {"Pressão sistólica", 70, 250, "mmHg", SeverityWarn},
	FieldDiastolic:       {"Pressão diastólica", 40, 150, "mmHg", SeverityWarn},
	FieldHeartRate:       {"Frequência cardíaca", 20, 250, "bpm", SeverityWarn},
	FieldRespiratoryRate: {"Frequência respiratória", 5, 80, "irpm", SeverityWarn},
	FieldTemperature:     {"Temperatura", 32, 42, "°C", SeverityWarn},
	FieldSaturation:      {"Saturação", 70, 100, "%", SeverityWarn},
	FieldGlucose:         {"Glicemia", 20, 600, "mg/dL", SeverityWarn},
}

// ValidateField checks a measurement against its clinical range. It returns
// "" for an empty value, a field without a range, or a value in range;
// otherwise the message to show, e.g. "Peso deve estar entre 0,5 e 500 kg".
func ValidateField(name, value string) string {
	r, ok := ranges[Field(name)]
	if !ok {
		return ""
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	n, ok := parseDecimal(value)
	if ok && n >= r.min && n <= r.max {
		return ""
	}
	return fmt.Sprintf("%s deve estar entre %s e %s %s", r.label, formatDecimal(r.min), formatDecimal(r.max), r.unit)
}

var numericOnly = regexp.MustCompile(`^[\d,]*$`)

// ValidateNumericOnly reports whether value holds only digits and commas.
func ValidateNumericOnly(value string) bool {
	return numericOnly.MatchString(value)
}

// Validate is the single verdict for a value typed into field. Malformed
// numbers always block; out-of-range anthropometry blocks while
// out-of-range vital signs only warn.
func Validate(field Field, value string) Verdict {
	spec, ok := fieldSpecs[field]
	if !ok {
		return Verdict{Severity: SeverityBlock, Message: msgInvalidOption}
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return okVerdict
	}

	switch spec.kind {
	case kindNumeric:
		if !ValidateNumericOnly(value) || strings.Count(value, ",") > 1 {
			return Verdict{Severity: SeverityBlock, Message: msgNumericOnly}
		}
		if msg := ValidateField(string(field), value); msg != "" {
			return Verdict{Severity: ranges[field].outOfRange, Message: msg}
		}
	case kindChoice:
		if !contains(spec.choices, value) {
			return Verdict{Severity: SeverityBlock, Message: msgInvalidOption}
		}
	case kindDate:
		if _, err := time.Parse(dateLayout, value); err != nil {
			return Verdict{Severity: SeverityBlock, Message: msgInvalidDate}
		}
	case kindTime:
		if _, err := time.Parse(timeLayout, value); err != nil {
			return Verdict{Severity: SeverityBlock, Message: msgInvalidTime}
		}
	}
	return okVerdict
}

// parseDecimal reads "70,5" or "70.5". NaN and infinities are rejected.
func parseDecimal(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// formatDecimal prints n with a decimal comma and no trailing zeros.
func formatDecimal(n float64) string {
	return strings.ReplaceAll(strconv.FormatFloat(n, 'f', -1, 64), ".", ",")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
