package intake

import "math"

type procedureRule struct {
	name     string
	requires func(a Anthropometry, v VitalSigns) bool
}

var procedureRules = []procedureRule{
	{"Aferição de peso e altura", func(a Anthropometry, _ VitalSigns) bool { return a.Weight != "" && a.Height != "" }},
	{"Medição de circunferência abdominal", func(a Anthropometry, _ VitalSigns) bool { return a.Waist != "" }},
	{"Medição de perímetro da panturrilha", func(a Anthropometry, _ VitalSigns) bool { return a.Calf != "" }},
	{"Medição de perímetro cefálico", func(a Anthropometry, _ VitalSigns) bool { return a.Head != "" }},
	{"Aferição de pressão arterial", func(_ Anthropometry, v VitalSigns) bool { return v.Systolic != "" && v.Diastolic != "" }},
	{"Aferição de frequência cardíaca", func(_ Anthropometry, v VitalSigns) bool { return v.HeartRate != "" }},
	{"Aferição de frequência respiratória", func(_ Anthropometry, v VitalSigns) bool { return v.RespiratoryRate != "" }},
	{"Aferição de temperatura", func(_ Anthropometry, v VitalSigns) bool { return v.Temperature != "" }},
	{"Aferição de saturação de oxigênio", func(_ Anthropometry, v VitalSigns) bool { return v.Saturation != "" }},
	{"Glicemia capilar", func(_ Anthropometry, v VitalSigns) bool { return v.Glucose != "" }},
}

// DeriveProcedures lists, in fixed order, the procedures implied by the
// measurements that were filled. The result is never nil.
func DeriveProcedures(a Anthropometry, v VitalSigns) []string {
	out := []string{}
	for _, r := range procedureRules {
		if r.requires(a, v) {
			out = append(out, r.name)
		}
	}
	return out
}

type BMIClass string

const (
	BMIUnderweight BMIClass = "abaixo_do_peso"
	BMINormal      BMIClass = "adequado"
	BMIOverweight  BMIClass = "sobrepeso"
	BMIObese       BMIClass = "obesidade"
)

// BMI is the body-mass index derived from weight (kg) and height (cm).
type BMI struct {
	Value float64  `json:"valor"`
	Class BMIClass `json:"classificacao"`
}

// ComputeBMI returns nil unless both weight and height parse to positive
// numbers.
func ComputeBMI(weight, height string) *BMI {
	w, ok := parseDecimal(weight)
	if !ok || w <= 0 {
		return nil
	}
	h, ok := parseDecimal(height)
	if !ok || h <= 0 {
		return nil
	}
	m := h / 100
	value := math.Round(w/(m*m)*100) / 100

	class := BMIObese
	switch {
	case value < 18.5:
		class = BMIUnderweight
	case value < 25:
		class = BMINormal
	case value < 30:
		class = BMIOverweight
	}
	return &BMI{Value: value, Class: class}
}
