package intake

import "testing"

func TestValidateField(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"peso", "", ""},
		{"peso", "70,5", ""},
		{"peso", "0,5", ""},
		{"peso", "600", "Peso deve estar entre 0,5 e 500 kg"},
		{"peso", "0,4", "Peso deve estar entre 0,5 e 500 kg"},
		{"altura", "10", "Altura deve estar entre 20 e 250 cm"},
		{"temperatura", "45", "Temperatura deve estar entre 32 e 42 °C"},
		{"saturacao", "69", "Saturação deve estar entre 70 e 100 %"},
		{"pressaoSistolica", "250", ""},
		{"pressaoSistolica", "251", "Pressão sistólica deve estar entre 70 e 250 mmHg"},
		{"frequenciaRespiratoria", "4", "Frequência respiratória deve estar entre 5 e 80 irpm"},
		{"glicemia", "700", "Glicemia deve estar entre 20 e 600 mg/dL"},
		{"descricao", "qualquer coisa", ""},
		{"desconhecido", "1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.value, func(t *testing.T) {
			if got := ValidateField(tt.name, tt.value); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestValidateNumericOnly(t *testing.T) {
	tests := map[string]bool{
		"":     true,
		"12":   true,
		"12,5": true,
		"12.5": false,
		"12a":  false,
		"-1":   false,
	}
	for in, want := range tests {
		if got := ValidateNumericOnly(in); got != want {
			t.Errorf("ValidateNumericOnly(%q): expected %v, got %v", in, want, got)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		field    Field
		value    string
		severity Severity
		message  string
	}{
		{"empty", FieldWeight, "", SeverityNone, ""},
		{"weight in range", FieldWeight, "70,5", SeverityNone, ""},
		{"weight out of range blocks", FieldWeight, "600", SeverityBlock, "Peso deve estar entre 0,5 e 500 kg"},
		{"systolic out of range warns", FieldSystolic, "300", SeverityWarn, "Pressão sistólica deve estar entre 70 e 250 mmHg"},
		{"letters block", FieldSystolic, "12a", SeverityBlock, msgNumericOnly},
		{"dot blocks", FieldWeight, "70.5", SeverityBlock, msgNumericOnly},
		{"two commas block", FieldTemperature, "3,6,5", SeverityBlock, msgNumericOnly},
		{"risk choice", FieldRisk, "alto", SeverityNone, ""},
		{"bad risk", FieldRisk, "urgente", SeverityBlock, msgInvalidOption},
		{"glucose moment", FieldGlucoseMoment, "jejum", SeverityNone, ""},
		{"bad date", FieldScheduleDate, "2026-13-01", SeverityBlock, msgInvalidDate},
		{"bad time", FieldScheduleTime, "25:00", SeverityBlock, msgInvalidTime},
		{"good time", FieldScheduleTime, "08:30", SeverityNone, ""},
		{"free text", FieldNarrative, "dor há 3 dias", SeverityNone, ""},
		{"unknown field", Field("nope"), "x", SeverityBlock, msgInvalidOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.field, tt.value)
			if got.Severity != tt.severity {
				t.Errorf("expected severity %s, got %s", tt.severity, got.Severity)
			}
			if got.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, got.Message)
			}
		})
	}
}

func TestFieldErrors_Error(t *testing.T) {
	fe := FieldErrors{FieldRisk: msgRequired, FieldReason: msgRequired}
	want := "intake has field errors: classificacaoRisco: Campo obrigatório; motivoConsulta: Campo obrigatório"
	if fe.Error() != want {
		t.Errorf("expected %q, got %q", want, fe.Error())
	}
}
