package intake

import (
	"fmt"
	"strings"
)

// MaskType selects the digit and decimal caps applied to a numeric input.
type MaskType string

const (
	MaskWeight      MaskType = "peso"
	MaskHeight      MaskType = "altura"
	MaskTemperature MaskType = "temperatura"
	MaskPressure    MaskType = "pressao"
	MaskRate        MaskType = "frequencia"
	MaskSaturation  MaskType = "saturacao"
	MaskGlucose     MaskType = "glicemia"
)

type maskRule struct {
	intDigits int
	decimals  int
}

var maskRules = map[MaskType]maskRule{
	MaskWeight:      {intDigits: 3, decimals: 3},
	MaskHeight:      {intDigits: 3, decimals: 1},
	MaskTemperature: {intDigits: 2, decimals: 1},
	MaskPressure:    {intDigits: 3},
	MaskRate:        {intDigits: 3},
	MaskSaturation:  {intDigits: 3},
	MaskGlucose:     {intDigits: 3},
}

// Masked is a formatted input: Display is what the field shows, Value the
// interpreted number ("70,500" shows as typed but means "70.5").
type Masked struct {
	Display string `json:"display"`
	Value   string `json:"value"`
}

func ParseMaskType(s string) (MaskType, error) {
	t := MaskType(s)
	if _, ok := maskRules[t]; !ok {
		return "", fmt.Errorf("unknown mask type %q", s)
	}
	return t, nil
}

// Mask keeps the digits of raw and at most one decimal comma, then drops
// integer digits and decimals past the type's caps. Types without decimals
// drop the comma entirely. Any other character is discarded.
func Mask(t MaskType, raw string) (Masked, error) {
	rule, ok := maskRules[t]
	if !ok {
		return Masked{}, fmt.Errorf("unknown mask type %q", t)
	}

	var intPart, frac strings.Builder
	comma := false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			if comma {
				if frac.Len() < rule.decimals {
					frac.WriteRune(r)
				}
			} else if intPart.Len() < rule.intDigits {
				intPart.WriteRune(r)
			}
		case r == ',' && rule.decimals > 0:
			comma = true
		}
	}

	display := intPart.String()
	if comma {
		display += "," + frac.String()
	}
	return Masked{Display: display, Value: interpret(intPart.String(), frac.String())}, nil
}

// interpret renders integer and fraction digits as a plain decimal string:
// leading zeros of the integer and trailing zeros of the fraction go.
func interpret(intDigits, fracDigits string) string {
	if intDigits == "" && fracDigits == "" {
		return ""
	}
	i := strings.TrimLeft(intDigits, "0")
	if i == "" {
		i = "0"
	}
	f := strings.TrimRight(fracDigits, "0")
	if f == "" {
		return i
	}
	return i + "." + f
}
