package catalog

import (
	"errors"
	"fmt"
)

// Kind names one reference catalogue.
type Kind string

const (
	KindCIAP2         Kind = "ciap2"
	KindProcedures    Kind = "procedimentos"
	KindProfessionals Kind = "profissionais"
	KindTeams         Kind = "equipes"
	KindServiceTypes  Kind = "tipos_servico"
)

var Kinds = []Kind{KindCIAP2, KindProcedures, KindProfessionals, KindTeams, KindServiceTypes}

var (
	ErrNotFound    = errors.New("catalog option not found")
	ErrUnknownKind = errors.New("unknown catalog kind")
)

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Option is one selectable catalogue entry.
type Option struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	ShortCode   string `json:"shortCode,omitempty"`
}

// Label is the "code - description" form stored in a bound form field.
func (o Option) Label() string {
	return o.Code + " - " + o.Description
}
