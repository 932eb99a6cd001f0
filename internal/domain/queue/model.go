package queue

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ehr/intake/internal/domain/intake"
)

type Status string

const (
	StatusWaiting    Status = "aguardando"
	StatusInProgress Status = "em_atendimento"
	StatusDone       Status = "atendido"
)

var (
	ErrEntryNotFound     = errors.New("queue entry not found")
	ErrInvalidTransition = errors.New("invalid queue status transition")
)

// transitions lists the statuses each status may move to.
var transitions = map[Status][]Status{
	StatusWaiting:    {StatusInProgress},
	StatusInProgress: {StatusWaiting, StatusDone},
}

func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusWaiting, StatusInProgress, StatusDone:
		return st, true
	}
	return "", false
}

// Entry is one patient waiting in the attendance list.
type Entry struct {
	ID           uuid.UUID        `json:"id"`
	PatientID    string           `json:"pacienteId,omitempty"`
	EncounterID  string           `json:"atendimentoId,omitempty"`
	Reason       string           `json:"motivoConsulta,omitempty"`
	Professional string           `json:"profissional,omitempty"`
	Team         string           `json:"equipe,omitempty"`
	ServiceTypes []string         `json:"tiposServico"`
	Risk         intake.RiskLevel `json:"classificacaoRisco"`
	Notes        string           `json:"observacoes,omitempty"`
	Status       Status           `json:"status"`
	ArrivedAt    time.Time        `json:"chegada"`
	UpdatedAt    time.Time        `json:"atualizadoEm"`

	seq uint64
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	Professional string
	Team         string
	Status       Status
	Risk         intake.RiskLevel
}

func (f Filter) match(e *Entry) bool {
	if f.Professional != "" && e.Professional != f.Professional {
		return false
	}
	if f.Team != "" && e.Team != f.Team {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.Risk != "" && e.Risk != f.Risk {
		return false
	}
	return true
}
