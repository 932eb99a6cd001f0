package intake

import (
	"context"
	"errors"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/ehr/intake/internal/platform/binding"
	"github.com/ehr/intake/internal/platform/websocket"
)

// Messages on the live stream. Clients send one action per message and get
// exactly one reply.
//
//	{"action":"set","field":"peso","value":"70,5"}
//	{"action":"select","field":"motivoConsulta","code":"A03"}
//	{"action":"deselect","field":"motivoConsulta","code":"A03"}
//	{"action":"snapshot"}
//	{"action":"submit"}
//	{"action":"cancel"}
type liveRequest struct {
	Action string `json:"action" validate:"required,oneof=set select deselect snapshot submit cancel"`
	Field  string `json:"field,omitempty" validate:"max=64"`
	Value  string `json:"value,omitempty" validate:"max=4096"`
	Code   string `json:"code,omitempty" validate:"required_if=Action select,max=32"`
}

type liveReply struct {
	Type     string      `json:"type"`
	Field    *FieldState `json:"field,omitempty"`
	Snapshot *Snapshot   `json:"snapshot,omitempty"`
	Intake   *Intake     `json:"intake,omitempty"`
	Message  string      `json:"message,omitempty"`
	Errors   FieldErrors `json:"errors,omitempty"`
}

func (h *Handler) live(id uuid.UUID) websocket.Handler {
	return func(ctx context.Context, msg []byte) ([]byte, bool) {
		var req liveRequest
		reply, done := liveReply{Type: "error", Message: "invalid message"}, false
		if err := json.Unmarshal(msg, &req); err == nil {
			if err := binding.Struct(req); err != nil {
				reply.Message = binding.Message(err)
			} else {
				reply, done = h.dispatch(ctx, id, req)
			}
		}
		out, err := json.Marshal(reply)
		if err != nil {
			h.svc.logger.Error().Err(err).Str("session", id.String()).Msg("encode live reply")
			return nil, true
		}
		return out, done
	}
}

func (h *Handler) dispatch(ctx context.Context, id uuid.UUID, req liveRequest) (liveReply, bool) {
	switch req.Action {
	case "set", "select", "deselect":
		field, ok := ParseField(req.Field)
		if !ok {
			return liveReply{Type: "error", Message: "unknown field: " + req.Field}, false
		}
		var (
			state FieldState
			snap  Snapshot
			err   error
		)
		switch req.Action {
		case "set":
			state, snap, err = h.svc.SetField(id, field, req.Value)
		case "select":
			state, snap, err = h.svc.Select(ctx, id, field, req.Code)
		default:
			state, snap, err = h.svc.Deselect(id, field, req.Code)
		}
		if err != nil {
			return liveError(err)
		}
		return liveReply{Type: "field", Field: &state, Snapshot: &snap}, false

	case "snapshot":
		snap, err := h.svc.Snapshot(id)
		if err != nil {
			return liveError(err)
		}
		return liveReply{Type: "snapshot", Snapshot: &snap}, false

	case "submit":
		in, err := h.svc.Submit(ctx, id)
		if err != nil {
			return liveError(err)
		}
		return liveReply{Type: "submitted", Intake: in}, true

	case "cancel":
		if err := h.svc.Cancel(id); err != nil {
			return liveError(err)
		}
		return liveReply{Type: "cancelled"}, true

	default:
		return liveReply{Type: "error", Message: "unknown action: " + req.Action}, false
	}
}

// liveError turns err into an error reply. A vanished session ends the
// stream.
func liveError(err error) (liveReply, bool) {
	var fieldErrs FieldErrors
	if errors.As(err, &fieldErrs) {
		return liveReply{Type: "error", Message: "intake has field errors", Errors: fieldErrs}, false
	}
	return liveReply{Type: "error", Message: err.Error()}, errors.Is(err, ErrSessionNotFound)
}
