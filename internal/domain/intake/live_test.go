package intake

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func sendLive(t *testing.T, h *Handler, id string, msg string) (liveReplyView, bool) {
	t.Helper()
	raw, done := h.live(uuid.MustParse(id))(context.Background(), []byte(msg))
	var reply liveReplyView
	if err := json.Unmarshal(raw, &reply); err != nil {
		t.Fatalf("decode reply %s: %v", raw, err)
	}
	return reply, done
}

type liveReplyView struct {
	Type     string            `json:"type"`
	Message  string            `json:"message"`
	Errors   map[string]string `json:"errors"`
	Field    *FieldState       `json:"field"`
	Snapshot *struct {
		Values EncounterIntakeForm `json:"values"`
	} `json:"snapshot"`
	Intake map[string]interface{} `json:"intake"`
}

func TestLive_SetAndSubmit(t *testing.T) {
	h, svc, _ := newTestHandler()
	id, _ := svc.Open(OpenRequest{})
	sid := id.String()

	reply, done := sendLive(t, h, sid, `{"action":"set","field":"temperatura","value":"38,2"}`)
	if done || reply.Type != "field" || reply.Field == nil || reply.Field.Value != "38.2" {
		t.Fatalf("unexpected set reply %+v", reply)
	}
	if reply.Snapshot == nil || reply.Snapshot.Values.VitalSigns.Temperature != "38.2" {
		t.Errorf("expected snapshot with temperature, got %+v", reply.Snapshot)
	}

	reply, done = sendLive(t, h, sid, `{"action":"submit"}`)
	if done || reply.Type != "error" || reply.Errors["motivoConsulta"] != msgRequired {
		t.Fatalf("expected blocked submit, got %+v", reply)
	}

	sendLive(t, h, sid, `{"action":"select","field":"motivoConsulta","code":"A03"}`)
	sendLive(t, h, sid, `{"action":"set","field":"classificacaoRisco","value":"nao_aguda"}`)
	sendLive(t, h, sid, `{"action":"set","field":"desfecho","value":"liberar"}`)

	reply, done = sendLive(t, h, sid, `{"action":"submit"}`)
	if !done || reply.Type != "submitted" || reply.Intake["motivoConsulta"] != "A03 - Febre" {
		t.Fatalf("unexpected submit reply %+v", reply)
	}

	reply, done = sendLive(t, h, sid, `{"action":"snapshot"}`)
	if !done || reply.Type != "error" {
		t.Errorf("expected closed stream after submit, got %+v", reply)
	}
}

func TestLive_BadMessages(t *testing.T) {
	h, svc, _ := newTestHandler()
	id, _ := svc.Open(OpenRequest{})

	for _, msg := range []string{`not json`, `{"action":"dance"}`, `{"action":"set","field":"cor","value":"1"}`} {
		reply, done := sendLive(t, h, id.String(), msg)
		if done || reply.Type != "error" || reply.Message == "" {
			t.Errorf("%s: expected error reply, got %+v", msg, reply)
		}
	}
}

func TestLive_RejectsInvalidRequests(t *testing.T) {
	h, svc, _ := newTestHandler()
	id, _ := svc.Open(OpenRequest{})

	tests := []struct {
		msg  string
		want string
	}{
		{`{"action":"dance"}`, "action must be one of: set, select, deselect, snapshot, submit, cancel"},
		{`{}`, "action is required"},
		{`{"action":"select","field":"motivoConsulta"}`, "code is required"},
	}
	for _, tt := range tests {
		reply, done := sendLive(t, h, id.String(), tt.msg)
		if done || reply.Type != "error" || reply.Message != tt.want {
			t.Errorf("%s: expected error %q, got %+v", tt.msg, tt.want, reply)
		}
	}

	snap, err := svc.Snapshot(id)
	if err != nil || snap.Values.Reason != "" {
		t.Errorf("expected form untouched, got %q %v", snap.Values.Reason, err)
	}
}

func TestLive_Cancel(t *testing.T) {
	h, svc, _ := newTestHandler()
	id, _ := svc.Open(OpenRequest{})

	reply, done := sendLive(t, h, id.String(), `{"action":"cancel"}`)
	if !done || reply.Type != "cancelled" {
		t.Errorf("unexpected cancel reply %+v", reply)
	}
	if svc.sessions.Len() != 0 {
		t.Error("expected session removed")
	}
}
