package binding

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type selectRequest struct {
	Code string `json:"code" validate:"required,max=8"`
	Kind string `json:"kind" validate:"omitempty,oneof=a b"`
	Note string `json:"note" validate:"required_if=Kind b"`
}

func newContext(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.JSONSerializer = JSONSerializer{}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestBind_Valid(t *testing.T) {
	c, _ := newContext(`{"code":"A03","kind":"a"}`)

	var req selectRequest
	if err := Bind(c, &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Code != "A03" || req.Kind != "a" {
		t.Errorf("unexpected decode: %+v", req)
	}
}

func TestBind_ValidationMessage(t *testing.T) {
	c, _ := newContext(`{"kind":"z"}`)

	var req selectRequest
	err := Bind(c, &req)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	msg := he.Message.(string)
	for _, want := range []string{
		"code is required",
		"kind must be one of: a, b",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}

func TestStruct(t *testing.T) {
	if err := Struct(selectRequest{Code: "A03", Kind: "b", Note: "x"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := Struct(selectRequest{Code: "A03", Kind: "b"})
	if err == nil {
		t.Fatal("expected note to be required for kind b")
	}
	if got := Message(err); got != "note is required" {
		t.Errorf("expected %q, got %q", "note is required", got)
	}
}

func TestBind_MalformedJSON(t *testing.T) {
	c, _ := newContext(`{"code":`)

	var req selectRequest
	err := Bind(c, &req)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestBind_WrongType(t *testing.T) {
	c, _ := newContext(`{"code":12}`)

	var req selectRequest
	err := Bind(c, &req)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestJSONSerializer_Serialize(t *testing.T) {
	c, rec := newContext("")
	if err := c.JSON(http.StatusOK, map[string]string{"motivo": "Febre"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"motivo":"Febre"}` {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}
