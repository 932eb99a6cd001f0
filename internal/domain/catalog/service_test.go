package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ehr/intake/pkg/pagination"
)

func newTestService() *Service {
	return NewService(NewMemoryRepo(nil))
}

func TestService_Search(t *testing.T) {
	svc := newTestService()
	results, total, err := svc.Search(context.Background(), KindCIAP2, "dor", pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected a page of 2, got %d", len(results))
	}
	if total <= 2 {
		t.Errorf("expected more than 2 matches for 'dor', got %d", total)
	}
}

func TestService_Search_Offset(t *testing.T) {
	svc := newTestService()
	all, total, _ := svc.Search(context.Background(), KindServiceTypes, "", pagination.Params{Limit: 100})
	page, _, err := svc.Search(context.Background(), KindServiceTypes, "", pagination.Params{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != len(all) {
		t.Errorf("expected total %d, got %d", len(all), total)
	}
	if page[0].Code != all[2].Code {
		t.Errorf("expected page to start at %s, got %s", all[2].Code, page[0].Code)
	}
}

func TestService_Search_UnknownKind(t *testing.T) {
	svc := newTestService()
	_, _, err := svc.Search(context.Background(), Kind("icd10"), "x", pagination.Params{Limit: 10})
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestService_Search_QueryTooLong(t *testing.T) {
	svc := newTestService()
	_, _, err := svc.Search(context.Background(), KindCIAP2, strings.Repeat("a", 101), pagination.Params{Limit: 10})
	if err == nil {
		t.Error("expected error for long query")
	}
}

func TestService_Lookup(t *testing.T) {
	svc := newTestService()
	opt, err := svc.Lookup(context.Background(), KindCIAP2, "a03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opt.Label() != "A03 - Febre" {
		t.Errorf("unexpected label %q", opt.Label())
	}
}

func TestService_Lookup_NotFound(t *testing.T) {
	svc := newTestService()
	_, err := svc.Lookup(context.Background(), KindCIAP2, "Z99")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_Lookup_CodeRequired(t *testing.T) {
	svc := newTestService()
	if _, err := svc.Lookup(context.Background(), KindCIAP2, " "); err == nil {
		t.Error("expected error for empty code")
	}
}

func TestFixtures_AreIndependentCopies(t *testing.T) {
	a := Fixtures()
	a[KindCIAP2][0].Description = "changed"
	if Fixtures()[KindCIAP2][0].Description == "changed" {
		t.Error("expected Fixtures to return a copy")
	}
}

func TestFixtures_UniqueCodes(t *testing.T) {
	for kind, opts := range Fixtures() {
		seen := map[string]bool{}
		for _, o := range opts {
			if seen[o.Code] {
				t.Errorf("%s: duplicate code %s", kind, o.Code)
			}
			seen[o.Code] = true
		}
	}
}

func TestService_List(t *testing.T) {
	svc := newTestService()
	items, total, err := svc.List(context.Background(), KindTeams, pagination.Params{Limit: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) == 0 || total != len(items) {
		t.Errorf("expected every team listed, got %d of %d", len(items), total)
	}
}
