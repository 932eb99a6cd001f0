package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/ehr/intake/pkg/pagination"
)

const maxQueryLen = 100

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Search pages through the options of kind that match query.
func (s *Service) Search(ctx context.Context, kind Kind, query string, p pagination.Params) ([]Option, int, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, 0, err
	}
	query = strings.TrimSpace(query)
	if len(query) > maxQueryLen {
		return nil, 0, fmt.Errorf("query must be at most %d characters", maxQueryLen)
	}
	return s.repo.Search(ctx, kind, query, p.Limit, p.Offset)
}

// Lookup returns the option of kind with code.
func (s *Service) Lookup(ctx context.Context, kind Kind, code string) (*Option, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("code is required")
	}
	return s.repo.GetByCode(ctx, kind, code)
}

// List pages through every option of kind in catalogue order.
func (s *Service) List(ctx context.Context, kind Kind, p pagination.Params) ([]Option, int, error) {
	return s.Search(ctx, kind, "", p)
}
