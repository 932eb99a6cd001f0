package catalog

import (
	"context"
	"fmt"
	"strings"
)

type memoryRepo struct {
	options map[Kind][]Option
}

// NewMemoryRepo serves options from memory. A nil map serves the built-in
// fixtures.
func NewMemoryRepo(options map[Kind][]Option) Repository {
	if options == nil {
		options = Fixtures()
	}
	return &memoryRepo{options: options}
}

func (r *memoryRepo) Search(_ context.Context, kind Kind, query string, limit, offset int) ([]Option, int, error) {
	matches := Filter(r.options[kind], query)
	total := len(matches)
	if offset >= total {
		return []Option{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matches[offset:end], total, nil
}

func (r *memoryRepo) GetByCode(_ context.Context, kind Kind, code string) (*Option, error) {
	for _, o := range r.options[kind] {
		if strings.EqualFold(o.Code, code) {
			opt := o
			return &opt, nil
		}
	}
	return nil, fmt.Errorf("%s %s: %w", kind, code, ErrNotFound)
}
