package catalog

import "context"

// Repository reads one of the reference catalogues.
type Repository interface {
	// Search returns a page of options of kind whose code, description or
	// short code contains query (case and accent insensitive), in catalogue
	// order, plus the total number of matches. An empty query matches all.
	Search(ctx context.Context, kind Kind, query string, limit, offset int) ([]Option, int, error)
	GetByCode(ctx context.Context, kind Kind, code string) (*Option, error)
}
