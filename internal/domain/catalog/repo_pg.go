package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// PGRepo reads catalogues from the catalog_option table.
type PGRepo struct {
	pool *pgxpool.Pool
}

func NewPGRepo(pool *pgxpool.Pool) *PGRepo {
	return &PGRepo{pool: pool}
}

func (r *PGRepo) conn() queryable {
	return r.pool
}

const optionCols = `code, description, short_code`

func scanOption(row pgx.Row) (*Option, error) {
	var o Option
	if err := row.Scan(&o.Code, &o.Description, &o.ShortCode); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PGRepo) Search(ctx context.Context, kind Kind, query string, limit, offset int) ([]Option, int, error) {
	pattern := "%" + escapeLike(Fold(strings.TrimSpace(query))) + "%"

	var total int
	err := r.conn().QueryRow(ctx,
		`SELECT COUNT(*) FROM catalog_option WHERE kind = $1 AND search_text LIKE $2`,
		string(kind), pattern).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s options: %w", kind, err)
	}

	if limit <= 0 {
		limit = total
	}
	rows, err := r.conn().Query(ctx,
		`SELECT `+optionCols+` FROM catalog_option
		 WHERE kind = $1 AND search_text LIKE $2
		 ORDER BY sort_order, code
		 LIMIT $3 OFFSET $4`,
		string(kind), pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("search %s options: %w", kind, err)
	}
	defer rows.Close()

	results := []Option{}
	for rows.Next() {
		o, err := scanOption(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan %s option: %w", kind, err)
		}
		results = append(results, *o)
	}
	return results, total, rows.Err()
}

func (r *PGRepo) GetByCode(ctx context.Context, kind Kind, code string) (*Option, error) {
	o, err := scanOption(r.conn().QueryRow(ctx,
		`SELECT `+optionCols+` FROM catalog_option WHERE kind = $1 AND upper(code) = upper($2)`,
		string(kind), code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s %s: %w", kind, code, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s option: %w", kind, err)
	}
	return o, nil
}

// Seed replaces the stored rows of every kind in options, inside one
// transaction, and returns the number of rows copied.
func (r *PGRepo) Seed(ctx context.Context, options map[Kind][]Option) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback(ctx)

	var rows [][]interface{}
	for _, kind := range Kinds {
		opts, ok := options[kind]
		if !ok {
			continue
		}
		if _, err := tx.Exec(ctx, `DELETE FROM catalog_option WHERE kind = $1`, string(kind)); err != nil {
			return 0, fmt.Errorf("clear %s options: %w", kind, err)
		}
		for i, o := range opts {
			rows = append(rows, []interface{}{string(kind), o.Code, o.Description, o.ShortCode, searchText(o), i})
		}
	}

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"catalog_option"},
		[]string{"kind", "code", "description", "short_code", "search_text", "sort_order"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("copy catalog options: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return n, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
