// Package asset records uploaded images and exposes them over HTTP.
package asset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Asset is one saved upload: the original and the derivative URLs built
// from it.
type Asset struct {
	ID          string            `json:"id"`
	Key         string            `json:"key"`
	URL         string            `json:"url"`
	FileName    string            `json:"fileName"`
	ContentType string            `json:"contentType"`
	SizeBytes   int64             `json:"sizeBytes"`
	Derivatives map[string]string `json:"derivatives"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// ErrNotFound is returned when an asset is not recorded.
var ErrNotFound = errors.New("asset not found")

// ErrAlreadyExists is returned when an asset with the same key is recorded.
var ErrAlreadyExists = errors.New("asset already exists")

// Repository handles all asset database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a and returns the stored record. An empty ID is generated.
func (r *Repository) Create(ctx context.Context, a *Asset) (*Asset, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	out := &Asset{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO assets (id, object_key, url, file_name, content_type, size_bytes, derivatives)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, object_key, url, file_name, content_type, size_bytes, derivatives, created_at`,
		a.ID, a.Key, a.URL, a.FileName, a.ContentType, a.SizeBytes, a.Derivatives,
	).Scan(&out.ID, &out.Key, &out.URL, &out.FileName, &out.ContentType, &out.SizeBytes, &out.Derivatives, &out.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create asset: %w", err)
	}
	return out, nil
}

// List returns the most recent assets, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]Asset, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, object_key, url, file_name, content_type, size_bytes, derivatives, created_at
		 FROM assets ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	assets := []Asset{}
	for rows.Next() {
		var a Asset
		if err := rows.Scan(&a.ID, &a.Key, &a.URL, &a.FileName, &a.ContentType, &a.SizeBytes, &a.Derivatives, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	return assets, nil
}

// DeleteByKey removes the asset recorded under key.
func (r *Repository) DeleteByKey(ctx context.Context, key string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM assets WHERE object_key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation checks whether an error is a PostgreSQL unique_violation (code 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
