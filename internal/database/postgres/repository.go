package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/RAJVEER42/url-shortener/internal/database"
	"github.com/RAJVEER42/url-shortener/internal/models"
)

type urlRecord struct {
	ID          int64     `db:"id"`
	UserID      string    `db:"user_id"`
	ShortCode   string    `db:"short_code"`
	OriginalURL string    `db:"original_url"`
	Clicks      int64     `db:"clicks"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *urlRecord) ToURL() *models.URL {
	return &models.URL{
		ID:          r.ID,
		UserID:      r.UserID,
		ShortCode:   r.ShortCode,
		OriginalURL: r.OriginalURL,
		Clicks:      r.Clicks,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{
		db: db,
	}
}

func (r *URLRepository) Create(ctx context.Context, userID, shortCode, originalURL string) (*models.URL, error) {
	const op = "database.postgres.URLRepository.Create"

	rec := new(urlRecord)
	query := `INSERT INTO urls(user_id, short_code, original_url)
		VALUES ($1, $2, $3)
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, userID, shortCode, originalURL)
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrShortCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to create url record: %w", op, err)
	}

	return rec.ToURL(), nil
}

func (r *URLRepository) GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "database.postgres.URLRepository.GetByShortCode"

	rec := new(urlRecord)
	query := `SELECT * FROM urls
		WHERE short_code = $1`

	err := r.db.GetContext(ctx, rec, query, shortCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get url record: %w", op, err)
	}

	return rec.ToURL(), nil
}

func (r *URLRepository) IncrementClicks(ctx context.Context, shortCode string) error {
	const op = "database.postgres.URLRepository.IncrementClicks"

	query := `UPDATE urls
		SET clicks = clicks + 1, updated_at = now()
		WHERE short_code = $1`

	res, err := r.db.ExecContext(ctx, query, shortCode)
	if err != nil {
		return fmt.Errorf("%s: failed to increment clicks: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
	}

	return nil
}

func (r *URLRepository) ListByUserID(ctx context.Context, userID string) ([]models.URL, error) {
	const op = "database.postgres.URLRepository.ListByUserID"

	var recs []urlRecord
	query := `SELECT * FROM urls
		WHERE user_id = $1
		ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &recs, query, userID); err != nil {
		return nil, fmt.Errorf("%s: failed to list url records: %w", op, err)
	}

	urls := make([]models.URL, 0, len(recs))
	for _, rec := range recs {
		urls = append(urls, *rec.ToURL())
	}

	return urls, nil
}

// DeleteByIDAndUserID removes the record only when both the id and the owner
// match, so a record owned by someone else is indistinguishable from a
// missing one.
func (r *URLRepository) DeleteByIDAndUserID(ctx context.Context, id int64, userID string) (*models.URL, error) {
	const op = "database.postgres.URLRepository.DeleteByIDAndUserID"

	rec := new(urlRecord)
	query := `DELETE FROM urls
		WHERE id = $1 AND user_id = $2
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to delete url record: %w", op, err)
	}

	return rec.ToURL(), nil
}
