package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"report_explorer/internal/domain"
	"report_explorer/internal/metrics"
)

type FavoriteStore struct {
	db *sqlx.DB
}

func NewFavoriteStore(db *sqlx.DB) *FavoriteStore {
	return &FavoriteStore{db: db}
}

func (s *FavoriteStore) List(ctx context.Context) ([]domain.Favorite, error) {
	query := `
		SELECT id, report_id, title, score, url, created_at
		FROM favorites
		ORDER BY created_at DESC, id DESC`

	done := metrics.ObserveStore("select")
	favorites := []domain.Favorite{}
	err := s.db.SelectContext(ctx, &favorites, query)
	done(err)
	if err != nil {
		return nil, storeError("list favorites", err)
	}
	return favorites, nil
}

func (s *FavoriteStore) Insert(ctx context.Context, fav domain.NewFavorite) (*domain.Favorite, error) {
	query := `
		INSERT INTO favorites (report_id, title, score, url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, report_id, title, score, url, created_at`

	done := metrics.ObserveStore("insert")
	var created domain.Favorite
	err := s.db.GetContext(ctx, &created, query,
		fav.ReportID,
		fav.Title,
		fav.Score,
		fav.URL,
	)
	done(err)
	if err != nil {
		return nil, storeError("insert favorite", err)
	}
	return &created, nil
}

// Delete removes the favorite with the given id and returns the removed row.
// A missing id is not an error; the returned favorite is nil.
func (s *FavoriteStore) Delete(ctx context.Context, id int64) (*domain.Favorite, error) {
	query := `
		DELETE FROM favorites
		WHERE id = $1
		RETURNING id, report_id, title, score, url, created_at`

	done := metrics.ObserveStore("delete")
	rows, err := s.db.QueryxContext(ctx, query, id)
	if err != nil {
		done(err)
		return nil, storeError("delete favorite", err)
	}
	defer rows.Close()

	var deleted *domain.Favorite
	for rows.Next() {
		var fav domain.Favorite
		if err := rows.StructScan(&fav); err != nil {
			done(err)
			return nil, storeError("scan deleted favorite", err)
		}
		deleted = &fav
	}
	err = rows.Err()
	done(err)
	if err != nil {
		return nil, storeError("delete favorite", err)
	}
	return deleted, nil
}

// storeError keeps the database's own message for API consumers and the
// operation context for logs.
func storeError(op string, err error) error {
	msg := err.Error()
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		msg = pqErr.Message
	}
	return &domain.Error{
		Kind: domain.KindStore,
		Msg:  msg,
		Err:  fmt.Errorf("%s: %w", op, err),
	}
}

func (s *FavoriteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
