package domain

import "time"

type Favorite struct {
	ID        int64     `json:"id" db:"id"`
	ReportID  *string   `json:"report_id" db:"report_id"`
	Title     string    `json:"title" db:"title"`
	Score     *string   `json:"score" db:"score"`
	URL       *string   `json:"url" db:"url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewFavorite is the caller-supplied part of a Favorite.
// ID and CreatedAt are always assigned by the store.
type NewFavorite struct {
	ReportID *string
	Title    string `validate:"required"`
	Score    *string
	URL      *string
}

// Normalize turns empty optional fields into nulls. The title is kept as sent.
func (n NewFavorite) Normalize() NewFavorite {
	return NewFavorite{
		ReportID: nonEmpty(n.ReportID),
		Title:    n.Title,
		Score:    nonEmpty(n.Score),
		URL:      nonEmpty(n.URL),
	}
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

// FavoriteEvent is emitted after a favorite is created or deleted.
type FavoriteEvent struct {
	Action   string
	Favorite Favorite
}

const (
	FavoriteCreated = "favorite.created"
	FavoriteDeleted = "favorite.deleted"
)
