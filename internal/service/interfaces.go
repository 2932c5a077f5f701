package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"encoding/json"

	"report_explorer/internal/domain"
)

type FavoriteStore interface {
	List(ctx context.Context) ([]domain.Favorite, error)
	Insert(ctx context.Context, fav domain.NewFavorite) (*domain.Favorite, error)
	Delete(ctx context.Context, id int64) (*domain.Favorite, error)
}

type ReportSource interface {
	ID() string
	Name() string
	FetchRaw(ctx context.Context) (json.RawMessage, error)
}

type Publisher interface {
	Publish(ctx context.Context, event domain.FavoriteEvent) error
	Close() error
}
