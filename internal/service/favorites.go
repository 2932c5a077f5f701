package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"report_explorer/internal/domain"
)

const (
	msgTitleRequired = "title is required"
	msgInvalidID     = "Invalid id"
)

// FavoriteService implements list/create/delete over the favorites table.
// Every call is a single store statement; nothing spans rows.
type FavoriteService struct {
	store     FavoriteStore
	publisher Publisher
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewFavoriteService wires the service. publisher may be nil, in which case
// no events are emitted.
func NewFavoriteService(store FavoriteStore, publisher Publisher, logger *slog.Logger) *FavoriteService {
	return &FavoriteService{
		store:     store,
		publisher: publisher,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger.With("component", "favorites"),
	}
}

// List returns every favorite, newest first.
func (s *FavoriteService) List(ctx context.Context) ([]domain.Favorite, error) {
	favorites, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("list favorites failed", "error", err)
		return nil, asStoreError(err)
	}
	if favorites == nil {
		favorites = []domain.Favorite{}
	}
	return favorites, nil
}

func (s *FavoriteService) Create(ctx context.Context, in domain.NewFavorite) (*domain.Favorite, error) {
	in = in.Normalize()
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	created, err := s.store.Insert(ctx, in)
	if err != nil {
		s.logger.Error("insert favorite failed", "title", in.Title, "error", err)
		return nil, asStoreError(err)
	}

	s.logger.Info("favorite created", "id", created.ID, "report_id", deref(created.ReportID))
	s.publish(ctx, domain.FavoriteCreated, *created)

	return created, nil
}

// Delete removes the favorite identified by rawID. Deleting an id that does
// not exist succeeds.
func (s *FavoriteService) Delete(ctx context.Context, rawID string) error {
	id, ok, err := ParseFavoriteID(rawID)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Debug("fractional id matches nothing", "raw_id", rawID)
		return nil
	}

	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		s.logger.Error("delete favorite failed", "id", id, "error", err)
		return asStoreError(err)
	}

	if deleted == nil {
		s.logger.Debug("delete matched no rows", "id", id)
		return nil
	}

	s.logger.Info("favorite deleted", "id", id)
	s.publish(ctx, domain.FavoriteDeleted, *deleted)

	return nil
}

// ParseFavoriteID accepts any finite number. ok is false when the number is
// finite but cannot name a row (fractional or out of range).
func ParseFavoriteID(raw string) (id int64, ok bool, err error) {
	f, perr := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if perr != nil && !errors.Is(perr, strconv.ErrRange) {
		return 0, false, domain.Validation(msgInvalidID)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, domain.Validation(msgInvalidID)
	}
	if f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false, nil
	}
	return int64(f), true, nil
}

func (s *FavoriteService) publish(ctx context.Context, action string, fav domain.Favorite) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, domain.FavoriteEvent{Action: action, Favorite: fav}); err != nil {
		s.logger.Warn("publish favorite event failed", "action", action, "id", fav.ID, "error", err)
	}
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			if fe.Field() == "Title" {
				return domain.Validation(msgTitleRequired)
			}
		}
		return domain.Validation(strings.ToLower(fieldErrs[0].Field()) + " is invalid")
	}
	return domain.Validation(err.Error())
}

func asStoreError(err error) error {
	var derr *domain.Error
	if errors.As(err, &derr) && derr.Kind == domain.KindStore {
		return err
	}
	return domain.Store(err)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
