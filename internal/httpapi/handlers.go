package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"report_explorer/internal/domain"
	"report_explorer/internal/service"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	reports   *service.ReportService
	favorites *service.FavoriteService
	db        Pinger
	logger    *slog.Logger
}

func NewHandler(reports *service.ReportService, favorites *service.FavoriteService, db Pinger, logger *slog.Logger) *Handler {
	return &Handler{
		reports:   reports,
		favorites: favorites,
		db:        db,
		logger:    logger,
	}
}

// createFavoriteRequest mirrors the POST body. Every field is optional on the
// wire; title presence is checked by the service.
type createFavoriteRequest struct {
	ReportID *domain.ReportID `json:"report_id"`
	Title    *string          `json:"title"`
	Score    *string          `json:"score"`
	URL      *string          `json:"url"`
}

func (req createFavoriteRequest) toNewFavorite() domain.NewFavorite {
	fav := domain.NewFavorite{
		Score: req.Score,
		URL:   req.URL,
	}
	if req.ReportID != nil {
		id := req.ReportID.String()
		fav.ReportID = &id
	}
	if req.Title != nil {
		fav.Title = *req.Title
	}
	return fav
}

func (h *Handler) Reports(w http.ResponseWriter, r *http.Request) {
	raw, err := h.reports.Reports(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"reports": raw})
}

func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	favorites, err := h.favorites.List(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"favorites": favorites})
}

func (h *Handler) CreateFavorite(w http.ResponseWriter, r *http.Request) {
	var req createFavoriteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("decode favorite body failed", "error", err)
		respondErr(w, err)
		return
	}

	created, err := h.favorites.Create(r.Context(), req.toNewFavorite())
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"favorite": created})
}

func (h *Handler) DeleteFavorite(w http.ResponseWriter, r *http.Request) {
	if err := h.favorites.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Error("health check failed", "error", err)
		respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	respondJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "Not found")
}

func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
}
