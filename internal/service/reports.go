package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"report_explorer/internal/domain"
)

// ReportService proxies the external reports API. Nothing is cached; every
// call reaches the upstream.
type ReportService struct {
	source ReportSource
	logger *slog.Logger
}

func NewReportService(source ReportSource, logger *slog.Logger) *ReportService {
	return &ReportService{
		source: source,
		logger: logger.With("source", source.ID()),
	}
}

// Reports returns the upstream payload unchanged.
func (s *ReportService) Reports(ctx context.Context) (json.RawMessage, error) {
	raw, err := s.source.FetchRaw(ctx)
	if err != nil {
		s.logger.Error("fetch reports failed",
			"source_name", s.source.Name(),
			"kind", domain.KindOf(err).String(),
			"error", err,
		)
		var derr *domain.Error
		if !errors.As(err, &derr) {
			return nil, domain.Server("", err)
		}
		return nil, err
	}
	return raw, nil
}
