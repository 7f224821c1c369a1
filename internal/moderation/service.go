// Package moderation runs user-submitted text through the profanity filter
// before it is stored or echoed back.
package moderation

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/sciencehub/sciencehub-api/internal/observability/metrics"
	"github.com/sciencehub/sciencehub-api/internal/profanity"
	"github.com/sciencehub/sciencehub-api/pkg/logging"
)

var moderationTracer = otel.Tracer("sciencehub.internal.moderation")

// Field labels used in metrics and logs.
const (
	FieldPostContent    = "post.content"
	FieldPostTag        = "post.tag"
	FieldCommentContent = "comment.content"
	FieldUserProfile    = "user.profile"
	FieldPreview        = "preview"
)

// Service masks denylisted words. A nil *Service passes text through.
type Service struct {
	filter  *profanity.Filter
	metrics *metrics.ModerationMetrics
	logger  *logging.Logger
}

// NewService wires a filter with optional metrics.
func NewService(filter *profanity.Filter, m *metrics.ModerationMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{filter: filter, metrics: m, logger: logger}
}

// Clean returns text with denylisted words masked and the number of masked
// words.
func (s *Service) Clean(ctx context.Context, field, text string) (string, int) {
	if s == nil || text == "" {
		return text, 0
	}
	_, span := moderationTracer.Start(ctx, "moderation.clean")
	defer span.End()

	report := s.filter.Inspect(text)
	span.SetAttributes(
		attribute.String("moderation.field", field),
		attribute.Int("moderation.matches", report.Matches),
	)
	s.metrics.ObserveCheck(field, report.Matches)
	if report.Matches > 0 {
		s.logger.Debug("moderation: masked words", "field", field, "matches", report.Matches)
	}
	return report.Redacted, report.Matches
}

// CleanTags trims tags, drops blanks and masks each remaining tag.
func (s *Service) CleanTags(ctx context.Context, tags []string) ([]string, int) {
	out := make([]string, 0, len(tags))
	total := 0
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		cleaned, n := s.Clean(ctx, FieldPostTag, tag)
		total += n
		out = append(out, cleaned)
	}
	return out, total
}

// Check inspects text without any side effects beyond metrics.
func (s *Service) Check(ctx context.Context, text string) profanity.Report {
	if s == nil {
		return profanity.Report{Clean: true, Redacted: text}
	}
	redacted, n := s.Clean(ctx, FieldPreview, text)
	return profanity.Report{Clean: n == 0, Redacted: redacted, Matches: n}
}
