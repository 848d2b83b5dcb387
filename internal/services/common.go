package services

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/yungbote/playbook-backend/internal/platform/apierr"
	"github.com/yungbote/playbook-backend/internal/platform/ctxutil"
)

var tracer = otel.Tracer("github.com/yungbote/playbook-backend/internal/services")

// ErrorBody mirrors the HTTP error envelope for per-entry batch failures.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// BatchResult is the outcome for one id of a batch operation. Skipped entries
// were already in the requested state and count as successes.
type BatchResult struct {
	ID      uint64     `json:"id"`
	Success bool       `json:"success"`
	Skipped bool       `json:"skipped,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

func batchFailure(id uint64, err error) BatchResult {
	return BatchResult{
		ID:    id,
		Error: &ErrorBody{Message: err.Error(), Code: string(apierr.KindOf(err))},
	}
}

func outcome(r BatchResult) string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Success:
		return "success"
	default:
		return "failed"
	}
}

func inTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctxutil.Default(ctx), name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func nowUTC() time.Time { return time.Now().UTC() }

func actorPtr(ctx context.Context) *string {
	a := ctxutil.Actor(ctx)
	return &a
}

// trimPtr normalizes optional text: nil and blank both mean absent.
func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// nullable turns an optional string into a value gorm writes as NULL.
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func dedupeIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
