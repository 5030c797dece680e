package filtering

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/edumatch/internal/portal"
)

const statusOpen = "open"

type closedFilter struct {
	toggle
	now    func() time.Time
	logger *zap.Logger
}

// NewClosed creates a filter that removes offerings which no longer accept
// applications: a status other than open, or a deadline in the past.
// Offerings without a status or a readable deadline are kept.
func NewClosed(logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &closedFilter{now: time.Now, logger: logger}
}

func (f *closedFilter) Name() string { return "closed" }

func (f *closedFilter) Validate() error { return nil }

func (f *closedFilter) Apply(_ context.Context, v *portal.Offerings) (*portal.Offerings, Step, error) {
	initial := v.Len()
	today := f.now().UTC().Truncate(24 * time.Hour)

	excluded := v.Keep(func(o *portal.Offering) bool {
		status := strings.ToLower(strings.TrimSpace(o.Status))
		if status != "" && status != statusOpen {
			return false
		}

		deadline, ok := parseDeadline(o.Deadline)
		return !ok || !deadline.Before(today)
	})

	if len(excluded) > 0 {
		f.logger.Info("excluding closed offerings. It is impossible to apply them",
			zap.Strings("excluded_offerings", excluded),
			zap.Int("offerings_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}

func parseDeadline(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}
