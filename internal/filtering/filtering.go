package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/edumatch/internal/eligibility"
	"github.com/spigell/edumatch/internal/portal"
)

// Filter represents a single filtering step applied to offerings.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate() error
	Apply(ctx context.Context, v *portal.Offerings) (*portal.Offerings, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// toggle keeps the enabled state shared by every step.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially and returns the resulting offerings list.
// Steps work on a copy; v and its offerings are left as they were.
func Run(ctx context.Context, logger *zap.Logger, steps []Filter, v *portal.Offerings) (*portal.Offerings, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	v = v.Clone()

	for _, step := range steps {
		if !step.IsEnabled() {
			logger.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		v = next
	}

	return v, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// Query is the caller's view of a list: which items to show and in what order.
type Query struct {
	// Strict drops offerings the candidate does not qualify for.
	// Without it every offering stays and only carries a verdict.
	Strict bool   `json:"strict" mapstructure:"strict"`
	Search string `json:"search" mapstructure:"search"`
	Sort   string `json:"sort" mapstructure:"sort" validate:"omitempty,oneof=title provider newest eligibility"`
	Limit  int    `json:"limit" mapstructure:"limit" validate:"gte=0"`
}

// Pipeline builds the side-effect free steps that turn (offerings, snapshot,
// query) into the displayed list. A nil snapshot leaves eligibility unknown.
func Pipeline(q Query, snapshot *eligibility.Snapshot, workers int, logger *zap.Logger) []Filter {
	return []Filter{
		NewEligibility(&EligibilityConfig{Strict: q.Strict, Workers: workers}, &EligibilityDeps{Snapshot: snapshot, Logger: logger}),
		NewSearch(q.Search),
		NewSort(q.Sort),
		NewLimit(q.Limit),
	}
}
