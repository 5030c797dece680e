package filtering

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/edumatch/internal/eligibility"
	"github.com/spigell/edumatch/internal/logger"
	"github.com/spigell/edumatch/internal/portal"
)

type eligibilityFilter struct {
	toggle
	config *EligibilityConfig
	deps   *EligibilityDeps
}

type EligibilityConfig struct {
	Strict bool
	// Workers bounds concurrent evaluations. Zero means GOMAXPROCS.
	Workers int
}

type EligibilityDeps struct {
	// Snapshot is nil when the candidate has no usable profile yet.
	Snapshot *eligibility.Snapshot
	Logger   *zap.Logger
}

// NewEligibility creates the step that attaches a verdict to every offering and,
// in strict mode, drops the ones the candidate does not qualify for.
func NewEligibility(cfg *EligibilityConfig, deps *EligibilityDeps) Filter {
	if cfg == nil {
		cfg = &EligibilityConfig{}
	}
	if deps == nil {
		deps = &EligibilityDeps{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &eligibilityFilter{config: cfg, deps: deps}
}

func (f *eligibilityFilter) Name() string { return "eligibility" }

func (f *eligibilityFilter) Validate() error {
	if f.config.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", f.config.Workers)
	}
	return nil
}

func (f *eligibilityFilter) Apply(ctx context.Context, v *portal.Offerings) (*portal.Offerings, Step, error) {
	initial := v.Len()

	if f.deps.Snapshot == nil {
		for _, offering := range v.Items {
			offering.Verdict = nil
		}
		f.deps.Logger.Info("candidate snapshot is not available; eligibility is unknown for every offering")
		return v, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	verdicts, err := f.evaluate(ctx, v.Items)
	if err != nil {
		return v, Step{}, err
	}

	for i, offering := range v.Items {
		verdict := verdicts[i]
		offering.Verdict = &verdict

		f.deps.Logger.Debug("offering evaluated",
			append(logger.OfferingFields(offering.ID, string(offering.Kind)),
				zap.Bool("qualified", verdict.Qualified),
				zap.Strings("missing", verdict.Missing),
			)...,
		)
	}

	if !f.config.Strict {
		return v, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	excluded := v.Keep(func(o *portal.Offering) bool {
		return o.Verdict.Qualified
	})
	if len(excluded) > 0 {
		f.deps.Logger.Info("excluding offerings the candidate does not qualify for",
			zap.Strings("excluded_offerings", excluded),
			zap.Int("offerings_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}

// evaluate runs the engine for every offering. Verdicts are stored by index so
// the result lines up with the input order.
func (f *eligibilityFilter) evaluate(ctx context.Context, items []*portal.Offering) ([]eligibility.Verdict, error) {
	verdicts := make([]eligibility.Verdict, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers())

	for i, offering := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			verdicts[i] = eligibility.Evaluate(offering.Requirements, f.deps.Snapshot)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evaluate offerings: %w", err)
	}

	return verdicts, nil
}

func (f *eligibilityFilter) workers() int {
	if f.config.Workers > 0 {
		return f.config.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (f *eligibilityFilter) Status() Status {
	details := map[string]string{
		"strict":  strconv.FormatBool(f.config.Strict),
		"workers": strconv.Itoa(f.workers()),
	}
	reason := f.reason
	if reason == "" && f.deps.Snapshot == nil {
		reason = "candidate snapshot is not available"
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: reason, Details: details}
}
