package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/edumatch/internal/portal"
)

const forceFlagSetMsg = "force flag is set"

// ApplicationLister is the part of the store client this step needs.
type ApplicationLister interface {
	GetApplications(candidateID string) (*portal.Applications, error)
}

type appliedHistoryFilter struct {
	toggle
	deps   *AppliedHistoryDeps
	ignore bool
}

type AppliedHistoryDeps struct {
	Store       ApplicationLister
	CandidateID string
	Logger      *zap.Logger
}

type AppliedHistoryConfig struct {
	Ignore bool
}

// NewAppliedHistory creates a filter that removes offerings the candidate already applied to.
func NewAppliedHistory(cfg *AppliedHistoryConfig, deps *AppliedHistoryDeps) Filter {
	ignore := false
	if cfg != nil {
		ignore = cfg.Ignore
	}

	return &appliedHistoryFilter{
		deps:   deps,
		ignore: ignore,
	}
}

func (f *appliedHistoryFilter) Name() string { return "applied_history" }

func (f *appliedHistoryFilter) Validate() error {
	if f.deps == nil || f.deps.Store == nil {
		return fmt.Errorf("store client is required")
	}

	if f.deps.Logger == nil {
		return fmt.Errorf("logger is required")
	}

	if f.deps.CandidateID == "" {
		return fmt.Errorf("candidate id is required")
	}

	return nil
}

func (f *appliedHistoryFilter) Apply(_ context.Context, v *portal.Offerings) (*portal.Offerings, Step, error) {
	initial := v.Len()
	if f.ignore {
		f.deps.Logger.Info("ignoring already applied offerings", zap.String("reason", forceFlagSetMsg))
		return v, Step{Initial: initial, Dropped: 0, Left: v.Len()}, nil
	}

	applications, err := f.deps.Store.GetApplications(f.deps.CandidateID)
	if err != nil {
		return v, Step{}, fmt.Errorf("get my applications: %w", err)
	}

	excluded := v.Exclude(portal.OfferingIDField, applications.OfferingIDs())
	if len(excluded) > 0 {
		f.deps.Logger.Info("excluding offerings based on my applications",
			zap.Strings("excluded_offerings", excluded),
			zap.Int("offerings_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}

func (f *appliedHistoryFilter) Status() Status {
	details := map[string]string{
		"exclude_applied": strconv.FormatBool(!f.ignore),
	}
	reason := f.reason
	if reason == "" && f.ignore {
		reason = "skip requested via flag"
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: reason, Details: details}
}
