package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/edumatch/internal/portal"
)

type providersFilter struct {
	toggle
	providers []string
	logger    *zap.Logger
}

// NewExcludedProviders creates a filter that removes offerings by institutions
// or companies listed in the config.
func NewExcludedProviders(providers []string, logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &providersFilter{
		providers: providers,
		logger:    logger,
	}
}

func (f *providersFilter) Name() string { return "providers" }

func (f *providersFilter) Validate() error { return nil }

func (f *providersFilter) Apply(_ context.Context, v *portal.Offerings) (*portal.Offerings, Step, error) {
	initial := v.Len()
	if len(f.providers) == 0 {
		return v, Step{Initial: initial, Dropped: 0, Left: v.Len()}, nil
	}

	excluded := v.Exclude(portal.OfferingProviderIDField, f.providers)
	if len(excluded) > 0 {
		f.logger.Info("excluding offerings by providers",
			zap.Strings("excluded_providers", f.providers),
			zap.Strings("excluded_offerings", excluded),
			zap.Int("offerings_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}

func (f *providersFilter) Status() Status {
	details := map[string]string{}
	if len(f.providers) > 0 {
		details["providers"] = strings.Join(f.providers, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
