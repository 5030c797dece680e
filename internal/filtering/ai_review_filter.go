package filtering

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/edumatch/internal/ai"
	"github.com/spigell/edumatch/internal/logger"
	"github.com/spigell/edumatch/internal/portal"
)

type aiReviewFilter struct {
	toggle
	config *AIReviewFilterConfig
	deps   *AIReviewFilterDeps
}

type AIReviewFilterDeps struct {
	Logger   *zap.Logger
	Reviewer ai.Reviewer
	// Profile is the raw candidate document handed to the reviewer.
	Profile map[string]any
}

type AIReviewFilterConfig struct {
	Enabled  bool
	Provider string
	Gemini   *AIGeminiConfig
}

// AIGeminiConfig stores Gemini provider configuration.
type AIGeminiConfig struct {
	Model        string
	MaxRetries   int
	MaxLogLength int
}

// NewAIReview creates the step that attaches an advisory review to every offering.
// It never drops offerings and never touches verdicts.
func NewAIReview(cfg *AIReviewFilterConfig, deps *AIReviewFilterDeps) Filter {
	if cfg == nil {
		cfg = &AIReviewFilterConfig{}
	}

	f := &aiReviewFilter{
		config: cfg,
		deps:   deps,
	}
	if !cfg.Enabled {
		f.Disable("disabled in config")
	}
	return f
}

func (f *aiReviewFilter) Name() string { return "ai_review" }

func (f *aiReviewFilter) Validate() error {
	if f.deps == nil || f.deps.Reviewer == nil || f.deps.Logger == nil {
		return fmt.Errorf("deps are not initialized: filter is not usable")
	}

	if f.config.Gemini == nil {
		return fmt.Errorf("gemini configuration is required when ai review is enabled")
	}
	if strings.TrimSpace(f.config.Gemini.Model) == "" {
		return fmt.Errorf("gemini model is required when ai review is enabled")
	}
	return nil
}

func (f *aiReviewFilter) Apply(ctx context.Context, v *portal.Offerings) (*portal.Offerings, Step, error) {
	initial := v.Len()
	reviewed := 0

	for _, offering := range v.Items {
		if err := ctx.Err(); err != nil {
			return v, Step{}, err
		}

		log := f.deps.Logger.With(logger.OfferingFields(offering.ID, string(offering.Kind))...)

		review, err := f.deps.Reviewer.Review(ctx, f.deps.Profile, offering)
		if err != nil {
			log.Warn("AI review failed", zap.Error(err))
			offering.AI = &portal.AIReview{Error: err.Error()}
			continue
		}

		offering.AI = &portal.AIReview{
			Summary: review.Summary,
			Advice:  review.Advice,
			Raw:     review.Raw,
		}
		reviewed++

		log.Debug("offering reviewed by AI", zap.String("summary", review.Summary))
	}

	f.deps.Logger.Info("AI review completed",
		zap.Int("offerings", initial),
		zap.Int("reviewed_offerings", reviewed),
	)

	return v, Step{Initial: initial, Dropped: 0, Left: v.Len()}, nil
}

func (f *aiReviewFilter) Status() Status {
	details := map[string]string{}
	if f.config.Provider != "" {
		details["provider"] = f.config.Provider
	}
	if f.config.Gemini != nil {
		details["model"] = f.config.Gemini.Model
		details["max_retries"] = strconv.Itoa(f.config.Gemini.MaxRetries)
		details["max_log_length"] = strconv.Itoa(f.config.Gemini.MaxLogLength)
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
