package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/edumatch/internal/ai"
	"github.com/spigell/edumatch/internal/ai/gemini"
	"github.com/spigell/edumatch/internal/eligibility"
	"github.com/spigell/edumatch/internal/filtering"
	applog "github.com/spigell/edumatch/internal/logger"
	"github.com/spigell/edumatch/internal/portal"
	"github.com/spigell/edumatch/internal/profile"
	"github.com/spigell/edumatch/internal/secrets"
)

const (
	PromptApplyQualified      = "Apply to all qualified offerings"
	PromptManualApply         = "Apply offerings in manual mode"
	PromptReportByProviders   = "Report by providers"
	PromptExplainMissing      = "Explain missing requirements"
	PromptOfferingsToFile     = "Dump offerings to file"
	PromptExit                = "Exit"
	PromptBack                = "back"
	PromptAppendToExcludeFile = "Append all offerings to exclude file"
	defaultFallbackMessage    = "Hello! I would like to apply for this offering."
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptApplyQualified, PromptManualApply, PromptReportByProviders, PromptExplainMissing, PromptOfferingsToFile, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Check open offerings against the candidate profile and apply to them",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("do-not-exclude-applied", "f", false, "do not exclude offerings if already applied")
	runCmd.Flags().BoolP("auto-approve", "y", false, "apply to every qualified offering without asking")
	runCmd.Flags().StringP("exclude-file", "e", "", "special file with offerings to exclude. Default is unset.")
	runCmd.Flags().BoolP("strict", "s", false, "hide offerings the candidate does not qualify for")
	runCmd.Flags().String("sort", "", "sort offerings by title, provider, newest or eligibility")
	runCmd.Flags().Int("limit", 0, "show at most this many offerings")

	viper.BindPFlag("filter.exclude-file", runCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("filter.do-not-exclude-applied", runCmd.Flags().Lookup("do-not-exclude-applied"))
	viper.BindPFlag("filter.strict", runCmd.Flags().Lookup("strict"))
	viper.BindPFlag("filter.sort", runCmd.Flags().Lookup("sort"))
	viper.BindPFlag("filter.limit", runCmd.Flags().Lookup("limit"))
}

// session is what the interactive loop works on.
type session struct {
	store    *portal.Client
	logger   *zap.Logger
	config   *Config
	kind     portal.Kind
	snapshot *eligibility.Snapshot
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := applog.New(applog.Options{
		JSON:      viper.GetBool("json"),
		Debug:     viper.GetBool("debug"),
		Component: "run",
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the edumatch", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config.Store == nil {
		logger.Fatal("store section is required to fetch offerings")
	}

	if config.Candidate == nil {
		logger.Fatal("candidate.id and candidate.role are required to evaluate and apply to offerings")
	}

	kind, err := portal.ParseKind(config.Candidate.Role)
	if err != nil {
		logger.Fatal("parsing candidate role", zap.Error(err))
	}

	token, err := resolveToken(config)
	if err != nil {
		logger.Fatal(
			"loading store token",
			zap.Error(err),
			zap.String("hint", "set EDUMATCH_TOKEN_FILE environment variable or the 'store.token-file' key in the configuration file"),
		)
	}

	store := portal.New(ctx, logger, config.Store.URL, token)
	if config.Store.UserAgent != "" {
		store.UserAgent = config.Store.UserAgent
	}
	store.SetTimeout(config.Store.Timeout)

	logger = logger.With(applog.CandidateFields(config.Candidate.ID, string(kind))...)

	doc, snapshot := loadCandidate(store, kind, config.Candidate.ID, logger)

	logger.Info("starting the search", zap.String("kind", string(kind)))

	offerings, err := store.ListOfferings(kind, config.Search)
	if err != nil {
		logger.Fatal("getting available offerings", zap.Error(err))
	}

	logger.Info("getting offerings", zap.Int("count", offerings.Len()))

	if offerings.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no offerings found"))
		return
	}

	steps := prepareFilters(ctx, cmd, store, config, doc, snapshot, logger)

	for _, status := range filtering.Describe(steps) {
		logger.Debug("filter configured",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	offerings, err = filtering.Run(ctx, logger, steps, offerings)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	if offerings.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no offerings left after filters"))
		return
	}

	logVerdicts(logger, offerings)

	s := &session{store: store, logger: logger, config: config, kind: kind, snapshot: snapshot}

	if cmd.Flag("auto-approve").Value.String() == "true" {
		if err := s.handleAction(PromptApplyQualified, offerings); err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		logger.Info("current list of offerings", zap.Int("count", offerings.Len()))

		if err := s.handleAction(action, offerings); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// loadCandidate fetches the profile and projects it for the role. A missing
// profile is not fatal: every offering is then shown with unknown eligibility.
func loadCandidate(store *portal.Client, kind portal.Kind, id string, logger *zap.Logger) (map[string]any, *eligibility.Snapshot) {
	doc, err := store.GetProfile(id)
	if errors.Is(err, portal.ErrProfileNotFound) {
		logger.Warn("candidate profile not found; eligibility will be unknown",
			zap.String("hint", "complete the profile to see which offerings you qualify for"),
		)
		return nil, nil
	}
	if err != nil {
		logger.Fatal("getting candidate profile", zap.Error(err))
	}

	snapshot, err := profile.ForRole(kind, doc.Raw)
	if err != nil {
		logger.Fatal("projecting candidate profile", zap.Error(err))
	}

	logger.Info("candidate profile loaded", zap.String("name", doc.Name))

	return doc.Raw, &snapshot
}

func logVerdicts(logger *zap.Logger, offerings *portal.Offerings) {
	for _, offering := range offerings.Items {
		fields := append(applog.OfferingFields(offering.ID, string(offering.Kind)),
			zap.String("title", offering.Title),
			zap.String("eligibility", offering.Eligibility()),
		)
		if offering.Verdict != nil && len(offering.Verdict.Missing) > 0 {
			fields = append(fields, zap.Strings("missing", offering.Verdict.Missing))
		}
		logger.Info("offering", fields...)
	}
}

func (s *session) handleAction(action string, offerings *portal.Offerings) error {
	switch action {
	case PromptApplyQualified:
		qualified := offerings.Qualified()
		if qualified.Len() == 0 {
			s.logger.Info("nothing to apply", zap.String("reason", "no offerings with a passed eligibility check"))
			return nil
		}
		applied, err := s.apply(qualified)
		offerings.Exclude(portal.OfferingIDField, applied)
		return err
	case PromptExit:
		s.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptManualApply:
		return s.manualApply(offerings)
	case PromptReportByProviders:
		pretty, _ := json.MarshalIndent(offerings.ReportByProvider(), "", "  ")
		s.logger.Info(string(pretty), zap.Int("offerings count", offerings.Len()))
		return nil
	case PromptExplainMissing:
		explainMissing(s.logger, offerings)
		return nil
	case PromptOfferingsToFile:
		filename, err := offerings.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		s.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func explainMissing(logger *zap.Logger, offerings *portal.Offerings) {
	explained := 0
	for _, offering := range offerings.Items {
		if offering.Verdict == nil || offering.Verdict.Qualified {
			continue
		}
		explained++
		logger.Info(offering.Title,
			append(applog.OfferingFields(offering.ID, string(offering.Kind)),
				zap.Strings("missing", offering.Verdict.Missing),
				zap.Strings("satisfied", offering.Verdict.Satisfied),
			)...,
		)
	}

	if explained == 0 {
		logger.Info("no failed eligibility checks to explain")
	}
}

func resolveToken(config *Config) (string, error) {
	if config == nil || config.Store == nil {
		return "", errors.New("store config is required")
	}

	tokenFile := strings.TrimSpace(config.Store.TokenFile)
	if tokenFile == "" {
		tokenFile = strings.TrimSpace(viper.GetString("store.token-file"))
	}

	if tokenFile == "" {
		return "", errors.New("store token file is not configured")
	}

	return secrets.Load(secrets.Source{
		Name: "store token",
		File: tokenFile,
	})
}

func (s *session) manualApply(offerings *portal.Offerings) error {
	excludeFile := strings.TrimSpace(s.config.Filter.ExcludeFile)

	for {
		items := make([]string, 0, offerings.Len()+2)

		for _, o := range offerings.Items {
			label := fmt.Sprintf("%s %s / %s / %s",
				o.ID, o.Title, o.Provider.Name, o.Eligibility(),
			)

			items = append(items, label)
		}

		if excludeFile != "" && offerings.Len() != 0 {
			items = append(items, PromptAppendToExcludeFile)
		}

		offeringPrompt := promptui.Select{
			Label: "Choose an offering and press ENTER",
			Items: append(items, PromptBack),
		}

		_, selected, err := offeringPrompt.Run()
		if err != nil {
			return err
		}

		switch selected {
		case PromptBack:
			return nil
		case PromptAppendToExcludeFile:
			excluded, err := portal.GetExcludedOfferingsFromFile(excludeFile)
			if err != nil {
				return err
			}

			excluded.Append(offerings.ToExcluded(portal.ExcludeActorUser, "excluded in manual mode"))

			if err = excluded.ToFile(excludeFile); err != nil {
				return err
			}

			s.logger.Info("appended to exclude file", zap.String("filename", excludeFile))

			offerings.Exclude(portal.OfferingIDField, excluded.OfferingIDs())
		default:
			offeringID := strings.Split(selected, " ")[0]

			offering := offerings.FindByID(offeringID)
			if offering == nil {
				return fmt.Errorf("there is no such offering id %s", offeringID)
			}

			applied, err := s.apply(&portal.Offerings{Items: []*portal.Offering{offering}})
			if err != nil {
				return err
			}

			offerings.Exclude(portal.OfferingIDField, applied)
		}
	}
}

// apply submits applications and returns the IDs that no longer need action.
// Offerings refused by the eligibility gate or already applied are skipped.
func (s *session) apply(offerings *portal.Offerings) ([]string, error) {
	message := s.config.Apply.Message
	if message == "" {
		message = defaultFallbackMessage
		s.logger.Warn("falling back to default built-in message",
			zap.String("hint", "specify message in apply section"),
		)
	}

	done := make([]string, 0, offerings.Len())
	for _, offering := range offerings.Items {
		fields := applog.OfferingFields(offering.ID, string(offering.Kind))

		application, err := s.store.Apply(s.config.Candidate.ID, offering, message)
		switch {
		case errors.Is(err, portal.ErrNotEligible):
			s.logger.Warn("skipping offering: requirements are not met",
				append(fields, zap.Strings("missing", offering.Verdict.Missing))...,
			)
			continue
		case errors.Is(err, portal.ErrAlreadyApplied):
			s.logger.Info("skipping offering: already applied", fields...)
			done = append(done, offering.ID)
			continue
		case err != nil:
			return done, err
		}

		done = append(done, offering.ID)
		s.logger.Info("successfully applied to offering",
			append(fields,
				zap.String("application_id", application.ID),
				zap.String("offering_title", offering.Title),
			)...,
		)
	}

	s.logger.Info("successfully applied to offerings", zap.Int("count", len(done)))
	return done, nil
}

// newAIReviewer returns the reviewer and the model it resolved to.
func newAIReviewer(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Reviewer, string, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, "", fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, logger, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries)
	if err != nil {
		return nil, "", err
	}

	reviewerLogger := applog.WithFields(logger, applog.AIFields("gemini", generator.Model())...)

	return gemini.NewReviewer(generator, reviewerLogger, cfg.Gemini.MaxLogLength), generator.Model(), nil
}

func prepareFilters(ctx context.Context, cmd *cobra.Command, store *portal.Client, config *Config, doc map[string]any, snapshot *eligibility.Snapshot, logger *zap.Logger) []filtering.Filter {
	aiFilter, err := prepareAIFilter(ctx, config.AI, doc, logger)
	if err != nil {
		logger.Warn("skipping AI review", zap.Error(err))
		aiFilter = filtering.NewAIReview(nil, nil)
		aiFilter.Disable(err.Error())
	}

	closed := filtering.NewClosed(logger)
	if config.Filter.KeepClosed {
		closed.Disable("keep-closed is set")
	}

	query := filtering.Query{
		Strict: config.Filter.Strict,
		Search: config.Filter.Search,
		Sort:   config.Filter.Sort,
		Limit:  config.Filter.Limit,
	}

	steps := []filtering.Filter{
		filtering.NewExcludeFile(config.Filter.ExcludeFile, logger),
		filtering.NewExcludedProviders(config.Filter.ExcludeProviders, logger),
		closed,
		prepareAppliedHistoryFilter(cmd, store, config, logger),
	}
	steps = append(steps, filtering.Pipeline(query, snapshot, config.Filter.Workers, logger)...)

	return append(steps, aiFilter)
}

func prepareAppliedHistoryFilter(cmd *cobra.Command, store *portal.Client, config *Config, logger *zap.Logger) filtering.Filter {
	ignore := config.Filter.DoNotExcludeApplied
	if cmd != nil {
		flag := cmd.Flag("do-not-exclude-applied")
		if flag != nil && strings.EqualFold(flag.Value.String(), "true") {
			ignore = true
		}
	}

	cfg := &filtering.AppliedHistoryConfig{Ignore: ignore}
	deps := &filtering.AppliedHistoryDeps{
		Store:       store,
		CandidateID: config.Candidate.ID,
		Logger:      logger,
	}

	return filtering.NewAppliedHistory(cfg, deps)
}

func prepareAIFilter(ctx context.Context, config *AIConfig, doc map[string]any, logger *zap.Logger) (filtering.Filter, error) {
	if config == nil || !config.Enabled {
		return filtering.NewAIReview(&filtering.AIReviewFilterConfig{Enabled: false}, nil), nil
	}

	if config.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when ai review is enabled")
	}

	if doc == nil {
		return nil, fmt.Errorf("candidate profile is required for ai review")
	}

	aiConfig := &filtering.AIReviewFilterConfig{
		Enabled:  config.Enabled,
		Provider: config.Provider,
		Gemini: &filtering.AIGeminiConfig{
			Model:        config.Gemini.Model,
			MaxRetries:   config.Gemini.MaxRetries,
			MaxLogLength: config.Gemini.MaxLogLength,
		},
	}

	reviewer, model, err := newAIReviewer(ctx, config, logger)
	if err != nil {
		return nil, fmt.Errorf("building ai reviewer: %w", err)
	}
	aiConfig.Gemini.Model = model

	return filtering.NewAIReview(aiConfig, &filtering.AIReviewFilterDeps{
		Logger:   logger,
		Reviewer: reviewer,
		Profile:  doc,
	}), nil
}
