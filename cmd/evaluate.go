package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/spigell/edumatch/internal/eligibility"
	"github.com/spigell/edumatch/internal/portal"
	"github.com/spigell/edumatch/internal/profile"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate one requirement set against a candidate without touching the store",
	Long: `Evaluate reads a stored requirement object and either a ready snapshot
or a raw candidate profile, and prints the verdict as JSON.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()
		reqPath, _ := flags.GetString("requirements")
		snapPath, _ := flags.GetString("snapshot")
		profilePath, _ := flags.GetString("profile")
		role, _ := flags.GetString("role")

		return evaluateFiles(cmd.OutOrStdout(), reqPath, snapPath, profilePath, role)
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringP("requirements", "r", "", "json file with the offering requirements")
	evaluateCmd.Flags().String("snapshot", "", "json file with a candidate snapshot")
	evaluateCmd.Flags().StringP("profile", "p", "", "json file with a raw candidate profile")
	evaluateCmd.Flags().String("role", string(portal.KindCourse), "profile projection to use: course or job")

	evaluateCmd.MarkFlagRequired("requirements")
	evaluateCmd.MarkFlagsMutuallyExclusive("snapshot", "profile")
}

func evaluateFiles(w io.Writer, reqPath, snapPath, profilePath, role string) error {
	var rawRequirements map[string]any
	if err := readJSON(reqPath, &rawRequirements); err != nil {
		return fmt.Errorf("reading requirements: %w", err)
	}

	snapshot, err := loadSnapshot(snapPath, profilePath, role)
	if err != nil {
		return err
	}

	verdict := eligibility.Evaluate(portal.DecodeRequirements(rawRequirements), &snapshot)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(verdict)
}

func loadSnapshot(snapPath, profilePath, role string) (eligibility.Snapshot, error) {
	var snapshot eligibility.Snapshot

	switch {
	case snapPath != "":
		if err := readJSON(snapPath, &snapshot); err != nil {
			return snapshot, fmt.Errorf("reading snapshot: %w", err)
		}
		return snapshot, nil

	case profilePath != "":
		kind, err := portal.ParseKind(role)
		if err != nil {
			return snapshot, err
		}

		var doc map[string]any
		if err := readJSON(profilePath, &doc); err != nil {
			return snapshot, fmt.Errorf("reading profile: %w", err)
		}
		return profile.ForRole(kind, doc)

	default:
		return snapshot, errors.New("either --snapshot or --profile is required")
	}
}

func readJSON(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, target)
}
