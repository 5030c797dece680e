package ai

import (
	"context"

	"github.com/spigell/edumatch/internal/portal"
)

// Review is an advisory note about how a candidate stands against an offering.
// It never decides eligibility.
type Review struct {
	Summary string
	Advice  string
	Raw     string
}

type Reviewer interface {
	Review(ctx context.Context, profile map[string]any, offering *portal.Offering) (*Review, error)
}
