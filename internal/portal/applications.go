package portal

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

// ApplicationStatus is the lifecycle state of an application.
type ApplicationStatus string

const (
	StatusPending   ApplicationStatus = "pending"
	StatusAccepted  ApplicationStatus = "accepted"
	StatusRejected  ApplicationStatus = "rejected"
	StatusWithdrawn ApplicationStatus = "withdrawn"
)

type Applications []*Application

type Application struct {
	ID           string            `json:"id"`
	CandidateID  string            `json:"candidateId" mapstructure:"candidateId"`
	OfferingID   string            `json:"offeringId" mapstructure:"offeringId"`
	OfferingKind Kind              `json:"offeringKind" mapstructure:"offeringKind"`
	Status       ApplicationStatus `json:"status"`
	Message      string            `json:"message,omitempty"`
	CreatedAt    string            `json:"createdAt" mapstructure:"createdAt"`
}

// GetApplications lists the candidate's applications.
func (c *Client) GetApplications(candidateID string) (*Applications, error) {
	if strings.TrimSpace(candidateID) == "" {
		return nil, fmt.Errorf("candidate id is required")
	}

	q := url.Values{}
	q.Add("candidateId", candidateID)
	// Set per_page max as possible. It should be faster.
	q.Add("per_page", perPage)

	items, err := c.GetItems(c.collectionURL(collectionApplications), q)
	if err != nil {
		return nil, err
	}

	var applications Applications
	if err = mapstructure.Decode(items, &applications); err != nil {
		return nil, err
	}

	return &applications, nil
}

// OfferingIDs returns offerings with an application that was not withdrawn.
func (a *Applications) OfferingIDs() []string {
	ids := make([]string, 0, len(*a))

	for _, application := range *a {
		if application == nil || application.Status == StatusWithdrawn {
			continue
		}
		ids = append(ids, application.OfferingID)
	}

	return ids
}

// Apply submits a pending application. Offerings whose verdict failed are
// refused; offerings that were never checked are allowed through.
func (c *Client) Apply(candidateID string, offering *Offering, message string) (*Application, error) {
	if offering == nil {
		return nil, fmt.Errorf("offering is required")
	}

	if offering.Verdict != nil && !offering.Verdict.Qualified {
		return nil, fmt.Errorf("%s: %w", offering.ID, ErrNotEligible)
	}

	application := &Application{
		ID:           uuid.NewString(),
		CandidateID:  candidateID,
		OfferingID:   offering.ID,
		OfferingKind: offering.Kind,
		Status:       StatusPending,
		Message:      message,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}

	err := c.postJSON(c.collectionURL(collectionApplications), application)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Code == http.StatusConflict {
		return nil, fmt.Errorf("%s: %w", offering.ID, ErrAlreadyApplied)
	}
	if err != nil {
		return nil, fmt.Errorf("post application: %w", err)
	}

	c.logger.Debug("application submitted",
		zap.String("application_id", application.ID),
		zap.String("offering_id", offering.ID),
	)

	return application, nil
}
