// Package portal talks to the hosted document store that holds offerings,
// candidate profiles and applications.
package portal

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultUserAgent = "spigell/edumatch"
	defaultTimeout   = 10 * time.Second
	// Max value for listing per page.
	perPage = "100"

	collectionCourses      = "courses"
	collectionJobs         = "jobs"
	collectionStudents     = "students"
	collectionApplications = "applications"
)

var (
	// ErrProfileNotFound is returned when the candidate document does not exist.
	ErrProfileNotFound = errors.New("candidate profile not found")
	// ErrNotEligible is returned when applying to an offering whose verdict failed.
	ErrNotEligible = errors.New("candidate does not meet the offering requirements")
	// ErrAlreadyApplied is returned when the store rejects a duplicate application.
	ErrAlreadyApplied = errors.New("already applied to this offering")
)

type Client struct {
	// ctx used only for http requests right now
	ctx        context.Context
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(ctx context.Context, logger *zap.Logger, apiURL, token string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		ctx:    ctx,
		token:  token,
		APIURL: strings.TrimRight(apiURL, "/"),
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger:    logger,
		UserAgent: defaultUserAgent,
	}
}

// SetTimeout overrides the HTTP timeout. Non-positive values are ignored.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.HTTPClient.Timeout = d
	}
}

func (c *Client) collectionURL(collection string) string {
	return c.APIURL + "/collections/" + collection + "/documents"
}

func (c *Client) documentURL(collection, id string) string {
	return c.collectionURL(collection) + "/" + id
}
