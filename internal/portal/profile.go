package portal

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spigell/edumatch/internal/utils"
)

// ProfileDocument is the raw candidate document as stored.
type ProfileDocument struct {
	ID   string
	Name string
	Raw  map[string]any
}

// GetProfile fetches the candidate document. A missing document yields ErrProfileNotFound.
func (c *Client) GetProfile(candidateID string) (*ProfileDocument, error) {
	if strings.TrimSpace(candidateID) == "" {
		return nil, fmt.Errorf("candidate id is required")
	}

	var raw map[string]any
	err := c.getJSON(c.documentURL(collectionStudents, candidateID), nil, &raw)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", candidateID, ErrProfileNotFound)
	}
	if err != nil {
		return nil, err
	}

	if raw == nil {
		raw = make(map[string]any)
	}

	id := utils.CoerceString(raw["id"])
	if id == "" {
		id = candidateID
	}

	name, _ := utils.First(raw, "name", "fullName", "displayName")

	return &ProfileDocument{
		ID:   id,
		Name: utils.CoerceString(name),
		Raw:  raw,
	}, nil
}
