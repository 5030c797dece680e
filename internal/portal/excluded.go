package portal

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"
)

const (
	ExcludeActorUser = "user"
	ExcludeActorAI   = "ai"
)

// ExcludedOfferings is the local list of offerings the candidate dismissed.
type ExcludedOfferings struct {
	Items []*ExcludedOffering
}

type ExcludedOffering struct {
	ID           string
	Kind         Kind
	Title        string
	ProviderName string
	Actor        string
	Reason       string `json:",omitempty"`
	ExcludedAt   time.Time
}

func (v *Offerings) ToExcluded(actor, reason string) *ExcludedOfferings {
	excluded := &ExcludedOfferings{}
	for _, offering := range v.Items {
		excluded.Items = append(excluded.Items, &ExcludedOffering{
			ID:           offering.ID,
			Kind:         offering.Kind,
			Title:        offering.Title,
			ProviderName: offering.Provider.Name,
			Actor:        actor,
			Reason:       reason,
			ExcludedAt:   time.Now().UTC(),
		})
	}
	return excluded
}

// GetExcludedOfferingsFromFile reads the exclude file. A missing or empty file is an empty list.
func GetExcludedOfferingsFromFile(path string) (*ExcludedOfferings, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ExcludedOfferings{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedOfferings{}, nil
	}

	var excluded ExcludedOfferings
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

// Append adds entries whose IDs are not yet listed.
func (v *ExcludedOfferings) Append(s *ExcludedOfferings) {
	seen := make(map[string]struct{}, len(v.Items))
	for _, item := range v.Items {
		seen[item.ID] = struct{}{}
	}

	for _, item := range s.Items {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		v.Items = append(v.Items, item)
	}
}

func (v *ExcludedOfferings) OfferingIDs() []string {
	ids := make([]string, 0, len(v.Items))
	for _, offering := range v.Items {
		ids = append(ids, offering.ID)
	}
	return ids
}

func (v *ExcludedOfferings) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
