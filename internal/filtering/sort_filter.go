package filtering

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spigell/edumatch/internal/portal"
)

const (
	SortByTitle       = "title"
	SortByProvider    = "provider"
	SortByNewest      = "newest"
	SortByEligibility = "eligibility"
)

// eligibilityOrder puts qualified offerings first and failed ones last.
var eligibilityOrder = map[string]int{
	portal.EligibilityQualified:    0,
	portal.EligibilityUnknown:      1,
	portal.EligibilityNotQualified: 2,
}

type sortFilter struct {
	toggle
	key string
}

// NewSort creates a step that reorders offerings by key. The sort is stable and
// an empty key keeps the incoming order.
func NewSort(key string) Filter {
	return &sortFilter{key: strings.ToLower(strings.TrimSpace(key))}
}

func (f *sortFilter) Name() string { return "sort" }

func (f *sortFilter) Validate() error {
	switch f.key {
	case "", SortByTitle, SortByProvider, SortByNewest, SortByEligibility:
		return nil
	default:
		return fmt.Errorf("unknown sort key %q", f.key)
	}
}

func (f *sortFilter) Apply(_ context.Context, v *portal.Offerings) (*portal.Offerings, Step, error) {
	initial := v.Len()
	items := v.Items

	switch f.key {
	case SortByTitle:
		sort.SliceStable(items, func(i, j int) bool {
			return strings.ToLower(items[i].Title) < strings.ToLower(items[j].Title)
		})
	case SortByProvider:
		sort.SliceStable(items, func(i, j int) bool {
			return strings.ToLower(items[i].Provider.Name) < strings.ToLower(items[j].Provider.Name)
		})
	case SortByNewest:
		// Store timestamps are ISO 8601, so the lexical order is the time order.
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt > items[j].CreatedAt
		})
	case SortByEligibility:
		sort.SliceStable(items, func(i, j int) bool {
			return eligibilityOrder[items[i].Eligibility()] < eligibilityOrder[items[j].Eligibility()]
		})
	}

	return v, Step{Initial: initial, Dropped: 0, Left: initial}, nil
}

func (f *sortFilter) Status() Status {
	details := map[string]string{}
	if f.key != "" {
		details["key"] = f.key
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
