package filtering

import (
	"context"
	"strings"

	"github.com/spigell/edumatch/internal/portal"
)

type searchFilter struct {
	toggle
	text string
}

// NewSearch creates a filter that keeps offerings whose title, provider or
// description contains text, ignoring case. Blank text keeps everything.
func NewSearch(text string) Filter {
	return &searchFilter{text: strings.ToLower(strings.TrimSpace(text))}
}

func (f *searchFilter) Name() string { return "search" }

func (f *searchFilter) Validate() error { return nil }

func (f *searchFilter) Apply(_ context.Context, v *portal.Offerings) (*portal.Offerings, Step, error) {
	initial := v.Len()
	if f.text == "" {
		return v, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	excluded := v.Keep(func(o *portal.Offering) bool {
		for _, field := range []string{o.Title, o.Provider.Name, o.Description} {
			if strings.Contains(strings.ToLower(field), f.text) {
				return true
			}
		}
		return false
	})

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}

func (f *searchFilter) Status() Status {
	details := map[string]string{}
	if f.text != "" {
		details["text"] = f.text
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
