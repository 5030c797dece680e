package filtering

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spigell/edumatch/internal/portal"
)

type limitFilter struct {
	toggle
	limit int
}

// NewLimit keeps the first limit offerings. Zero means no limit.
func NewLimit(limit int) Filter {
	return &limitFilter{limit: limit}
}

func (f *limitFilter) Name() string { return "limit" }

func (f *limitFilter) Validate() error {
	if f.limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", f.limit)
	}
	return nil
}

func (f *limitFilter) Apply(_ context.Context, v *portal.Offerings) (*portal.Offerings, Step, error) {
	initial := v.Len()
	if f.limit == 0 || initial <= f.limit {
		return v, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	for i := f.limit; i < initial; i++ {
		v.Items[i] = nil
	}
	v.Items = v.Items[:f.limit]

	return v, Step{Initial: initial, Dropped: initial - f.limit, Left: f.limit}, nil
}

func (f *limitFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"limit": strconv.Itoa(f.limit)},
	}
}
