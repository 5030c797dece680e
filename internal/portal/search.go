package portal

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
)

const defaultStatus = "open"

type SearchParams struct {
	Text string `yaml:"text" storeparam:"q"`
	// storeparam is custom tag for reflect. Please see below.
	Provider  string   `yaml:"provider" storeparam:"providerId"`
	Locations []string `yaml:"locations" storeparam:"location"`
	Status    string   `yaml:"status"`
	PerPage   string   `yaml:"per_page" mapstructure:"per_page"`
	Page      int      `yaml:"page"`
}

// ListOfferings returns every offering of the kind matching params across all pages.
func (c *Client) ListOfferings(kind Kind, params *SearchParams) (*Offerings, error) {
	if params == nil {
		params = &SearchParams{}
	}

	// Set per_page max as possible. It should be faster.
	if params.PerPage == "" {
		params.PerPage = perPage
	}

	if params.Status == "" {
		params.Status = defaultStatus
	}

	items, err := c.GetItems(c.collectionURL(kind.collection()), buildParams(params))
	if err != nil {
		return nil, fmt.Errorf("list %s offerings: %w", kind, err)
	}

	return DecodeOfferings(items, kind)
}

func buildParams(params *SearchParams) url.Values {
	q := url.Values{}
	value := reflect.ValueOf(params).Elem()

	for _, field := range reflect.VisibleFields(value.Type()) {
		// Our custom tag is using here.
		key := field.Tag.Get("storeparam")
		if key == "" {
			// Failover to default tag if our tag do not exist.
			key = field.Tag.Get("yaml")
		}

		switch v := value.FieldByIndex(field.Index).Interface().(type) {
		case []string:
			for _, s := range v {
				if s != "" {
					q.Add(key, s)
				}
			}
		case int:
			if v != 0 {
				q.Set(key, strconv.Itoa(v))
			}
		case string:
			if v != "" {
				q.Set(key, v)
			}
		}
	}

	return q
}
