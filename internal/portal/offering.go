package portal

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/edumatch/internal/eligibility"
	"github.com/spigell/edumatch/internal/utils"
)

const (
	OfferingIDField         = "ID"
	OfferingProviderIDField = "ProviderID"
)

// Kind says whether an offering is an academic course or a job posting.
type Kind string

const (
	KindCourse Kind = "course"
	KindJob    Kind = "job"
)

// ParseKind accepts "course"/"courses" and "job"/"jobs".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "course", "courses":
		return KindCourse, nil
	case "job", "jobs":
		return KindJob, nil
	default:
		return "", fmt.Errorf("unknown offering kind %q", s)
	}
}

func (k Kind) collection() string {
	if k == KindJob {
		return collectionJobs
	}
	return collectionCourses
}

// Eligibility states rendered as badges.
const (
	EligibilityUnknown      = "unknown"
	EligibilityQualified    = "qualified"
	EligibilityNotQualified = "not_qualified"
)

// Stored documents name the provider differently for courses and jobs.
var providerNamePaths = []string{"institution.name", "company.name", "institutionName", "companyName"}

type Offerings struct {
	Items []*Offering
}

// Offering is a course or job posting. Requirements is nil when the document
// carries none. Verdict stays nil until a candidate snapshot is evaluated
// against it, which keeps "not checked" apart from "checked and failed".
type Offering struct {
	ID    string `json:"id,omitempty"`
	Kind  Kind   `json:"kind,omitempty"`
	Title string `json:"title,omitempty"`
	// Provider is the institution for courses and the company for jobs.
	Provider    Provider `json:"provider,omitempty"`
	Description string   `json:"description,omitempty"`
	Location    string   `json:"location,omitempty"`
	Status      string   `json:"status,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty" mapstructure:"createdAt"`
	Deadline    string   `json:"deadline,omitempty"`
	URL         string   `json:"url,omitempty"`

	Requirements *eligibility.Requirements `json:"requirements,omitempty" mapstructure:"-"`
	Verdict      *eligibility.Verdict      `json:"verdict,omitempty" mapstructure:"-"`
	AI           *AIReview                 `json:"ai,omitempty" mapstructure:"-"`
}

type Provider struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// AIReview is the advisory note attached by the AI review step.
type AIReview struct {
	Summary string `json:"summary,omitempty"`
	Advice  string `json:"advice,omitempty"`
	Raw     string `json:"raw,omitempty"`
	Error   string `json:"error,omitempty"`
}

// DecodeOfferings converts raw store items into offerings of the given kind.
// Items without an explicit kind inherit it.
func DecodeOfferings(items []Item, kind Kind) (*Offerings, error) {
	offerings := &Offerings{Items: make([]*Offering, 0, len(items))}

	for idx, item := range items {
		offering := &Offering{}
		cfg := &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           offering,
		}
		decoder, err := mapstructure.NewDecoder(cfg)
		if err != nil {
			return nil, err
		}
		if err := decoder.Decode(item); err != nil {
			return nil, fmt.Errorf("decode offering #%d: %w", idx, err)
		}

		if raw, ok := item.(map[string]any); ok {
			offering.Requirements = DecodeRequirements(raw["requirements"])
			if offering.Provider.Name == "" {
				if name, found := utils.First(raw, providerNamePaths...); found {
					offering.Provider.Name = utils.CoerceString(name)
				}
			}
		}

		if offering.Kind == "" {
			offering.Kind = kind
		}

		offerings.Items = append(offerings.Items, offering)
	}

	return offerings, nil
}

// Eligibility returns the badge state of the offering.
func (o *Offering) Eligibility() string {
	switch {
	case o.Verdict == nil:
		return EligibilityUnknown
	case o.Verdict.Qualified:
		return EligibilityQualified
	default:
		return EligibilityNotQualified
	}
}

func (o *Offering) GetStringField(name string) string {
	switch name {
	case OfferingIDField:
		return o.ID
	case OfferingProviderIDField:
		return o.Provider.ID
	default:
		return ""
	}
}

func (v *Offerings) Len() int {
	return len(v.Items)
}

func (v *Offerings) FindByID(id string) *Offering {
	for _, offering := range v.Items {
		if offering.ID == id {
			return offering
		}
	}
	return nil
}

func (v *Offerings) IDs() []string {
	ids := make([]string, 0, len(v.Items))
	for _, offering := range v.Items {
		ids = append(ids, offering.ID)
	}
	return ids
}

// Keep retains offerings accepted by keep, preserving order, and returns the IDs of removed ones.
func (v *Offerings) Keep(keep func(*Offering) bool) []string {
	var removed []string
	kept := v.Items[:0]
	for _, offering := range v.Items {
		if keep(offering) {
			kept = append(kept, offering)
			continue
		}
		removed = append(removed, offering.ID)
	}

	// Clear the tail so dropped offerings can be collected.
	for i := len(kept); i < len(v.Items); i++ {
		v.Items[i] = nil
	}
	v.Items = kept

	return removed
}

// Exclude removes offerings whose field matches one of targets.
func (v *Offerings) Exclude(name string, targets []string) []string {
	if len(targets) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		set[target] = struct{}{}
	}

	return v.Keep(func(o *Offering) bool {
		_, found := set[o.GetStringField(name)]
		return !found
	})
}

// Qualified returns the offerings whose verdict passed.
func (v *Offerings) Qualified() *Offerings {
	out := &Offerings{}
	for _, offering := range v.Items {
		if offering.Verdict != nil && offering.Verdict.Qualified {
			out.Items = append(out.Items, offering)
		}
	}
	return out
}

// Clone copies the list and every offering in it, so steps can drop items and
// attach verdicts without touching the caller's list. Requirements are shared.
func (v *Offerings) Clone() *Offerings {
	if v == nil {
		return &Offerings{}
	}

	items := make([]*Offering, 0, len(v.Items))
	for _, offering := range v.Items {
		if offering == nil {
			continue
		}
		o := *offering
		items = append(items, &o)
	}
	return &Offerings{Items: items}
}

func (v *Offerings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "offerings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportByProvider groups offerings by institution or company.
func (v *Offerings) ReportByProvider() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, offering := range v.Items {
		key := fmt.Sprintf("%s (%s)", offering.Provider.Name, offering.Provider.ID)
		entry := map[string]string{
			"title":       offering.Title,
			"kind":        string(offering.Kind),
			"location":    offering.Location,
			"deadline":    offering.Deadline,
			"eligibility": offering.Eligibility(),
		}

		if offering.Verdict != nil && len(offering.Verdict.Missing) > 0 {
			entry["missing"] = strings.Join(offering.Verdict.Missing, "; ")
		}

		if offering.AI != nil {
			if offering.AI.Error != "" {
				entry["ai_error"] = offering.AI.Error
			} else {
				entry["ai_summary"] = offering.AI.Summary
				entry["ai_advice"] = offering.AI.Advice
			}
		}

		report[key] = append(report[key], entry)
	}
	return report
}
