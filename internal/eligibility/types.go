// Package eligibility decides whether a candidate qualifies for a course or job
// offering and explains which requirements were met or missed.
//
// Everything in this package is pure: no I/O, no logging, no shared state.
// Evaluate may be called concurrently and always returns the same verdict for
// the same inputs.
package eligibility

import "strings"

// Requirements is the declarative requirement set attached to an offering.
// Every field is optional; an absent field adds no check.
type Requirements struct {
	MinGrade               string   `json:"minGrade,omitempty" mapstructure:"minGrade"`
	MinPoints              *int     `json:"minPoints,omitempty" mapstructure:"minPoints"`
	MinGPA                 *float64 `json:"minGPA,omitempty" mapstructure:"minGPA"`
	RequiredSubjects       []string `json:"requiredSubjects,omitempty" mapstructure:"requiredSubjects"`
	MinEducation           string   `json:"minEducation,omitempty" mapstructure:"minEducation"`
	MinExperience          string   `json:"minExperience,omitempty" mapstructure:"minExperience"`
	RequiredSkills         []string `json:"requiredSkills,omitempty" mapstructure:"requiredSkills"`
	RequiredQualifications []string `json:"requiredQualifications,omitempty" mapstructure:"requiredQualifications"`
}

// Snapshot holds the comparable attributes of one candidate.
// The zero value is valid: no grade, zero points and GPA, lowest tiers, empty sets.
type Snapshot struct {
	OverallGrade    string            `json:"overallGrade,omitempty"`
	Points          int               `json:"points,omitempty"`
	GPA             float64           `json:"gpa,omitempty"`
	Subjects        map[string]string `json:"subjects,omitempty"`
	EducationLevel  string            `json:"educationLevel,omitempty"`
	ExperienceLevel string            `json:"experienceLevel,omitempty"`
	Skills          []string          `json:"skills,omitempty"`
	Qualifications  []string          `json:"qualifications,omitempty"`
}

// Kind names a requirement field.
type Kind string

const (
	KindGrade          Kind = "grade"
	KindPoints         Kind = "points"
	KindGPA            Kind = "gpa"
	KindSubjects       Kind = "subjects"
	KindEducation      Kind = "education"
	KindExperience     Kind = "experience"
	KindSkills         Kind = "skills"
	KindQualifications Kind = "qualifications"
)

// Result is the outcome of a single evaluator.
type Result struct {
	Requirement Kind   `json:"requirement"`
	Met         bool   `json:"met"`
	Detail      string `json:"detail"`
	// Unmatched lists the required items nobody matched, in declaration order.
	// Only coverage checks fill it.
	Unmatched []string `json:"unmatched,omitempty"`
}

// Verdict is the qualify/not-qualify decision for one candidate and offering.
type Verdict struct {
	Qualified bool     `json:"qualified"`
	Satisfied []string `json:"satisfied"`
	Missing   []string `json:"missing"`
	Checks    []Result `json:"checks,omitempty"`
}

// IsEmpty reports whether no requirement field is populated.
func (r *Requirements) IsEmpty() bool {
	if r == nil {
		return true
	}

	return !hasText(r.MinGrade) &&
		r.MinPoints == nil &&
		r.MinGPA == nil &&
		len(cleanList(r.RequiredSubjects)) == 0 &&
		!hasText(r.MinEducation) &&
		!hasText(r.MinExperience) &&
		len(cleanList(r.RequiredSkills)) == 0 &&
		len(cleanList(r.RequiredQualifications)) == 0
}

func hasText(s string) bool {
	return strings.TrimSpace(s) != ""
}

// cleanList trims entries and drops blank ones, keeping declaration order.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
