package eligibility

import "strings"

// Grade ranks. F is the floor and also the rank of any unknown or absent grade.
var gradeRanks = map[string]int{
	"f": 0,
	"e": 1,
	"d": 2,
	"c": 3,
	"b": 4,
	"a": 5,
}

// Education tiers. Diploma shares the associate tier.
var educationRanks = map[string]int{
	"high-school": 1,
	"associate":   2,
	"diploma":     2,
	"bachelor":    3,
	"master":      4,
	"phd":         5,
}

var educationAliases = map[string]string{
	"highschool":    "high-school",
	"secondary":     "high-school",
	"bachelors":     "bachelor",
	"undergraduate": "bachelor",
	"masters":       "master",
	"doctorate":     "phd",
	"ph.d":          "phd",
	"ph.d.":         "phd",
}

var experienceRanks = map[string]int{
	"entry":     1,
	"mid":       2,
	"senior":    3,
	"executive": 4,
}

var experienceAliases = map[string]string{
	"junior":       "entry",
	"intern":       "entry",
	"middle":       "mid",
	"intermediate": "mid",
	"lead":         "senior",
}

const (
	lowestGradeRank = 0
	lowestTierRank  = 1
)

// normalizeKey trims and lower-cases a label, folding spaces and underscores into dashes.
func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "-", "_", "-").Replace(s)
	return s
}

// canonicalGrade strips a trailing +/- modifier so "B+" compares as "B".
func canonicalGrade(s string) string {
	key := normalizeKey(s)
	if len(key) > 1 {
		key = strings.TrimRight(key, "+-")
	}
	return key
}

// GradeRank returns the rank of a letter grade, 0 for unknown or absent grades.
func GradeRank(grade string) int {
	if rank, ok := gradeRanks[canonicalGrade(grade)]; ok {
		return rank
	}
	return lowestGradeRank
}

// EducationRank returns the tier of an education level, 1 for unknown or absent levels.
func EducationRank(level string) int {
	if rank, ok := educationRanks[canonicalEducation(level)]; ok {
		return rank
	}
	return lowestTierRank
}

// ExperienceRank returns the tier of an experience level, 1 for unknown or absent levels.
func ExperienceRank(level string) int {
	if rank, ok := experienceRanks[canonicalExperience(level)]; ok {
		return rank
	}
	return lowestTierRank
}

func canonicalEducation(level string) string {
	key := normalizeKey(level)
	if alias, ok := educationAliases[key]; ok {
		return alias
	}
	return key
}

func canonicalExperience(level string) string {
	key := normalizeKey(level)
	if alias, ok := experienceAliases[key]; ok {
		return alias
	}
	return key
}

// displayLabel renders a candidate value for detail strings.
func displayLabel(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "none"
	}
	return s
}
