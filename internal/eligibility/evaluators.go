package eligibility

import (
	"fmt"
	"strconv"
	"strings"
)

// Evaluators accept a nil snapshot and read it as a candidate with no data.

// GradeFloor checks the candidate's overall grade against a minimum grade.
func GradeFloor(minGrade string, s *Snapshot) Result {
	s = orEmpty(s)
	required := strings.TrimSpace(minGrade)
	actual := displayLabel(s.OverallGrade)
	met := GradeRank(s.OverallGrade) >= GradeRank(required)

	return floorResult(KindGrade, met,
		fmt.Sprintf("Minimum grade %s", required),
		fmt.Sprintf("your grade: %s", actual),
	)
}

// PointsFloor checks the candidate's points against a minimum.
func PointsFloor(minPoints int, s *Snapshot) Result {
	s = orEmpty(s)
	return floorResult(KindPoints, s.Points >= minPoints,
		fmt.Sprintf("Minimum %d points", minPoints),
		fmt.Sprintf("your points: %d", s.Points),
	)
}

// GPAFloor checks the candidate's GPA against a minimum.
func GPAFloor(minGPA float64, s *Snapshot) Result {
	s = orEmpty(s)
	return floorResult(KindGPA, s.GPA >= minGPA,
		fmt.Sprintf("Minimum GPA %s", formatGPA(minGPA)),
		fmt.Sprintf("your GPA: %s", formatGPA(s.GPA)),
	)
}

// EducationFloor checks the candidate's education level against a minimum tier.
func EducationFloor(minEducation string, s *Snapshot) Result {
	s = orEmpty(s)
	required := strings.TrimSpace(minEducation)
	met := EducationRank(s.EducationLevel) >= EducationRank(required)

	return floorResult(KindEducation, met,
		fmt.Sprintf("Minimum education %s", required),
		fmt.Sprintf("your education: %s", displayLabel(s.EducationLevel)),
	)
}

// ExperienceFloor checks the candidate's experience level against a minimum tier.
func ExperienceFloor(minExperience string, s *Snapshot) Result {
	s = orEmpty(s)
	required := strings.TrimSpace(minExperience)
	met := ExperienceRank(s.ExperienceLevel) >= ExperienceRank(required)

	return floorResult(KindExperience, met,
		fmt.Sprintf("Minimum experience %s", required),
		fmt.Sprintf("your experience: %s", displayLabel(s.ExperienceLevel)),
	)
}

// SubjectCoverage requires every subject to be a key of the candidate's subject record.
// Keys compare case-insensitively; grades are not inspected.
func SubjectCoverage(required []string, s *Snapshot) Result {
	s = orEmpty(s)
	have := make(map[string]struct{}, len(s.Subjects))
	for name := range s.Subjects {
		have[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}

	return coverageResult(KindSubjects, "present", cleanList(required), func(subject string) bool {
		_, ok := have[strings.ToLower(subject)]
		return ok
	})
}

// SkillCoverage requires every skill to fuzzily match at least one candidate skill.
func SkillCoverage(required []string, s *Snapshot) Result {
	s = orEmpty(s)
	return coverageResult(KindSkills, "matched", cleanList(required), fuzzyMatcher(s.Skills))
}

// QualificationCoverage requires every qualification to fuzzily match at least one candidate qualification.
func QualificationCoverage(required []string, s *Snapshot) Result {
	s = orEmpty(s)
	return coverageResult(KindQualifications, "matched", cleanList(required), fuzzyMatcher(s.Qualifications))
}

// FuzzyMatch reports whether either string contains the other, ignoring case.
// Blank strings never match.
func FuzzyMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func fuzzyMatcher(candidate []string) func(string) bool {
	have := cleanList(candidate)
	return func(required string) bool {
		for _, item := range have {
			if FuzzyMatch(required, item) {
				return true
			}
		}
		return false
	}
}

func floorResult(kind Kind, met bool, subject, contrast string) Result {
	verb := "required"
	if met {
		verb = "met"
	}

	return Result{
		Requirement: kind,
		Met:         met,
		Detail:      fmt.Sprintf("%s %s (%s)", subject, verb, contrast),
	}
}

func coverageResult(kind Kind, verb string, required []string, matches func(string) bool) Result {
	unmatched := make([]string, 0)
	for _, item := range required {
		if !matches(item) {
			unmatched = append(unmatched, item)
		}
	}

	if len(unmatched) > 0 {
		return Result{
			Requirement: kind,
			Met:         false,
			Detail:      fmt.Sprintf("Missing required %s: %s", kind, strings.Join(unmatched, ", ")),
			Unmatched:   unmatched,
		}
	}

	return Result{
		Requirement: kind,
		Met:         true,
		Detail:      fmt.Sprintf("All required %s %s: %s", kind, verb, strings.Join(required, ", ")),
	}
}

func formatGPA(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func orEmpty(s *Snapshot) *Snapshot {
	if s == nil {
		return &Snapshot{}
	}
	return s
}
