// Package profile projects stored candidate documents onto eligibility snapshots.
//
// Students keep their academic record in a few historical locations, and job
// seekers keep theirs under professionalProfile. For every field the first
// location that is present wins; the order is listed next to each path set.
package profile

import (
	"fmt"
	"math"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/edumatch/internal/eligibility"
	"github.com/spigell/edumatch/internal/portal"
	"github.com/spigell/edumatch/internal/utils"
)

var (
	courseGradePaths     = []string{"overallGrade", "grades.overall", "academicRecord.overallGrade"}
	coursePointsPaths    = []string{"points", "academicRecord.points", "grades.points"}
	courseGPAPaths       = []string{"gpa", "academicRecord.gpa"}
	courseSubjectsPaths  = []string{"subjects", "academicRecord.subjects", "grades.subjects"}
	courseEducationPaths = []string{"educationLevel", "education.level"}

	jobEducationPaths      = []string{"professionalProfile.educationLevel", "educationLevel", "education.level"}
	jobExperiencePaths     = []string{"professionalProfile.experienceLevel", "experienceLevel"}
	jobSkillsPaths         = []string{"professionalProfile.skills", "skills"}
	jobQualificationsPaths = []string{"professionalProfile.qualifications", "qualifications", "certifications"}
)

type subjectEntry struct {
	Name  string `mapstructure:"name"`
	Grade string `mapstructure:"grade"`
}

// ForCourses builds the academic snapshot used for course eligibility.
func ForCourses(doc map[string]any) eligibility.Snapshot {
	var s eligibility.Snapshot

	if v, ok := utils.First(doc, courseGradePaths...); ok {
		s.OverallGrade = utils.CoerceString(v)
	}

	if v, ok := utils.First(doc, coursePointsPaths...); ok {
		if points, ok := utils.CoerceInt(v); ok {
			s.Points = points
		}
	}

	if v, ok := utils.First(doc, courseGPAPaths...); ok {
		if gpa := utils.CoerceFloat(v); !math.IsNaN(gpa) && !math.IsInf(gpa, 0) {
			s.GPA = gpa
		}
	}

	if v, ok := utils.First(doc, courseSubjectsPaths...); ok {
		s.Subjects = subjects(v)
	}

	if v, ok := utils.First(doc, courseEducationPaths...); ok {
		s.EducationLevel = utils.CoerceString(v)
	}

	return s
}

// ForJobs builds the professional snapshot used for job eligibility.
func ForJobs(doc map[string]any) eligibility.Snapshot {
	var s eligibility.Snapshot

	if v, ok := utils.First(doc, jobEducationPaths...); ok {
		s.EducationLevel = utils.CoerceString(v)
	}

	if v, ok := utils.First(doc, jobExperiencePaths...); ok {
		s.ExperienceLevel = utils.CoerceString(v)
	}

	if v, ok := utils.First(doc, jobSkillsPaths...); ok {
		s.Skills = utils.CoerceStrings(v)
	}

	if v, ok := utils.First(doc, jobQualificationsPaths...); ok {
		s.Qualifications = utils.CoerceStrings(v)
	}

	return s
}

// ForRole picks the projection matching the kind of offerings being browsed.
func ForRole(kind portal.Kind, doc map[string]any) (eligibility.Snapshot, error) {
	switch kind {
	case portal.KindCourse:
		return ForCourses(doc), nil
	case portal.KindJob:
		return ForJobs(doc), nil
	default:
		return eligibility.Snapshot{}, fmt.Errorf("no profile projection for kind %q", kind)
	}
}

// subjects accepts {"Mathematics": "B"} or [{"name": "Mathematics", "grade": "B"}].
// Plain string lists are read as subjects without a grade.
func subjects(v any) map[string]string {
	out := make(map[string]string)

	switch val := v.(type) {
	case map[string]any:
		for name, grade := range val {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			out[name] = utils.CoerceString(grade)
		}
	case []any:
		for _, item := range val {
			if name, ok := item.(string); ok {
				if name = strings.TrimSpace(name); name != "" {
					out[name] = ""
				}
				continue
			}

			var entry subjectEntry
			cfg := &mapstructure.DecoderConfig{WeaklyTypedInput: true, Result: &entry}
			decoder, err := mapstructure.NewDecoder(cfg)
			if err != nil {
				continue
			}
			if err := decoder.Decode(item); err != nil {
				continue
			}
			if name := strings.TrimSpace(entry.Name); name != "" {
				out[name] = strings.TrimSpace(entry.Grade)
			}
		}
	case string:
		for _, name := range utils.CoerceStrings(val) {
			out[name] = ""
		}
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
