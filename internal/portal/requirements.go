package portal

import (
	"math"

	"github.com/spigell/edumatch/internal/eligibility"
	"github.com/spigell/edumatch/internal/utils"
)

// Stored requirement objects were written by several screens over time, so
// the same requirement shows up under more than one key. The first key that
// is present wins.
var (
	minGradeKeys       = []string{"minGrade", "minimumGrade"}
	minPointsKeys      = []string{"minPoints", "minimumPoints"}
	minGPAKeys         = []string{"minGPA", "minGpa", "minimumGPA"}
	subjectsKeys       = []string{"requiredSubjects", "subjects"}
	minEducationKeys   = []string{"minEducation", "educationLevel", "minimumEducation"}
	minExperienceKeys  = []string{"minExperience", "experienceLevel", "minimumExperience"}
	skillsKeys         = []string{"requiredSkills", "skills"}
	qualificationsKeys = []string{"requiredQualifications", "qualifications", "certifications"}
)

// DecodeRequirements projects a stored requirement object onto the canonical
// requirement set. Fields that are missing or cannot be read are left empty,
// which means they add no check. It returns nil when nothing usable is present.
func DecodeRequirements(raw any) *eligibility.Requirements {
	doc, ok := raw.(map[string]any)
	if !ok || len(doc) == 0 {
		return nil
	}

	req := &eligibility.Requirements{}

	if v, ok := utils.First(doc, minGradeKeys...); ok {
		req.MinGrade = utils.CoerceString(v)
	}

	if v, ok := utils.First(doc, minPointsKeys...); ok {
		if points, ok := utils.CoerceFloor(v); ok {
			req.MinPoints = &points
		}
	}

	if v, ok := utils.First(doc, minGPAKeys...); ok {
		if gpa := utils.CoerceFloat(v); !math.IsNaN(gpa) && !math.IsInf(gpa, 0) {
			req.MinGPA = &gpa
		}
	}

	if v, ok := utils.First(doc, subjectsKeys...); ok {
		req.RequiredSubjects = utils.CoerceStrings(v)
	}

	if v, ok := utils.First(doc, minEducationKeys...); ok {
		req.MinEducation = utils.CoerceString(v)
	}

	if v, ok := utils.First(doc, minExperienceKeys...); ok {
		req.MinExperience = utils.CoerceString(v)
	}

	if v, ok := utils.First(doc, skillsKeys...); ok {
		req.RequiredSkills = utils.CoerceStrings(v)
	}

	if v, ok := utils.First(doc, qualificationsKeys...); ok {
		req.RequiredQualifications = utils.CoerceStrings(v)
	}

	if req.IsEmpty() {
		return nil
	}

	return req
}
