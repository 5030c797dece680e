package eligibility

// NoRequirements is the single satisfied line of an offering without requirements.
const NoRequirements = "No requirements specified"

// Evaluate runs every evaluator whose requirement field is populated, in the
// order grade, points, GPA, subjects, education, experience, skills,
// qualifications. It never stops at the first failure so the verdict lists
// every reason. A nil or empty requirement set qualifies everyone; a nil
// snapshot is treated as a candidate with no data.
func Evaluate(req *Requirements, s *Snapshot) Verdict {
	if req.IsEmpty() {
		return Verdict{
			Qualified: true,
			Satisfied: []string{NoRequirements},
			Missing:   []string{},
		}
	}

	s = orEmpty(s)

	checks := make([]Result, 0, 8)
	if hasText(req.MinGrade) {
		checks = append(checks, GradeFloor(req.MinGrade, s))
	}
	if req.MinPoints != nil {
		checks = append(checks, PointsFloor(*req.MinPoints, s))
	}
	if req.MinGPA != nil {
		checks = append(checks, GPAFloor(*req.MinGPA, s))
	}
	if len(cleanList(req.RequiredSubjects)) > 0 {
		checks = append(checks, SubjectCoverage(req.RequiredSubjects, s))
	}
	if hasText(req.MinEducation) {
		checks = append(checks, EducationFloor(req.MinEducation, s))
	}
	if hasText(req.MinExperience) {
		checks = append(checks, ExperienceFloor(req.MinExperience, s))
	}
	if len(cleanList(req.RequiredSkills)) > 0 {
		checks = append(checks, SkillCoverage(req.RequiredSkills, s))
	}
	if len(cleanList(req.RequiredQualifications)) > 0 {
		checks = append(checks, QualificationCoverage(req.RequiredQualifications, s))
	}

	return combine(checks)
}

func combine(checks []Result) Verdict {
	v := Verdict{
		Qualified: true,
		Satisfied: []string{},
		Missing:   []string{},
		Checks:    checks,
	}

	for _, check := range checks {
		if check.Met {
			v.Satisfied = append(v.Satisfied, check.Detail)
			continue
		}
		v.Qualified = false
		v.Missing = append(v.Missing, check.Detail)
	}

	return v
}

// MissingFor returns the failed check of the given kind, if any.
func (v Verdict) MissingFor(kind Kind) (Result, bool) {
	for _, check := range v.Checks {
		if check.Requirement == kind && !check.Met {
			return check, true
		}
	}
	return Result{}, false
}
