package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeRank(t *testing.T) {
	tests := []struct {
		grade string
		want  int
	}{
		{"A", 5}, {"a", 5}, {" B ", 4}, {"C", 3}, {"D", 2}, {"E", 1}, {"F", 0},
		{"B+", 4}, {"C-", 3},
		{"", 0}, {"Z", 0}, {"excellent", 0}, {"+", 0},
	}

	for _, tt := range tests {
		t.Run(tt.grade, func(t *testing.T) {
			assert.Equal(t, tt.want, GradeRank(tt.grade))
		})
	}
}

func TestEducationRank(t *testing.T) {
	tests := []struct {
		level string
		want  int
	}{
		{"high-school", 1}, {"High School", 1}, {"high_school", 1}, {"secondary", 1},
		{"associate", 2}, {"diploma", 2},
		{"bachelor", 3}, {"Bachelors", 3},
		{"master", 4}, {"masters", 4},
		{"phd", 5}, {"doctorate", 5},
		{"", 1}, {"kindergarten", 1},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.want, EducationRank(tt.level))
		})
	}

	assert.Equal(t, EducationRank("associate"), EducationRank("diploma"))
}

func TestExperienceRank(t *testing.T) {
	tests := []struct {
		level string
		want  int
	}{
		{"entry", 1}, {"junior", 1},
		{"mid", 2}, {"Intermediate", 2},
		{"senior", 3}, {"lead", 3},
		{"executive", 4},
		{"", 1}, {"wizard", 1},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.want, ExperienceRank(tt.level))
		})
	}
}

func TestFuzzyMatch(t *testing.T) {
	assert.True(t, FuzzyMatch("React", "react developer"))
	assert.True(t, FuzzyMatch("react developer", "REACT"))
	assert.False(t, FuzzyMatch("Go", ""))
	assert.False(t, FuzzyMatch("", ""))
	assert.False(t, FuzzyMatch("Python", "Java"))
}
