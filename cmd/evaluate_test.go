package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/edumatch/internal/eligibility"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func decodeVerdict(t *testing.T, out *bytes.Buffer) eligibility.Verdict {
	t.Helper()

	var v eligibility.Verdict
	require.NoError(t, json.Unmarshal(out.Bytes(), &v))
	return v
}

func TestEvaluateFilesWithSnapshot(t *testing.T) {
	req := writeFile(t, "req.json", `{"minGrade": "C", "subjects": ["Mathematics", "English"]}`)
	snap := writeFile(t, "snap.json", `{"overallGrade": "B", "subjects": {"Mathematics": "B"}}`)

	var out bytes.Buffer
	require.NoError(t, evaluateFiles(&out, req, snap, "", ""))

	v := decodeVerdict(t, &out)
	assert.False(t, v.Qualified)
	assert.Equal(t, []string{"Minimum grade C met (your grade: B)"}, v.Satisfied)
	assert.Equal(t, []string{"Missing required subjects: English"}, v.Missing)
}

func TestEvaluateFilesWithJobProfile(t *testing.T) {
	req := writeFile(t, "req.json", `{"requiredSkills": ["Go", "Kubernetes"]}`)
	doc := writeFile(t, "profile.json", `{"professionalProfile": {"skills": ["golang", "docker"]}}`)

	var out bytes.Buffer
	require.NoError(t, evaluateFiles(&out, req, "", doc, "job"))

	v := decodeVerdict(t, &out)
	assert.False(t, v.Qualified)
	assert.Equal(t, []string{"Missing required skills: Kubernetes"}, v.Missing)
}

func TestEvaluateFilesErrors(t *testing.T) {
	req := writeFile(t, "req.json", `{}`)
	snap := writeFile(t, "snap.json", `{}`)
	broken := writeFile(t, "broken.json", `{`)

	tests := []struct {
		name        string
		req         string
		snap        string
		profile     string
		role        string
		errContains string
	}{
		{name: "no candidate input", req: req, errContains: "either --snapshot or --profile"},
		{name: "missing requirements file", req: filepath.Join(t.TempDir(), "nope.json"), snap: snap, errContains: "reading requirements"},
		{name: "broken snapshot", req: req, snap: broken, errContains: "reading snapshot"},
		{name: "unknown role", req: req, profile: snap, role: "internship", errContains: "internship"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := evaluateFiles(&out, tt.req, tt.snap, tt.profile, tt.role)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
			assert.Empty(t, out.String())
		})
	}
}
