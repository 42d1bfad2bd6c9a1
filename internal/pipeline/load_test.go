package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/trustgate/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadItem(t *testing.T) {
	item, err := LoadItem(writeFile(t, "post.md", "# Hello\n\nBody."))
	require.NoError(t, err)
	assert.Equal(t, "# Hello\n\nBody.", item.Content)

	item, err = LoadItem(writeFile(t, "item.yaml", `
content: "We have 20 years of experience."
title: Water heaters
industry: plumbing
target_voice: partner
profile:
  years_in_business: "20"
citations:
  - url: https://example.com
    anchor_text: guide
`))
	require.NoError(t, err)
	assert.Equal(t, "Water heaters", item.Title)
	assert.Equal(t, model.VoicePartner, item.TargetVoice)
	assert.Equal(t, "20", item.Profile["years_in_business"])
	require.Len(t, item.Citations, 1)
	assert.Equal(t, "guide", item.Citations[0].AnchorText)

	item, err = LoadItem(writeFile(t, "item.json", `{"content":"x","query_context":"drains"}`))
	require.NoError(t, err)
	assert.Equal(t, "drains", item.QueryContext)

	_, err = LoadItem(filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}

func TestLoadProfile(t *testing.T) {
	profile, err := LoadProfile(writeFile(t, "profile.yaml", "license: C-36 123456\nyears_in_business: 20\nphone: (303) 555-0100\n"))
	require.NoError(t, err)
	assert.Equal(t, "20", profile["years_in_business"])
	assert.Equal(t, "C-36 123456", profile["license"])

	_, err = LoadProfile(writeFile(t, "bad.yaml", "license:\n  - a\n"))
	assert.Error(t, err)
}

func TestLoadRules(t *testing.T) {
	rules, err := LoadRules(writeFile(t, "rules.yaml", `
- id: r1
  name: Phone
  description: Content must include a phone number
- name: Tone
  description: Keep a warm tone
`))
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "r1", rules[0].ID)
	assert.Equal(t, "rule-2", rules[1].ID)

	rules, err = LoadRules(writeFile(t, "rules.json", `{"rules":[{"id":"x","name":"N","description":"D"}]}`))
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "x", rules[0].ID)
}

func TestLoadCitations(t *testing.T) {
	cites, err := LoadCitations(writeFile(t, "c.yaml", "- url: https://a.example\n  anchor_text: A\n- url: https://b.example\n"))
	require.NoError(t, err)
	require.Len(t, cites, 2)
	assert.Equal(t, "https://b.example", cites[1].URL)
}

func TestIsStructured(t *testing.T) {
	assert.True(t, IsStructured("a.YAML"))
	assert.True(t, IsStructured("a.json"))
	assert.False(t, IsStructured("a.md"))
	assert.False(t, IsStructured("a"))
}
