package remediate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/trustgate/internal/markup"
	"github.com/ppiankov/trustgate/internal/model"
)

func warn(t model.IssueType) model.Issue {
	return model.Issue{Type: t, Tier: 2, Severity: model.SeverityWarning}
}

func TestApply_RefusesCritical(t *testing.T) {
	r := New(40)
	content := "Call the the plumber."

	got := r.Apply(content, []model.Issue{
		warn(model.IssueRepetitiveWords),
		{Type: model.IssueContentTooShort, Tier: 1, Severity: model.SeverityCritical},
	})

	assert.False(t, got.Applied)
	assert.Equal(t, content, got.Content)
	assert.Contains(t, got.SkippedReason, "content_too_short")
}

func TestApply_RefusesNonWhitelisted(t *testing.T) {
	r := New(40)

	got := r.Apply("Call the the plumber.", []model.Issue{
		warn(model.IssueRepetitiveWords),
		{Type: model.IssueMissingLists, Tier: 3, Severity: model.SeverityInfo},
	})

	assert.False(t, got.Applied)
	assert.Contains(t, got.SkippedReason, "missing_lists")
}

func TestApply_NoIssues(t *testing.T) {
	got := New(40).Apply("Fine.", nil)

	assert.False(t, got.Applied)
	assert.Equal(t, "Fine.", got.Content)
	assert.NotEmpty(t, got.SkippedReason)
}

func TestApply_CollapsesRepeats(t *testing.T) {
	r := New(40)

	got := r.Apply("Call the The plumber today today.\n\nWe we fix it.", []model.Issue{warn(model.IssueRepetitiveWords)})

	assert.True(t, got.Applied)
	assert.Equal(t, "Call The plumber today.\n\nwe fix it.", got.Content)
	require.Len(t, got.Changes, 1)
	assert.Contains(t, got.Changes[0], "3")
}

func TestApply_SplitsLongSentenceAtConjunction(t *testing.T) {
	r := New(10)
	first := "The crew replaced the old water heater in the basement"
	second := "they also flushed every line in the house"
	content := "Intro line.\n\n" + first + " and " + second + ".\n\nOutro."

	got := r.Apply(content, []model.Issue{warn(model.IssueLongSentences)})

	require.True(t, got.Applied)
	assert.Equal(t, "Intro line.\n\n"+first+". They also flushed every line in the house.\n\nOutro.", got.Content)
	require.Len(t, got.Changes, 1)
	assert.Contains(t, got.Changes[0], "Split 19-word sentence")

	for _, s := range markup.SplitSentences(got.Content) {
		assert.LessOrEqual(t, len(markup.Words(s)), 10)
	}
}

func TestApply_KeepsNonAndConjunction(t *testing.T) {
	r := New(6)
	content := "We fixed the leak quickly but the pipe was still old."

	got := r.Apply(content, []model.Issue{warn(model.IssueLongSentences)})

	assert.Equal(t, "We fixed the leak quickly. But the pipe was still old.", got.Content)
}

func TestApply_LongSentenceWithoutConjunction(t *testing.T) {
	r := New(5)
	content := strings.Repeat("word ", 8) + "end."

	got := r.Apply(content, []model.Issue{warn(model.IssueLongSentences)})

	assert.False(t, got.Applied)
	assert.Equal(t, content, got.Content)
	assert.Empty(t, got.Changes)
}

func TestApply_PassiveVoiceLoggedOnly(t *testing.T) {
	content := "The pipe was fixed."

	got := New(40).Apply(content, []model.Issue{warn(model.IssuePassiveVoice)})

	assert.False(t, got.Applied)
	assert.Equal(t, content, got.Content)
	assert.Equal(t, []string{"Passive voice left for editor review"}, got.Changes)
	assert.Empty(t, got.SkippedReason)
}

func TestApplyAssessment(t *testing.T) {
	r := New(40)
	content := "Call the the plumber."
	tier3 := model.Issue{Type: model.IssueMissingLists, Tier: 3, Severity: model.SeverityInfo}

	got, ok := r.ApplyAssessment(content, model.ContentAssessment{
		Passed:      true,
		Tier2Issues: []model.Issue{warn(model.IssueRepetitiveWords)},
		Tier3Issues: []model.Issue{tier3},
	})
	require.True(t, ok)
	assert.True(t, got.Applied)
	assert.Equal(t, "Call the plumber.", got.Content)

	got, ok = r.ApplyAssessment(content, model.ContentAssessment{
		Tier1Issues: []model.Issue{{Type: model.IssueContentTooShort, Tier: 1, Severity: model.SeverityCritical}},
		Tier2Issues: []model.Issue{warn(model.IssueRepetitiveWords)},
	})
	require.True(t, ok)
	assert.False(t, got.Applied)
	assert.Contains(t, got.SkippedReason, "content_too_short")

	_, ok = r.ApplyAssessment(content, model.ContentAssessment{Tier3Issues: []model.Issue{tier3}})
	assert.False(t, ok)
}
