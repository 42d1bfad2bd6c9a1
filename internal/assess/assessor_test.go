package assess

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/trustgate/internal/model"
)

const cleanArticle = "## Water heater care\n\n" +
	"Flush the tank every year to remove sediment and keep it running efficiently.\n\n" +
	"- Check the anode rod\n" +
	"- Test the relief valve\n"

func issueTypes(issues []model.Issue) []model.IssueType {
	var types []model.IssueType
	for _, i := range issues {
		types = append(types, i.Type)
	}
	return types
}

func TestAssess_CleanContentScores100(t *testing.T) {
	a := NewDefault()

	got := a.Assess(cleanArticle, "Water heater maintenance")

	assert.Empty(t, got.AllIssues())
	assert.Equal(t, 100, got.QAScore)
	assert.True(t, got.Passed)
	assert.Equal(t, 0, got.TotalIssues)
}

func TestAssess_KeepsContentOutOfJSON(t *testing.T) {
	got := NewDefault().Assess(cleanArticle, "Water heater maintenance")
	assert.Equal(t, cleanArticle, got.Content)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Flush the tank")
}

func TestAssess_BoundaryThresholdsInclusive(t *testing.T) {
	a := NewDefault()
	content := strings.Repeat("a", 49) + "\n\n" + strings.Repeat("b", 49)
	require.Len(t, content, 100)

	got := a.Assess(content, "0123456789")
	assert.Empty(t, got.Tier1Issues)

	got = a.Assess(content[:99], "012345678")
	assert.ElementsMatch(t,
		[]model.IssueType{model.IssueContentTooShort, model.IssueTitleTooShort},
		issueTypes(got.Tier1Issues))
}

func TestAssess_DegenerateInput(t *testing.T) {
	a := NewDefault()

	got := a.Assess("", "")

	assert.ElementsMatch(t,
		[]model.IssueType{model.IssueContentTooShort, model.IssueMissingTitle, model.IssueInsufficientParagraphs},
		issueTypes(got.Tier1Issues))
	assert.ElementsMatch(t,
		[]model.IssueType{model.IssueMissingSubheadings, model.IssueMissingLists},
		issueTypes(got.Tier3Issues))
	assert.Equal(t, 100-3*15-2*2, got.QAScore)
	assert.False(t, got.Passed)
	for _, issue := range got.Tier1Issues {
		assert.Equal(t, model.SeverityCritical, issue.Severity)
	}
}

func TestAssess_LongSentencesAggregate(t *testing.T) {
	a := NewDefault()
	long := strings.TrimSpace(strings.Repeat("word ", 41)) + "."
	content := "## Heading\n\n" + long + " " + long + "\n\n- item\n"

	got := a.Assess(content, "A valid title here")

	require.Len(t, got.Tier2Issues, 2) // long sentences + "word word" repetition
	var longIssue *model.Issue
	for i := range got.Tier2Issues {
		if got.Tier2Issues[i].Type == model.IssueLongSentences {
			longIssue = &got.Tier2Issues[i]
		}
	}
	require.NotNil(t, longIssue)
	assert.Equal(t, 2, longIssue.Data["count"])
	assert.Equal(t, model.SeverityWarning, longIssue.Severity)
}

func TestAssess_PassiveVoice(t *testing.T) {
	a := NewDefault()
	content := "## Report\n\nThe pipe was fixed and the valves were replaced. It was done.\n\n- ok\n"

	got := a.Assess(content, "Repair summary report")

	assert.Contains(t, issueTypes(got.Tier2Issues), model.IssuePassiveVoice)
}

func TestAssess_RepetitiveWords(t *testing.T) {
	content := "## Tips\n\nCall the the plumber today.\n\n- ok\n"

	got := NewDefault().Assess(content, "Plumbing tips today")
	assert.NotContains(t, issueTypes(got.Tier2Issues), model.IssueRepetitiveWords)

	p := DefaultPolicy()
	p.DetectRepetition = true
	got = New(p).Assess(content, "Plumbing tips today")
	require.Contains(t, issueTypes(got.Tier2Issues), model.IssueRepetitiveWords)
	assert.Equal(t, 95, got.QAScore)
}

func TestAssess_GrammaticalDoublesScore100(t *testing.T) {
	content := "## Facts\n\n- one\n- two\n\nWe know that that pipe is the problem, and the crew had had the part on order for a week. Call us today."

	got := NewDefault().Assess(content, "Plumbing in Denver")
	assert.Equal(t, 100, got.QAScore, "issues: %+v", got.AllIssues())

	p := DefaultPolicy()
	p.DetectRepetition = true
	got = New(p).Assess(content, "Plumbing in Denver")
	assert.Equal(t, 100, got.QAScore, "issues: %+v", got.AllIssues())
}

func TestAssess_HTMLStructure(t *testing.T) {
	a := NewDefault()
	content := `<h2>Our services</h2><p>We repair leaks and install new fixtures across the county every day.</p>` +
		`<p>Licensed and insured technicians.</p><ul><li>Leaks</li><li>Fixtures</li></ul>`

	got := a.Assess(content, "Plumbing services")

	assert.Empty(t, got.Tier1Issues)
	assert.Empty(t, got.Tier3Issues)
}

func TestAssess_Deterministic(t *testing.T) {
	a := NewDefault()

	first := a.Assess(cleanArticle, "Same title")
	second := a.Assess(cleanArticle, "Same title")

	assert.Equal(t, first, second)
}

func TestPolicy_ScoreClamps(t *testing.T) {
	p := DefaultPolicy()
	p.Tier1Weight = 60

	assert.Equal(t, 0, p.Score(2, 0, 0))
	assert.Equal(t, 100, p.Score(0, 0, 0))

	p.Tier1Weight = -10
	assert.Equal(t, 100, p.Score(3, 0, 0))
}

func TestPolicy_DefaultWeights(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, 15, p.Tier1Weight)
	assert.Equal(t, 5, p.Tier2Weight)
	assert.Equal(t, 2, p.Tier3Weight)
	assert.Equal(t, 78, p.Score(1, 1, 1))
	assert.True(t, p.Passed(70))
	assert.False(t, p.Passed(69))
}

func TestAssess_ScoreBounds(t *testing.T) {
	a := NewDefault()
	inputs := []struct{ content, title string }{
		{"", ""},
		{"x", "y"},
		{cleanArticle, "Water heater maintenance"},
		{strings.Repeat("was were been being ", 200), ""},
	}

	for _, in := range inputs {
		got := a.Assess(in.content, in.title)
		assert.GreaterOrEqual(t, got.QAScore, 0)
		assert.LessOrEqual(t, got.QAScore, 100)
		assert.Equal(t, got.TotalIssues == 0, got.QAScore == 100)
	}
}
