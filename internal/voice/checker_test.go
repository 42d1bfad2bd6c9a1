package voice

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/trustgate/internal/model"
)

func TestCheck_PartnerDirectPasses(t *testing.T) {
	c := NewDefault()

	got, err := c.Check("Contact us today. Call now.", model.VoicePartner)
	require.NoError(t, err)

	assert.True(t, got.Passed)
	assert.Empty(t, got.Violations)
	assert.Equal(t, 100.0, got.ConsistencyScore)
	// "Call now." is a fragment
	assert.Equal(t, 1, got.TotalSentences)
}

func TestCheck_PartnerHedgingFails(t *testing.T) {
	c := NewDefault()

	got, err := c.Check("Perhaps you might consider calling us.", model.VoicePartner)
	require.NoError(t, err)

	assert.False(t, got.Passed)
	require.Len(t, got.Violations, 1)
	v := got.Violations[0]
	assert.Equal(t, TentativeLanguage, v.PatternType)
	assert.Equal(t, "perhaps", v.MatchedPhrase)
	assert.Equal(t, 0, v.SentenceIndex)
	assert.NotEmpty(t, v.Suggestion)
	assert.Equal(t, 0.0, got.ConsistencyScore)
}

func TestCheck_MultipleTypesPerSentenceClampsAtZero(t *testing.T) {
	c := NewDefault()

	got, err := c.Check("I understand how frustrating leaks are. Furthermore, perhaps you might consider a plan.", model.VoicePartner)
	require.NoError(t, err)

	assert.Equal(t, 2, got.TotalSentences)
	assert.Len(t, got.Violations, 3)
	assert.Equal(t, 1, got.PatternCounts[EmpatheticPeer])
	assert.Equal(t, 1, got.PatternCounts[AcademicRegister])
	assert.Equal(t, 1, got.PatternCounts[TentativeLanguage])
	assert.Equal(t, 0.0, got.ConsistencyScore)
}

func TestCheck_ThresholdIsInclusive(t *testing.T) {
	c := NewDefault()
	content := "We repair water heaters. We inspect drains daily. We install new fixtures. " +
		"We service boilers well. Perhaps we can help you."

	got, err := c.Check(content, model.VoicePartner)
	require.NoError(t, err)

	assert.Equal(t, 5, got.TotalSentences)
	assert.Equal(t, 80.0, got.ConsistencyScore)
	assert.True(t, got.Passed)
}

func TestCheck_ForbiddenSetsDifferByVoice(t *testing.T) {
	c := NewDefault()
	content := "Hurry and call now for same-day service."

	partner, err := c.Check(content, model.VoicePartner)
	require.NoError(t, err)
	assert.True(t, partner.Passed)

	professor, err := c.Check(content, model.VoiceProfessor)
	require.NoError(t, err)
	require.Len(t, professor.Violations, 1)
	assert.Equal(t, SalesyUrgency, professor.Violations[0].PatternType)
	assert.Equal(t, "call now", professor.Violations[0].MatchedPhrase)
}

func TestCheck_StripsMarkup(t *testing.T) {
	c := NewDefault()

	got, err := c.Check(`<p>Hey there, friend of ours!</p><script>var gonna = 1;</script>`, model.VoiceProfessor)
	require.NoError(t, err)

	require.Len(t, got.Violations, 1)
	assert.Equal(t, CasualSlang, got.Violations[0].PatternType)
	assert.Equal(t, "hey there", got.Violations[0].MatchedPhrase)
}

func TestCheck_EmptyContentScoresPerfect(t *testing.T) {
	c := NewDefault()

	got, err := c.Check("   ", model.VoicePeer)
	require.NoError(t, err)

	assert.Equal(t, 0, got.TotalSentences)
	assert.Equal(t, 100.0, got.ConsistencyScore)
	assert.True(t, got.Passed)
}

func TestCheck_UnknownVoiceIsConfigurationError(t *testing.T) {
	c := NewDefault()

	_, err := c.Check("Some perfectly normal sentence.", model.Voice("pirate"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrUnknownVoice))
	assert.True(t, errors.Is(err, model.ErrConfiguration))
}

func TestNew_InjectedPatternSet(t *testing.T) {
	set := PatternSet{
		Version:   "test",
		Forbidden: map[model.Voice][]string{model.VoicePeer: {"jargon"}},
		Phrases:   map[string][]string{"jargon": {"  Synergy "}},
	}
	c := New(set)

	got, err := c.Check("Our synergy drives results for you.", model.VoicePeer)
	require.NoError(t, err)

	require.Len(t, got.Violations, 1)
	assert.Equal(t, "synergy", got.Violations[0].MatchedPhrase)
	assert.Equal(t, defaultSuggestion, got.Violations[0].Suggestion)
	assert.Equal(t, "test", got.PatternsVersion)
	assert.Equal(t, "test", c.Version())

	_, err = c.Check("Our synergy drives results for you.", model.VoicePartner)
	assert.ErrorIs(t, err, model.ErrUnknownVoice)
}

func TestPatternSet_Voices(t *testing.T) {
	assert.Equal(t,
		[]model.Voice{model.VoicePartner, model.VoicePeer, model.VoiceProfessor},
		DefaultPatternSet().Voices())
}
