package questionnaire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/vehicle-intake-api/models"
)

func answerOf(t *testing.T, qs []models.ConditionQuestion, key string) models.ConditionQuestion {
	t.Helper()
	q, err := find(qs, key)
	require.NoError(t, err)
	return *q
}

func TestDefaults(t *testing.T) {
	qs := Defaults()
	require.Len(t, qs, 8)
	assert.Equal(t, "Excellent", answerOf(t, qs, CosmeticCondition).Value())
	assert.Equal(t, "No", answerOf(t, qs, SmokedWindows).Value())
	assert.Equal(t, "Clean", answerOf(t, qs, TitleStatus).Value())
	assert.Equal(t, "None", answerOf(t, qs, AccidentHistory).Value())
	assert.Empty(t, answerOf(t, qs, NotableFeatures).Answer)
	assert.Equal(t, "New", answerOf(t, qs, TireCondition).Value())
	assert.True(t, AllAnswered(qs))

	qs[0].Answer[0] = "Poor"
	assert.Equal(t, "Excellent", Defaults()[0].Value())
}

func TestUpdateAnswer_SingleSelectClearsDetails(t *testing.T) {
	qs, err := UpdateAnswer(Defaults(), AccidentHistory, "Minor")
	require.NoError(t, err)
	qs, err = UpdateDetails(qs, AccidentHistory, "rear bumper")
	require.NoError(t, err)

	qs, err = UpdateAnswer(qs, AccidentHistory, "Major")
	require.NoError(t, err)
	assert.Equal(t, "rear bumper", answerOf(t, qs, AccidentHistory).Details)

	qs, err = UpdateAnswer(qs, AccidentHistory, "None")
	require.NoError(t, err)
	q := answerOf(t, qs, AccidentHistory)
	assert.Equal(t, []string{"None"}, q.Answer)
	assert.Equal(t, "", q.Details)
}

func TestUpdateAnswer_DoesNotMutateInput(t *testing.T) {
	in := Defaults()
	_, err := UpdateAnswer(in, CosmeticCondition, "Poor")
	require.NoError(t, err)
	assert.Equal(t, "Excellent", in[0].Value())
}

func TestUpdateAnswer_NoneOfTheAboveIsExclusive(t *testing.T) {
	qs := Defaults()
	var err error
	for _, opt := range []string{"Leather", "Sunroof"} {
		qs, err = UpdateAnswer(qs, NotableFeatures, opt)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"Leather", "Sunroof"}, answerOf(t, qs, NotableFeatures).Answer)

	qs, err = UpdateAnswer(qs, NotableFeatures, NoneOfTheAbove)
	require.NoError(t, err)
	assert.Equal(t, []string{NoneOfTheAbove}, answerOf(t, qs, NotableFeatures).Answer)

	qs, err = UpdateAnswer(qs, NotableFeatures, "Leather")
	require.NoError(t, err)
	assert.Equal(t, []string{"Leather"}, answerOf(t, qs, NotableFeatures).Answer)
}

func TestUpdateAnswer_MultiSelectToggleClearsDetailsWhenEmpty(t *testing.T) {
	qs, _ := UpdateAnswer(Defaults(), NotableFeatures, "Navigation")
	qs, _ = UpdateDetails(qs, NotableFeatures, "factory nav")

	qs, err := UpdateAnswer(qs, NotableFeatures, "Navigation")
	require.NoError(t, err)
	q := answerOf(t, qs, NotableFeatures)
	assert.Empty(t, q.Answer)
	assert.Empty(t, q.Details)
}

func TestUpdateAnswer_Errors(t *testing.T) {
	_, err := UpdateAnswer(Defaults(), "engine_noise", "Yes")
	assert.ErrorIs(t, err, ErrUnknownQuestion)

	_, err = UpdateAnswer(Defaults(), TitleStatus, "Stolen")
	assert.ErrorIs(t, err, ErrUnknownOption)

	_, err = UpdateDetails(Defaults(), "engine_noise", "loud")
	assert.ErrorIs(t, err, ErrUnknownQuestion)
}

func TestMissing(t *testing.T) {
	qs, _ := UpdateAnswer(Defaults(), TitleStatus, "Salvage")
	assert.Equal(t, []string{TitleStatus}, Missing(qs))
	assert.False(t, AllAnswered(qs))

	qs, _ = UpdateDetails(qs, TitleStatus, "flood 2019")
	assert.True(t, AllAnswered(qs))

	qs[0].Answer = nil
	assert.Equal(t, []string{CosmeticCondition}, Missing(qs))
}

func TestResetRestoresDefaults(t *testing.T) {
	qs, _ := UpdateAnswer(Defaults(), CosmeticCondition, "Poor")
	assert.NotEqual(t, Defaults(), qs)
	assert.Equal(t, Defaults(), Reset())
}

func TestAnswerText(t *testing.T) {
	qs, _ := UpdateAnswer(Defaults(), NotableFeatures, "Leather")
	qs, _ = UpdateAnswer(qs, NotableFeatures, "Sunroof")
	assert.Equal(t, "Leather, Sunroof", AnswerText(answerOf(t, qs, NotableFeatures)))
}
