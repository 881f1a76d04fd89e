package quiz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func beginnerResponses() Responses {
	return Responses{
		{QuestionID: "gender_preference", AnswerValue: "women"},
		{QuestionID: "experience_level", AnswerValue: "beginner"},
		{QuestionID: "scent_preferences_beginner", AnswerValue: "fresh_clean"},
	}
}

func TestDeriveReadsFirstMatch(t *testing.T) {
	rs := append(beginnerResponses(),
		Response{QuestionID: "gender_preference", AnswerValue: "men"},
		Response{QuestionID: "intensity_preference", AnswerValue: "subtle"},
		Response{QuestionID: "occasion_preferences", AnswerValue: "office, Date_Night"},
	)

	p := rs.Derive()
	assert.Equal(t, "women", p.Gender)
	assert.Equal(t, "beginner", p.Experience)
	assert.Equal(t, "fresh", p.ScentFamily)
	assert.Equal(t, "light", p.Intensity)
	assert.Equal(t, []string{"office", "date_night"}, p.Occasions)
}

func TestValidateReportsMissingFields(t *testing.T) {
	require.NoError(t, beginnerResponses().Validate())

	err := Responses{{QuestionID: "gender_preference", AnswerValue: "men"}}.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncompleteQuiz))

	var incomplete *IncompleteError
	require.True(t, errors.As(err, &incomplete))
	assert.Equal(t, []string{"experience_level", "scent_preferences"}, incomplete.Missing)
}

func TestValidateTreatsBlankAnswerAsMissing(t *testing.T) {
	rs := beginnerResponses()
	rs[0].AnswerValue = "  "
	assert.ErrorIs(t, rs.Validate(), ErrIncompleteQuiz)
}

func TestMergePrefersExplicitValues(t *testing.T) {
	p := beginnerResponses().Derive().Merge(Preferences{ScentFamily: "warm_cozy", Intensity: "bold"})
	assert.Equal(t, "oriental", p.ScentFamily)
	assert.Equal(t, "strong", p.Intensity)
	assert.Equal(t, "women", p.Gender)
}

func TestNormalizers(t *testing.T) {
	assert.Equal(t, "men", NormalizeGender("Masculine"))
	assert.Equal(t, "unisex", NormalizeGender("no preference"))
	assert.Equal(t, "", NormalizeGender(""))
	assert.Equal(t, "advanced", NormalizeExperience("collector"))
	assert.Equal(t, "intermediate", NormalizeExperience("enthusiast"))
	assert.Equal(t, "beginner", NormalizeExperience("new_to_this"))
	assert.Equal(t, "gourmand", NormalizeScentFamily("sweet_vanilla"))
	assert.Equal(t, "leather", NormalizeScentFamily("leather"))
	assert.Equal(t, "moderate", NormalizeIntensity("medium"))
}
