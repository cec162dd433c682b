package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/vehicle-intake-api/deduction"
	"github.com/linesmerrill/vehicle-intake-api/questionnaire"
)

func TestQuote(t *testing.T) {
	var out bytes.Buffer
	err := quote(&out, deduction.Default(), []byte(`
cosmetic_condition: Good
smoked_windows: "Yes"
notable_features: [Leather, Sunroof]
`))
	require.NoError(t, err)

	assert.Contains(t, out.String(), "cosmetic_condition          850")
	assert.Contains(t, out.String(), "notable_features           -300")
	assert.Contains(t, out.String(), "total                      1050")
	assert.NotContains(t, out.String(), "unpriced")
}

func TestQuoteRejectsBadAnswers(t *testing.T) {
	var out bytes.Buffer
	err := quote(&out, deduction.Default(), []byte("title_status: Stolen"))
	assert.ErrorIs(t, err, questionnaire.ErrUnknownOption)

	err = quote(&out, deduction.Default(), []byte("engine_noise: loud"))
	assert.ErrorIs(t, err, questionnaire.ErrUnknownQuestion)

	err = quote(&out, deduction.Default(), []byte("cosmetic_condition: [Good, Fair]"))
	assert.Error(t, err)

	err = quote(&out, deduction.Default(), []byte("cosmetic_condition: {a: b}"))
	assert.Error(t, err)
}

func TestQuoteCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "answers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("accident_history: Minor\n"), 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"quote", path})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "accident_history            450")
}
