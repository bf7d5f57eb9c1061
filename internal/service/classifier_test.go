package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordClassifierEmptyNotes(t *testing.T) {
	classifier := NewKeywordClassifier()

	analysis, err := classifier.Classify(context.Background(), "   ")

	require.NoError(t, err)
	assert.Empty(t, analysis.Categories)
	assert.Equal(t, "No issues documented", analysis.Summary)
}

func TestKeywordClassifierMatchesCategories(t *testing.T) {
	classifier := NewKeywordClassifier()

	analysis, err := classifier.Classify(context.Background(),
		"Student failed two exams, family divorce at home, cannot afford tuition fees")

	require.NoError(t, err)
	assert.Equal(t, []string{"academic_struggles", "family_issues", "financial_problems"}, analysis.Categories)
	assert.Equal(t, 0.7, analysis.Confidence)
	assert.Contains(t, analysis.Reasoning, "academic_struggles")
}

func TestKeywordClassifierCaseInsensitive(t *testing.T) {
	classifier := NewKeywordClassifier()

	analysis, err := classifier.Classify(context.Background(), "Showing DEPRESSION and high STRESS before placements")

	require.NoError(t, err)
	assert.Contains(t, analysis.Categories, "mental_health")
	assert.Contains(t, analysis.Categories, "career_confusion")
}

func TestKeywordClassifierNoMatches(t *testing.T) {
	classifier := NewKeywordClassifier()

	analysis, err := classifier.Classify(context.Background(), "Enjoys chess club")

	require.NoError(t, err)
	assert.Empty(t, analysis.Categories)
	assert.Equal(t, 0.5, analysis.Confidence)
	assert.Empty(t, analysis.Reasoning)
}

func TestKeywordClassifierDeterministicOrder(t *testing.T) {
	classifier := NewKeywordClassifier()
	notes := "career doubts, frequent absences, money trouble"

	first, err := classifier.Classify(context.Background(), notes)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := classifier.Classify(context.Background(), notes)
		require.NoError(t, err)
		assert.Equal(t, first.Categories, again.Categories)
	}
}
