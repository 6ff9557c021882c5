package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"signalguard/pkg/logger"
)

func TestAITextPhraseHeavyText(t *testing.T) {
	d := NewAITextDetector(logger.NewDefault())

	result := d.Analyze("As an AI, it is important to note that we should delve deeper into this topic. " +
		"Furthermore, a comprehensive overview follows. I hope this helps.")
	assert.GreaterOrEqual(t, result.Score, 60.0)
	assert.Contains(t, result.PatternHits, "as_an_ai")
	assert.Contains(t, result.PatternHits, "delve")
}

func TestAITextCasualText(t *testing.T) {
	d := NewAITextDetector(logger.NewDefault())

	result := d.Analyze("hey, u coming to the game tonight? should be fun lol")
	assert.LessOrEqual(t, result.Score, 15.0)
	assert.Empty(t, result.PatternHits)
}

func TestAITextUniformSentences(t *testing.T) {
	d := NewAITextDetector(logger.NewDefault())

	// Four sentences of identical word count
	result := d.Analyze("The report covers all four quarters. The figures show a steady trend. " +
		"The team reviewed every line item. The board approved the final draft.")
	assert.True(t, result.UniformityHint)
	assert.GreaterOrEqual(t, result.Score, 30.0)
}

func TestAITextEmptyInput(t *testing.T) {
	d := NewAITextDetector(logger.NewDefault())

	result := d.Analyze("")
	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, 0.0, result.Probability)
}
