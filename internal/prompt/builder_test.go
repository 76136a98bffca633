package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/wordexpander/internal/models"
)

func TestNewPromptBuilder(t *testing.T) {
	builder := NewPromptBuilder("", DefaultTemperature)
	require.NotNil(t, builder)
	assert.NotEmpty(t, builder.template)
}

func TestBuildEmbedsParameters(t *testing.T) {
	builder := NewPromptBuilder("gemini-2.5-flash", DefaultTemperature)
	req := builder.Build("明日 会議 10時", models.ToneBusiness, models.LengthStandard)

	assert.Equal(t, "明日 会議 10時", req.Input)
	assert.Equal(t, "gemini-2.5-flash", req.Model)
	assert.Equal(t, models.ToneBusiness, req.Tone)
	assert.Equal(t, models.LengthStandard, req.Length)
	assert.InDelta(t, 0.7, req.Temperature, 0.0001)

	assert.Contains(t, req.SystemPrompt, "トーン: ビジネス")
	assert.Contains(t, req.SystemPrompt, "長さ: 普通")
	assert.Contains(t, req.SystemPrompt, "プレーンテキスト")
	assert.NotContains(t, req.SystemPrompt, "{{")
}

func TestBuildIsDeterministic(t *testing.T) {
	builder := NewPromptBuilder("", DefaultTemperature)

	for _, tone := range models.Tones() {
		for _, length := range models.Lengths() {
			a := builder.Build("予算案 A案 B案", tone.Value, length.Value)
			b := builder.Build("予算案 A案 B案", tone.Value, length.Value)
			assert.Equal(t, a, b)
			assert.Contains(t, a.SystemPrompt, tone.Label)
			assert.Contains(t, a.SystemPrompt, length.Label)
		}
	}
}

func TestBuildDoesNotValidate(t *testing.T) {
	builder := NewPromptBuilder("", DefaultTemperature)

	req := builder.Build("   ", models.Tone("unknown"), models.Length("unknown"))
	require.NotNil(t, req)
	assert.Equal(t, "   ", req.Input)
	assert.Contains(t, req.SystemPrompt, "トーン: unknown")
}

func TestPromptGuidesCoverEveryOption(t *testing.T) {
	for _, tone := range models.Tones() {
		assert.NotEmpty(t, toneGuides[tone.Value], "missing guide for tone %s", tone.Value)
	}
	for _, length := range models.Lengths() {
		assert.NotEmpty(t, lengthGuides[length.Value], "missing guide for length %s", length.Value)
	}
}

func TestSystemPromptDiffersByTone(t *testing.T) {
	builder := NewPromptBuilder("", DefaultTemperature)
	business := builder.SystemPrompt(models.ToneBusiness, models.LengthConcise)
	casual := builder.SystemPrompt(models.ToneCasual, models.LengthConcise)
	assert.NotEqual(t, business, casual)
	assert.True(t, strings.HasPrefix(business, "あなたは"))
}
