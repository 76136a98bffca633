package prompt

import (
	"log"
	"strings"

	"github.com/Conceptual-Machines/wordexpander/internal/llm"
	"github.com/Conceptual-Machines/wordexpander/internal/models"
)

// DefaultTemperature balances variety against staying close to the notes
const DefaultTemperature float32 = 0.7

const (
	placeholderTone        = "{{TONE}}"
	placeholderLength      = "{{LENGTH}}"
	placeholderToneGuide   = "{{TONE_GUIDE}}"
	placeholderLengthGuide = "{{LENGTH_GUIDE}}"
)

var toneGuides = map[models.Tone]string{
	models.ToneBusiness: "社内外のビジネス文書として、簡潔で要点が明確な丁寧語で書く。",
	models.ToneCasual:   "友人や同僚に向けた、くだけすぎない親しみやすい口調で書く。",
	models.TonePolite:   "尊敬語・謙譲語を正しく使い、相手への配慮が伝わる敬語で書く。",
	models.ToneAcademic: "客観的で論理的な「である」調を用い、主張と根拠を明確にする。",
	models.ToneCreative: "比喩や情景描写を交え、読み手の印象に残る表現を工夫する。",
	models.ToneEmail:    "件名・宛名・挨拶・本文・結びを備えたビジネスメールの形式で書く。",
}

var lengthGuides = map[models.Length]string{
	models.LengthConcise:  "要点だけをまとめ、数文程度に収める。",
	models.LengthStandard: "必要な情報を過不足なく、1〜3段落程度で書く。",
	models.LengthDetailed: "背景や補足を加えて丁寧に展開し、複数段落で書く。",
}

// Builder turns raw notes and the selected options into a generation request
type Builder struct {
	template    string
	model       string
	temperature float32
}

// NewPromptBuilder creates a new prompt builder. Empty model means provider default.
func NewPromptBuilder(model string, temperature float32) *Builder {
	template, err := NewPromptLoader().GetSystemPrompt()
	if err != nil {
		log.Printf("⚠️  Failed to load system prompt: %v", err)
	}
	return &Builder{
		template:    template,
		model:       model,
		temperature: temperature,
	}
}

// Build is pure and deterministic. It does not validate rawInput.
func (b *Builder) Build(rawInput string, tone models.Tone, length models.Length) *llm.GenerationRequest {
	return &llm.GenerationRequest{
		Model:        b.model,
		SystemPrompt: b.SystemPrompt(tone, length),
		Input:        rawInput,
		Temperature:  b.temperature,
		Tone:         tone,
		Length:       length,
	}
}

// SystemPrompt renders the instruction block for the given options
func (b *Builder) SystemPrompt(tone models.Tone, length models.Length) string {
	replacer := strings.NewReplacer(
		placeholderTone, tone.Label(),
		placeholderLength, length.Label(),
		placeholderToneGuide, "- "+toneGuides[tone],
		placeholderLengthGuide, "- "+lengthGuides[length],
	)
	return replacer.Replace(b.template)
}
