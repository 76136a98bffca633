package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownTone   = errors.New("unknown tone")
	ErrUnknownLength = errors.New("unknown length")
)

// Tone is the register the expanded text is written in.
type Tone string

const (
	ToneBusiness Tone = "business"
	ToneCasual   Tone = "casual"
	TonePolite   Tone = "polite"
	ToneAcademic Tone = "academic"
	ToneCreative Tone = "creative"
	ToneEmail    Tone = "email"

	DefaultTone = ToneBusiness
)

// Length controls how much the model expands the notes.
type Length string

const (
	LengthConcise  Length = "concise"
	LengthStandard Length = "standard"
	LengthDetailed Length = "detailed"

	DefaultLength = LengthStandard
)

// ToneOption pairs a tone with its display label.
type ToneOption struct {
	Value Tone   `json:"value"`
	Label string `json:"label"`
}

// LengthOption pairs a length with its display label.
type LengthOption struct {
	Value Length `json:"value"`
	Label string `json:"label"`
}

// Display order of the selects on the page.
var (
	toneOptions = []ToneOption{
		{ToneBusiness, "ビジネス"},
		{ToneCasual, "カジュアル"},
		{TonePolite, "丁寧・敬語"},
		{ToneAcademic, "アカデミック"},
		{ToneCreative, "クリエイティブ"},
		{ToneEmail, "メール作成"},
	}
	lengthOptions = []LengthOption{
		{LengthConcise, "短め (要約)"},
		{LengthStandard, "普通"},
		{LengthDetailed, "長め (詳細)"},
	}
)

// Tones returns every tone in display order.
func Tones() []ToneOption {
	out := make([]ToneOption, len(toneOptions))
	copy(out, toneOptions)
	return out
}

// Lengths returns every length in display order.
func Lengths() []LengthOption {
	out := make([]LengthOption, len(lengthOptions))
	copy(out, lengthOptions)
	return out
}

// Label returns the Japanese label shown to users and embedded in prompts.
func (t Tone) Label() string {
	for _, opt := range toneOptions {
		if opt.Value == t {
			return opt.Label
		}
	}
	return string(t)
}

// Valid reports whether t is one of the known tones.
func (t Tone) Valid() bool {
	for _, opt := range toneOptions {
		if opt.Value == t {
			return true
		}
	}
	return false
}

func (l Length) Label() string {
	for _, opt := range lengthOptions {
		if opt.Value == l {
			return opt.Label
		}
	}
	return string(l)
}

func (l Length) Valid() bool {
	for _, opt := range lengthOptions {
		if opt.Value == l {
			return true
		}
	}
	return false
}

// ParseTone accepts a wire value (case-insensitive). Empty input yields DefaultTone.
func ParseTone(s string) (Tone, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultTone, nil
	}
	t := Tone(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTone, s)
	}
	return t, nil
}

// ParseLength accepts a wire value (case-insensitive). Empty input yields DefaultLength.
func ParseLength(s string) (Length, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultLength, nil
	}
	l := Length(s)
	if !l.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownLength, s)
	}
	return l, nil
}
