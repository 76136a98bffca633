package prompt

import (
	"strings"
	"testing"
)

func TestNewPromptLoader(t *testing.T) {
	loader := NewPromptLoader()
	if loader == nil {
		t.Fatal("NewPromptLoader() returned nil")
	}
}

func TestGetSystemPrompt(t *testing.T) {
	loader := NewPromptLoader()
	content, err := loader.GetSystemPrompt()

	if err != nil {
		t.Fatalf("GetSystemPrompt() returned error: %v", err)
	}

	if content == "" {
		t.Error("GetSystemPrompt() returned empty string")
	}

	// Check for expected content
	if !strings.Contains(content, "ライティングアシスタント") {
		t.Error("GetSystemPrompt() does not contain expected content")
	}

	for _, placeholder := range []string{placeholderTone, placeholderLength, placeholderToneGuide, placeholderLengthGuide} {
		if !strings.Contains(content, placeholder) {
			t.Errorf("GetSystemPrompt() missing placeholder %s", placeholder)
		}
	}

	// Ensure no surrounding whitespace
	if strings.TrimSpace(content) != content {
		t.Error("GetSystemPrompt() was not trimmed")
	}
}
