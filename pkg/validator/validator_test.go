package validator

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stucknotes/stuck/pkg/errors"
)

func TestSanitizeString(t *testing.T) {
	v := New()

	if got := v.SanitizeString("  hello\x00world  "); got != "helloworld" {
		t.Errorf("SanitizeString = %q", got)
	}
}

func TestValidateNoteTitle(t *testing.T) {
	v := New()

	if err := v.ValidateNoteTitle("A reasonable title"); err != nil {
		t.Errorf("Valid title rejected: %v", err)
	}
	if err := v.ValidateNoteTitle(""); err != nil {
		t.Errorf("Empty title should be allowed: %v", err)
	}

	err := v.ValidateNoteTitle(strings.Repeat("x", 256))
	if err == nil {
		t.Fatal("Oversized title accepted")
	}
	if !stderrors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestValidateNoteBody(t *testing.T) {
	v := New()

	if err := v.ValidateNoteBody(strings.Repeat("x", 1048576)); err != nil {
		t.Errorf("Body at the limit rejected: %v", err)
	}
	if err := v.ValidateNoteBody(strings.Repeat("x", 1048577)); err == nil {
		t.Error("Oversized body accepted")
	}
}

func TestValidateFolderName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "Work", false},
		{"with spaces", "Side Projects", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"too long", strings.Repeat("x", 65), true},
		{"newline", "bad\nname", true},
		{"null byte", "bad\x00name", true},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateFolderName(tt.input)
			if tt.wantErr && err == nil {
				t.Errorf("ValidateFolderName(%q) accepted", tt.input)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateFolderName(%q) rejected: %v", tt.input, err)
			}
		})
	}
}
