package validator

import (
	"strings"

	"github.com/stucknotes/stuck/pkg/errors"
)

const (
	maxTitleLength  = 255
	maxBodyLength   = 1048576 // 1MB max
	maxFolderLength = 64
)

type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// SanitizeString removes null bytes and surrounding whitespace
func (v *Validator) SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.TrimSpace(input)

	return input
}

// ValidateNoteTitle validates a note title
func (v *Validator) ValidateNoteTitle(title string) error {
	if len(title) > maxTitleLength {
		return errors.NewAppError(errors.ErrInvalidInput, "title too long (max 255 characters)")
	}

	return nil
}

// ValidateNoteBody validates a serialized note body
func (v *Validator) ValidateNoteBody(body string) error {
	if len(body) > maxBodyLength {
		return errors.NewAppError(errors.ErrInvalidInput, "body too long (max 1MB)")
	}

	return nil
}

// ValidateFolderName validates a folder name
func (v *Validator) ValidateFolderName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) == 0 {
		return errors.NewAppError(errors.ErrInvalidInput, "folder name cannot be empty")
	}

	if len(name) > maxFolderLength {
		return errors.NewAppError(errors.ErrInvalidInput, "folder name too long (max 64 characters)")
	}

	if strings.ContainsAny(name, "\x00\n\r") {
		return errors.NewAppError(errors.ErrInvalidInput, "folder name contains control characters")
	}

	return nil
}
