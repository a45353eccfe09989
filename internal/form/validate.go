// Package form validates upload input and submits it through the storage
// collaborator and the create-image mutation.
package form

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/five82/gallery/internal/upload"
)

// Field names reported in ValidationError.
const (
	FieldImage       = "image"
	FieldTitle       = "title"
	FieldDescription = "description"
)

// Reason explains why a field failed validation.
type Reason string

const (
	ReasonRequired  Reason = "required"
	ReasonTooLarge  Reason = "tooLarge"
	ReasonBadFormat Reason = "badFormat"
	ReasonTooShort  Reason = "tooShort"
	ReasonTooLong   Reason = "tooLong"
)

var acceptedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
}

// ValidationError is a field-scoped client-side failure.
type ValidationError struct {
	Field  string
	Reason Reason
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Errors collects one ValidationError per failing field, in form order.
type Errors []ValidationError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, v := range e {
		parts[i] = v.Error()
	}
	return "invalid form: " + strings.Join(parts, ", ")
}

// Reason returns the failure for field, if any.
func (e Errors) Reason(field string) (Reason, bool) {
	for _, v := range e {
		if v.Field == field {
			return v.Reason, true
		}
	}
	return "", false
}

// Rules are the configured limits. Lengths count runes.
type Rules struct {
	MaxImageBytes  int64
	TitleMin       int
	TitleMax       int
	DescriptionMax int
}

// DefaultRules mirrors the limits the gallery has always shipped with.
func DefaultRules() Rules {
	return Rules{
		MaxImageBytes:  100000,
		TitleMin:       3,
		TitleMax:       10,
		DescriptionMax: 10,
	}
}

// Input is the raw form. A nil Image means no file was picked.
type Input struct {
	Image       *upload.File
	Title       string
	Description string
}

// Validate checks every field. It returns Errors, or nil when the input may be submitted.
func (r Rules) Validate(in Input) error {
	var errs Errors
	if reason, ok := r.checkImage(in.Image); !ok {
		errs = append(errs, ValidationError{Field: FieldImage, Reason: reason})
	}
	if reason, ok := r.checkTitle(in.Title); !ok {
		errs = append(errs, ValidationError{Field: FieldTitle, Reason: reason})
	}
	if reason, ok := r.checkDescription(in.Description); !ok {
		errs = append(errs, ValidationError{Field: FieldDescription, Reason: reason})
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (r Rules) checkImage(file *upload.File) (Reason, bool) {
	if file == nil || strings.TrimSpace(file.Name) == "" {
		return ReasonRequired, false
	}
	if file.Size >= r.MaxImageBytes {
		return ReasonTooLarge, false
	}
	if !acceptedExtensions[strings.ToLower(filepath.Ext(file.Name))] {
		return ReasonBadFormat, false
	}
	return "", true
}

func (r Rules) checkTitle(title string) (Reason, bool) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return ReasonRequired, false
	}
	n := utf8.RuneCountInString(trimmed)
	if n < r.TitleMin {
		return ReasonTooShort, false
	}
	if n > r.TitleMax {
		return ReasonTooLong, false
	}
	return "", true
}

func (r Rules) checkDescription(description string) (Reason, bool) {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return ReasonRequired, false
	}
	if utf8.RuneCountInString(trimmed) > r.DescriptionMax {
		return ReasonTooLong, false
	}
	return "", true
}

// Message renders a reason for display next to its field.
func (r Rules) Message(v ValidationError) string {
	switch v.Reason {
	case ReasonRequired:
		return fmt.Sprintf("%s is required", v.Field)
	case ReasonTooLarge:
		return fmt.Sprintf("image must be smaller than %d bytes", r.MaxImageBytes)
	case ReasonBadFormat:
		return "accepted formats: jpg, jpeg, png, gif, bmp"
	case ReasonTooShort:
		return fmt.Sprintf("%s needs at least %d characters", v.Field, r.TitleMin)
	case ReasonTooLong:
		limit := r.TitleMax
		if v.Field == FieldDescription {
			limit = r.DescriptionMax
		}
		return fmt.Sprintf("%s allows at most %d characters", v.Field, limit)
	default:
		return string(v.Reason)
	}
}
