package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/iudanet/geojournal/internal/apperr"
)

const (
	// MaxTitleLen максимальная длина заголовка записи
	MaxTitleLen = 100
	// MaxDescriptionLen максимальная длина описания
	MaxDescriptionLen = 500
)

// ValidateTitle expects a trimmed title.
func ValidateTitle(title string) error {
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return fmt.Errorf("title must be between 1 and %d characters", MaxTitleLen)
	}
	return nil
}

// ValidateDescription expects a trimmed description.
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLen {
		return fmt.Errorf("description cannot exceed %d characters", MaxDescriptionLen)
	}
	return nil
}

// ValidateLatitude проверяет диапазон -90..90
func ValidateLatitude(lat float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	return nil
}

// ValidateLongitude проверяет диапазон -180..180
func ValidateLongitude(lon float64) error {
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	return nil
}

// ParseCoordinate parses a form value into a finite number.
func ParseCoordinate(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("value is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("value must be a number")
	}
	return v, nil
}

// Errors накапливает ошибки по полям, чтобы вернуть их все сразу
type Errors []apperr.FieldError

// Check records err against field when err is non-nil.
func (e *Errors) Check(field string, err error) {
	if err != nil {
		*e = append(*e, apperr.FieldError{Field: field, Message: err.Error()})
	}
}

// Add records a message against field.
func (e *Errors) Add(field, message string) {
	*e = append(*e, apperr.FieldError{Field: field, Message: message})
}

// Err returns nil when nothing was recorded.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return apperr.Validation(e...)
}
