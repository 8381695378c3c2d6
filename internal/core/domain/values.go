package domain

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorushkin/ledgerly/internal/apperrors"
)

// validate backs the scalar value-object constructors. gin uses its own
// validator instance for request binding; this one is for the domain layer.
var validate = validator.New()

// Email is a validated email address.
type Email string

// NewEmail validates and normalizes an email address.
func NewEmail(raw string) (Email, error) {
	if err := validate.Var(raw, "required,email"); err != nil {
		return "", fmt.Errorf("%w: %q is not a valid email address", apperrors.ErrValidation, raw)
	}
	return Email(raw), nil
}

// String implements fmt.Stringer.
func (e Email) String() string { return string(e) }

// UserName is a validated display name.
type UserName string

// NewUserName validates a user display name.
func NewUserName(raw string) (UserName, error) {
	if err := validate.Var(raw, "required,min=1,max=255"); err != nil {
		return "", fmt.Errorf("%w: name must be between 1 and 255 characters", apperrors.ErrValidation)
	}
	return UserName(raw), nil
}

// String implements fmt.Stringer.
func (n UserName) String() string { return string(n) }

// dateLayout is the wire and storage format for calendar dates.
const dateLayout = "2006-01-02"

// DateString is a validated YYYY-MM-DD calendar date, used for posting and
// transaction dates where time of day is irrelevant.
type DateString string

// NewDateString validates a calendar date string.
func NewDateString(raw string) (DateString, error) {
	if _, err := time.Parse(dateLayout, raw); err != nil {
		return "", fmt.Errorf("%w: %q is not a valid YYYY-MM-DD date", apperrors.ErrValidation, raw)
	}
	return DateString(raw), nil
}

// Time returns the date at midnight UTC.
func (d DateString) Time() time.Time {
	t, _ := time.Parse(dateLayout, string(d))
	return t
}

// String implements fmt.Stringer.
func (d DateString) String() string { return string(d) }
