package service

import (
	"github.com/lom3e/Formingo/internal/contact/domain"
	"github.com/lom3e/Formingo/internal/platform/validation"
)

type requiredFields struct {
	Name    string `validate:"required"`
	Email   string `validate:"required"`
	Message string `validate:"required"`
}

// Validate checks a submission in a fixed order and reports the first failing
// rule only: required fields, then email shape, then the privacy flag.
func Validate(sub domain.Submission) error {
	v := validation.Engine()
	if err := v.Struct(requiredFields{Name: sub.Name, Email: sub.Email, Message: sub.Message}); err != nil {
		return domain.ErrMissingFields
	}
	if err := v.Var(sub.Email, validation.TagContactEmail); err != nil {
		return domain.ErrInvalidEmail
	}
	if accepted, ok := sub.PrivacyAccepted.(bool); !ok || !accepted {
		return domain.ErrPrivacyNotAccepted
	}
	return nil
}
