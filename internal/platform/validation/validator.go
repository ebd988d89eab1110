package validation

import (
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
)

// TagContactEmail validates the loose local@domain.tld shape used by contact forms.
const TagContactEmail = "contact_email"

// One or more characters that are neither whitespace nor '@', then '@', then the
// same class, a dot, and the same class again. Whitespace includes Unicode spaces.
var contactEmailRe = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)

var (
	once   sync.Once
	engine *validator.Validate
)

// Engine returns the shared validator with the project's custom tags registered.
func Engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation(TagContactEmail, func(fl validator.FieldLevel) bool {
			return IsContactEmail(fl.Field().String())
		})
		engine = v
	})
	return engine
}

// IsContactEmail reports whether s has the local@domain.tld shape.
func IsContactEmail(s string) bool {
	return contactEmailRe.MatchString(s)
}
