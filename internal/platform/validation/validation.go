// Package validation validates request structs with go-playground/validator and renders
// English messages for field failures.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	dErrors "votegate/pkg/domain-errors"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

var phonePattern = regexp.MustCompile(`^\+?[0-9]{8,15}$`)

var (
	once     sync.Once
	validate *validator.Validate
	trans    ut.Translator
)

func instance() (*validator.Validate, ut.Translator) {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		english := en.New()
		t, _ := ut.New(english, english).GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(v, t)

		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(DateLayout, fl.Field().String())
			return err == nil
		})
		registerMessage(v, t, "phone", "{0} must be a phone number with 8 to 15 digits")
		registerMessage(v, t, "date", "{0} must be a date in YYYY-MM-DD format")

		validate, trans = v, t
	})
	return validate, trans
}

func registerMessage(v *validator.Validate, t ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, t,
		func(ut ut.Translator) error { return ut.Add(tag, text, true) },
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T(tag, fe.Field())
			return msg
		})
}

// Struct validates s against its `validate` tags. Failures come back as a
// CodeValidation error whose details list one message per field.
func Struct(s any) error {
	v, t := instance()
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return dErrors.Wrap(err, dErrors.CodeValidation, "invalid request")
	}
	details := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, fe.Translate(t))
	}
	return dErrors.New(dErrors.CodeValidation, details[0]).WithDetails(details...)
}

// IsPhone reports whether s looks like a phone number (optional +, 8 to 15 digits).
func IsPhone(s string) bool {
	return phonePattern.MatchString(s)
}
