package account

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/locales/ru"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	ruTranslations "github.com/go-playground/validator/v10/translations/ru"
)

const (
	minPasswordRunes   = 8
	minPasswordLetters = 2
	// MaxPasswordBytes is the longest password bcrypt accepts.
	MaxPasswordBytes = 72
	maxUsernameRunes = 64
)

// Credentials is what a learner submits to register or log in.
type Credentials struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,password_len,password"`
}

// InvalidInputError carries user-facing messages for rejected credentials.
type InvalidInputError struct {
	Messages []string
}

func (e *InvalidInputError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// ValidUsername reports whether name starts with an upper-case letter,
// contains no digits and fits the column.
func ValidUsername(name string) bool {
	first, size := utf8.DecodeRuneInString(name)
	if size == 0 || !unicode.IsUpper(first) {
		return false
	}
	if utf8.RuneCountInString(name) > maxUsernameRunes {
		return false
	}
	for _, r := range name {
		if unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ValidPasswordLength reports whether pw fits the bcrypt input limit.
func ValidPasswordLength(pw string) bool {
	return len(pw) <= MaxPasswordBytes
}

// ValidPassword reports whether pw has at least eight characters, two of
// them ASCII letters, and is at most MaxPasswordBytes long.
func ValidPassword(pw string) bool {
	if !ValidPasswordLength(pw) || utf8.RuneCountInString(pw) < minPasswordRunes {
		return false
	}
	letters := 0
	for _, r := range pw {
		if r < unicode.MaxASCII && unicode.IsLetter(r) {
			letters++
		}
	}
	return letters >= minPasswordLetters
}

type ruleSet struct {
	validate *validator.Validate
	trans    ut.Translator
}

func newRuleSet() (*ruleSet, error) {
	validate := validator.New()

	ruLocale := ru.New()
	uni := ut.New(ruLocale, ruLocale)
	trans, _ := uni.GetTranslator("ru")
	if err := ruTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	custom := []struct {
		tag     string
		fn      func(string) bool
		message string
	}{
		{"username", ValidUsername, "Имя должно начинаться с заглавной буквы и не содержать цифр"},
		{"password_len", ValidPasswordLength, "Пароль не должен быть длиннее 72 байт"},
		{"password", ValidPassword, "Пароль: минимум 8 символов, 2+ английские буквы"},
	}
	for _, c := range custom {
		fn := c.fn
		if err := validate.RegisterValidation(c.tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		}); err != nil {
			return nil, fmt.Errorf("failed to register %s validation: %w", c.tag, err)
		}
		tag, message := c.tag, c.message
		if err := validate.RegisterTranslation(tag, trans, func(ut ut.Translator) error {
			return ut.Add(tag, message, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag)
			return t
		}); err != nil {
			return nil, fmt.Errorf("failed to register %s translation: %w", c.tag, err)
		}
	}

	return &ruleSet{validate: validate, trans: trans}, nil
}

func (rs *ruleSet) check(c Credentials) error {
	err := rs.validate.Struct(c)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("validate credentials: %w", err)
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, e.Translate(rs.trans))
	}
	return &InvalidInputError{Messages: msgs}
}
