package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/anonto42/nano-midea/socialgraph/pkg/apperror"
	"github.com/go-playground/validator/v10"
)

var wordPattern = regexp.MustCompile(`^\w+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// "word" mirrors the username rule: letters, digits and underscore only.
	_ = v.RegisterValidation("word", func(fl validator.FieldLevel) bool {
		return wordPattern.MatchString(fl.Field().String())
	})
	return v
}

func validateStruct(op string, s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperror.Wrap(op, apperror.Validation, "invalid input", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
	}
	return apperror.Wrap(op, apperror.Validation, strings.Join(msgs, "; "), err)
}
