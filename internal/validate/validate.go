package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/asauntung/bumdes/internal/apperr"
	"github.com/asauntung/bumdes/internal/models"
)

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string { // error interface
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

var v = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("txntype", func(fl validator.FieldLevel) bool {
		return models.TransactionType(fl.Field().String()).IsValid()
	})
	return v
}

// Struct validates s and returns a VALIDATION_ERROR carrying Errs as details.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Wrap(apperr.CodeValidation, err, "validation failed")
	}
	out := make(Errs, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ErrField{Field: fe.Field(), Msg: message(fe)})
	}
	return apperr.Wrap(apperr.CodeValidation, out, "validation failed").WithDetails(out)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "required"
	case "gt":
		return "must be > " + fe.Param()
	case "datetime":
		return "must be a date formatted " + models.DateLayout
	case "category":
		return fmt.Sprintf("unknown category %q", fe.Value())
	case "txntype":
		return "must be income or expense"
	}
	return "invalid"
}
