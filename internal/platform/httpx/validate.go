package httpx

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
)

// Messages shared by request validation across modules.
const (
	MsgRequired = "This field is required."
	MsgBlank    = "This field may not be blank."
)

// NewValidator returns a validator that reports fields by their json name and
// understands the notblank tag.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() == reflect.String {
			return strings.TrimSpace(field.String()) != ""
		}
		return !field.IsZero()
	})
	return v
}

// ValidateStruct runs struct tag validation and merges failures into fields.
// Errors other than validation failures are returned unchanged.
func ValidateStruct(v *validator.Validate, s any, fields FieldErrors) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		key, rest := splitNamespace(fe.Namespace())
		msg := tagMessage(fe)
		if rest != "" {
			msg = rest + ": " + msg
		}
		fields.Add(key, msg)
	}
	return nil
}

// NormalizeText trims s and converts it to Unicode NFC so composed and
// decomposed spellings compare equal.
func NormalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// splitNamespace turns "Req.field_values[0].field" into ("field_values", "[0].field").
func splitNamespace(ns string) (string, string) {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	if i := strings.IndexAny(ns, ".["); i >= 0 {
		return ns[:i], strings.TrimPrefix(ns[i:], ".")
	}
	return ns, ""
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "notblank":
		return MsgBlank
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Ensure this field has no more than %s elements.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "gt":
		return fmt.Sprintf("Ensure this value is greater than %s.", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", fe.Param())
	default:
		return "Invalid value."
	}
}
