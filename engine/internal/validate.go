package internal

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/adhocore/gronx"
	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/go-playground/validator/v10"
)

var (
	RegexpActivityId   = regexp.MustCompile("^[a-zA-Z0-9_.-]+$")
	RegexpVariableName = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

	validate = newValidate()
)

func newValidate() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0] // e.g. `json:"dueDate,omitempty"` -> dueDate
		if name == "" || name == "-" {
			return lowerFirst(f.Name) // command IDs are not part of the JSON body, but must be validated
		}
		return name
	})

	validate.RegisterValidation("activity_id", func(fl validator.FieldLevel) bool {
		return RegexpActivityId.MatchString(fl.Field().String())
	})
	validate.RegisterValidation("cron", func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		if v == "" {
			return true
		}
		return gronx.IsValid(v)
	})
	validate.RegisterValidation("iso8601_duration", func(fl validator.FieldLevel) bool {
		_, err := engine.NewISO8601Duration(fl.Field().String())
		return err == nil
	})
	validate.RegisterValidation("variable_name", func(fl validator.FieldLevel) bool {
		return RegexpVariableName.MatchString(fl.Field().String())
	})

	return validate
}

// validateCmd validates a command struct.
// Validation errors are returned as an [engine.Error] of type [engine.ErrorValidation] with one cause per invalid field.
func validateCmd(title string, cmd any) error {
	err := validate.Struct(cmd)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("failed to validate command: %v", err)
	}

	causes := make([]engine.ErrorCause, len(validationErrors))
	for i, fieldError := range validationErrors {
		var detail string
		switch fieldError.Tag() {
		case "excluded_with":
			detail = "must not be provided together with " + lowerFirst(fieldError.Param())
		case "gte":
			detail = fmt.Sprintf("must be greater than or equal to %s", fieldError.Param())
		case "max":
			detail = fmt.Sprintf("exceeds a maximum of %s", fieldError.Param())
		case "min":
			detail = fmt.Sprintf("must contain at least %s", fieldError.Param())
		case "required":
			detail = "is required"
		case "required_without":
			detail = "is required, when " + lowerFirst(fieldError.Param()) + " is not provided"
		case "unique":
			detail = "must be unique"
		// custom validation
		case "activity_id":
			detail = fmt.Sprintf("must match regex %s", RegexpActivityId)
		case "cron":
			detail = "is invalid"
		case "iso8601_duration":
			detail = "is invalid"
		case "variable_name":
			detail = fmt.Sprintf("must match regex %s", RegexpVariableName)
		default:
			detail = "is invalid"
		}

		causes[i] = engine.ErrorCause{
			Pointer: pointer(fieldError.Namespace()),
			Type:    fieldError.Tag(),
			Detail:  detail,
		}
	}

	return engine.Error{
		Type:   engine.ErrorValidation,
		Title:  title,
		Detail: "invalid command",
		Causes: causes,
	}
}

// pointer converts a validator namespace into a JSON pointer like string.
// e.g. CreateCaseDefinitionCmd.planItems[0].id -> #/planItems/0/id
func pointer(namespace string) string {
	_, path, ok := strings.Cut(namespace, ".")
	if !ok {
		return "#"
	}

	var sb strings.Builder
	sb.WriteString("#/")
	for _, r := range path {
		switch r {
		case '.', '[':
			sb.WriteRune('/')
		case ']':
			continue
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
