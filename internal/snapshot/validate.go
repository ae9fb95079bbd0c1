package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// The leading hash is optional; authoring tools emit both forms.
var hex6colorPattern = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report violations under the JSON field names the authoring tool
	// uses, not Go struct field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("hex6color", func(fl validator.FieldLevel) bool {
		return hex6colorPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register hex6color validation: %v", err))
	}
	return v
}

// Violation is a single schema violation with its field path.
type Violation struct {
	Field  string
	Reason string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Reason)
}

// ValidationError reports every violation found in a snapshot so the
// caller can surface all problems at once.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "invalid layout snapshot"
	}
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "invalid layout snapshot: " + strings.Join(parts, "; ")
}

// Validate parses raw snapshot JSON and checks it against the fixed v2
// schema. It either returns the parsed snapshot or a *ValidationError
// listing every violation found. It has no side effects; validating the
// same bytes twice yields the same outcome.
func Validate(raw []byte) (*LayoutSnapshot, error) {
	if len(raw) == 0 {
		return nil, &ValidationError{Violations: []Violation{{Field: "(document)", Reason: "empty snapshot"}}}
	}

	var snap LayoutSnapshot
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&snap); err != nil {
		return nil, &ValidationError{Violations: []Violation{{Field: "(document)", Reason: fmt.Sprintf("malformed JSON: %v", err)}}}
	}

	if err := validate.Struct(&snap); err != nil {
		var fieldErrs validator.ValidationErrors
		verr := &ValidationError{}
		if ok := asValidationErrors(err, &fieldErrs); ok {
			for _, fe := range fieldErrs {
				verr.Violations = append(verr.Violations, Violation{
					Field:  trimNamespace(fe.Namespace()),
					Reason: reasonFor(fe),
				})
			}
		} else {
			verr.Violations = append(verr.Violations, Violation{Field: "(document)", Reason: err.Error()})
		}
		return nil, verr
	}
	return &snap, nil
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*target = fieldErrs
	return true
}

// trimNamespace drops the leading struct name from a validator namespace
// ("LayoutSnapshot.layers[0].color" -> "layers[0].color").
func trimNamespace(ns string) string {
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return ns
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "eq":
		return fmt.Sprintf("must be %q, got %q", fe.Param(), fmt.Sprint(fe.Value()))
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "min":
		return fmt.Sprintf("must contain at least %s entries", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "required":
		return "is required"
	case "hex6color":
		return fmt.Sprintf("must be a 6-digit hex color like #1a2b3c, got %q", fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("failed %q constraint", fe.Tag())
	}
}
