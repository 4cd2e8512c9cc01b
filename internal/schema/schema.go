// Package schema enforces the declared shape of every analysis result
// before it leaves the core. Shapes are expressed as validator struct tags
// on the pkg/models result types; this package owns the validator instance
// and the custom rules those tags reference.
package schema

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrSchemaViolation is returned when a result does not match its schema.
var ErrSchemaViolation = errors.New("schema: result violates declared shape")

// Defaulter is implemented by results with optional fields that carry a
// default value (empty lists, empty records) rather than null.
type Defaulter interface {
	ApplyDefaults()
}

// FieldError describes a single failing field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func (f FieldError) String() string {
	if f.Param != "" {
		return fmt.Sprintf("%s failed %s=%s", f.Field, f.Rule, f.Param)
	}
	return fmt.Sprintf("%s failed %s", f.Field, f.Rule)
}

// Error lists every field that failed validation for one result type.
type Error struct {
	Type   string
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("%s: %s: %s", ErrSchemaViolation.Error(), e.Type, strings.Join(parts, "; "))
}

// Unwrap makes errors.Is(err, ErrSchemaViolation) hold.
func (e *Error) Unwrap() error { return ErrSchemaViolation }

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report JSON names so errors line up with what callers see.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})

		// finite rejects NaN and ±Inf, which encoding/json cannot emit.
		_ = validate.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
			switch fl.Field().Kind() {
			case reflect.Float32, reflect.Float64:
				f := fl.Field().Float()
				return !math.IsNaN(f) && !math.IsInf(f, 0)
			default:
				return true
			}
		})

		// maxwords caps the whitespace-separated word count of a string.
		_ = validate.RegisterValidation("maxwords", func(fl validator.FieldLevel) bool {
			if fl.Field().Kind() != reflect.String {
				return true
			}
			limit, err := strconv.Atoi(fl.Param())
			if err != nil {
				return false
			}
			return len(strings.Fields(fl.Field().String())) <= limit
		})
	})
	return validate
}

// Validate applies defaults (when v implements Defaulter) and checks v
// against its declared shape. v must be a pointer to a struct.
func Validate(v any) error {
	if d, ok := v.(Defaulter); ok {
		d.ApplyDefaults()
	}

	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, invalid)
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}

	out := &Error{Type: typeName(v)}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field: trimRoot(fe.Namespace()),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return out
}

func typeName(v any) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// trimRoot drops the leading struct name from a validator namespace
// ("SarMemo.evidence[0]" -> "evidence[0]").
func trimRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
