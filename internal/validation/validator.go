package validation

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Validator validates structs
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate validates a struct against its `validate` tags. Supported
// rules: required, email, min=N, max=N, gt=N, oneof=a b c.
func (v *Validator) Validate(s interface{}) error {
	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return fmt.Errorf("validate expects a struct")
	}

	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		tag := fieldType.Tag.Get("validate")

		if tag == "" {
			continue
		}

		if err := v.validateField(field, tag); err != nil {
			return fmt.Errorf("%s: %w", fieldType.Name, err)
		}
	}

	return nil
}

// validateField validates a single field
func (v *Validator) validateField(field reflect.Value, tag string) error {
	rules := strings.Split(tag, ",")

	// Optional pointer fields are validated only when set.
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			for _, rule := range rules {
				if rule == "required" {
					return fmt.Errorf("field is required")
				}
			}
			return nil
		}
		field = field.Elem()
	}

	for _, rule := range rules {
		parts := strings.SplitN(rule, "=", 2)
		ruleName := parts[0]
		arg := ""
		if len(parts) == 2 {
			arg = parts[1]
		}

		switch ruleName {
		case "required":
			if field.IsZero() {
				return fmt.Errorf("field is required")
			}

		case "email":
			if field.Kind() == reflect.String {
				email := field.String()
				at := strings.Index(email, "@")
				if at <= 0 || at == len(email)-1 {
					return fmt.Errorf("invalid email format")
				}
			}

		case "min":
			n, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				continue
			}
			if !atLeast(field, n) {
				return fmt.Errorf("minimum is %s", arg)
			}

		case "max":
			n, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				continue
			}
			if !atMost(field, n) {
				return fmt.Errorf("maximum is %s", arg)
			}

		case "gt":
			n, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				continue
			}
			if !greaterThan(field, n) {
				return fmt.Errorf("must be greater than %s", arg)
			}

		case "oneof":
			if field.Kind() == reflect.String {
				value := field.String()
				allowed := strings.Fields(arg)
				found := false
				for _, a := range allowed {
					if value == a {
						found = true
						break
					}
				}
				if !found {
					return fmt.Errorf("must be one of: %s", arg)
				}
			}
		}
	}

	return nil
}

// size returns the comparable magnitude of a field: length for strings
// and collections, the numeric value otherwise.
func size(field reflect.Value) (float64, bool) {
	switch field.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return float64(field.Len()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(field.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(field.Uint()), true
	case reflect.Float32, reflect.Float64:
		return field.Float(), true
	}
	return 0, false
}

func atLeast(field reflect.Value, n float64) bool {
	s, ok := size(field)
	return !ok || s >= n
}

func atMost(field reflect.Value, n float64) bool {
	s, ok := size(field)
	return !ok || s <= n
}

func greaterThan(field reflect.Value, n float64) bool {
	s, ok := size(field)
	return !ok || s > n
}
