package binder

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
)

// FieldError can be returned from a custom UnmarshalJSON to report a field
// value that has the right JSON type but can't be used.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%q %s", e.Field, e.Message)
}

// httpURLValidator ensures the value is an absolute http(s) URL or the empty
// string, so optional links can be cleared.
func httpURLValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// OptionalString tells a JSON key that was left out apart from one sent as
// null or a string. Validation tags apply to the string value.
type OptionalString struct {
	Value *string
	Set   bool
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if strings.TrimSpace(string(data)) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("optional string must be a string or null")
	}
	o.Value = &s
	return nil
}

func optionalStringValue(v reflect.Value) interface{} {
	o, ok := v.Interface().(OptionalString)
	if !ok || o.Value == nil {
		return ""
	}
	return *o.Value
}
