package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("typeid", isTypeID)
	return v
}

// RegisterValidation adds a named constraint usable in `validate` tags.
// Must be called from package init, before any decoding happens.
func RegisterValidation(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Errorf("schema: register %q: %w", tag, err))
	}
}

// isTypeID accepts strictly positive identifiers and the -1 sentinel.
func isTypeID(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := fl.Field().Int()
		return v > 0 || v == -1
	default:
		return false
	}
}

type fieldRule struct {
	name     string
	index    []int
	required bool
	rule     string
}

type shape struct {
	fields []fieldRule
	byName map[string]struct{}
}

var shapes sync.Map // reflect.Type -> *shape

var unmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()

// shapeOf derives the closed key set of a struct from its json tags.
// Keys tagged omitempty, and pointer fields, are optional; all others are required.
func shapeOf(t reflect.Type) *shape {
	if cached, ok := shapes.Load(t); ok {
		return cached.(*shape)
	}
	sh := &shape{byName: make(map[string]struct{}, t.NumField())}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = sf.Name
		}
		optional := strings.Contains(opts, "omitempty") || sf.Type.Kind() == reflect.Pointer
		sh.fields = append(sh.fields, fieldRule{
			name:     name,
			index:    sf.Index,
			required: !optional,
			rule:     sf.Tag.Get("validate"),
		})
		sh.byName[name] = struct{}{}
	}
	actual, _ := shapes.LoadOrStore(t, sh)
	return actual.(*shape)
}

// ReadArray splits a JSON document into its top-level array elements.
func ReadArray(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &FieldError{Reason: ReasonMalformed, Detail: "expected a JSON array"}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, &FieldError{Reason: ReasonMalformed, Detail: err.Error()}
	}
	return items, nil
}

// ReadObject decodes raw into its keys, failing when raw is not an object.
func ReadObject(raw json.RawMessage, path string) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &FieldError{Field: path, Reason: ReasonNotObject, Detail: "expected object, got " + jsonKind(trimmed)}
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, &FieldError{Field: path, Reason: ReasonNotObject, Detail: err.Error()}
	}
	return obj, nil
}

// DecodeStrict decodes an object into dst, a pointer to struct, rejecting
// unknown keys, missing required keys, nulls, mistyped values, and values
// violating the field's `validate` rule. Nested structs are decoded with the
// same discipline. Only present keys are validated.
func DecodeStrict(raw json.RawMessage, dst any, path string) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("schema: DecodeStrict needs a non-nil struct pointer, got %T", dst))
	}
	obj, err := ReadObject(raw, path)
	if err != nil {
		return err
	}
	return DecodeObject(obj, dst, path)
}

// DecodeObject is DecodeStrict for an object already split into keys.
func DecodeObject(obj map[string]json.RawMessage, dst any, path string) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("schema: DecodeObject needs a non-nil struct pointer, got %T", dst))
	}
	return decodeInto(obj, rv.Elem(), path)
}

func decodeInto(obj map[string]json.RawMessage, v reflect.Value, path string) error {
	sh := shapeOf(v.Type())

	// ключи сортируем, чтобы первая ошибка была детерминированной
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := sh.byName[k]; !ok {
			return &FieldError{Field: joinPath(path, k), Reason: ReasonUnknownField, Detail: "key is not part of the shape"}
		}
	}

	for _, f := range sh.fields {
		fp := joinPath(path, f.name)
		raw, ok := obj[f.name]
		if !ok {
			if f.required {
				return &FieldError{Field: fp, Reason: ReasonMissingField, Detail: "required key is absent"}
			}
			continue
		}
		if isNull(raw) {
			return &FieldError{Field: fp, Reason: ReasonWrongType, Detail: "null is not allowed"}
		}
		fv := v.FieldByIndex(f.index)
		if err := decodeValue(raw, fv, fp); err != nil {
			return err
		}
		if f.rule != "" {
			if err := validate.Var(fv.Interface(), f.rule); err != nil {
				return constraintError(fp, err)
			}
		}
	}
	return nil
}

func decodeValue(raw json.RawMessage, fv reflect.Value, path string) error {
	t := fv.Type()
	switch {
	case isPlainStruct(t):
		obj, err := ReadObject(raw, path)
		if err != nil {
			return err
		}
		return decodeInto(obj, fv, path)
	case t.Kind() == reflect.Pointer && isPlainStruct(t.Elem()):
		obj, err := ReadObject(raw, path)
		if err != nil {
			return err
		}
		ptr := reflect.New(t.Elem())
		if err := decodeInto(obj, ptr.Elem(), path); err != nil {
			return err
		}
		fv.Set(ptr)
		return nil
	case t.Kind() == reflect.Slice && isPlainStruct(t.Elem()):
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return &FieldError{Field: path, Reason: ReasonWrongType, Detail: "expected array, got " + jsonKind(bytes.TrimSpace(raw))}
		}
		out := reflect.MakeSlice(t, len(items), len(items))
		for i, item := range items {
			ip := fmt.Sprintf("%s[%d]", path, i)
			obj, err := ReadObject(item, ip)
			if err != nil {
				return err
			}
			if err := decodeInto(obj, out.Index(i), ip); err != nil {
				return err
			}
		}
		fv.Set(out)
		return nil
	}

	if err := json.Unmarshal(raw, fv.Addr().Interface()); err != nil {
		return typeError(path, raw, err)
	}
	return nil
}

func isPlainStruct(t reflect.Type) bool {
	if t.Kind() != reflect.Struct {
		return false
	}
	return !reflect.PointerTo(t).Implements(unmarshalerType)
}

func typeError(path string, raw json.RawMessage, err error) *FieldError {
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		field := path
		if ute.Field != "" {
			field = joinPath(path, ute.Field)
		}
		return &FieldError{
			Field:  field,
			Reason: ReasonWrongType,
			Detail: fmt.Sprintf("expected %s, got %s", ute.Type, ute.Value),
		}
	}
	return &FieldError{
		Field:  path,
		Reason: ReasonWrongType,
		Detail: fmt.Sprintf("%v (value %s)", err, clip(raw)),
	}
}

func constraintError(path string, err error) *FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := path
		if name := fe.Field(); strings.HasPrefix(name, "[") {
			field = path + name
		}
		detail := fmt.Sprintf("failed %q", fe.Tag())
		if fe.Param() != "" {
			detail = fmt.Sprintf("failed %q (%s)", fe.Tag(), fe.Param())
		}
		return &FieldError{
			Field:  field,
			Reason: ReasonConstraint,
			Detail: fmt.Sprintf("%s on value %v", detail, fe.Value()),
		}
	}
	return &FieldError{Field: path, Reason: ReasonConstraint, Detail: err.Error()}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func jsonKind(raw []byte) string {
	if len(raw) == 0 {
		return "nothing"
	}
	switch raw[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}

func clip(raw json.RawMessage) string {
	const maxLen = 32
	s := string(bytes.TrimSpace(raw))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
