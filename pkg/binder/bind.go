package binder

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// tagName returns the key a field binds from. Untagged fields and fields
// tagged "-" are skipped.
func tagName(f reflect.StructField, tag string) (string, bool) {
	name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
	if name == "" || name == "-" || !f.IsExported() {
		return "", false
	}
	return name, true
}

// bindValues sets the fields of the struct v points to from values, keyed by
// their tag. Missing keys leave fields untouched. Values are taken verbatim;
// a password containing a comma stays one value.
func bindValues(v any, tag string, values map[string][]string, bindErr error) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: target must be a non-nil pointer to struct", bindErr)
	}
	rv = rv.Elem()

	for i := range rv.NumField() {
		f := rv.Type().Field(i)
		name, ok := tagName(f, tag)
		if !ok {
			continue
		}
		vals := values[name]
		if len(vals) == 0 {
			continue
		}
		if err := setField(rv.Field(i), vals); err != nil {
			return fmt.Errorf("%w: %s: %v", bindErr, name, err)
		}
	}
	return nil
}

func setField(field reflect.Value, vals []string) error {
	switch field.Kind() {
	case reflect.Pointer:
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		return setField(field.Elem(), vals)

	case reflect.Slice:
		out := reflect.MakeSlice(field.Type(), len(vals), len(vals))
		for i, s := range vals {
			if err := setScalar(out.Index(i), s); err != nil {
				return err
			}
		}
		field.Set(out)
		return nil

	default:
		return setScalar(field, vals[0])
	}
}

func setScalar(field reflect.Value, s string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(s)

	case reflect.Bool:
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "on", "yes", "1", "true":
			field.SetBool(true)
		case "off", "no", "0", "false", "":
			field.SetBool(false)
		default:
			return fmt.Errorf("invalid bool %q", s)
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer %q", s)
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(strings.TrimSpace(s), 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer %q", s)
		}
		field.SetUint(n)

	default:
		return fmt.Errorf("unsupported kind %s", field.Kind())
	}
	return nil
}
