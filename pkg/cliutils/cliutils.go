package cliutils

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Parse takes a string of comma-separated k=v pairs and fills the struct v.
//
// For example "command=xorriso,args=-as mkisofs,output=-o" can be parsed into:
//
//	type Tool struct {
//		Command string   `arg:"command"`
//		Args    []string `arg:"args,"`
//		Output  []string `arg:"output,-o"`
//		Label   []string `arg:"label,-V"`
//	}
//
// The text after the first comma of a tag is the default. A field without a
// default is required. Values may contain '=' but not ','. String slices are
// split on whitespace. Unknown keys are errors.
func Parse(arg string, v interface{}) error {
	params, err := parseArgMap(arg)
	if err != nil {
		return fmt.Errorf("failed to parse %T: %w", v, err)
	}

	if err := fillValues(params, v); err != nil {
		return fmt.Errorf("failed to parse %T tags: %w", v, err)
	}

	return nil
}

func parseArgMap(str string) (map[string]string, error) {
	if strings.TrimSpace(str) == "" {
		return nil, fmt.Errorf("empty argument")
	}

	result := map[string]string{}
	for _, kvpair := range strings.Split(str, ",") {
		if kvpair == "" {
			continue
		}
		kv := strings.SplitN(kvpair, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("malformed key/value pair '%s': expected '='", kvpair)
		}

		key := strings.TrimSpace(kv[0])
		if key == "" {
			return nil, fmt.Errorf("malformed key/value pair '%s': key cannot be empty", kvpair)
		}
		if _, ok := result[key]; ok {
			return nil, fmt.Errorf("duplicate key '%s'", key)
		}

		result[key] = strings.TrimSpace(kv[1])
	}

	return result, nil
}

func fillValues(p map[string]string, v interface{}) error {
	t := reflect.TypeOf(v)
	val := reflect.ValueOf(v)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
		val = val.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := val.Field(i)
		if !fieldVal.CanSet() {
			continue
		}
		argParts := strings.SplitN(field.Tag.Get("arg"), ",", 2)
		name := argParts[0]
		if name == "" {
			name = field.Name
		}

		raw, ok := p[name]
		if !ok {
			if len(argParts) != 2 {
				return fmt.Errorf("missing required parameter '%s'", name)
			}
			raw = argParts[1]
		}

		if err := setValue(fieldVal, raw); err != nil {
			return fmt.Errorf("parameter '%s': %w", name, err)
		}

		delete(p, name)
	}

	if len(p) != 0 {
		return fmt.Errorf("unrecognized extra values: %v", p)
	}

	return nil
}

func setValue(fieldVal reflect.Value, raw string) error {
	if u, ok := textUnmarshaler(fieldVal); ok {
		if err := u.UnmarshalText([]byte(raw)); err != nil {
			return fmt.Errorf("failed to convert value %s: %w", raw, err)
		}
		return nil
	}

	switch fieldVal.Kind() {
	case reflect.String:
		fieldVal.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("failed to convert %s to bool type: %w", raw, err)
		}
		fieldVal.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 0)
		if err != nil {
			return fmt.Errorf("failed to convert %s to int type: %w", raw, err)
		}
		fieldVal.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, 0)
		if err != nil {
			return fmt.Errorf("failed to convert %s to uint type: %w", raw, err)
		}
		fieldVal.SetUint(n)
	case reflect.Slice:
		if fieldVal.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("no known conversion from string to %s", fieldVal.Type().String())
		}
		fieldVal.Set(reflect.ValueOf(strings.Fields(raw)).Convert(fieldVal.Type()))
	default:
		return fmt.Errorf("no known conversion from string to %s, maybe implement encoding.TextUnmarshaler", fieldVal.Type().String())
	}
	return nil
}

func textUnmarshaler(fieldVal reflect.Value) (encoding.TextUnmarshaler, bool) {
	if u, ok := fieldVal.Interface().(encoding.TextUnmarshaler); ok {
		return u, true
	}
	if fieldVal.CanAddr() {
		u, ok := fieldVal.Addr().Interface().(encoding.TextUnmarshaler)
		return u, ok
	}
	return nil, false
}
