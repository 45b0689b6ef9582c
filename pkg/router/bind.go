package router

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// bindQuery fills a request struct from URL query values using json tags.
func bindQuery(values url.Values, out any) error {
	v := reflect.ValueOf(out).Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("cannot bind query into %T", out)
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}

		if !values.Has(name) {
			continue
		}
		value := values.Get(name)

		switch field.Type.Kind() {
		case reflect.String:
			v.Field(i).SetString(value)
		case reflect.Int, reflect.Int32, reflect.Int64:
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value of field %s: %w", name, err)
			}
			v.Field(i).SetInt(n)
		case reflect.Bool:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid value of field %s: %w", name, err)
			}
			v.Field(i).SetBool(b)
		default:
			return fmt.Errorf("unsupported query field %s of type %s", name, field.Type)
		}
	}

	return nil
}
