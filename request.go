package endpoint

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"time"
)

// RawRequest can be embedded in a payload type to get access to the
// underlying *http.Request.
type RawRequest struct {
	Request *http.Request
}

// payloadCategory describes how a payload type is bound.
type payloadCategory int

const (
	catVoid     payloadCategory = iota // Void: nothing to bind
	catBodyOnly                        // entire struct is the body (no param tags, no Body field)
	catParams                          // has param tags but no Body field
	catMixed                           // has Body field (params from tagged fields, body from Body)
)

var paramTags = []string{"path", "query", "header", "cookie"}

// classifyPayload determines how a payload type should be bound.
func classifyPayload(t reflect.Type) payloadCategory {
	if t == reflect.TypeFor[Void]() {
		return catVoid
	}
	if t.Kind() != reflect.Struct {
		return catBodyOnly
	}
	if _, ok := t.FieldByName("Body"); ok {
		return catMixed
	}
	if hasParamTags(t) || hasRawRequest(t) {
		return catParams
	}
	return catBodyOnly
}

func hasParamTags(t reflect.Type) bool {
	for i := range t.NumField() {
		f := t.Field(i)
		for _, tag := range paramTags {
			if f.Tag.Get(tag) != "" {
				return true
			}
		}
	}
	return false
}

func hasRawRequest(t reflect.Type) bool {
	for i := range t.NumField() {
		if t.Field(i).Type == reflect.TypeFor[RawRequest]() {
			return true
		}
	}
	return false
}

// bindPayload creates a new P and populates it from the request.
func bindPayload[P any](r *http.Request, codecs *codecRegistry) (*P, error) {
	p := new(P)
	cat := classifyPayload(reflect.TypeFor[P]())

	if cat == catVoid {
		return p, nil
	}

	if cat == catParams || cat == catMixed {
		if err := bindParams(p, r); err != nil {
			return nil, err
		}
	}

	switch cat {
	case catBodyOnly:
		if err := decodeBody(r, codecs, p); err != nil {
			return nil, err
		}
	case catMixed:
		bodyField := reflect.ValueOf(p).Elem().FieldByName("Body")
		if err := decodeBody(r, codecs, bodyField.Addr().Interface()); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// bindParams binds path, query, header, and cookie values to struct fields.
func bindParams(target any, r *http.Request) error {
	v := reflect.ValueOf(target).Elem()
	t := v.Type()

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() || f.Name == "Body" {
			continue
		}

		field := v.Field(i)

		if f.Type == reflect.TypeFor[RawRequest]() {
			field.Set(reflect.ValueOf(RawRequest{Request: r}))
			continue
		}

		if name := f.Tag.Get("path"); name != "" {
			if err := setParam(field, r.PathValue(name), ""); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrBindPath, name, err)
			}
		}

		if name := f.Tag.Get("query"); name != "" {
			if err := setParam(field, r.URL.Query().Get(name), f.Tag.Get("default")); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrBindQuery, name, err)
			}
		}

		if name := f.Tag.Get("header"); name != "" {
			if err := setParam(field, r.Header.Get(name), f.Tag.Get("default")); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrBindHeader, name, err)
			}
		}

		if name := f.Tag.Get("cookie"); name != "" {
			var val string
			if c, err := r.Cookie(name); err == nil {
				val = c.Value
			}
			if err := setParam(field, val, f.Tag.Get("default")); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrBindCookie, name, err)
			}
		}
	}

	return nil
}

func setParam(field reflect.Value, val, def string) error {
	if val == "" {
		val = def
	}
	if val == "" {
		return nil
	}
	return setFieldValue(field, val)
}

// setFieldValue sets a reflect.Value from a string, supporting common types.
func setFieldValue(field reflect.Value, value string) error {
	if field.Type() == reflect.TypeFor[time.Duration]() {
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(d))
		return nil
	}

	//exhaustive:ignore
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported type: %s", field.Type())
	}
	return nil
}

// decodeBody decodes the request body into target with the decoder matching
// the request Content-Type.
func decodeBody(r *http.Request, codecs *codecRegistry, target any) error {
	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		return nil
	}

	ct := r.Header.Get("Content-Type")
	dec, ok := codecs.decoderFor(ct)
	if !ok {
		return Errorf(http.StatusUnsupportedMediaType, "unsupported content type %q", ct)
	}

	if err := dec.Decode(r.Body, target); err != nil {
		return fmt.Errorf("%w: %w", ErrBindBody, err)
	}
	return nil
}
