// Package validate checks decoded request input against declarative schemas.
//
// A Schema lists the fields an input shape accepts. Validation never stops at
// the first problem: every violation is collected into a single *Error so a
// client can fix all of them in one round trip.
package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"ledger/internal/core"
)

// Kind is the expected type of a field.
type Kind int

const (
	// String is free text. Surrounding whitespace is trimmed.
	String Kind = iota
	// ID is a non-empty reference to another record.
	ID
	// Enum is a string restricted to Field.Enum.
	Enum
	// Date is a calendar date, YYYY-MM-DD or an RFC 3339 timestamp.
	Date
	// PositiveInt is a whole number greater than zero.
	PositiveInt
	// Decimal is a signed major-unit amount, given as a number or a string,
	// converted to cents.
	Decimal
)

// Field describes one accepted input field.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	// Nullable fields accept null or "" and report them as Value.Null.
	Nullable bool
	Enum     []string
	MaxLen   int
}

// Schema is an ordered list of fields. Violations are reported in this order.
type Schema []Field

// Violation is a single rejected field.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is returned when input does not satisfy a schema.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Field == "" {
			parts = append(parts, v.Message)
			continue
		}
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Errorf builds an *Error holding a single violation.
func Errorf(field, format string, args ...any) *Error {
	return &Error{Violations: []Violation{{Field: field, Message: fmt.Sprintf(format, args...)}}}
}

// AsError reports whether err is (or wraps) a validation error.
func AsError(err error) (*Error, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// Value is a validated field. Only the member matching the field's Kind is set.
type Value struct {
	Null bool
	Str  string
	Int  int64
	Date core.Date
}

// Values holds the fields present in the input, keyed by name.
type Values map[string]Value

// Has reports whether the field was present, including as null.
func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

func (v Values) String(name string) string { return v[name].Str }
func (v Values) Int(name string) int64     { return v[name].Int }
func (v Values) Date(name string) core.Date {
	return v[name].Date
}

// OptionalString returns nil when the field is absent or null.
func (v Values) OptionalString(name string) *string {
	val, ok := v[name]
	if !ok || val.Null {
		return nil
	}
	s := val.Str
	return &s
}

// StringUpdate turns an optional text field into a partial update.
func (v Values) StringUpdate(name string) core.Update[string] {
	val, ok := v[name]
	switch {
	case !ok:
		return core.Update[string]{}
	case val.Null:
		return core.Clear[string]()
	default:
		return core.Set(val.Str)
	}
}

// input is a single raw field, from either a JSON body or a query string.
type input struct {
	null    bool
	isStr   bool
	str     string
	num     json.Number
	isNum   bool
	isQuery bool
}

// Validate checks a decoded JSON object against the schema.
func (s Schema) Validate(body map[string]json.RawMessage) (Values, error) {
	return s.run(func(name string) (input, bool, error) {
		raw, ok := body[name]
		if !ok {
			return input{}, false, nil
		}
		in, err := decodeRaw(raw)
		return in, true, err
	})
}

// ValidateQuery checks URL query parameters against the schema. Empty
// parameters are treated as absent.
func (s Schema) ValidateQuery(q url.Values) (Values, error) {
	return s.run(func(name string) (input, bool, error) {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			return input{}, false, nil
		}
		return input{isStr: true, str: raw, isQuery: true}, true, nil
	})
}

func (s Schema) run(lookup func(name string) (input, bool, error)) (Values, error) {
	values := make(Values, len(s))
	var violations []Violation
	fail := func(field, msg string) {
		violations = append(violations, Violation{Field: field, Message: msg})
	}

	for _, f := range s {
		in, present, err := lookup(f.Name)
		if err != nil {
			fail(f.Name, "is malformed")
			continue
		}
		if !present {
			if f.Required {
				fail(f.Name, "is required")
			}
			continue
		}
		if in.isStr && strings.TrimSpace(in.str) == "" {
			in.null = true
		}
		if in.null {
			switch {
			case f.Nullable:
				values[f.Name] = Value{Null: true}
			case f.Required:
				fail(f.Name, "is required")
			default:
				fail(f.Name, "cannot be cleared")
			}
			continue
		}

		val, msg := f.convert(in)
		if msg != "" {
			fail(f.Name, msg)
			continue
		}
		values[f.Name] = val
	}

	if len(violations) > 0 {
		return nil, &Error{Violations: violations}
	}
	return values, nil
}

func (f Field) convert(in input) (Value, string) {
	switch f.Kind {
	case String, ID:
		if !in.isStr {
			return Value{}, "must be a string"
		}
		s := strings.TrimSpace(in.str)
		if f.MaxLen > 0 && len(s) > f.MaxLen {
			return Value{}, fmt.Sprintf("must be at most %d characters", f.MaxLen)
		}
		return Value{Str: s}, ""

	case Enum:
		if !in.isStr {
			return Value{}, "must be a string"
		}
		s := strings.TrimSpace(in.str)
		if !slices.Contains(f.Enum, s) {
			return Value{}, "must be one of " + strings.Join(f.Enum, ", ")
		}
		return Value{Str: s}, ""

	case Date:
		if !in.isStr {
			return Value{}, "must be a date string"
		}
		d, err := core.ParseDate(in.str)
		if err != nil {
			return Value{}, "must be a valid date in YYYY-MM-DD format"
		}
		return Value{Date: d}, ""

	case PositiveInt:
		var n int64
		var err error
		switch {
		case in.isNum:
			n, err = in.num.Int64()
		case in.isStr && in.isQuery:
			n, err = strconv.ParseInt(in.str, 10, 64)
		default:
			return Value{}, "must be a number"
		}
		if err != nil || n <= 0 {
			return Value{}, "must be a positive integer"
		}
		return Value{Int: n}, ""

	case Decimal:
		var raw string
		switch {
		case in.isNum:
			raw = in.num.String()
		case in.isStr:
			raw = in.str
		default:
			return Value{}, "must be a number"
		}
		cents, err := core.ParseMajorToCents(raw)
		if err != nil {
			return Value{}, "must be a decimal amount"
		}
		return Value{Int: cents}, ""
	}
	return Value{}, "has an unsupported type"
}

func decodeRaw(raw json.RawMessage) (input, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return input{}, err
	}
	switch t := v.(type) {
	case nil:
		return input{null: true}, nil
	case string:
		return input{isStr: true, str: t}, nil
	case json.Number:
		return input{isNum: true, num: t}, nil
	default:
		return input{}, nil
	}
}

// DecodeObject reads a JSON object body. Anything else is a validation error.
func DecodeObject(r io.Reader) (map[string]json.RawMessage, error) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, Errorf("", "request body is required")
		}
		return nil, Errorf("", "request body must be a JSON object")
	}
	if body == nil {
		return nil, Errorf("", "request body must be a JSON object")
	}
	return body, nil
}
