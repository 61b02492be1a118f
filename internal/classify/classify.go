// Package classify decides which primitive category a single raw cell value matches.
package classify

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ErrUnsupportedValue is returned for values with no text interpretation
var ErrUnsupportedValue = errors.New("unsupported value")

// Category is the outcome of classifying one value
type Category int

const (
	StringFallback Category = iota // Neither boolean literal nor date
	BoolLiteral                    // yes, no, true, false in any case
	DateParseable                  // Accepted by the date parser
)

func (c Category) String() string {
	switch c {
	case BoolLiteral:
		return "bool_literal"
	case DateParseable:
		return "date_parseable"
	default:
		return "string_fallback"
	}
}

var boolLiterals = map[string]struct{}{
	"yes":   {},
	"no":    {},
	"true":  {},
	"false": {},
}

// IsBoolLiteral reports whether text is a boolean literal, ignoring case
func IsBoolLiteral(text string) bool {
	_, ok := boolLiterals[strings.ToLower(text)]
	return ok
}

// parseDate is the permissive parser behind IsDate
var parseDate = func(text string) (time.Time, error) {
	return dateparse.ParseAny(text)
}

// IsDate reports whether text parses as a date or time.
// Parser errors and parser panics both mean "not a date".
func IsDate(text string) (ok bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	_, err := parseDate(text)
	return err == nil
}

// Classify returns the category of a single value
func Classify(value any) (Category, error) {
	if _, ok := value.(time.Time); ok {
		return DateParseable, nil
	}

	text, err := Text(value)
	if err != nil {
		return StringFallback, err
	}

	if IsBoolLiteral(text) {
		return BoolLiteral, nil
	}
	if IsDate(text) {
		return DateParseable, nil
	}
	return StringFallback, nil
}

// Text returns the text interpretation of a value
func Text(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.FormatInt(int64(v), 10), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedValue, value)
	}
}

// Supported reports whether a value has a text interpretation
func Supported(value any) bool {
	switch value.(type) {
	case nil, string, []byte, bool, time.Time, fmt.Stringer:
		return true
	}
	return IsNativeInt(value) || IsNativeFloat(value)
}

// IsNativeInt reports whether a value carries a native integer type
func IsNativeInt(value any) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

// IsNativeFloat reports whether a value carries a native floating-point type
func IsNativeFloat(value any) bool {
	switch value.(type) {
	case float32, float64:
		return true
	}
	return false
}
