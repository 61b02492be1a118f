package classify

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBoolLiteral(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"yes", true},
		{"No", true},
		{"TRUE", true},
		{"False", true},
		{"y", false},
		{"1", false},
		{"", false},
		{" yes", false},
		{"maybe", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBoolLiteral(tt.text))
		})
	}
}

func TestIsDate(t *testing.T) {
	dates := []string{
		"2021-01-01",
		"2021-02-15 10:30:00",
		"March 5, 2020",
		"12/31/2019",
		"2006-01-02T15:04:05Z",
		"  2021-03-30  ",
	}
	for _, d := range dates {
		assert.True(t, IsDate(d), "expected %q to parse as a date", d)
	}

	notDates := []string{"", "   ", "hello", "not-a-date", "widget"}
	for _, s := range notDates {
		assert.False(t, IsDate(s), "expected %q not to parse as a date", s)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  Category
	}{
		{"bool literal", "Yes", BoolLiteral},
		{"native bool", true, BoolLiteral},
		{"date text", "2021-01-01", DateParseable},
		{"native time", time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), DateParseable},
		{"date bytes", []byte("2021-01-01"), DateParseable},
		{"plain text", "hello", StringFallback},
		{"missing", nil, StringFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_Unsupported(t *testing.T) {
	_, err := Classify(struct{ A []int }{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedValue))
}

type label string

func (l label) String() string { return string(l) }

func TestText(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{nil, ""},
		{"abc", "abc"},
		{[]byte("abc"), "abc"},
		{true, "true"},
		{int8(-3), "-3"},
		{uint16(7), "7"},
		{int64(42), "42"},
		{1.5, "1.5"},
		{float32(0.25), "0.25"},
		{label("no"), "no"},
	}

	for _, tt := range tests {
		got, err := Text(tt.value)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestNativeTypeChecks(t *testing.T) {
	assert.True(t, IsNativeInt(1))
	assert.True(t, IsNativeInt(uint64(1)))
	assert.False(t, IsNativeInt(1.0))
	assert.False(t, IsNativeInt("1"))

	assert.True(t, IsNativeFloat(1.0))
	assert.True(t, IsNativeFloat(float32(1)))
	assert.False(t, IsNativeFloat(1))
	assert.False(t, IsNativeFloat("1.0"))
}

func TestCategory_String(t *testing.T) {
	assert.Equal(t, "bool_literal", BoolLiteral.String())
	assert.Equal(t, "date_parseable", DateParseable.String())
	assert.Equal(t, "string_fallback", StringFallback.String())
}

func TestSupported(t *testing.T) {
	for _, v := range []any{nil, "a", []byte("a"), true, 1, uint8(1), 1.5, time.Now(), label("x")} {
		assert.True(t, Supported(v), "%T should be supported", v)
	}
	for _, v := range []any{[]int{1}, map[string]int{}, struct{}{}, make(chan int)} {
		assert.False(t, Supported(v), "%T should not be supported", v)
	}
}

func stubParseDate(t *testing.T, fn func(string) (time.Time, error)) {
	t.Helper()
	orig := parseDate
	parseDate = fn
	t.Cleanup(func() { parseDate = orig })
}

func TestIsDate_ParserPanicIsNotADate(t *testing.T) {
	stubParseDate(t, func(string) (time.Time, error) {
		panic("index out of range")
	})

	require.NotPanics(t, func() {
		assert.False(t, IsDate("2021-01-01"))
	})

	cat, err := Classify("2021-01-01")
	require.NoError(t, err)
	assert.Equal(t, StringFallback, cat)

	// Boolean literals never reach the parser
	cat, err = Classify("yes")
	require.NoError(t, err)
	assert.Equal(t, BoolLiteral, cat)
}

func TestIsDate_ParserErrorIsNotADate(t *testing.T) {
	stubParseDate(t, func(string) (time.Time, error) {
		return time.Time{}, errors.New("unknown layout")
	})

	assert.False(t, IsDate("2021-01-01"))

	// Native timestamps do not depend on the parser
	cat, err := Classify(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, DateParseable, cat)
}
