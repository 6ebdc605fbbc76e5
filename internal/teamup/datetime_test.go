package teamup

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDateTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty passes through", input: "", want: ""},
		{name: "whitespace passes through", input: "   ", want: "   "},
		{name: "ISO with millis and Z", input: "2024-03-05T09:30:00.000Z", want: "2024-03-05T09:30:00"},
		{name: "ISO with Z only", input: "2024-03-05T09:30:00Z", want: "2024-03-05T09:30:00"},
		{name: "ISO already clean", input: "2024-03-05T09:30:00", want: "2024-03-05T09:30:00"},
		{name: "ISO with offset kept", input: "2024-03-05T09:30:00+02:00", want: "2024-03-05T09:30:00+02:00"},
		{name: "ISO with trailing space", input: "2024-03-05T09:30:00Z ", want: "2024-03-05T09:30:00"},
		{name: "ISO with surrounding space and millis", input: " 2024-03-05T09:30:00.000Z ", want: "2024-03-05T09:30:00"},
		{name: "day-first with time", input: "5.3.2024 9:30", want: "2024-03-05T09:30:00"},
		{name: "day-first with T separator", input: "5.3.2024T9:30", want: "2024-03-05T09:30:00"},
		{name: "day-first date only", input: "31.12.2024", want: "2024-12-31T00:00:00"},
		{name: "day-first double digits", input: "15.11.2024 18:05", want: "2024-11-15T18:05:00"},
		{name: "fallback plain date", input: "2024-03-05", want: "2024-03-05T00:00:00"},
		{name: "fallback long form", input: "March 5, 2024", want: "2024-03-05T00:00:00"},
		{name: "fallback slash date", input: "2024/03/05", want: "2024-03-05T00:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NormalizeDateTime(tt.input, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDateTime_Unsupported(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"not a date", "99.99.banana", "5.3.24"} {
		_, err := NormalizeDateTime(input, nil)
		require.Error(t, err)

		var unsupported *UnsupportedFormatError
		require.ErrorAs(t, err, &unsupported)
		assert.Equal(t, input, unsupported.Input)
	}
}

func TestNormalizeDateTime_OffsetMode(t *testing.T) {
	t.Parallel()

	east := time.FixedZone("UTC+2", 2*60*60)
	west := time.FixedZone("UTC-5", -5*60*60)

	t.Run("day-first gets the location offset", func(t *testing.T) {
		t.Parallel()

		got, err := NormalizeDateTime("5.3.2024 9:30", east)
		require.NoError(t, err)
		assert.Equal(t, "2024-03-05T09:30:00+02:00", got)

		got, err = NormalizeDateTime("5.3.2024 9:30", west)
		require.NoError(t, err)
		assert.Equal(t, "2024-03-05T09:30:00-05:00", got)
	})

	t.Run("fallback renders the instant in the location", func(t *testing.T) {
		t.Parallel()

		got, err := NormalizeDateTime("2024-03-05", east)
		require.NoError(t, err)
		assert.Equal(t, "2024-03-05T02:00:00+02:00", got)
	})

	t.Run("ISO branch never computes an offset", func(t *testing.T) {
		t.Parallel()

		got, err := NormalizeDateTime("2024-03-05T09:30:00.000Z", east)
		require.NoError(t, err)
		assert.Equal(t, "2024-03-05T09:30:00", got)
	})
}

func TestNormalizeDateTime_NeverEmitsUTCDesignator(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"2024-03-05T09:30:00.123Z",
		"2024-03-05T09:30:00Z  ",
		"5.3.2024 9:30",
		"2024-03-05",
		"Tue, 05 Mar 2024 09:30:00 UTC",
	}
	for _, input := range inputs {
		got, err := NormalizeDateTime(input, nil)
		require.NoError(t, err)
		assert.NotContains(t, got, "Z", "input %q", input)
		assert.NotContains(t, got, ".", "input %q", input)
	}
}

func TestDateOnly(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2024-03-05", DateOnly("2024-03-05T09:30:00"))
	assert.Equal(t, "2024-03-05", DateOnly("2024-03-05"))
	assert.Equal(t, "", DateOnly(""))
}

func TestNormalizeDateTime_ErrorIsTyped(t *testing.T) {
	t.Parallel()

	_, err := NormalizeDateTime("gibberish", nil)
	assert.True(t, errors.As(err, new(*UnsupportedFormatError)))
}
