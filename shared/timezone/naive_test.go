package timezone_test

import (
	"testing"

	"stagehand/shared/timezone"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNaiveLocal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    timezone.NaiveLocal
		wantErr bool
	}{
		{
			name:  "minute precision",
			input: "2024-06-15T14:00",
			want:  timezone.NaiveLocal{Year: 2024, Month: 6, Day: 15, Hour: 14, Minute: 0},
		},
		{
			name:  "seconds are ignored",
			input: "2024-06-15T14:05:59",
			want:  timezone.NaiveLocal{Year: 2024, Month: 6, Day: 15, Hour: 14, Minute: 5},
		},
		{
			name:  "calendar validity is not checked",
			input: "2024-13-01T10:00",
			want:  timezone.NaiveLocal{Year: 2024, Month: 13, Day: 1, Hour: 10, Minute: 0},
		},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "garbage", wantErr: true},
		{name: "date only", input: "2024-06-15", wantErr: true},
		{name: "missing minutes", input: "2024-06-15T14", wantErr: true},
		{name: "non numeric hour", input: "2024-06-15Txx:00", wantErr: true},
		{name: "signed field", input: "2024-06-+1T10:00", wantErr: true},
		{name: "short date", input: "2024-06T10:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := timezone.ParseNaiveLocal(tt.input)

			if tt.wantErr {
				require.ErrorIs(t, err, timezone.ErrParseFailure)
				assert.Equal(t, timezone.NaiveLocal{}, got)

				return
			}

			require.NoError(t, err)

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseNaiveLocal(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestNaiveLocal_RoundTrip(t *testing.T) {
	inputs := []string{"2024-06-15T14:00", "1999-12-31T23:59", "2024-02-29T00:00"}

	for _, input := range inputs {
		parsed, err := timezone.ParseNaiveLocal(input)
		require.NoError(t, err)

		assert.Equal(t, input, parsed.String())
	}
}

func TestNaiveLocal_IsCalendarDate(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "2024-06-15T14:00", want: true},
		{input: "2024-02-29T23:59", want: true},
		{input: "2023-02-29T10:00", want: false},
		{input: "2024-13-01T10:00", want: false},
		{input: "2024-06-31T10:00", want: false},
		{input: "2024-06-15T24:00", want: false},
		{input: "2024-06-15T10:60", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			naive, err := timezone.ParseNaiveLocal(tt.input)
			require.NoError(t, err)

			assert.Equal(t, tt.want, naive.IsCalendarDate())
		})
	}
}

func TestParseClockTime(t *testing.T) {
	hour, minute, err := timezone.ParseClockTime("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9, hour)
	assert.Equal(t, 30, minute)

	hour, minute, err = timezone.ParseClockTime("18:45:00")
	require.NoError(t, err)
	assert.Equal(t, 18, hour)
	assert.Equal(t, 45, minute)

	for _, bad := range []string{"", "9", "24:00", "12:60", "ab:cd", "1:2:3:4"} {
		_, _, err = timezone.ParseClockTime(bad)
		assert.ErrorIs(t, err, timezone.ErrParseFailure, bad)
	}
}

func TestFormatDateKey(t *testing.T) {
	assert.Equal(t, "Saturday, Jun 15, 2024", timezone.FormatDateKey("2024-06-15"))
	assert.Equal(t, timezone.Placeholder, timezone.FormatDateKey("2024-13-01"))
	assert.Equal(t, "2024-06-15T09:30", timezone.JoinDateClock("2024-06-15", "09:30"))
}
