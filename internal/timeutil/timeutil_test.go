package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasZone(t *testing.T) {
	t.Parallel()

	shanghai, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)

	testCases := []struct {
		name     string
		input    time.Time
		expected bool
	}{
		{
			name:     "UTC is explicit",
			input:    time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
			expected: true,
		},
		{
			name:     "named zone is explicit",
			input:    time.Date(2024, 3, 10, 9, 0, 0, 0, shanghai),
			expected: true,
		},
		{
			name:     "fixed nonzero offset is explicit",
			input:    time.Date(2024, 3, 10, 9, 0, 0, 0, time.FixedZone("", 8*3600)),
			expected: true,
		},
		{
			name:     "NoZone sentinel is naive",
			input:    time.Date(2024, 3, 10, 9, 0, 0, 0, NoZone),
			expected: false,
		},
		{
			name:     "zero time is treated as absent",
			input:    time.Time{},
			expected: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, HasZone(tc.input))
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("+08:00", 8*3600)

	t.Run("attaches the default zone to a naive time", func(t *testing.T) {
		naive := time.Date(2024, 3, 10, 9, 30, 0, 0, NoZone)
		got := Normalize(naive, loc)

		// Wall clock preserved, zone attached.
		assert.Equal(t, 9, got.Hour())
		assert.Equal(t, 30, got.Minute())
		assert.True(t, HasZone(got))
		assert.Equal(t, time.Date(2024, 3, 10, 9, 30, 0, 0, loc), got)
	})

	t.Run("leaves an explicit zone untouched", func(t *testing.T) {
		explicit := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
		got := Normalize(explicit, loc)
		assert.True(t, got.Equal(explicit))
		// No conversion to the default zone: only presence is guaranteed.
		name, _ := got.Zone()
		assert.Equal(t, "UTC", name)
	})

	t.Run("is idempotent", func(t *testing.T) {
		naive := time.Date(2024, 3, 10, 9, 30, 0, 0, NoZone)
		once := Normalize(naive, loc)
		twice := Normalize(once, loc)
		assert.Equal(t, once, twice)
	})
}

func TestParseNaive(t *testing.T) {
	t.Parallel()

	t.Run("zone-less literal parses into the NoZone sentinel", func(t *testing.T) {
		got, err := ParseNaive("2024-03-10 09:30:00")
		require.NoError(t, err)
		assert.False(t, HasZone(got))
		assert.Equal(t, 9, got.Hour())
	})

	t.Run("RFC 3339 input keeps its offset", func(t *testing.T) {
		got, err := ParseNaive("2024-03-10T09:30:00+08:00")
		require.NoError(t, err)
		assert.True(t, HasZone(got))
		_, offset := got.Zone()
		assert.Equal(t, 8*3600, offset)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := ParseNaive("not a timestamp")
		assert.Error(t, err)
	})
}

func TestParseLocation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		spec      string
		offset    int
		expectErr bool
	}{
		{name: "empty defaults to UTC", spec: "", offset: 0},
		{name: "UTC by name", spec: "UTC", offset: 0},
		{name: "IANA name", spec: "Asia/Shanghai", offset: 8 * 3600},
		{name: "positive fixed offset", spec: "+08:00", offset: 8 * 3600},
		{name: "negative fixed offset", spec: "-05:30", offset: -(5*3600 + 30*60)},
		{name: "hours only", spec: "+8", offset: 8 * 3600},
		{name: "invalid name", spec: "Not/AZone", expectErr: true},
		{name: "invalid offset", spec: "+99:00", expectErr: true},
		{name: "doubled sign", spec: "+-5:00", expectErr: true},
		{name: "negative minutes", spec: "+08:-30", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			loc, err := ParseLocation(tc.spec)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			ref := time.Date(2024, 3, 10, 12, 0, 0, 0, loc)
			_, offset := ref.Zone()
			assert.Equal(t, tc.offset, offset)
			assert.True(t, HasZone(ref))
		})
	}
}
