package pta

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func f(v float64) *float64 { return &v }

func TestCompute(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name           string
		base           time.Time
		tripType       string
		rule           *Rule
		expectedPTA    time.Time
		expectedBuffer float64
	}{
		{
			name:           "long haul without rule uses 8h default",
			base:           base,
			tripType:       "long",
			rule:           nil,
			expectedPTA:    time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
			expectedBuffer: 8,
		},
		{
			name:           "short haul without rule uses 4h default",
			base:           base,
			tripType:       "short",
			rule:           nil,
			expectedPTA:    time.Date(2024, 1, 1, 4, 0, 0, 0, time.UTC),
			expectedBuffer: 4,
		},
		{
			name:           "unknown trip type falls back to 4h",
			base:           base,
			tripType:       "regional",
			rule:           nil,
			expectedPTA:    time.Date(2024, 1, 1, 4, 0, 0, 0, time.UTC),
			expectedBuffer: 4,
		},
		{
			name:           "rule max hours beats trip type default",
			base:           base,
			tripType:       "long",
			rule:           &Rule{MaxHours: f(6)},
			expectedPTA:    time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC),
			expectedBuffer: 6,
		},
		{
			name:           "rule min hours used when max absent",
			base:           base,
			tripType:       "short",
			rule:           &Rule{MinHours: f(2)},
			expectedPTA:    time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC),
			expectedBuffer: 2,
		},
		{
			name:           "max preferred over min when both present",
			base:           base,
			tripType:       "short",
			rule:           &Rule{MinHours: f(2), MaxHours: f(5)},
			expectedPTA:    time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC),
			expectedBuffer: 5,
		},
		{
			name:           "fractional buffer is applied as given",
			base:           base,
			tripType:       "short",
			rule:           &Rule{MaxHours: f(1.5)},
			expectedPTA:    time.Date(2024, 1, 1, 1, 30, 0, 0, time.UTC),
			expectedBuffer: 1.5,
		},
		{
			name:           "zero buffer is applied as given",
			base:           base,
			tripType:       "long",
			rule:           &Rule{MaxHours: f(0)},
			expectedPTA:    base,
			expectedBuffer: 0,
		},
		{
			name:           "rolls over the year boundary",
			base:           time.Date(2023, 12, 31, 22, 0, 0, 0, time.UTC),
			tripType:       "long",
			rule:           nil,
			expectedPTA:    time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC),
			expectedBuffer: 8,
		},
		{
			name:           "zoned input is normalized to UTC",
			base:           time.Date(2024, 6, 1, 23, 0, 0, 0, time.FixedZone("CST", -6*3600)),
			tripType:       "short",
			rule:           nil,
			expectedPTA:    time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC),
			expectedBuffer: 4,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pta, buffer := Compute(tc.base, tc.tripType, tc.rule)
			assert.True(t, tc.expectedPTA.Equal(pta), "expected %s, got %s", tc.expectedPTA, pta)
			assert.Equal(t, time.UTC, pta.Location())
			assert.Equal(t, tc.expectedBuffer, buffer)
		})
	}
}
