package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestISO8601Duration(t *testing.T) {
	start := time.Date(2023, 12, 24, 13, 14, 15, 0, time.UTC)

	t.Run("calculate", func(t *testing.T) {
		assert := assert.New(t)

		tests := map[string]time.Time{
			"":     start,
			"P2Y":  time.Date(2025, 12, 24, 13, 14, 15, 0, time.UTC),
			"P1M":  time.Date(2024, 1, 24, 13, 14, 15, 0, time.UTC),
			"P1W":  time.Date(2023, 12, 31, 13, 14, 15, 0, time.UTC),
			"P10D": time.Date(2024, 1, 3, 13, 14, 15, 0, time.UTC),

			"PT1H":  time.Date(2023, 12, 24, 14, 14, 15, 0, time.UTC),
			"PT50M": time.Date(2023, 12, 24, 14, 4, 15, 0, time.UTC),
			"PT45S": time.Date(2023, 12, 24, 13, 15, 0, 0, time.UTC),

			"P1Y1M1W1DT1H1M1S": time.Date(2025, 2, 1, 14, 15, 16, 0, time.UTC),
			"P1DT12H":          time.Date(2023, 12, 26, 1, 14, 15, 0, time.UTC),
		}

		for input, expected := range tests {
			d, err := NewISO8601Duration(input)
			if !assert.NoError(err, input) {
				continue
			}
			assert.Equal(expected, d.Calculate(start), input)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		assert := assert.New(t)

		for _, input := range []string{"P", "PT", "P1T", "PDT", "PT1", "PTS", "P1DT", "P1DT1", "P1S", "T", "1D", "P1H"} {
			_, err := NewISO8601Duration(input)
			assert.Error(err, input)

			// invalid durations are not applied
			assert.Equal(start, ISO8601Duration(input).Calculate(start), input)
		}
	})
}

func TestUnmarshalISO8601Duration(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		json     string
		expected ISO8601Duration
		err      bool
	}{
		{json: "null", expected: ""},
		{json: `""`, expected: ""},
		{json: "1", err: true},
		{json: `"P"`, expected: "P"},
		{json: `"PT10M"`, expected: "PT10M"},
	}

	for _, test := range tests {
		var actual ISO8601Duration
		err := json.Unmarshal([]byte(test.json), &actual)

		if test.err {
			assert.Error(err, test.json)
		} else {
			assert.NoError(err, test.json)
			assert.Equal(test.expected, actual, test.json)
		}
	}
}
