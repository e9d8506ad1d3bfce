package internal

import (
	"testing"
	"time"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/stretchr/testify/assert"
)

func TestEvaluateTimer(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("time", func(t *testing.T) {
		assert := assert.New(t)

		v := time.Date(2025, 3, 2, 8, 30, 0, 123456789, time.UTC)

		dueAt, err := evaluateTimer(engine.Timer{Time: v}, start)
		assert.Nil(err)
		assert.Equal(v.Truncate(time.Millisecond), dueAt)
	})

	t.Run("time cycle", func(t *testing.T) {
		assert := assert.New(t)

		dueAt, err := evaluateTimer(engine.Timer{TimeCycle: "0 * * * *"}, start)
		assert.Nil(err)
		assert.Equal(start.Add(time.Hour), dueAt)
	})

	t.Run("time duration", func(t *testing.T) {
		assert := assert.New(t)

		dueAt, err := evaluateTimer(engine.Timer{TimeDuration: "PT1H30M"}, start)
		assert.Nil(err)
		assert.Equal(start.Add(90*time.Minute), dueAt)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := evaluateTimer(engine.Timer{}, start)
		assert.NotNil(t, err)
	})
}

func TestText(t *testing.T) {
	assert := assert.New(t)

	assert.False(text("").Valid)
	assert.True(text("a").Valid)
	assert.Nil(timeOrNil(timestamp(time.Time{})))
}
