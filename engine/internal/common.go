package internal

import (
	"errors"
	"time"

	"github.com/adhocore/gronx"
	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

func evaluateTimer(timer engine.Timer, start time.Time) (time.Time, error) {
	if !timer.Time.IsZero() {
		// must be UTC and truncated to millis (see engine/pg/pg.go:pgEngine#acquire)
		return timer.Time.UTC().Truncate(time.Millisecond), nil
	} else if timer.TimeCycle != "" {
		return gronx.NextTickAfter(timer.TimeCycle, start, false)
	} else if !timer.TimeDuration.IsZero() {
		return timer.TimeDuration.Calculate(start), nil
	} else {
		return time.Time{}, errors.New("must specify a time, time cycle or time duration")
	}
}

func newId() string {
	return uuid.NewString()
}

func text(v string) pgtype.Text {
	return pgtype.Text{String: v, Valid: v != ""}
}

func timestamp(v time.Time) pgtype.Timestamp {
	return pgtype.Timestamp{Time: v, Valid: !v.IsZero()}
}

func timeOrNil(v pgtype.Timestamp) *time.Time {
	if !v.Valid {
		return nil
	}
	return &v.Time
}
