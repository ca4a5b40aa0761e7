package mig

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/iov-one/mig/errors"
	"github.com/iov-one/mig/migtest/assert"
)

func TestUnixTimeJSON(t *testing.T) {
	vestingStart := UnixTime(1700000000)

	cases := map[string]struct {
		raw     string
		want    UnixTime
		wantErr *errors.Error
	}{
		"seconds":               {raw: "1700000000", want: vestingStart},
		"epoch":                 {raw: "0", want: 0},
		"rfc3339 utc":           {raw: `"2023-11-14T22:13:20Z"`, want: vestingStart},
		"rfc3339 with offset":   {raw: `"2023-11-15T00:13:20+02:00"`, want: vestingStart},
		"fraction is truncated": {raw: `"2023-11-14T22:13:20.999Z"`, want: vestingStart},
		"before epoch":          {raw: "-60", wantErr: errors.ErrInvalidInput},
		"date before epoch":     {raw: `"1969-12-31T23:00:00Z"`, wantErr: errors.ErrInvalidInput},
		"not a date":            {raw: `"next tuesday"`, wantErr: errors.ErrInvalidInput},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got UnixTime
			err := json.Unmarshal([]byte(tc.raw), &got)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			assert.Equal(t, tc.want, got)
		})
	}

	raw, err := json.Marshal(vestingStart)
	assert.Nil(t, err)
	var back UnixTime
	assert.Nil(t, json.Unmarshal(raw, &back))
	assert.Equal(t, vestingStart, back)
}

func TestUnixTimeArithmetic(t *testing.T) {
	start := AsUnixTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	year := 365 * 24 * time.Hour

	end := start.Add(year)
	assert.Equal(t, start.Time().Add(year).Unix(), int64(end))
	assert.Equal(t, start, end.Add(-year))
	assert.Equal(t, int64(start), start.Time().Unix())
}

func TestIsExpired(t *testing.T) {
	now := UnixTime(1600000000)
	ctx := WithBlockTime(context.Background(), now.Time())

	cases := map[string]struct {
		deadline UnixTime
		want     bool
	}{
		"deadline is now":  {now, true},
		"deadline passed":  {now.Add(-time.Second), true},
		"deadline ahead":   {now.Add(time.Second), false},
		"far in the past":  {0, true},
		"next month start": {now.Add(30 * 24 * time.Hour), false},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.want, IsExpired(ctx, tc.deadline))
		})
	}
}

func TestSystemClockHasSecondPrecision(t *testing.T) {
	assert.Equal(t, 0, SystemClock{}.Now().Nanosecond())
}
