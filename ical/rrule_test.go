package ical

import (
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dohyun-ko/recal/event"
)

func TestEncodeRule(t *testing.T) {
	until := time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		rule event.Rule
		want string
	}{
		{
			name: "plain daily",
			rule: event.Rule{Kind: event.KindDaily, Interval: 1},
			want: "FREQ=DAILY",
		},
		{
			name: "weekly with interval",
			rule: event.Rule{Kind: event.KindWeekly, Interval: 2},
			want: "FREQ=WEEKLY;INTERVAL=2",
		},
		{
			name: "monthly last day",
			rule: event.Rule{Kind: event.KindMonthly, Interval: 1, DayPolicy: event.LastDayOfMonth},
			want: "FREQ=MONTHLY;BYMONTHDAY=-1",
		},
		{
			name: "daily with count",
			rule: event.Rule{Kind: event.KindDaily, Interval: 1, Count: mo.Some(10)},
			want: "FREQ=DAILY;COUNT=10",
		},
		{
			name: "yearly until",
			rule: event.Rule{Kind: event.KindYearly, Interval: 1, Until: mo.Some(until)},
			want: "FREQ=YEARLY;UNTIL=20250630T000000Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeRule(tt.rule)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeRule_Rejects(t *testing.T) {
	_, err := EncodeRule(event.Rule{Kind: event.KindNone})
	assert.ErrorIs(t, err, event.ErrInvalidRule)

	_, err = EncodeRule(event.Rule{Kind: event.KindDaily, Interval: 0})
	assert.ErrorIs(t, err, event.ErrInvalidRule)
}

func TestDecodeRule(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  event.Rule
	}{
		{
			name:  "plain daily is unbounded",
			value: "FREQ=DAILY",
			want:  event.Rule{Kind: event.KindDaily, Interval: 1, Unbounded: true},
		},
		{
			name:  "interval carried over",
			value: "FREQ=WEEKLY;INTERVAL=3",
			want:  event.Rule{Kind: event.KindWeekly, Interval: 3, Unbounded: true},
		},
		{
			name:  "count bound",
			value: "FREQ=MONTHLY;COUNT=12",
			want:  event.Rule{Kind: event.KindMonthly, Interval: 1, Count: mo.Some(12)},
		},
		{
			name:  "until bound",
			value: "FREQ=DAILY;UNTIL=20250630T000000Z",
			want: event.Rule{
				Kind: event.KindDaily, Interval: 1,
				Until: mo.Some(time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)),
			},
		},
		{
			name:  "last day of month",
			value: "FREQ=MONTHLY;BYMONTHDAY=-1",
			want: event.Rule{
				Kind: event.KindMonthly, Interval: 1,
				DayPolicy: event.LastDayOfMonth, Unbounded: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeRule(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeRule_UnsupportedParts(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"hourly frequency", "FREQ=HOURLY"},
		{"byday weekdays", "FREQ=WEEKLY;BYDAY=MO,WE,FR"},
		{"positive bymonthday", "FREQ=MONTHLY;BYMONTHDAY=15"},
		{"bysetpos", "FREQ=MONTHLY;BYDAY=MO;BYSETPOS=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRule(tt.value)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnsupportedRule)
		})
	}
}

func TestRuleRoundTrip(t *testing.T) {
	rules := []event.Rule{
		{Kind: event.KindDaily, Interval: 1, Unbounded: true},
		{Kind: event.KindWeekly, Interval: 2, Count: mo.Some(8)},
		{Kind: event.KindMonthly, Interval: 1, DayPolicy: event.LastDayOfMonth, Unbounded: true},
		{Kind: event.KindYearly, Interval: 1, Until: mo.Some(time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC))},
	}

	for _, rule := range rules {
		encoded, err := EncodeRule(rule)
		require.NoError(t, err)
		decoded, err := DecodeRule(encoded)
		require.NoError(t, err)
		assert.Equal(t, rule, decoded, "rule must survive RRULE round trip: %s", encoded)
	}
}
