package scheduler

import (
	"strings"
	"testing"
	"time"
)

func TestValidateCron(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		valid   bool
		errPart string
	}{
		{name: "every 10 minutes", expr: "*/10 * * * *", valid: true},
		{name: "daily at nine", expr: "0 9 * * *", valid: true},
		{name: "surrounding whitespace", expr: "  0 9 * * *  ", valid: true},
		{name: "empty", expr: "", valid: false, errPart: "empty"},
		{name: "whitespace only", expr: "   ", valid: false, errPart: "empty"},
		{name: "four fields", expr: "* * * *", valid: false, errPart: "5 fields"},
		{name: "six fields", expr: "* * * * * *", valid: false, errPart: "5 fields"},
		{name: "alias rejected", expr: "@hourly", valid: false, errPart: "5 fields"},
		{name: "minute out of range", expr: "60 * * * *", valid: false, errPart: "invalid cron expression"},
		{name: "garbage field", expr: "x * * * *", valid: false, errPart: "invalid cron expression"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateCron(tt.expr)
			if got.Valid != tt.valid {
				t.Fatalf("ValidateCron(%q).Valid = %v, want %v (error=%q)", tt.expr, got.Valid, tt.valid, got.Error)
			}
			if !tt.valid {
				if got.Error == "" {
					t.Fatalf("invalid expression must carry an error")
				}
				if !strings.Contains(got.Error, tt.errPart) {
					t.Errorf("error %q does not mention %q", got.Error, tt.errPart)
				}
				if got.Description != "" || got.NextRun != "" {
					t.Errorf("invalid result must not describe a schedule: %+v", got)
				}
				return
			}
			if got.Error != "" {
				t.Errorf("valid result must not carry an error, got %q", got.Error)
			}
			if got.Description == "" {
				t.Error("expected a description")
			}
			next, err := time.Parse(time.RFC3339, got.NextRun)
			if err != nil {
				t.Fatalf("NextRun %q is not RFC 3339: %v", got.NextRun, err)
			}
			if !next.After(time.Now().Add(-time.Second)) {
				t.Errorf("NextRun %s should be in the future", next)
			}
		})
	}
}

func TestDescribeCron(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"* * * * *", "every minute"},
		{"*/5 * * * *", "every 5 minutes"},
		{"30 * * * *", "hourly at minute 30"},
		{"0 9 * * *", "daily at 09:00"},
		{"30 18 * * 5", "weekly on Friday at 18:30"},
		{"15 7 * * 7", "weekly on Sunday at 07:15"},
		{"0 9 15 * *", "monthly on day 15 at 09:00"},
		// Shapes without a canned phrasing are echoed back.
		{"0 9 * 1 *", "0 9 * 1 *"},
		{"*/15 6 * * *", "*/15 6 * * *"},
	}

	for _, tt := range tests {
		if got := describeCron(tt.expr); got != tt.want {
			t.Errorf("describeCron(%q) = %q, want %q", tt.expr, got, tt.want)
		}
	}
}

func TestNextRun(t *testing.T) {
	after := time.Date(2026, 3, 1, 10, 7, 30, 0, time.UTC) // a Sunday

	tests := []struct {
		expr string
		want time.Time
	}{
		{"*/15 * * * *", time.Date(2026, 3, 1, 10, 15, 0, 0, time.UTC)},
		{"0 9 * * *", time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)},
		{"30 18 * * 5", time.Date(2026, 3, 6, 18, 30, 0, 0, time.UTC)},
		{"0 0 1 * *", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := nextRun(tt.expr, after)
		if err != nil {
			t.Errorf("nextRun(%q) failed: %v", tt.expr, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("nextRun(%q, %s) = %s, want %s", tt.expr, after, got, tt.want)
		}
	}
}

func TestNextRunRejectsBrokenExpression(t *testing.T) {
	if _, err := nextRun("61 * * * *", time.Now()); err == nil {
		t.Error("expected an error for an out-of-range minute")
	}
	if _, err := nextRun("", time.Now()); err == nil {
		t.Error("expected an error for an empty expression")
	}
}
