package scheduler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser accepts standard five-field expressions, minute granularity.
// Aliases ("@hourly") and the seconds field are deliberately outside the
// accepted grammar.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// CronValidation is the outcome of validating a cron expression.
type CronValidation struct {
	Valid       bool   `json:"valid"`
	Description string `json:"description,omitempty"`
	NextRun     string `json:"nextRun,omitempty"`
	Error       string `json:"error,omitempty"`
}

// ValidateCron checks an expression and, when it parses, describes it and
// reports its next fire time in RFC 3339.
func ValidateCron(expr string) CronValidation {
	sched, err := parseCron(expr)
	if err != nil {
		return CronValidation{Valid: false, Error: err.Error()}
	}
	return CronValidation{
		Valid:       true,
		Description: describeCron(expr),
		NextRun:     sched.Next(time.Now()).Format(time.RFC3339),
	}
}

// nextRun computes the next fire time strictly after the given instant.
func nextRun(expr string, after time.Time) (time.Time, error) {
	sched, err := parseCron(expr)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(after), nil
}

func parseCron(expr string) (cron.Schedule, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return nil, errors.New("cron expression is empty")
	}
	if n := len(strings.Fields(trimmed)); n != 5 {
		return nil, fmt.Errorf("cron expression must have 5 fields, got %d", n)
	}
	sched, err := cronParser.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}
	return sched, nil
}

var dowNames = map[string]string{
	"0": "Sunday", "1": "Monday", "2": "Tuesday", "3": "Wednesday",
	"4": "Thursday", "5": "Friday", "6": "Saturday", "7": "Sunday",
}

// describeCron renders the common expression shapes as prose and echoes
// anything more exotic back unchanged.
func describeCron(expr string) string {
	fields := strings.Fields(strings.TrimSpace(expr))
	if len(fields) != 5 {
		return expr
	}
	minute, hour, dom, month, dow := fields[0], fields[1], fields[2], fields[3], fields[4]
	star := func(f string) bool { return f == "*" }

	if step, found := strings.CutPrefix(minute, "*/"); found &&
		star(hour) && star(dom) && star(month) && star(dow) {
		return fmt.Sprintf("every %s minutes", step)
	}

	m, mErr := strconv.Atoi(minute)
	h, hErr := strconv.Atoi(hour)
	switch {
	case star(minute) && star(hour) && star(dom) && star(month) && star(dow):
		return "every minute"
	case mErr == nil && star(hour) && star(dom) && star(month) && star(dow):
		return fmt.Sprintf("hourly at minute %d", m)
	case mErr == nil && hErr == nil && star(dom) && star(month) && star(dow):
		return fmt.Sprintf("daily at %02d:%02d", h, m)
	case mErr == nil && hErr == nil && star(dom) && star(month):
		if day, ok := dowNames[dow]; ok {
			return fmt.Sprintf("weekly on %s at %02d:%02d", day, h, m)
		}
	case mErr == nil && hErr == nil && star(month) && star(dow):
		if d, err := strconv.Atoi(dom); err == nil {
			return fmt.Sprintf("monthly on day %d at %02d:%02d", d, h, m)
		}
	}
	return expr
}
