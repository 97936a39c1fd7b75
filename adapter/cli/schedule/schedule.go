package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/cadence/adapter/cli"
	scheduleCommands "github.com/felixgeelhaar/cadence/internal/scheduling/application/commands"
	"github.com/spf13/cobra"
)

// Cmd is the schedule command group
var Cmd = &cobra.Command{
	Use:   "schedule",
	Short: "Build and manage your calendar",
	Long:  `Place tasks into free time, review the proposed blocks, and repair overlaps.`,
}

func init() {
	Cmd.AddCommand(buildCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(resolveCmd)
	Cmd.AddCommand(statusCmd)
	Cmd.AddCommand(slotsCmd)
}

// horizon is a run of whole days starting at local midnight.
type horizon struct {
	start time.Time
	end   time.Time // exclusive, midnight after the last day
}

// lastMinute is the final schedulable instant of the horizon.
func (h horizon) lastMinute() time.Time {
	return h.end.Add(-time.Minute)
}

func parseHorizon(from string, days int) (horizon, error) {
	if days < 1 {
		return horizon{}, fmt.Errorf("--days must be at least 1")
	}
	var start time.Time
	if from == "" {
		now := time.Now()
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	} else {
		var err error
		start, err = cli.ParseDate(from)
		if err != nil {
			return horizon{}, fmt.Errorf("invalid --from: %w", err)
		}
	}
	return horizon{start: start, end: start.AddDate(0, 0, days)}, nil
}

var weekdayNames = []string{"monday", "tuesday", "wednesday", "thursday", "friday"}

// parseWindowFlags reads "DAY=HH:MM-HH:MM" values. DAY may also be
// "weekdays" for Monday through Friday.
func parseWindowFlags(values []string) ([]scheduleCommands.WindowInput, error) {
	var inputs []scheduleCommands.WindowInput
	for _, v := range values {
		day, span, ok := strings.Cut(v, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --window %q, use DAY=HH:MM-HH:MM", v)
		}
		start, end, ok := strings.Cut(span, "-")
		if !ok {
			return nil, fmt.Errorf("invalid --window %q, use DAY=HH:MM-HH:MM", v)
		}
		days := []string{day}
		if strings.EqualFold(day, "weekdays") {
			days = weekdayNames
		}
		for _, d := range days {
			inputs = append(inputs, scheduleCommands.WindowInput{Weekday: d, Start: start, End: end})
		}
	}
	return inputs, nil
}
