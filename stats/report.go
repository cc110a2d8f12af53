// path: stats/report.go
package stats

import (
	"time"

	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/models"
)

// Comparison is the week-over-week block of a dated statistics report.
type Comparison struct {
	PreviousWeek          Stats           `json:"previousWeek"`
	PercentageChanges     Changes         `json:"percentageChanges"`
	Summary               Summary         `json:"summary"`
	PendingStatusAnalysis PendingAnalysis `json:"pendingStatusAnalysis"`
}

// Report is the statistics of [start, end] compared with the week before.
type Report struct {
	Data                   Stats      `json:"data"`
	WeekOverWeekComparison Comparison `json:"weekOverWeekComparison"`
}

// WeekOverWeek filters records into the requested period and the same
// period seven days earlier, then aggregates and compares them.
// The end bound is extended to the end of its day.
func WeekOverWeek(records []models.Request, start, end time.Time) Report {
	end = EndOfDay(end)
	prevStart, prevEnd := PreviousWeek(start, end)

	current := Aggregate(FilterPeriod(records, start, end))
	previous := Aggregate(FilterPeriod(records, prevStart, prevEnd))

	return Report{
		Data: current,
		WeekOverWeekComparison: Comparison{
			PreviousWeek:          previous,
			PercentageChanges:     Compare(&current, &previous),
			Summary:               Summarize(&current, &previous),
			PendingStatusAnalysis: PendingComparison(&current, &previous),
		},
	}
}

// dateLayouts are the accepted query date formats, US style first.
var dateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"2006-01-02",
	time.RFC3339,
}

// ParseDate reads a report bound in any accepted layout, in loc.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
