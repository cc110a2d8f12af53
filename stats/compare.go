// path: stats/compare.go
package stats

import (
	"math"
	"strconv"

	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/models"
)

// Changes holds the relative change of every Stats field between periods.
type Changes struct {
	TotalRequests            float64            `json:"totalRequests"`
	ByStatus                 map[string]float64 `json:"byStatus"`
	ByType                   map[string]float64 `json:"byType"`
	TotalAffectedIndividuals float64            `json:"totalAffectedIndividuals"`
	TotalSupplies            map[string]float64 `json:"totalSupplies"`
	CompletionRate           float64            `json:"completionRate"`
	InProgressRate           float64            `json:"inProgressRate"`
}

// PercentageChange is the relative change from previous to current.
// A zero previous value reports 100 for any growth and 0 otherwise.
func PercentageChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	if math.IsNaN(current) || math.IsNaN(previous) {
		return 0
	}
	return (current - previous) / math.Abs(previous) * 100
}

// Compare applies PercentageChange field by field. Keys present in only one
// period count as 0 on the other side. Both periods are required.
func Compare(current, previous *Stats) Changes {
	if current == nil || previous == nil {
		panic("stats: Compare requires both current and previous period stats")
	}
	return Changes{
		TotalRequests:            PercentageChange(float64(current.TotalRequests), float64(previous.TotalRequests)),
		TotalAffectedIndividuals: PercentageChange(float64(current.TotalAffectedIndividuals), float64(previous.TotalAffectedIndividuals)),
		CompletionRate:           PercentageChange(current.CompletionRate, previous.CompletionRate),
		InProgressRate:           PercentageChange(current.InProgressRate, previous.InProgressRate),
		ByStatus:                 compareMaps(current.ByStatus, previous.ByStatus),
		ByType:                   compareMaps(current.ByType, previous.ByType),
		TotalSupplies:            compareMaps(current.TotalSupplies, previous.TotalSupplies),
	}
}

func compareMaps(cur, prev map[string]int64) map[string]float64 {
	out := make(map[string]float64, len(cur))
	for _, k := range sortedKeys(cur, prev) {
		out[k] = PercentageChange(float64(cur[k]), float64(prev[k]))
	}
	return out
}

// FormatPercentage renders v with an explicit sign and one decimal,
// e.g. "+12.3%". +Inf is "New"; -Inf and NaN are "N/A".
func FormatPercentage(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "New"
	case math.IsInf(v, -1), math.IsNaN(v):
		return "N/A"
	}
	return signed(v) + "%"
}

// FormatPoints renders a percentage-point delta, e.g. "-4.0 pp".
func FormatPoints(v float64) string {
	return signed(v) + " pp"
}

func signed(v float64) string {
	r := Round1(v)
	if r == 0 {
		r = 0
	}
	s := strconv.FormatFloat(r, 'f', 1, 64)
	if r > 0 {
		return "+" + s
	}
	return s
}

type SupplyChange struct {
	Name   string `json:"name"`
	Change string `json:"change"`
}

// HighestSupplyChange picks the category with the largest absolute change.
func HighestSupplyChange(changes map[string]float64) SupplyChange {
	name, v, ok := maxBy(changes, math.Abs, false)
	if !ok {
		return SupplyChange{Name: "none", Change: "0.0%"}
	}
	return SupplyChange{Name: name, Change: FormatPercentage(v)}
}

type StatusChange struct {
	Status string `json:"status"`
	Change string `json:"change"`
}

// MostImprovedStatus picks the status with the largest positive change.
func MostImprovedStatus(changes map[string]float64) StatusChange {
	name, v, ok := maxBy(changes, func(f float64) float64 { return f }, true)
	if !ok {
		return StatusChange{Status: "none", Change: "0.0%"}
	}
	return StatusChange{Status: name, Change: FormatPercentage(v)}
}

type Trend struct {
	Trend  string `json:"trend"`
	Type   string `json:"type,omitempty"`
	Change string `json:"change,omitempty"`
}

// RequestTypeTrend describes the type with the largest absolute change.
func RequestTypeTrend(changes map[string]float64) Trend {
	name, v, ok := maxBy(changes, math.Abs, false)
	if !ok {
		return Trend{Trend: "No significant trends"}
	}
	change := FormatPercentage(v)
	return Trend{Trend: name + " requests: " + change, Type: name, Change: change}
}

// maxBy walks keys in sorted order so ties go to the first key.
func maxBy(m map[string]float64, score func(float64) float64, positiveOnly bool) (string, float64, bool) {
	var (
		best      string
		bestVal   float64
		bestScore float64
		found     bool
	)
	for _, k := range sortedKeys(m) {
		v := m[k]
		if positiveOnly && !(v > 0) {
			continue
		}
		s := score(v)
		if !found || s > bestScore {
			best, bestVal, bestScore, found = k, v, s, true
		}
	}
	return best, bestVal, found
}

type PendingPeriod struct {
	PendingCount      int64  `json:"pendingCount"`
	TotalRequests     int64  `json:"totalRequests"`
	PendingPercentage string `json:"pendingPercentage"`
}

type PendingChanges struct {
	AbsoluteChange    int64  `json:"absoluteChange"`
	PercentageChange  string `json:"percentageChange"`
	PendingRateChange string `json:"pendingRateChange"`
}

type PendingAnalysis struct {
	CurrentPeriod  PendingPeriod  `json:"currentPeriod"`
	PreviousPeriod PendingPeriod  `json:"previousPeriod"`
	Changes        PendingChanges `json:"changes"`
}

// PendingComparison compares the PENDING bucket's count and its share of
// all requests. The share delta is in percentage points.
func PendingComparison(current, previous *Stats) PendingAnalysis {
	if current == nil || previous == nil {
		panic("stats: PendingComparison requires both current and previous period stats")
	}
	pending := string(models.StatusPending)
	cur, prev := current.ByStatus[pending], previous.ByStatus[pending]
	curShare := share(cur, current.TotalRequests)
	prevShare := share(prev, previous.TotalRequests)

	return PendingAnalysis{
		CurrentPeriod: PendingPeriod{
			PendingCount:      cur,
			TotalRequests:     current.TotalRequests,
			PendingPercentage: strconv.FormatFloat(Round1(curShare), 'f', 1, 64) + "%",
		},
		PreviousPeriod: PendingPeriod{
			PendingCount:      prev,
			TotalRequests:     previous.TotalRequests,
			PendingPercentage: strconv.FormatFloat(Round1(prevShare), 'f', 1, 64) + "%",
		},
		Changes: PendingChanges{
			AbsoluteChange:    cur - prev,
			PercentageChange:  FormatPercentage(PercentageChange(float64(cur), float64(prev))),
			PendingRateChange: FormatPoints(curShare - prevShare),
		},
	}
}

func share(n, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// Summary is the human-readable digest of a period comparison.
type Summary struct {
	TotalRequestsChange       string          `json:"totalRequestsChange"`
	AffectedIndividualsChange string          `json:"affectedIndividualsChange"`
	CompletionRateChange      string          `json:"completionRateChange"`
	HighestSupplyChange       SupplyChange    `json:"highestSupplyChange"`
	MostImprovedStatus        StatusChange    `json:"mostImprovedStatus"`
	RequestTypeTrend          Trend           `json:"requestTypeTrend"`
	PendingStatus             PendingAnalysis `json:"pendingStatus"`
}

func Summarize(current, previous *Stats) Summary {
	changes := Compare(current, previous)
	return Summary{
		TotalRequestsChange:       FormatPercentage(changes.TotalRequests),
		AffectedIndividualsChange: FormatPercentage(changes.TotalAffectedIndividuals),
		CompletionRateChange:      FormatPercentage(changes.CompletionRate),
		HighestSupplyChange:       HighestSupplyChange(changes.TotalSupplies),
		MostImprovedStatus:        MostImprovedStatus(changes.ByStatus),
		RequestTypeTrend:          RequestTypeTrend(changes.ByType),
		PendingStatus:             PendingComparison(current, previous),
	}
}
