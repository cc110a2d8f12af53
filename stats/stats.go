// path: stats/stats.go

// Package stats reduces request records into period statistics and compares
// two periods. Every function here is pure and safe for concurrent use.
package stats

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/models"
)

// UnknownStatus buckets records with no status.
const UnknownStatus = "UNKNOWN"

// Stats is the descriptive summary of one set of records.
type Stats struct {
	TotalRequests            int64            `json:"totalRequests"`
	ByStatus                 map[string]int64 `json:"byStatus"`
	ByType                   map[string]int64 `json:"byType"`
	TotalAffectedIndividuals int64            `json:"totalAffectedIndividuals"`
	TotalSupplies            map[string]int64 `json:"totalSupplies"`
	CompletionRate           float64          `json:"completionRate"`
	InProgressRate           float64          `json:"inProgressRate"`
}

// Aggregate computes Stats in one pass. The input is not modified.
func Aggregate(records []models.Request) Stats {
	s := Stats{
		TotalRequests: int64(len(records)),
		ByStatus:      map[string]int64{},
		ByType:        map[string]int64{},
		TotalSupplies: map[string]int64{},
	}
	for _, cat := range models.SupplyCategories {
		s.TotalSupplies[cat] = 0
	}

	for _, r := range records {
		status := string(r.Status)
		if status == "" {
			status = UnknownStatus
		}
		s.ByStatus[status]++

		for _, t := range r.Types {
			tag := strings.TrimSpace(string(t))
			if tag == "" {
				continue
			}
			s.ByType[tag]++
		}

		s.TotalAffectedIndividuals += models.ParseCount(r.AffectedIndividuals)
		for cat, n := range r.Supplies.Map() {
			s.TotalSupplies[cat] += models.ParseCount(n)
		}
	}

	s.CompletionRate = rate(s.ByStatus[string(models.StatusDone)], s.TotalRequests)
	s.InProgressRate = rate(s.ByStatus[string(models.StatusInProgress)], s.TotalRequests)
	return s
}

func rate(n, total int64) float64 {
	if total == 0 {
		return 0
	}
	return Round1(float64(n) / float64(total) * 100)
}

// Round1 rounds half away from zero to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// FilterPeriod keeps the records created within [start, end].
func FilterPeriod(records []models.Request, start, end time.Time) []models.Request {
	out := make([]models.Request, 0, len(records))
	for _, r := range records {
		if r.CreatedAt.IsZero() {
			continue
		}
		if r.CreatedAt.Before(start) || r.CreatedAt.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// EndOfDay moves t to the last millisecond of its day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// PreviousWeek shifts a period exactly seven days back.
func PreviousWeek(start, end time.Time) (time.Time, time.Time) {
	return start.AddDate(0, 0, -7), end.AddDate(0, 0, -7)
}

func sortedKeys[V any](maps ...map[string]V) []string {
	seen := map[string]struct{}{}
	var keys []string
	for _, m := range maps {
		for k := range m {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
