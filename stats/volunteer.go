// path: stats/volunteer.go
package stats

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/models"
)

// VolunteerSummary tallies a volunteer's history entries.
type VolunteerSummary struct {
	TotalTasks     int64            `json:"totalTasks"`
	TasksByStatus  map[string]int64 `json:"tasksByStatus"`
	TasksByType    map[string]int64 `json:"tasksByType"`
	CompletionRate float64          `json:"completionRate"`
}

func SummarizeVolunteer(history []models.HistoryEntry) VolunteerSummary {
	s := VolunteerSummary{
		TotalTasks:    int64(len(history)),
		TasksByStatus: map[string]int64{},
		TasksByType:   map[string]int64{},
	}
	for _, h := range history {
		if h.NewStatus != "" {
			s.TasksByStatus[string(h.NewStatus)]++
		}
		if h.ActionType != "" {
			s.TasksByType[string(h.ActionType)]++
		}
	}
	if s.TotalTasks > 0 {
		done := float64(s.TasksByStatus[string(models.StatusDone)])
		s.CompletionRate = round2(done / float64(s.TotalTasks) * 100)
	}
	return s
}

// Performance describes how a volunteer has worked through requests.
// AverageCompletionHours is nil when no completion has both timestamps.
type Performance struct {
	TotalRequests          int64            `json:"totalRequests"`
	CompletedRequests      int64            `json:"completedRequests"`
	AverageCompletionHours *float64         `json:"averageCompletionTime"`
	RequestsByType         map[string]int64 `json:"requestsByType"`
	RequestsByMonth        map[string]int64 `json:"requestsByMonth"`
	RequestsByLocation     map[string]int64 `json:"requestsByLocation"`
}

func VolunteerPerformance(history []models.HistoryEntry) Performance {
	p := Performance{
		TotalRequests:      int64(len(history)),
		RequestsByType:     map[string]int64{},
		RequestsByMonth:    map[string]int64{},
		RequestsByLocation: map[string]int64{},
	}
	var durations []float64
	for _, h := range history {
		if h.ActionType != "" {
			p.RequestsByType[string(h.ActionType)]++
		}
		if h.ActionType == models.ActionComplete || h.NewStatus == models.StatusDone {
			p.CompletedRequests++
			claimed, ok1 := metaTime(h.Metadata[models.MetaClaimTime])
			completed, ok2 := metaTime(h.Metadata[models.MetaCompletionTime])
			if ok1 && ok2 {
				durations = append(durations, completed.Sub(claimed).Hours())
			}
		}
		if !h.Timestamp.IsZero() {
			p.RequestsByMonth[h.Timestamp.UTC().Format("Jan 2006")]++
		}
		if loc, ok := h.Metadata[models.MetaRequestAddress].(string); ok && loc != "" {
			p.RequestsByLocation[loc]++
		}
	}
	if len(durations) > 0 {
		var sum float64
		for _, d := range durations {
			sum += d
		}
		avg := round2(sum / float64(len(durations)))
		p.AverageCompletionHours = &avg
	}
	return p
}

func metaTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case primitive.DateTime:
		return t.Time(), true
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		return parsed, err == nil
	}
	return time.Time{}, false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RecentWindow is how far back "recently joined" looks.
const RecentWindow = 30 * 24 * time.Hour

// Overview summarizes the volunteer roster. Administrators are not counted.
type Overview struct {
	TotalVolunteers      int64 `json:"totalVolunteers"`
	ActiveVolunteers     int64 `json:"activeVolunteers"`
	UnverifiedVolunteers int64 `json:"unverifiedVolunteers"`
	RecentlyJoined       int64 `json:"recentlyJoined"`
}

// VolunteerOverview counts the roster as of now. Verified volunteers are
// the active ones; RecentlyJoined covers the last RecentWindow.
func VolunteerOverview(all []models.Volunteer, now time.Time) Overview {
	var o Overview
	since := now.Add(-RecentWindow)
	for _, v := range models.Roster(all) {
		o.TotalVolunteers++
		if v.IsVerified {
			o.ActiveVolunteers++
		} else {
			o.UnverifiedVolunteers++
		}
		if !v.CreatedAt.IsZero() && !v.CreatedAt.Before(since) {
			o.RecentlyJoined++
		}
	}
	return o
}
