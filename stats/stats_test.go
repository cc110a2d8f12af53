package stats

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/models"
)

func req(status models.Status, types models.SupplyTypes, people int64, s models.Supplies) models.Request {
	return models.Request{
		Status:              status,
		Types:               types,
		AffectedIndividuals: models.Count(people),
		Supplies:            s,
	}
}

func sampleRecords() []models.Request {
	return []models.Request{
		req(models.StatusPending, models.SupplyTypes{models.Water, models.Food}, 4, models.Supplies{WaterLiters: 20, FoodMeals: 8}),
		req(models.StatusInProgress, models.SupplyTypes{models.Water}, 2, models.Supplies{WaterLiters: 10}),
		req(models.StatusDone, models.SupplyTypes{models.MedicalSupplies}, 1, models.Supplies{MedicalSupplies: 3}),
		req("", nil, 0, models.Supplies{}),
	}
}

func TestAggregate(t *testing.T) {
	s := Aggregate(sampleRecords())

	assert.Equal(t, int64(4), s.TotalRequests)
	assert.Equal(t, map[string]int64{"PENDING": 1, "IN_PROGRESS": 1, "DONE": 1, UnknownStatus: 1}, s.ByStatus)
	assert.Equal(t, map[string]int64{"WATER": 2, "FOOD": 1, "MEDICAL_SUPPLIES": 1}, s.ByType)
	assert.Equal(t, int64(7), s.TotalAffectedIndividuals)
	assert.Equal(t, int64(30), s.TotalSupplies[models.CategoryWaterLiters])
	assert.Equal(t, int64(8), s.TotalSupplies[models.CategoryFoodMeals])
	assert.Equal(t, int64(3), s.TotalSupplies[models.CategoryMedicalSupplies])
	assert.Equal(t, int64(0), s.TotalSupplies[models.CategoryBodyBags])
	assert.Equal(t, 25.0, s.CompletionRate)
	assert.Equal(t, 25.0, s.InProgressRate)
}

func TestAggregateStatusSumMatchesTotal(t *testing.T) {
	s := Aggregate(sampleRecords())
	var sum int64
	for _, n := range s.ByStatus {
		sum += n
	}
	assert.Equal(t, s.TotalRequests, sum)
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil)
	assert.Zero(t, s.TotalRequests)
	assert.Zero(t, s.CompletionRate)
	assert.Zero(t, s.InProgressRate)
	assert.Empty(t, s.ByStatus)
	assert.Len(t, s.TotalSupplies, len(models.SupplyCategories))
}

func TestAggregateRoundsRates(t *testing.T) {
	recs := []models.Request{
		{Status: models.StatusDone},
		{Status: models.StatusPending},
		{Status: models.StatusPending},
	}
	s := Aggregate(recs)
	assert.Equal(t, 33.3, s.CompletionRate)
	assert.GreaterOrEqual(t, s.CompletionRate, 0.0)
	assert.LessOrEqual(t, s.CompletionRate, 100.0)
}

func TestAggregateIsIdempotent(t *testing.T) {
	recs := sampleRecords()
	assert.Equal(t, Aggregate(recs), Aggregate(recs))
}

func TestPercentageChange(t *testing.T) {
	assert.Equal(t, 0.0, PercentageChange(0, 0))
	assert.Equal(t, 100.0, PercentageChange(5, 0))
	assert.Equal(t, -100.0, PercentageChange(0, 5))
	assert.Equal(t, 50.0, PercentageChange(150, 100))
	assert.Equal(t, -50.0, PercentageChange(50, 100))
	assert.Equal(t, 0.0, PercentageChange(math.NaN(), 4))
	assert.Equal(t, 0.0, PercentageChange(3, math.NaN()))
	assert.Equal(t, 200.0, PercentageChange(2, -2))
}

func TestFormatPercentage(t *testing.T) {
	assert.Equal(t, "+12.3%", FormatPercentage(12.34))
	assert.Equal(t, "-4.0%", FormatPercentage(-4))
	assert.Equal(t, "0.0%", FormatPercentage(0))
	assert.Equal(t, "0.0%", FormatPercentage(-0.01))
	assert.Equal(t, "+100.0%", FormatPercentage(100))
	assert.Equal(t, "+0.3%", FormatPercentage(0.25))
	assert.Equal(t, "New", FormatPercentage(math.Inf(1)))
	assert.Equal(t, "N/A", FormatPercentage(math.Inf(-1)))
	assert.Equal(t, "N/A", FormatPercentage(math.NaN()))
}

func TestCompareUnionOfKeys(t *testing.T) {
	cur := Stats{
		TotalRequests: 20,
		ByStatus:      map[string]int64{"DONE": 10, "PENDING": 10},
		ByType:        map[string]int64{"WATER": 4},
		TotalSupplies: map[string]int64{models.CategoryWaterLiters: 40},
	}
	prev := Stats{
		TotalRequests: 10,
		ByStatus:      map[string]int64{"DONE": 5, "IN_PROGRESS": 5},
		ByType:        map[string]int64{"FOOD": 2},
		TotalSupplies: map[string]int64{models.CategoryWaterLiters: 80},
	}
	c := Compare(&cur, &prev)

	assert.Equal(t, 100.0, c.TotalRequests)
	assert.Equal(t, 100.0, c.ByStatus["DONE"])
	assert.Equal(t, "+100.0%", FormatPercentage(c.ByStatus["DONE"]))
	assert.Equal(t, 100.0, c.ByStatus["PENDING"])
	assert.Equal(t, -100.0, c.ByStatus["IN_PROGRESS"])
	assert.Equal(t, 100.0, c.ByType["WATER"])
	assert.Equal(t, -100.0, c.ByType["FOOD"])
	assert.Equal(t, -50.0, c.TotalSupplies[models.CategoryWaterLiters])
}

func TestCompareFullChanges(t *testing.T) {
	cur := Stats{
		TotalRequests:            4,
		ByStatus:                 map[string]int64{"DONE": 2, "PENDING": 2},
		ByType:                   map[string]int64{"WATER": 1},
		TotalAffectedIndividuals: 10,
		TotalSupplies:            map[string]int64{models.CategoryWaterLiters: 10},
		CompletionRate:           50,
	}
	prev := Stats{
		TotalRequests:  2,
		ByStatus:       map[string]int64{"DONE": 1, "IN_PROGRESS": 1},
		ByType:         map[string]int64{},
		TotalSupplies:  map[string]int64{models.CategoryWaterLiters: 20},
		CompletionRate: 50,
		InProgressRate: 50,
	}
	want := Changes{
		TotalRequests:            100,
		ByStatus:                 map[string]float64{"DONE": 100, "PENDING": 100, "IN_PROGRESS": -100},
		ByType:                   map[string]float64{"WATER": 100},
		TotalAffectedIndividuals: 100,
		TotalSupplies:            map[string]float64{models.CategoryWaterLiters: -50},
		CompletionRate:           0,
		InProgressRate:           -100,
	}
	if diff := cmp.Diff(want, Compare(&cur, &prev)); diff != "" {
		t.Errorf("Compare() mismatch (-want +got):\n%s", diff)
	}
}

func TestComparePanicsOnMissingPeriod(t *testing.T) {
	s := Aggregate(nil)
	assert.Panics(t, func() { Compare(nil, &s) })
	assert.Panics(t, func() { Compare(&s, nil) })
}

func TestHighestSupplyChange(t *testing.T) {
	got := HighestSupplyChange(map[string]float64{"foodMeals": 20, "waterLiters": -75, "bodyBags": 0})
	assert.Equal(t, SupplyChange{Name: "waterLiters", Change: "-75.0%"}, got)
	assert.Equal(t, SupplyChange{Name: "none", Change: "0.0%"}, HighestSupplyChange(nil))
}

func TestMostImprovedStatus(t *testing.T) {
	got := MostImprovedStatus(map[string]float64{"DONE": 50, "PENDING": 80, "IN_PROGRESS": -90})
	assert.Equal(t, StatusChange{Status: "PENDING", Change: "+80.0%"}, got)

	none := MostImprovedStatus(map[string]float64{"DONE": -10, "PENDING": 0})
	assert.Equal(t, StatusChange{Status: "none", Change: "0.0%"}, none)
}

func TestRequestTypeTrend(t *testing.T) {
	got := RequestTypeTrend(map[string]float64{"WATER": 10, "FOOD": -40})
	assert.Equal(t, "FOOD requests: -40.0%", got.Trend)
	assert.Equal(t, "FOOD", got.Type)
	assert.Equal(t, "No significant trends", RequestTypeTrend(map[string]float64{}).Trend)
}

func TestPendingComparison(t *testing.T) {
	cur := Stats{TotalRequests: 10, ByStatus: map[string]int64{"PENDING": 2}}
	prev := Stats{TotalRequests: 4, ByStatus: map[string]int64{"PENDING": 2}}

	p := PendingComparison(&cur, &prev)
	assert.Equal(t, "20.0%", p.CurrentPeriod.PendingPercentage)
	assert.Equal(t, "50.0%", p.PreviousPeriod.PendingPercentage)
	assert.Equal(t, int64(0), p.Changes.AbsoluteChange)
	assert.Equal(t, "0.0%", p.Changes.PercentageChange)
	assert.Equal(t, "-30.0 pp", p.Changes.PendingRateChange)
}

func TestSummarize(t *testing.T) {
	cur := Aggregate(sampleRecords())
	prev := Aggregate(sampleRecords()[:1])

	s := Summarize(&cur, &prev)
	assert.Equal(t, "+300.0%", s.TotalRequestsChange)
	assert.Equal(t, "+75.0%", s.AffectedIndividualsChange)
	assert.Equal(t, "+100.0%", s.CompletionRateChange)
	assert.Equal(t, "+100.0 pp", FormatPoints(100))
	assert.NotEqual(t, "none", s.MostImprovedStatus.Status)
}

func TestWeekOverWeek(t *testing.T) {
	at := func(d int) time.Time { return time.Date(2024, 9, d, 12, 0, 0, 0, time.UTC) }
	recs := []models.Request{
		{Status: models.StatusDone, CreatedAt: at(10)},
		{Status: models.StatusPending, CreatedAt: at(12)},
		{Status: models.StatusPending, CreatedAt: at(3)},
		{Status: models.StatusPending, CreatedAt: at(20)},
		{Status: models.StatusPending},
	}
	start := time.Date(2024, 9, 9, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 9, 12, 0, 0, 0, 0, time.UTC)

	r := WeekOverWeek(recs, start, end)
	assert.Equal(t, int64(2), r.Data.TotalRequests, "end date covers the whole day")
	assert.Equal(t, int64(1), r.WeekOverWeekComparison.PreviousWeek.TotalRequests)
	assert.Equal(t, 100.0, r.WeekOverWeekComparison.PercentageChanges.TotalRequests)
	assert.Equal(t, "+100.0%", r.WeekOverWeekComparison.Summary.TotalRequestsChange)
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"09/10/2024", "9/10/2024", "2024-09-10", "2024-09-10T00:00:00Z"} {
		d, ok := ParseDate(s, nil)
		require.True(t, ok, s)
		assert.Equal(t, time.September, d.Month(), s)
		assert.Equal(t, 10, d.Day(), s)
	}
	_, ok := ParseDate("yesterday", nil)
	assert.False(t, ok)
}

func TestVolunteerSummaryAndPerformance(t *testing.T) {
	claim := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	done := claim.Add(3 * time.Hour)
	history := []models.HistoryEntry{
		{ActionType: models.ActionClaim, NewStatus: models.StatusInProgress, Timestamp: claim,
			Metadata: map[string]any{models.MetaRequestAddress: "Hue"}},
		{ActionType: models.ActionComplete, NewStatus: models.StatusDone, Timestamp: done,
			Metadata: map[string]any{
				models.MetaRequestAddress: "Hue",
				models.MetaClaimTime:      claim,
				models.MetaCompletionTime: done.Format(time.RFC3339),
			}},
	}

	s := SummarizeVolunteer(history)
	assert.Equal(t, int64(2), s.TotalTasks)
	assert.Equal(t, 50.0, s.CompletionRate)
	assert.Equal(t, int64(1), s.TasksByType["CLAIM"])

	p := VolunteerPerformance(history)
	assert.Equal(t, int64(1), p.CompletedRequests)
	require.NotNil(t, p.AverageCompletionHours)
	assert.Equal(t, 3.0, *p.AverageCompletionHours)
	assert.Equal(t, int64(2), p.RequestsByMonth["Sep 2024"])
	assert.Equal(t, int64(2), p.RequestsByLocation["Hue"])

	empty := VolunteerPerformance(nil)
	assert.Nil(t, empty.AverageCompletionHours)
	assert.Zero(t, SummarizeVolunteer(nil).CompletionRate)
}

func TestVolunteerOverview(t *testing.T) {
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	all := []models.Volunteer{
		{ID: "admin", Groups: []string{models.AdminGroup}, IsVerified: true, CreatedAt: now},
		{ID: "a", IsVerified: true, CreatedAt: now.AddDate(0, 0, -45)},
		{ID: "b", IsVerified: true, CreatedAt: now.Add(-RecentWindow)},
		{ID: "c", CreatedAt: now.AddDate(0, 0, -1)},
		{ID: "d"},
	}
	assert.Equal(t, Overview{
		TotalVolunteers:      4,
		ActiveVolunteers:     2,
		UnverifiedVolunteers: 2,
		RecentlyJoined:       2,
	}, VolunteerOverview(all, now))

	assert.Equal(t, Overview{}, VolunteerOverview(nil, now))
}
