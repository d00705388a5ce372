package metabolic

import (
	"sort"
	"time"

	"github.com/rmsalud/salud-api/internal/utils"
)

// CalorieEntry is one dated calorie amount from either the meal history
// (consumed) or the activity history (burned).
type CalorieEntry struct {
	Date     time.Time
	Calories float64
}

// DayBreakdown is the per-day net calorie series used for charting.
type DayBreakdown struct {
	Date     string  `json:"date"`
	Consumed float64 `json:"consumed"`
	Burned   float64 `json:"burned"`
	Net      float64 `json:"net"`
}

// Deviation describes how far the actual cumulative net intake has
// drifted from the plan since the goal started. It is re-derived from
// the full history on every request; at this data scale recomputation
// is cheaper than keeping incremental state.
type Deviation struct {
	ElapsedDays        int            `json:"elapsed_days"`
	ExpectedCumulative float64        `json:"expected_cumulative"`
	ActualCumulative   float64        `json:"actual_cumulative"`
	Deviation          float64        `json:"deviation"`
	DeviationPct       float64        `json:"deviation_pct"`
	Over               bool           `json:"over"`
	Days               []DayBreakdown `json:"days"`
}

// AnalyzeDeviation compares the net calories logged since the goal's
// start date against the plan's expected cumulative total. The creation
// day counts as elapsed day one, so elapsed = total - remaining + 1.
// Entries dated before the start date are ignored.
func AnalyzeDeviation(dailyTarget float64, totalDays, daysRemaining int, start time.Time, meals, activities []CalorieEntry) Deviation {
	elapsed := totalDays - daysRemaining + 1
	if elapsed < 0 {
		elapsed = 0
	}

	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	inWindow := func(d time.Time) bool {
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		return !day.Before(startDay)
	}

	perDay := map[string]*DayBreakdown{}
	dayOf := func(d time.Time) *DayBreakdown {
		key := d.Format(utils.DateLayout)
		if b, ok := perDay[key]; ok {
			return b
		}
		b := &DayBreakdown{Date: key}
		perDay[key] = b
		return b
	}

	var consumed, burned float64
	for _, m := range meals {
		if !inWindow(m.Date) {
			continue
		}
		consumed += m.Calories
		dayOf(m.Date).Consumed += m.Calories
	}
	for _, a := range activities {
		if !inWindow(a.Date) {
			continue
		}
		burned += a.Calories
		dayOf(a.Date).Burned += a.Calories
	}

	days := make([]DayBreakdown, 0, len(perDay))
	for _, b := range perDay {
		b.Net = b.Consumed - b.Burned
		days = append(days, *b)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	actual := consumed - burned
	expected := dailyTarget * float64(elapsed)

	dev := actual - expected
	var pct float64
	if expected != 0 {
		pct = round2(dev / expected * 100)
	}

	return Deviation{
		ElapsedDays:        elapsed,
		ExpectedCumulative: round2(expected),
		ActualCumulative:   round2(actual),
		Deviation:          round2(dev),
		DeviationPct:       pct,
		Over:               dev > 0,
		Days:               days,
	}
}
