package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jwalitptl/barber-api/internal/model"
)

const dateLayout = "2006-01-02"

// Aggregate buckets visits and signups into one entry per calendar day for the
// last days days ending on now's date, oldest first. Days are taken in now's
// location and events outside the window are ignored.
func Aggregate(days int, now time.Time, visits, signups []time.Time) []model.DailyBucket {
	if days <= 0 {
		return []model.DailyBucket{}
	}

	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	start := today.AddDate(0, 0, -(days - 1))

	buckets := make([]model.DailyBucket, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format(dateLayout)
		buckets[i].Date = date
		index[date] = i
	}

	for _, t := range visits {
		if i, ok := index[t.In(loc).Format(dateLayout)]; ok {
			buckets[i].Visits++
		}
	}
	for _, t := range signups {
		if i, ok := index[t.In(loc).Format(dateLayout)]; ok {
			buckets[i].Signups++
		}
	}
	return buckets
}

// WindowStart is the first instant covered by Aggregate for the same arguments.
func WindowStart(days int, now time.Time) time.Time {
	if days < 1 {
		days = 1
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return today.AddDate(0, 0, -(days - 1))
}

// ConversionRate formats signups/visits as a percentage with two decimals.
func ConversionRate(visits, signups int) string {
	if visits <= 0 {
		return "0.00%"
	}
	rate := decimal.NewFromInt(int64(signups)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(visits)))
	return rate.StringFixed(2) + "%"
}
