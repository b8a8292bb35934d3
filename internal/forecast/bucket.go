package forecast

import "weathertrack/internal/model"

// GroupByDay splits a chronological forecast into one bucket per calendar
// day. The key is the day-of-month: the first two characters of the display
// date. Input order is trusted; out-of-order timestamps produce out-of-order
// buckets. Empty input yields zero buckets.
//
// The key ignores month and year. Adjacent days always differ, so a
// month boundary inside the 5-day horizon still splits correctly; only a
// span long enough to repeat a day-of-month would merge, which the API
// never returns.
func GroupByDay(days []model.ForecastDay) [][]model.ForecastDay {
	if len(days) == 0 {
		return nil
	}

	var buckets [][]model.ForecastDay
	var current []model.ForecastDay
	prevKey := dayKey(days[0].Date)

	for _, day := range days {
		key := dayKey(day.Date)
		if key != prevKey {
			buckets = append(buckets, current)
			current = nil
			prevKey = key
		}
		current = append(current, day)
	}
	return append(buckets, current)
}

func dayKey(wire string) string {
	d := DisplayDate(wire)
	if len(d) < 2 {
		return d
	}
	return d[:2]
}
