package entities

import "time"

var weekdayNames = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// SelectDailySamples keeps samples 0, 8, 16, ... of an ordered 3-hour series,
// so each kept sample is one day after the previous one. The input is assumed
// to be in increasing time order and is not re-sorted.
func SelectDailySamples(points []ForecastPoint) []DailyForecast {
	return selectDailySamplesIn(points, time.Local)
}

func selectDailySamplesIn(points []ForecastPoint, loc *time.Location) []DailyForecast {
	days := make([]DailyForecast, 0, (len(points)+SamplesPerDay-1)/SamplesPerDay)
	for i := 0; i < len(points); i += SamplesPerDay {
		days = append(days, DailyForecast{
			ForecastPoint: points[i],
			SampleIndex:   i,
			Weekday:       DayOfWeekIn(points[i].Timestamp, loc),
		})
	}
	return days
}

// DayOfWeek names the weekday of a Unix timestamp in the local time zone.
func DayOfWeek(unixSeconds int64) string {
	return DayOfWeekIn(unixSeconds, time.Local)
}

func DayOfWeekIn(unixSeconds int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return WeekdayName(int(time.Unix(unixSeconds, 0).In(loc).Weekday()))
}

// WeekdayName maps 0 (Sunday) through 6 (Saturday) to a name and returns ""
// for anything else.
func WeekdayName(index int) string {
	if index < 0 || index >= len(weekdayNames) {
		return ""
	}
	return weekdayNames[index]
}
