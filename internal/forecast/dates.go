package forecast

import "time"

const (
	wireLayout    = "2006-01-02 15:04:05"
	displayLayout = "02 January 15:04"
)

// DisplayDate converts a wire timestamp ("2024-09-18 03:00:00") into the
// display form ("18 September 03:00"). Unparseable input yields "".
func DisplayDate(wire string) string {
	t, err := time.Parse(wireLayout, wire)
	if err != nil {
		return ""
	}
	return t.Format(displayLayout)
}

// ClockTime returns the trailing "HH:mm" of a display date.
func ClockTime(wire string) string {
	d := DisplayDate(wire)
	if len(d) < 5 {
		return d
	}
	return d[len(d)-5:]
}

// DayHeader returns the display date without its time, used as the section
// header for a day bucket ("18 September").
func DayHeader(wire string) string {
	d := DisplayDate(wire)
	if len(d) < 6 {
		return d
	}
	return d[:len(d)-6]
}
