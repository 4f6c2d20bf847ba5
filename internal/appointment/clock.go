package appointment

import (
	"strconv"
	"strings"
	"time"

	"github.com/hackgods/clinic-appointments/internal/catalog"
)

const (
	isoDateLayout     = "2006-01-02"
	displayDateLayout = "02-01-2006"
	scheduleLayout    = "2006-01-02T15:04"

	minutesPerDay = 24 * 60
)

// IsCompleteDate reports whether a date input has the length of YYYY-MM-DD.
// Only the length is checked, not calendar validity.
func IsCompleteDate(date string) bool {
	return len(date) == len(isoDateLayout)
}

// ScheduleDateTime parses the schedule's date and start time as wall-clock
// time in loc. ok is false when the pair does not parse.
func ScheduleDateTime(s Schedule, loc *time.Location) (t time.Time, ok bool) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(scheduleLayout, s.Date+"T"+s.StartTime, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// AddMinutes adds minutes to an HH:MM time on a 24 hour clock. The result
// wraps past midnight without any notion of a date. Inputs that are not
// HH:MM are returned unchanged.
func AddMinutes(hhmm string, minutes int) string {
	parts := strings.Split(hhmm, ":")
	if len(parts) < 2 {
		return hhmm
	}

	hours, err := atoiLoose(parts[0])
	if err != nil {
		return hhmm
	}
	mins, err := atoiLoose(parts[1])
	if err != nil {
		return hhmm
	}

	total := ((hours*60+mins+minutes)%minutesPerDay + minutesPerDay) % minutesPerDay
	return pad2(total/60) + ":" + pad2(total%60)
}

// EndTime derives the end of a slot from the service duration.
func EndTime(start string, service *catalog.Service) string {
	return AddMinutes(start, service.Duration())
}

// FormatDisplayDate renders YYYY-MM-DD as DD-MM-YYYY. Anything else is
// returned verbatim.
func FormatDisplayDate(date string) string {
	t, err := time.Parse(isoDateLayout, date)
	if err != nil {
		return date
	}
	return t.Format(displayDateLayout)
}

// FormatControlDate is FormatDisplayDate for partially typed input.
func FormatControlDate(value string) string {
	if value == "" || !IsCompleteDate(value) {
		return value
	}
	return FormatDisplayDate(value)
}

// SanitizeDateInput normalizes keystrokes in a date field into YYYY,
// YYYY-MM or YYYY-MM-DD. Non-digits are dropped and at most eight digits
// are kept.
func SanitizeDateInput(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
			if digits.Len() == 8 {
				break
			}
		}
	}

	d := digits.String()
	switch {
	case len(d) <= 4:
		return d
	case len(d) <= 6:
		return d[:4] + "-" + d[4:]
	default:
		return d[:4] + "-" + d[4:6] + "-" + d[6:]
	}
}

// TodayISO is the default date for a new booking form.
func TodayISO(now time.Time) string {
	return now.Format(isoDateLayout)
}

// atoiLoose treats a blank component as zero, so "10:" reads as 10:00.
func atoiLoose(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
