package resolver

import (
	"strconv"
	"strings"

	"github.com/teal-fm/quizd/models"
)

var monthNames = [...]string{
	"", "January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// monthName maps a 1-12 numeric month to its English name, or
// models.NotAvailable if num is out of range.
func monthName(num int) string {
	if num < 1 || num > 12 {
		return models.NotAvailable
	}
	return monthNames[num]
}

// dateParts splits an ISO-like date string ("", "YYYY", "YYYY-MM", or
// "YYYY-MM-DD") into year/month-name/day, each defaulting to
// models.NotAvailable when absent. Month and day also default to
// models.NotAvailable when not numeric; the year component is taken as-is.
func dateParts(date string) (year, month, day string) {
	year, month, day = models.NotAvailable, models.NotAvailable, models.NotAvailable
	if date == "" {
		return
	}
	parts := strings.Split(date, "-")
	if len(parts) > 0 && parts[0] != "" {
		year = parts[0]
	}
	if len(parts) > 1 && parts[1] != "" {
		if n, err := strconv.Atoi(parts[1]); err == nil {
			month = monthName(n)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if _, err := strconv.Atoi(parts[2]); err == nil {
			day = parts[2]
		}
	}
	return
}

// validYear reports whether year parses as an integer in [1900, currentYear].
func validYear(year string, currentYear int) bool {
	if len(year) != 4 {
		return false
	}
	n, err := strconv.Atoi(year)
	if err != nil {
		return false
	}
	return n >= 1900 && n <= currentYear
}
