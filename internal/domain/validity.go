package domain

import (
	"strconv"
	"strings"
	"time"
)

// ExpiryFromValidity resolves a plan validity label ("1 Month", "Lifetime",
// "30 Days") into the human-readable expiry printed on a bill.
func ExpiryFromValidity(now time.Time, validity string) string {
	lower := strings.ToLower(strings.TrimSpace(validity))
	if strings.Contains(lower, "lifetime") {
		return "Never / Lifetime"
	}
	if strings.Contains(lower, "no expiry") {
		return "No Expiry"
	}

	count := leadingInt(lower)
	if count <= 0 {
		count = 1
	}

	expiry := now
	switch {
	case strings.Contains(lower, "month"):
		expiry = expiry.AddDate(0, count, 0)
	case strings.Contains(lower, "year"):
		expiry = expiry.AddDate(count, 0, 0)
	case strings.Contains(lower, "day"):
		expiry = expiry.AddDate(0, 0, count)
	}

	return expiry.Format("January 2, 2006")
}

func leadingInt(value string) int {
	end := 0
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(value[:end])
	if err != nil {
		return 0
	}
	return n
}
