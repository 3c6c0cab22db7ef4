package source

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
)

var (
	nonNumeric = regexp.MustCompile(`[^0-9.]`)
	nonDigit   = regexp.MustCompile(`[^0-9]`)
)

// ParsePercent parses a human readable percentage or decimal cell like
// "2.75%" or "1,234.5". Returns nil when the cell holds no number
func ParsePercent(value string) *decimal.Decimal {
	cleaned := strings.TrimSpace(strings.ReplaceAll(value, "%", ""))
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return nil
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		cleaned = nonNumeric.ReplaceAllString(cleaned, "")
		if cleaned == "" {
			return nil
		}
		d, err = decimal.NewFromString(cleaned)
		if err != nil {
			return nil
		}
	}
	return &d
}

// ParseShares parses a human readable integer cell like "12,34,567".
// Returns nil when the cell holds no digits
func ParseShares(value string) *int64 {
	cleaned := nonDigit.ReplaceAllString(value, "")
	if cleaned == "" {
		return nil
	}
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// ParseDate leniently parses a scraped date cell, preferring day-first
// interpretation for ambiguous formats (Indian sources). Returns nil when
// the cell cannot be parsed
func ParseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	t, err := dateparse.ParseAny(value, dateparse.PreferMonthFirst(false))
	if err != nil {
		return nil
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &day
}
