package model

import "time"

// DateLayout is the on-disk and on-screen format of Date.
const DateLayout = "2006-01-02"

// Date is a calendar day in DateLayout. Lexical order equals chronological order.
type Date string

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// ParseDate validates s against DateLayout.
func ParseDate(s string) (Date, error) {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", err
	}
	return Date(s), nil
}

func (d Date) IsZero() bool { return d == "" }

func (d Date) Before(other Date) bool { return d < other }

func (d Date) String() string { return string(d) }
