package domain

import "time"

// Slot is a concrete bookable time window for a service.
type Slot struct {
	ID        string    `json:"id"`
	ServiceID string    `json:"serviceId"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	SeatsLeft int       `json:"seatsLeft"`
}

// Available reports whether the slot can still be selected.
func (s Slot) Available() bool {
	return s.SeatsLeft > 0
}

// Day returns the slot's start date normalized to a UTC calendar day.
func (s Slot) Day() string {
	return s.Start.UTC().Format(DayLayout)
}

// DayLayout is the calendar-day format used across the booking flow.
const DayLayout = "2006-01-02"

// MonthLayout is the YYYY-MM format the availability endpoint expects.
const MonthLayout = "2006-01"
