package booking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/naveenspark/consultly/pkg/domain"
)

// LabelLayout formats a slot's start time for display.
const LabelLayout = "15:04"

// SlotOption is one selectable time on the chosen day.
type SlotOption struct {
	Slot  domain.Slot
	Label string
}

// FilterSlots keeps the slots that start on day (YYYY-MM-DD, compared in UTC)
// and still have seats, then collapses slots sharing a day and displayed start
// time into one option. The first slot encountered for a label wins. Options
// are ordered by start time.
func FilterSlots(slots []domain.Slot, day string, loc *time.Location) []SlotOption {
	if loc == nil {
		loc = time.Local
	}
	seen := make(map[string]bool)
	var opts []SlotOption
	for _, s := range slots {
		if !s.Available() || s.Day() != day {
			continue
		}
		label := s.Start.In(loc).Format(LabelLayout)
		key := s.Day() + " " + label
		if seen[key] {
			continue
		}
		seen[key] = true
		opts = append(opts, SlotOption{Slot: s, Label: label})
	}
	sort.SliceStable(opts, func(i, j int) bool {
		return opts[i].Slot.Start.Before(opts[j].Slot.Start)
	})
	return opts
}

// Availability fetches a month of slots and narrows them to one day.
type Availability struct {
	api    AvailabilityAPI
	loc    *time.Location
	logger *zap.Logger
}

// NewAvailability returns a fetcher labeling times in loc (nil means local).
func NewAvailability(api AvailabilityAPI, loc *time.Location, logger *zap.Logger) *Availability {
	if loc == nil {
		loc = time.Local
	}
	return &Availability{api: api, loc: loc, logger: logger}
}

type availabilityInput struct {
	ServiceID string `validate:"required" label:"service"`
}

// Fetch returns the selectable options of serviceID on the calendar day of day.
func (a *Availability) Fetch(ctx context.Context, serviceID string, day time.Time) ([]SlotOption, error) {
	if err := Validate(availabilityInput{ServiceID: serviceID}); err != nil {
		return nil, err
	}
	dayKey := day.Format(domain.DayLayout)
	month := day.Format(domain.MonthLayout)

	slots, err := a.api.GetAvailability(ctx, serviceID, month)
	if err != nil {
		a.logger.Error("fetch availability",
			zap.String("service_id", serviceID),
			zap.String("month", month),
			zap.Error(err))
		return nil, fmt.Errorf("booking.Availability.Fetch: %w", err)
	}
	opts := FilterSlots(slots, dayKey, a.loc)
	a.logger.Debug("availability filtered",
		zap.String("service_id", serviceID),
		zap.String("day", dayKey),
		zap.Int("raw", len(slots)),
		zap.Int("options", len(opts)))
	return opts, nil
}
