package booking

import (
	"context"
	"fmt"
	"sort"

	"github.com/naveenspark/consultly/pkg/domain"
)

// History lists a user's bookings, newest first.
type History struct {
	api HistoryAPI
}

func NewHistory(api HistoryAPI) *History {
	return &History{api: api}
}

func (h *History) List(ctx context.Context, user domain.User) ([]domain.Booking, error) {
	if user.ID == "" {
		return nil, ErrNotAuthenticated
	}
	bookings, err := h.api.ListUserBookings(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("booking.History.List: %w", err)
	}
	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
	return bookings, nil
}
