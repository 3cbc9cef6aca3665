// Package booking implements the appointment booking workflow: loading the
// service catalog, fetching and filtering availability, and orchestrating
// booking creation, payment confirmation and the confirmation email.
package booking

import (
	"context"
	"errors"

	"github.com/naveenspark/consultly/pkg/client"
	"github.com/naveenspark/consultly/pkg/domain"
)

// CatalogAPI lists bookable services.
type CatalogAPI interface {
	ListServices(ctx context.Context) ([]domain.Service, error)
}

// AvailabilityAPI lists the slots of a service for a month (YYYY-MM).
type AvailabilityAPI interface {
	GetAvailability(ctx context.Context, serviceID, month string) ([]domain.Slot, error)
}

// BookingAPI creates and confirms bookings and sends confirmation emails.
type BookingAPI interface {
	CreateBooking(ctx context.Context, req client.CreateBookingRequest) (*domain.BookingReceipt, error)
	ConfirmBooking(ctx context.Context, req client.ConfirmBookingRequest) (*domain.Booking, error)
	SendBookingConfirmation(ctx context.Context, n client.BookingNotification) error
}

// HistoryAPI lists a user's bookings.
type HistoryAPI interface {
	ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error)
}

var (
	// ErrBusy is returned when a booking is submitted while another is in flight.
	ErrBusy = errors.New("a booking is already in progress")
	// ErrNotAuthenticated is returned when booking without a signed-in user.
	ErrNotAuthenticated = errors.New("sign in to book")
)
