package booking

import (
	"context"

	"github.com/naveenspark/consultly/pkg/client"
	"github.com/naveenspark/consultly/pkg/domain"
)

// fakeAPI records calls and returns canned results.
type fakeAPI struct {
	services []domain.Service
	slots    []domain.Slot
	receipt  *domain.BookingReceipt
	booking  *domain.Booking
	history  []domain.Booking

	listErr    error
	slotsErr   error
	createErr  error
	confirmErr error
	notifyErr  error

	months  []string
	created []client.CreateBookingRequest
	confirm []client.ConfirmBookingRequest
	notices []client.BookingNotification
	calls   []string
}

func (f *fakeAPI) ListServices(context.Context) ([]domain.Service, error) {
	f.calls = append(f.calls, "list")
	return f.services, f.listErr
}

func (f *fakeAPI) GetAvailability(_ context.Context, _ string, month string) ([]domain.Slot, error) {
	f.calls = append(f.calls, "availability")
	f.months = append(f.months, month)
	return f.slots, f.slotsErr
}

func (f *fakeAPI) CreateBooking(_ context.Context, req client.CreateBookingRequest) (*domain.BookingReceipt, error) {
	f.calls = append(f.calls, "create")
	f.created = append(f.created, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.receipt, nil
}

func (f *fakeAPI) ConfirmBooking(_ context.Context, req client.ConfirmBookingRequest) (*domain.Booking, error) {
	f.calls = append(f.calls, "confirm")
	f.confirm = append(f.confirm, req)
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	return f.booking, nil
}

func (f *fakeAPI) SendBookingConfirmation(_ context.Context, n client.BookingNotification) error {
	f.calls = append(f.calls, "notify")
	f.notices = append(f.notices, n)
	return f.notifyErr
}

func (f *fakeAPI) ListUserBookings(context.Context, string) ([]domain.Booking, error) {
	f.calls = append(f.calls, "history")
	return f.history, nil
}
