package domain

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingCreated   BookingStatus = "created"
	BookingConfirmed BookingStatus = "confirmed"
)

// Booking is a user's reservation of one slot.
type Booking struct {
	ID         string        `json:"id"`
	ServiceID  string        `json:"serviceId"`
	SlotID     string        `json:"slotId"`
	UserID     string        `json:"userId"`
	PaymentRef string        `json:"paymentRef,omitempty"`
	Amount     float64       `json:"amount,omitempty"`
	Status     BookingStatus `json:"status"`
	Service    *Service      `json:"service,omitempty"` // populated on list endpoints
	Slot       *Slot         `json:"slot,omitempty"`    // populated on list endpoints
	CreatedAt  time.Time     `json:"createdAt"`
}

// Confirmed reports whether payment confirmation succeeded.
func (b Booking) Confirmed() bool {
	return b.Status == BookingConfirmed
}

// BookingReceipt is returned by booking creation, before payment confirmation.
type BookingReceipt struct {
	BookingID  string  `json:"bookingId"`
	Amount     float64 `json:"amount"`
	PaymentRef string  `json:"paymentRef"`
}
