package booking

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/naveenspark/consultly/pkg/client"
	"github.com/naveenspark/consultly/pkg/domain"
)

// Step names a stage of the booking sequence.
type Step string

const (
	StepCreate  Step = "create"
	StepConfirm Step = "confirm"
)

// StepError reports which step of the booking sequence failed.
type StepError struct {
	Step Step
	// BookingID is set when the booking was created before the failure.
	BookingID string
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("booking %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Request is everything needed to book one slot.
type Request struct {
	Service       domain.Service
	Slot          domain.Slot
	User          domain.User
	PaymentMethod string
}

type requestInput struct {
	ServiceID     string `validate:"required" label:"service"`
	SlotID        string `validate:"required" label:"slot"`
	PaymentMethod string `validate:"required" label:"payment method"`
}

// Confirmation is the outcome of a successful booking.
type Confirmation struct {
	Booking domain.Booking
	Receipt domain.BookingReceipt
	Service domain.Service
	Slot    domain.Slot
	// Notified is false when the confirmation email could not be sent.
	Notified bool
}

// Orchestrator runs create → confirm → notify strictly in sequence.
// It is not transactional: a failed confirmation leaves the created booking
// on the server.
type Orchestrator struct {
	api    BookingAPI
	logger *zap.Logger
	tracer trace.Tracer
	busy   atomic.Bool
}

func NewOrchestrator(api BookingAPI, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		api:    api,
		logger: logger,
		tracer: otel.Tracer("github.com/naveenspark/consultly/internal/booking"),
	}
}

// Busy reports whether a booking is in flight.
func (o *Orchestrator) Busy() bool {
	return o.busy.Load()
}

// Book creates the booking, confirms its payment and sends the confirmation
// email. Validation happens before any request. A concurrent call while one
// is in flight returns ErrBusy.
func (o *Orchestrator) Book(ctx context.Context, req Request) (*Confirmation, error) {
	if req.User.ID == "" {
		return nil, ErrNotAuthenticated
	}
	if err := Validate(requestInput{
		ServiceID:     req.Service.ID,
		SlotID:        req.Slot.ID,
		PaymentMethod: req.PaymentMethod,
	}); err != nil {
		return nil, err
	}
	if !o.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer o.busy.Store(false)

	ctx, span := o.tracer.Start(ctx, "booking.Book", trace.WithAttributes(
		attribute.String("service.id", req.Service.ID),
		attribute.String("slot.id", req.Slot.ID),
	))
	defer span.End()

	log := o.logger.With(
		zap.String("service_id", req.Service.ID),
		zap.String("slot_id", req.Slot.ID),
		zap.String("user_id", req.User.ID),
	)

	receipt, err := o.api.CreateBooking(ctx, client.CreateBookingRequest{
		ServiceID:      req.Service.ID,
		SlotID:         req.Slot.ID,
		UserID:         req.User.ID,
		PaymentMethod:  req.PaymentMethod,
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		log.Error("create booking", zap.Error(err))
		return nil, fail(span, &StepError{Step: StepCreate, Err: err})
	}
	span.AddEvent("booking created", trace.WithAttributes(attribute.String("booking.id", receipt.BookingID)))
	log = log.With(zap.String("booking_id", receipt.BookingID))

	booking, err := o.api.ConfirmBooking(ctx, client.ConfirmBookingRequest{
		BookingID:  receipt.BookingID,
		PaymentRef: receipt.PaymentRef,
	})
	if err != nil {
		// The created booking is left unconfirmed on the server.
		log.Warn("confirm payment failed, booking left unconfirmed", zap.Error(err))
		return nil, fail(span, &StepError{Step: StepConfirm, BookingID: receipt.BookingID, Err: err})
	}
	span.AddEvent("payment confirmed")

	conf := &Confirmation{
		Booking: mergeBooking(*booking, *receipt, req),
		Receipt: *receipt,
		Service: req.Service,
		Slot:    req.Slot,
	}

	if err := o.api.SendBookingConfirmation(ctx, client.BookingNotification{
		BookingID:   receipt.BookingID,
		ServiceName: req.Service.Name,
		Consultant:  req.Service.Consultant,
		Start:       req.Slot.Start,
		Amount:      receipt.Amount,
		UserName:    req.User.Name,
		UserEmail:   req.User.Email,
	}); err != nil {
		log.Warn("send confirmation email", zap.Error(err))
	} else {
		conf.Notified = true
	}

	log.Info("booking confirmed", zap.Float64("amount", receipt.Amount), zap.Bool("notified", conf.Notified))
	return conf, nil
}

// mergeBooking fills fields the confirm endpoint may omit from what we already know.
func mergeBooking(b domain.Booking, r domain.BookingReceipt, req Request) domain.Booking {
	if b.ID == "" {
		b.ID = r.BookingID
	}
	if b.ServiceID == "" {
		b.ServiceID = req.Service.ID
	}
	if b.SlotID == "" {
		b.SlotID = req.Slot.ID
	}
	if b.UserID == "" {
		b.UserID = req.User.ID
	}
	if b.PaymentRef == "" {
		b.PaymentRef = r.PaymentRef
	}
	if b.Amount == 0 {
		b.Amount = r.Amount
	}
	if b.Status == "" {
		b.Status = domain.BookingConfirmed
	}
	return b
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
