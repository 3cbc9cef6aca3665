package tui

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/naveenspark/consultly/internal/booking"
	"github.com/naveenspark/consultly/internal/session"
	"github.com/naveenspark/consultly/pkg/client"
	"github.com/naveenspark/consultly/pkg/domain"
)

// fakeBackend stands in for the API client behind every booking component.
type fakeBackend struct {
	services []domain.Service
	slots    []domain.Slot
	history  []domain.Booking

	createErr  error
	confirmErr error
	loginErr   error
	sess      *domain.Session

	months  []string
	created []client.CreateBookingRequest
	logins  []client.LoginRequest
	listed  []string
}

func (f *fakeBackend) ListServices(context.Context) ([]domain.Service, error) {
	return f.services, nil
}

func (f *fakeBackend) GetAvailability(_ context.Context, _ string, month string) ([]domain.Slot, error) {
	f.months = append(f.months, month)
	return f.slots, nil
}

func (f *fakeBackend) CreateBooking(_ context.Context, req client.CreateBookingRequest) (*domain.BookingReceipt, error) {
	f.created = append(f.created, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &domain.BookingReceipt{BookingID: "bk_1", Amount: 999, PaymentRef: "pay_1"}, nil
}

func (f *fakeBackend) ConfirmBooking(_ context.Context, req client.ConfirmBookingRequest) (*domain.Booking, error) {
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	return &domain.Booking{ID: req.BookingID, PaymentRef: req.PaymentRef, Status: domain.BookingConfirmed}, nil
}

func (f *fakeBackend) SendBookingConfirmation(context.Context, client.BookingNotification) error {
	return nil
}

func (f *fakeBackend) ListUserBookings(_ context.Context, userID string) ([]domain.Booking, error) {
	f.listed = append(f.listed, userID)
	return f.history, nil
}

func (f *fakeBackend) Login(_ context.Context, req client.LoginRequest) (*domain.Session, error) {
	f.logins = append(f.logins, req)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.sess, nil
}

var testNow = time.Date(2025, 9, 10, 8, 0, 0, 0, time.UTC)

func newBackend() *fakeBackend {
	return &fakeBackend{
		services: []domain.Service{
			{ID: "svc_1", Name: "Career Coaching", Price: 999, Duration: 60, Consultant: "Dr. Rao"},
			{ID: "svc_2", Name: "Resume Review", Price: 499, Duration: 30},
		},
		slots: []domain.Slot{
			{ID: "sl_2", ServiceID: "svc_1", Start: time.Date(2025, 9, 10, 14, 30, 0, 0, time.UTC), SeatsLeft: 1},
			{ID: "sl_1", ServiceID: "svc_1", Start: time.Date(2025, 9, 10, 9, 0, 0, 0, time.UTC), SeatsLeft: 2},
			{ID: "sl_3", ServiceID: "svc_1", Start: time.Date(2025, 9, 11, 9, 0, 0, 0, time.UTC), SeatsLeft: 2},
		},
		sess: &domain.Session{Token: "tok", User: domain.User{ID: "u_1", Name: "Ada", Email: "ada@example.com"}},
	}
}

func newTestApp(f *fakeBackend, store session.Store) App {
	log := zap.NewNop()
	a := NewApp(Deps{
		Catalog:       booking.NewCatalog(f, log),
		Availability:  booking.NewAvailability(f, time.UTC, log),
		Orchestrator:  booking.NewOrchestrator(f, log),
		History:       booking.NewHistory(f),
		Auth:          f,
		Gate:          session.NewGate[tea.Cmd](store),
		Logger:        log,
		PaymentMethod: "mock",
		WebURL:        "https://consultly.app",
		Location:      time.UTC,
		Now:           func() time.Time { return testNow },
	})
	a.width = 100
	a.height = 40
	return a
}

func anonymous() session.Store { return session.NewMemoryStore(domain.Session{}) }

func signedIn() session.Store {
	return session.NewMemoryStore(domain.Session{Token: "tok", User: domain.User{ID: "u_1", Name: "Ada"}})
}

// tokenOnly is a session whose token carries no user id.
func tokenOnly() session.Store {
	return session.NewMemoryStore(domain.Session{Token: "opaque-token"})
}

func update(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := a.Update(msg)
	return m.(App), cmd
}

// run executes cmd and feeds its message back into the app.
func run(t *testing.T, a App, cmd tea.Cmd) (App, tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	return update(t, a, cmd())
}

func keyPress(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func typeText(t *testing.T, a App, s string) App {
	t.Helper()
	for _, r := range s {
		a, _ = update(t, a, keyPress(string(r)))
	}
	return a
}

// toPayment loads the catalog, picks the first service and its first time.
func toPayment(t *testing.T, a App) App {
	t.Helper()
	a, _ = update(t, a, a.catalog.Init()())
	a, cmd := update(t, a, keyPress("enter"))
	if a.step != stepSlot {
		t.Fatalf("step = %d, want stepSlot", a.step)
	}
	a, _ = run(t, a, cmd)
	a, _ = update(t, a, keyPress("enter"))
	if a.step != stepPayment {
		t.Fatalf("step = %d, want stepPayment", a.step)
	}
	return a
}

func TestCatalogShowsServices(t *testing.T) {
	a := newTestApp(newBackend(), anonymous())
	a, _ = update(t, a, a.catalog.Init()())

	view := a.View()
	for _, want := range []string{"Career Coaching", "999", "1h", "Resume Review"} {
		if !strings.Contains(view, want) {
			t.Errorf("catalog view missing %q", want)
		}
	}
}

func TestCatalogEmpty(t *testing.T) {
	f := newBackend()
	f.services = nil
	a := newTestApp(f, anonymous())
	a, _ = update(t, a, a.catalog.Init()())

	if !strings.Contains(a.View(), "No services available") {
		t.Errorf("expected empty catalog message, got:\n%s", a.View())
	}
	a, cmd := update(t, a, keyPress("enter"))
	if cmd != nil || a.step != stepService {
		t.Error("enter on an empty catalog should do nothing")
	}
}

func TestSlotsForToday(t *testing.T) {
	f := newBackend()
	a := newTestApp(f, anonymous())
	a, _ = update(t, a, a.catalog.Init()())
	a, cmd := update(t, a, keyPress("enter"))
	a, _ = run(t, a, cmd)

	if len(f.months) != 1 || f.months[0] != "2025-09" {
		t.Errorf("months requested = %v, want [2025-09]", f.months)
	}
	if got := len(a.slots.options); got != 2 {
		t.Fatalf("options = %d, want 2", got)
	}
	if a.slots.options[0].Label != "09:00" || a.slots.options[1].Label != "14:30" {
		t.Errorf("labels = %q, %q; want 09:00, 14:30", a.slots.options[0].Label, a.slots.options[1].Label)
	}
}

func TestSlotsDayNavigation(t *testing.T) {
	f := newBackend()
	a := newTestApp(f, anonymous())
	a, _ = update(t, a, a.catalog.Init()())
	a, cmd := update(t, a, keyPress("enter"))
	a, _ = run(t, a, cmd)

	a, cmd = update(t, a, keyPress("l"))
	if !a.slots.loading {
		t.Error("expected loading after moving to the next day")
	}
	a, _ = run(t, a, cmd)
	if a.slots.dayKey() != "2025-09-11" {
		t.Errorf("day = %s, want 2025-09-11", a.slots.dayKey())
	}
	if len(a.slots.options) != 1 || a.slots.options[0].Slot.ID != "sl_3" {
		t.Errorf("options = %+v, want only sl_3", a.slots.options)
	}

	a, cmd = update(t, a, keyPress("]"))
	a, _ = run(t, a, cmd)
	if a.slots.dayKey() != "2025-10-11" {
		t.Errorf("day = %s, want 2025-10-11", a.slots.dayKey())
	}
	if f.months[len(f.months)-1] != "2025-10" {
		t.Errorf("last month requested = %s, want 2025-10", f.months[len(f.months)-1])
	}
}

func TestSlotsIgnoresStaleReply(t *testing.T) {
	a := newTestApp(newBackend(), anonymous())
	a, _ = update(t, a, a.catalog.Init()())
	a, todayCmd := update(t, a, keyPress("enter"))

	// Move on before today's reply arrives.
	a, tomorrowCmd := update(t, a, keyPress("l"))
	a, _ = run(t, a, todayCmd)
	if !a.slots.loading || len(a.slots.options) != 0 {
		t.Fatal("a reply for a previous day must not be shown")
	}
	a, _ = run(t, a, tomorrowCmd)
	if a.slots.loading || len(a.slots.options) != 1 {
		t.Errorf("expected tomorrow's single option, got %+v", a.slots.options)
	}
}

func TestPayWhileAnonymousDefersBookingUntilLogin(t *testing.T) {
	f := newBackend()
	a := toPayment(t, newTestApp(f, anonymous()))

	a, cmd := update(t, a, keyPress("enter"))
	if cmd != nil {
		t.Error("no request should be sent while signed out")
	}
	if !a.deps.Gate.LoginOpen() || !a.deps.Gate.HasPending() {
		t.Fatal("expected the login overlay with a pending booking")
	}
	if len(f.created) != 0 {
		t.Fatal("booking created before login")
	}
	if !strings.Contains(a.View(), "Sign in") {
		t.Error("login overlay not rendered")
	}

	a = typeText(t, a, "ada@example.com")
	a, _ = update(t, a, keyPress("tab"))
	a = typeText(t, a, "secret")
	a, cmd = update(t, a, keyPress("enter"))
	if !a.login.submitting {
		t.Error("expected the login request to be in flight")
	}

	a, cmd = run(t, a, cmd)
	if len(f.logins) != 1 || f.logins[0].Email != "ada@example.com" || f.logins[0].Password != "secret" {
		t.Fatalf("logins = %+v", f.logins)
	}
	if a.deps.Gate.LoginOpen() {
		t.Error("login overlay should close after success")
	}
	if !a.checkout.submitting {
		t.Error("the deferred booking should start right after login")
	}

	a, _ = run(t, a, cmd)
	if len(f.created) != 1 {
		t.Fatalf("created %d bookings, want exactly 1", len(f.created))
	}
	if f.created[0].UserID != "u_1" || f.created[0].SlotID != "sl_1" || f.created[0].PaymentMethod != "mock" {
		t.Errorf("create request = %+v", f.created[0])
	}
	if a.step != stepConfirmed {
		t.Fatalf("step = %d, want stepConfirmed", a.step)
	}
	view := a.View()
	if !strings.Contains(view, "Booking Confirmed") || !strings.Contains(view, "Career Coaching") {
		t.Errorf("confirmation view missing title or service:\n%s", view)
	}
}

func TestPayWhileSignedInBooksImmediately(t *testing.T) {
	f := newBackend()
	a := toPayment(t, newTestApp(f, signedIn()))

	a, cmd := update(t, a, keyPress("enter"))
	if a.deps.Gate.LoginOpen() {
		t.Fatal("login should not open when signed in")
	}
	if !a.checkout.submitting {
		t.Fatal("expected submitting state")
	}

	// A second press while in flight is ignored.
	a, again := update(t, a, keyPress("enter"))
	if again != nil {
		t.Error("second Pay & Confirm should be ignored while submitting")
	}

	a, _ = run(t, a, cmd)
	if len(f.created) != 1 {
		t.Errorf("created %d bookings, want 1", len(f.created))
	}
	if a.checkout.conf == nil || a.checkout.conf.Booking.ID != "bk_1" {
		t.Errorf("confirmation = %+v", a.checkout.conf)
	}
}

func TestBookingFailureShowsBackendMessage(t *testing.T) {
	f := newBackend()
	f.createErr = &client.HTTPError{StatusCode: http.StatusConflict, Message: "Slot full"}
	a := toPayment(t, newTestApp(f, signedIn()))

	a, cmd := update(t, a, keyPress("enter"))
	a, _ = run(t, a, cmd)

	if a.step != stepPayment {
		t.Errorf("step = %d, want stepPayment", a.step)
	}
	if a.checkout.conf != nil {
		t.Error("confirmation must stay empty on failure")
	}
	if a.checkout.submitting {
		t.Error("submitting should be cleared")
	}
	if !strings.Contains(a.View(), "Slot full") {
		t.Errorf("expected backend message in view:\n%s", a.View())
	}
}

func TestBookingFailureFallbackMessage(t *testing.T) {
	f := newBackend()
	f.createErr = errors.New("connection reset")
	a := toPayment(t, newTestApp(f, signedIn()))

	a, cmd := update(t, a, keyPress("enter"))
	a, _ = run(t, a, cmd)
	if a.checkout.errMsg != "Booking failed. Please try again." {
		t.Errorf("errMsg = %q", a.checkout.errMsg)
	}
}

func TestConfirmFailureStaysOnPayment(t *testing.T) {
	f := newBackend()
	f.confirmErr = &client.HTTPError{StatusCode: http.StatusPaymentRequired, Message: "Payment declined"}
	a := toPayment(t, newTestApp(f, signedIn()))

	a, cmd := update(t, a, keyPress("enter"))
	a, _ = run(t, a, cmd)

	if len(f.created) != 1 {
		t.Fatalf("created %d bookings, want 1", len(f.created))
	}
	if a.step != stepPayment {
		t.Errorf("step = %d, want stepPayment", a.step)
	}
	if a.checkout.conf != nil {
		t.Error("confirmation must stay empty when payment confirmation fails")
	}
	view := a.View()
	if !strings.Contains(view, "Payment declined") {
		t.Errorf("expected confirm error in view:\n%s", view)
	}
	if strings.Contains(view, "Booking Confirmed") {
		t.Error("confirmation screen shown after a failed confirm")
	}
}

func TestTokenWithoutUserOpensLoginThenBooks(t *testing.T) {
	f := newBackend()
	a := toPayment(t, newTestApp(f, tokenOnly()))

	// The gate trusts the token, so the booking is attempted at once.
	a, cmd := update(t, a, keyPress("enter"))
	if !a.checkout.submitting {
		t.Fatal("expected submitting state")
	}
	a, cmd = run(t, a, cmd)
	if cmd != nil {
		t.Error("no request should follow while signed out")
	}
	if len(f.created) != 0 {
		t.Fatal("booking created without a user id")
	}
	if a.deps.Gate.State() != session.Anonymous {
		t.Error("a session without a user should be cleared")
	}
	if !a.deps.Gate.LoginOpen() || !a.deps.Gate.HasPending() {
		t.Fatal("expected the login overlay with a pending booking")
	}
	if !a.checkout.awaitLogin {
		t.Error("checkout should wait for login")
	}

	a = typeText(t, a, "ada@example.com")
	a, _ = update(t, a, keyPress("tab"))
	a = typeText(t, a, "secret")
	a, cmd = update(t, a, keyPress("enter"))
	a, cmd = run(t, a, cmd)
	a, _ = run(t, a, cmd)

	if len(f.created) != 1 || f.created[0].UserID != "u_1" {
		t.Fatalf("created = %+v, want one booking for u_1", f.created)
	}
	if a.step != stepConfirmed {
		t.Errorf("step = %d, want stepConfirmed", a.step)
	}
}

func TestTokenWithoutUserBookingsTabOpensLogin(t *testing.T) {
	f := newBackend()
	a := newTestApp(f, tokenOnly())

	a, cmd := update(t, a, keyPress("2"))
	if !a.bookings.loading {
		t.Fatal("expected bookings to load with a stored token")
	}
	a, _ = run(t, a, cmd)

	if !a.deps.Gate.LoginOpen() || a.deps.Gate.State() != session.Anonymous {
		t.Fatal("expected login after a session without a user")
	}
	if len(f.listed) != 0 {
		t.Errorf("listed = %v, want none", f.listed)
	}
}

func TestCancelLoginDropsPendingBooking(t *testing.T) {
	f := newBackend()
	a := toPayment(t, newTestApp(f, anonymous()))
	a, _ = update(t, a, keyPress("enter"))

	a, _ = update(t, a, keyPress("esc"))
	if a.deps.Gate.LoginOpen() || a.deps.Gate.HasPending() {
		t.Error("esc should close login and drop the pending booking")
	}
	if a.checkout.awaitLogin {
		t.Error("checkout should no longer wait for login")
	}
	if a.step != stepPayment {
		t.Errorf("step = %d, want stepPayment", a.step)
	}
	if len(f.created) != 0 {
		t.Error("no booking should be created")
	}
}

func TestLoginFailureKeepsPendingBooking(t *testing.T) {
	f := newBackend()
	f.loginErr = &client.HTTPError{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}
	a := toPayment(t, newTestApp(f, anonymous()))
	a, _ = update(t, a, keyPress("enter"))

	a = typeText(t, a, "ada@example.com")
	a, _ = update(t, a, keyPress("tab"))
	a = typeText(t, a, "wrong")
	a, cmd := update(t, a, keyPress("enter"))
	a, _ = run(t, a, cmd)

	if !a.deps.Gate.LoginOpen() || !a.deps.Gate.HasPending() {
		t.Error("failed login should keep the form and the pending booking")
	}
	if a.deps.Gate.State() != session.Anonymous {
		t.Error("gate should stay anonymous")
	}
	if !strings.Contains(a.View(), "Invalid credentials") {
		t.Errorf("expected login error in view:\n%s", a.View())
	}
	if a.login.password != "" {
		t.Error("password should be cleared after a failed attempt")
	}
}

func TestLoginValidatesBeforeRequest(t *testing.T) {
	f := newBackend()
	a := toPayment(t, newTestApp(f, anonymous()))
	a, _ = update(t, a, keyPress("enter"))

	a = typeText(t, a, "not-an-email")
	a, _ = update(t, a, keyPress("tab"))
	a = typeText(t, a, "pw")
	a, cmd := update(t, a, keyPress("enter"))
	if cmd != nil {
		t.Error("invalid email should not send a request")
	}
	if a.login.errMsg != "email must be a valid email" {
		t.Errorf("errMsg = %q", a.login.errMsg)
	}
	if len(f.logins) != 0 {
		t.Error("login request sent")
	}
}

func TestBookingsTabRequiresLogin(t *testing.T) {
	f := newBackend()
	f.history = []domain.Booking{
		{ID: "bk_9", ServiceID: "svc_1", Amount: 999, Status: domain.BookingConfirmed,
			Service: &domain.Service{Name: "Career Coaching"}},
	}
	a := newTestApp(f, anonymous())

	a, cmd := update(t, a, keyPress("2"))
	if cmd != nil || !a.deps.Gate.LoginOpen() {
		t.Fatal("expected login before listing bookings")
	}
	a = typeText(t, a, "ada@example.com")
	a, _ = update(t, a, keyPress("tab"))
	a = typeText(t, a, "secret")
	a, cmd = update(t, a, keyPress("enter"))
	a, cmd = run(t, a, cmd)
	if !a.bookings.loading {
		t.Error("bookings should load after login")
	}
	a, _ = run(t, a, cmd)

	if len(f.listed) != 1 || f.listed[0] != "u_1" {
		t.Errorf("listed = %v, want [u_1]", f.listed)
	}
	if !strings.Contains(a.View(), "Career Coaching") {
		t.Errorf("bookings view missing entry:\n%s", a.View())
	}
}

func TestLogoutClearsSession(t *testing.T) {
	a := newTestApp(newBackend(), signedIn())
	a, _ = update(t, a, keyPress("L"))

	if a.deps.Gate.State() != session.Anonymous {
		t.Error("expected anonymous after logout")
	}
	if !strings.Contains(a.View(), "not signed in") {
		t.Error("header should show signed out")
	}
}

func TestConfirmedCopyAndNewBooking(t *testing.T) {
	var copied string
	writeClipboard = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { writeClipboard = defaultClipboard })

	a := toPayment(t, newTestApp(newBackend(), signedIn()))
	a, cmd := update(t, a, keyPress("enter"))
	a, _ = run(t, a, cmd)

	a, cmd = update(t, a, keyPress("c"))
	a, _ = run(t, a, cmd)
	if copied != "bk_1" {
		t.Errorf("copied %q, want bk_1", copied)
	}
	if a.checkout.statusMsg != "copied!" {
		t.Errorf("statusMsg = %q", a.checkout.statusMsg)
	}

	a, _ = update(t, a, keyPress("n"))
	if a.step != stepService || a.checkout.conf != nil {
		t.Error("n should start a new booking")
	}
}

func TestConfirmedOpenInBrowser(t *testing.T) {
	var opened string
	openURL = func(u string) error { opened = u; return nil }
	t.Cleanup(func() { openURL = defaultOpenURL })

	a := toPayment(t, newTestApp(newBackend(), signedIn()))
	a, cmd := update(t, a, keyPress("enter"))
	a, _ = run(t, a, cmd)
	a, cmd = update(t, a, keyPress("o"))
	run(t, a, cmd)

	if opened != "https://consultly.app/bookings/bk_1" {
		t.Errorf("opened %q", opened)
	}
}

func TestHelpOverlayToggle(t *testing.T) {
	a := newTestApp(newBackend(), anonymous())
	a, _ = update(t, a, keyPress("?"))
	if !a.helpOpen || !strings.Contains(a.View(), "Commands") {
		t.Fatal("expected help overlay")
	}
	a, _ = update(t, a, keyPress("esc"))
	if a.helpOpen {
		t.Error("esc should close help")
	}
}

func TestQuitOnQ(t *testing.T) {
	a := newTestApp(newBackend(), anonymous())
	_, cmd := update(t, a, keyPress("q"))
	if cmd == nil {
		t.Fatal("expected quit command on 'q', got nil")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
