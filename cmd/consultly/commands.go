package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"go.uber.org/zap"

	"github.com/naveenspark/consultly/internal/booking"
	"github.com/naveenspark/consultly/internal/format"
	"github.com/naveenspark/consultly/internal/session"
	"github.com/naveenspark/consultly/pkg/client"
	"github.com/naveenspark/consultly/pkg/domain"
)

// maxLoginAttempts bounds the inline sign-in prompt of "book".
const maxLoginAttempts = 3

var (
	headStyle = lipgloss.NewStyle().Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#34d474")).Bold(true)
)

func (e *env) readLine(prompt string) (string, error) {
	fmt.Fprint(e.out, prompt)
	line, err := e.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Swapped in tests.
var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

// readSecret reads a line without echo when stdin is a terminal. Piped input
// falls back to readLine.
func (e *env) readSecret(prompt string) (string, error) {
	if !e.inFile || !isTerminal(e.inFd) {
		return e.readLine(prompt)
	}
	fmt.Fprint(e.out, prompt)
	b, err := readPassword(e.inFd)
	fmt.Fprintln(e.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// login prompts for credentials on stdin and exchanges them for a session.
// It does not persist the session.
func (e *env) login(email string) (*domain.Session, error) {
	var err error
	if email == "" {
		if email, err = e.readLine("email: "); err != nil {
			return nil, err
		}
	}
	password, err := e.readSecret("password: ")
	if err != nil {
		return nil, err
	}
	creds := booking.Credentials{Email: email, Password: password}
	if err := booking.Validate(creds); err != nil {
		return nil, err
	}
	return e.api.Login(context.Background(), client.LoginRequest{Email: creds.Email, Password: creds.Password})
}

// session returns the stored session. One without a user id cannot book, so
// it is cleared and the user signs in again.
func (e *env) session() (domain.Session, bool) {
	sess, ok := e.store.Session()
	if ok && sess.User.ID == "" {
		e.logger.Warn("stored session has no user id, clearing")
		if err := e.store.Clear(); err != nil {
			e.logger.Error("clear session", zap.Error(err))
		}
		return domain.Session{}, false
	}
	return sess, ok
}

func (e *env) runLogin(args []string) error {
	email := ""
	if len(args) > 0 {
		email = args[0]
	}
	sess, err := e.login(email)
	if err != nil {
		e.logger.Info("login failed", zap.Error(err))
		return errors.New(client.Message(err, "sign in failed"))
	}
	if err := e.store.Save(*sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if e.cfg.Token != "" {
		fmt.Fprintln(e.out, dimStyle.Render("CONSULTLY_TOKEN is set; this session is not saved."))
	}
	fmt.Fprintf(e.out, "Signed in as %s\n", displayName(sess.User))
	return nil
}

func (e *env) runLogout() error {
	if _, ok := e.store.Session(); !ok {
		fmt.Fprintln(e.out, "Already signed out.")
		return nil
	}
	if err := e.store.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	fmt.Fprintln(e.out, "Signed out.")
	return nil
}

func (e *env) runWhoami() error {
	sess, ok := e.session()
	if !ok {
		fmt.Fprintln(e.out, "Not signed in. Run: consultly login")
		return nil
	}
	fmt.Fprintf(e.out, "%s %s\n", displayName(sess.User), dimStyle.Render(sess.User.ID))
	return nil
}

func (e *env) runServices() error {
	services, err := e.catalog.Load(context.Background())
	if err != nil {
		return errors.New(client.Message(err, "could not load services"))
	}
	if len(services) == 0 {
		fmt.Fprintln(e.out, "No services available right now.")
		return nil
	}
	fmt.Fprintln(e.out, headStyle.Render(fmt.Sprintf("%-14s %-28s %8s  %s", "ID", "SERVICE", "PRICE", "LENGTH")))
	for _, s := range services {
		line := fmt.Sprintf("%-14s %-28s %8s  %s", s.ID, s.Name, format.Price(s.Price), orDash(format.Duration(s.Duration)))
		if s.Consultant != "" {
			line += "  " + dimStyle.Render("with "+s.Consultant)
		}
		fmt.Fprintln(e.out, line)
	}
	return nil
}

// parseDay reads YYYY-MM-DD, defaulting to today in the display timezone.
func (e *env) parseDay(arg string) (time.Time, error) {
	if arg == "" {
		y, m, d := time.Now().In(e.cfg.Location()).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	day, err := time.Parse(domain.DayLayout, arg)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", arg)
	}
	return day, nil
}

func (e *env) runSlots(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: consultly slots <service-id> [YYYY-MM-DD]")
	}
	dayArg := ""
	if len(args) > 1 {
		dayArg = args[1]
	}
	day, err := e.parseDay(dayArg)
	if err != nil {
		return err
	}
	opts, err := e.avail.Fetch(context.Background(), args[0], day)
	if err != nil {
		return errors.New(client.Message(err, "could not load availability"))
	}
	if len(opts) == 0 {
		fmt.Fprintf(e.out, "No free times on %s.\n", day.Format(domain.DayLayout))
		return nil
	}
	fmt.Fprintln(e.out, headStyle.Render(format.Day(day)))
	for _, o := range opts {
		fmt.Fprintf(e.out, "  %s  %s\n", o.Label, dimStyle.Render(fmt.Sprintf("%d left", o.Slot.SeatsLeft)))
	}
	return nil
}

func (e *env) findService(ctx context.Context, id string) (domain.Service, error) {
	services, err := e.catalog.Load(ctx)
	if err != nil {
		return domain.Service{}, errors.New(client.Message(err, "could not load services"))
	}
	for _, s := range services {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.Service{}, fmt.Errorf("unknown service %q", id)
}

// runBook books the slot at a given time. When signed out it asks for
// credentials first and books right after a successful sign-in.
func (e *env) runBook(args []string) error {
	if len(args) != 3 {
		return errors.New("usage: consultly book <service-id> <YYYY-MM-DD> <HH:MM>")
	}
	ctx := context.Background()
	svc, err := e.findService(ctx, args[0])
	if err != nil {
		return err
	}
	day, err := e.parseDay(args[1])
	if err != nil {
		return err
	}
	opts, err := e.avail.Fetch(ctx, svc.ID, day)
	if err != nil {
		return errors.New(client.Message(err, "could not load availability"))
	}
	var opt *booking.SlotOption
	for i := range opts {
		if opts[i].Label == args[2] {
			opt = &opts[i]
			break
		}
	}
	if opt == nil {
		return fmt.Errorf("no free slot at %s on %s", args[2], args[1])
	}

	e.session() // drops a stored session without a user
	gate := session.NewGate[error](e.store)
	book := func() error {
		sess, _ := gate.Session()
		conf, err := e.orch.Book(ctx, booking.Request{
			Service:       svc,
			Slot:          opt.Slot,
			User:          sess.User,
			PaymentMethod: e.cfg.PaymentMethod,
		})
		if err != nil {
			return errors.New(client.Message(err, "booking failed, please try again"))
		}
		e.printConfirmation(conf)
		return nil
	}

	if err, ran := gate.RequireAuth(book); ran {
		return err
	}
	fmt.Fprintln(e.out, "Sign in to finish your booking.")
	for attempt := 0; attempt < maxLoginAttempts; attempt++ {
		sess, err := e.login("")
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			gate.LoginFailed(err)
			fmt.Fprintln(e.out, client.Message(err, "Sign in failed."))
			continue
		}
		res, ran, err := gate.LoginSucceeded(*sess)
		if err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		if ran {
			return res
		}
	}
	gate.CancelLogin()
	return errors.New("not signed in")
}

func (e *env) printConfirmation(c *booking.Confirmation) {
	fmt.Fprintln(e.out, okStyle.Render("Booking Confirmed"))
	fmt.Fprintf(e.out, "  %-10s %s\n", "Service", c.Service.Name)
	fmt.Fprintf(e.out, "  %-10s %s\n", "When", format.When(c.Slot.Start, e.cfg.Location()))
	fmt.Fprintf(e.out, "  %-10s %s\n", "Booking", c.Booking.ID)
	fmt.Fprintf(e.out, "  %-10s %s\n", "Paid", format.Price(c.Receipt.Amount))
	if !c.Notified {
		fmt.Fprintln(e.out, dimStyle.Render("  We could not send the confirmation email."))
	}
}

func (e *env) runBookings() error {
	sess, ok := e.session()
	if !ok {
		return errors.New("not signed in, run: consultly login")
	}
	bookings, err := e.history.List(context.Background(), sess.User)
	if err != nil {
		return errors.New(client.Message(err, "could not load your bookings"))
	}
	if len(bookings) == 0 {
		fmt.Fprintln(e.out, "No bookings yet.")
		return nil
	}
	loc := e.cfg.Location()
	for _, b := range bookings {
		name := b.ServiceID
		if b.Service != nil && b.Service.Name != "" {
			name = b.Service.Name
		}
		when := "-"
		if b.Slot != nil {
			when = format.When(b.Slot.Start, loc)
		}
		fmt.Fprintf(e.out, "%-14s %-28s %-22s %8s  %s\n", b.ID, name, when, format.Price(b.Amount), b.Status)
	}
	return nil
}

func displayName(u domain.User) string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	default:
		return u.ID
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
