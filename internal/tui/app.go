package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/naveenspark/consultly/internal/booking"
	"github.com/naveenspark/consultly/internal/session"
	"github.com/naveenspark/consultly/pkg/domain"
)

type view int

const (
	viewBook view = iota
	viewBookings
)

// step is the position in the booking wizard.
type step int

const (
	stepService step = iota
	stepSlot
	stepPayment
	stepConfirmed
)

// pendingAction is what the gate will run once the user signs in.
type pendingAction int

const (
	pendingNone pendingAction = iota
	pendingBooking
	pendingBookings
)

// Deps are the collaborators the TUI drives.
type Deps struct {
	Catalog       *booking.Catalog
	Availability  *booking.Availability
	Orchestrator  *booking.Orchestrator
	History       *booking.History
	Auth          Authenticator
	Gate          *session.Gate[tea.Cmd]
	Logger        *zap.Logger
	PaymentMethod string
	WebURL        string
	Location      *time.Location
	Now           func() time.Time
}

// App is the root Bubbletea model.
type App struct {
	deps     Deps
	view     view
	step     step
	catalog  catalogModel
	slots    slotsModel
	checkout checkoutModel
	login    loginModel
	bookings bookingsModel
	pending  pendingAction
	helpOpen bool
	flash    string
	width    int
	height   int
	frame    int // logo shimmer animation frame
}

// NewApp creates a new TUI application.
func NewApp(d Deps) App {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return App{
		deps:     d,
		catalog:  newCatalogModel(d.Catalog),
		login:    newLoginModel(d.Auth),
		bookings: newBookingsModel(d.Location),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.catalog.Init(), shimmerTickCmd())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + steps(1) + help(1) = 5 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 5}
		a.catalog, _ = a.catalog.Update(bodyMsg)
		a.slots, _ = a.slots.Update(bodyMsg)
		a.bookings, _ = a.bookings.Update(bodyMsg)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		a.checkout, _ = a.checkout.Update(msg)
		return a, shimmerTickCmd()

	case servicesLoadedMsg:
		a.catalog, _ = a.catalog.Update(msg)
		return a, nil

	case slotsLoadedMsg:
		a.slots, _ = a.slots.Update(msg)
		return a, nil

	case bookingDoneMsg:
		return a.handleBookingDone(msg)

	case copyResultMsg, openResultMsg:
		var cmd tea.Cmd
		a.checkout, cmd = a.checkout.Update(msg)
		return a, cmd

	case loginResultMsg:
		return a.handleLogin(msg)

	case bookingsLoadedMsg:
		a.bookings, _ = a.bookings.Update(msg)
		if errors.Is(msg.err, booking.ErrNotAuthenticated) {
			return a.reauthenticate(pendingBookings, a.bookingsAction())
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	// Help overlay captures all keys when open
	if a.helpOpen {
		switch msg.String() {
		case "?", "esc":
			a.helpOpen = false
		case "q":
			return a, tea.Quit
		}
		return a, nil
	}

	// Login overlay captures all keys when open
	if a.deps.Gate.LoginOpen() {
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		if a.login.closed {
			a.deps.Gate.CancelLogin()
			a.dropPending()
			a.login = newLoginModel(a.deps.Auth)
		}
		return a, cmd
	}

	a.flash = ""
	switch msg.String() {
	case "?":
		a.helpOpen = true
		return a, nil
	case "q":
		return a, tea.Quit
	case "1":
		a.view = viewBook
		return a, nil
	case "2":
		a.view = viewBookings
		return a.openBookings()
	case "L":
		return a.logout()
	}

	if a.view == viewBookings {
		if msg.String() == "r" {
			return a.openBookings()
		}
		var cmd tea.Cmd
		a.bookings, cmd = a.bookings.Update(msg)
		return a, cmd
	}
	return a.updateBook(msg)
}

func (a App) updateBook(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.step {
	case stepService:
		if msg.String() == "enter" {
			svc, ok := a.catalog.selected()
			if !ok {
				return a, nil
			}
			a.slots = newSlotsModel(a.deps.Availability, svc, calendarDay(a.deps.Now(), a.deps.Location))
			a.step = stepSlot
			return a, a.slots.Init()
		}
		a.catalog, cmd = a.catalog.Update(msg)

	case stepSlot:
		switch msg.String() {
		case "esc":
			a.step = stepService
			return a, nil
		case "enter":
			opt, ok := a.slots.selected()
			if !ok {
				return a, nil
			}
			a.checkout = newCheckoutModel(a.slots.service, opt, a.deps.PaymentMethod, a.deps.Location, a.deps.WebURL)
			a.step = stepPayment
			return a, nil
		}
		a.slots, cmd = a.slots.Update(msg)

	case stepPayment:
		switch msg.String() {
		case "esc":
			if !a.checkout.submitting {
				a.step = stepSlot
			}
			return a, nil
		case "enter":
			return a.submitBooking()
		}

	case stepConfirmed:
		switch msg.String() {
		case "n", "enter":
			a.step = stepService
			a.checkout = checkoutModel{}
			a.slots = slotsModel{}
			return a, nil
		}
		a.checkout, cmd = a.checkout.Update(msg)
	}
	return a, cmd
}

// requireAuth runs action now when signed in; otherwise it opens the login
// overlay and remembers kind so the UI can follow the continuation.
func (a App) requireAuth(kind pendingAction, action func() tea.Cmd) (App, tea.Cmd, bool) {
	wasOpen := a.deps.Gate.LoginOpen()
	cmd, ran := a.deps.Gate.RequireAuth(action)
	if ran {
		return a, cmd, true
	}
	// A newer request replaces whatever was waiting.
	a.checkout.awaitLogin = false
	a.pending = kind
	if !wasOpen {
		a.login = newLoginModel(a.deps.Auth)
	}
	return a, nil, false
}

func (a *App) dropPending() {
	a.pending = pendingNone
	a.checkout.awaitLogin = false
}

func (a App) submitBooking() (tea.Model, tea.Cmd) {
	if a.checkout.submitting || a.checkout.conf != nil {
		return a, nil
	}
	a.checkout.errMsg = ""
	a, cmd, ran := a.requireAuth(pendingBooking, a.bookAction(a.checkout.service, a.checkout.option.Slot))
	if ran {
		a.checkout.submitting = true
	} else {
		a.checkout.awaitLogin = true
	}
	return a, cmd
}

// bookAction reads the signed-in user when it runs, not when it is parked.
func (a App) bookAction(svc domain.Service, slot domain.Slot) func() tea.Cmd {
	gate, orch, method := a.deps.Gate, a.deps.Orchestrator, a.deps.PaymentMethod
	return func() tea.Cmd {
		sess, _ := gate.Session()
		req := booking.Request{Service: svc, Slot: slot, User: sess.User, PaymentMethod: method}
		return func() tea.Msg {
			conf, err := orch.Book(context.Background(), req)
			return bookingDoneMsg{conf: conf, err: err}
		}
	}
}

func (a App) handleBookingDone(msg bookingDoneMsg) (tea.Model, tea.Cmd) {
	a.checkout, _ = a.checkout.Update(msg)
	if errors.Is(msg.err, booking.ErrNotAuthenticated) {
		return a.reauthenticate(pendingBooking, a.bookAction(a.checkout.service, a.checkout.option.Slot))
	}
	if msg.err != nil {
		a.deps.Logger.Warn("booking failed", zap.Error(msg.err))
		return a, nil
	}
	if a.checkout.conf != nil {
		a.step = stepConfirmed
		// The list is stale now.
		a.bookings.loaded = false
	}
	return a, nil
}

func (a App) bookingsAction() func() tea.Cmd {
	gate, history := a.deps.Gate, a.deps.History
	return func() tea.Cmd {
		sess, _ := gate.Session()
		return loadBookings(history, sess.User)
	}
}

func (a App) openBookings() (tea.Model, tea.Cmd) {
	if a.bookings.loading {
		return a, nil
	}
	a, cmd, ran := a.requireAuth(pendingBookings, a.bookingsAction())
	if ran {
		a.bookings.loading = true
	}
	return a, cmd
}

// reauthenticate handles a stored session that carries a token but no user:
// it is cleared and the action waits behind a fresh sign-in.
func (a App) reauthenticate(kind pendingAction, action func() tea.Cmd) (tea.Model, tea.Cmd) {
	a.deps.Logger.Warn("session has no user id, signing out")
	if err := a.deps.Gate.Logout(); err != nil {
		a.deps.Logger.Error("clear session", zap.Error(err))
		a.flash = "sign out failed"
		return a, nil
	}
	a, cmd, ran := a.requireAuth(kind, action)
	if ran {
		// Logout left the gate authenticated; don't loop.
		return a, nil
	}
	switch kind {
	case pendingBooking:
		a.checkout.awaitLogin = true
		a.checkout.errMsg = ""
	case pendingBookings:
		a.bookings.err = nil
	}
	return a, cmd
}

func (a App) handleLogin(msg loginResultMsg) (tea.Model, tea.Cmd) {
	if msg.err == nil && msg.sess == nil {
		msg.err = fmt.Errorf("empty session")
	}
	a.login, _ = a.login.Update(msg)
	if msg.err != nil {
		a.deps.Gate.LoginFailed(msg.err)
		a.deps.Logger.Info("login failed", zap.Error(msg.err))
		return a, nil
	}

	cmd, ran, err := a.deps.Gate.LoginSucceeded(*msg.sess)
	if err != nil {
		a.deps.Logger.Error("save session", zap.Error(err))
		a.login.errMsg = "Signed in, but the session could not be saved."
		return a, nil
	}
	a.deps.Logger.Info("signed in", zap.String("user_id", msg.sess.User.ID))
	a.login = newLoginModel(a.deps.Auth)
	if ran {
		switch a.pending {
		case pendingBooking:
			a.checkout.submitting = true
		case pendingBookings:
			a.bookings.loading = true
		}
	}
	a.dropPending()
	return a, cmd
}

func (a App) logout() (tea.Model, tea.Cmd) {
	if err := a.deps.Gate.Logout(); err != nil {
		a.deps.Logger.Error("clear session", zap.Error(err))
		a.flash = "sign out failed"
		return a, nil
	}
	a.dropPending()
	a.bookings = newBookingsModel(a.deps.Location)
	a.flash = "signed out"
	return a, nil
}

func (a App) View() string {
	// Header: centered shimmer logo
	logo := renderShimmerLogo(a.frame)
	header := center(logo, a.width)

	var who string
	if sess, ok := a.deps.Gate.Session(); ok && a.deps.Gate.State() == session.Authenticated {
		name := sess.User.Name
		if name == "" {
			name = sess.User.Email
		}
		who = metaStyle.Render("signed in as ") + dimStyle.Render(name)
	} else {
		who = metaStyle.Render("not signed in")
	}
	if a.flash != "" {
		who += metaStyle.Render(" · ") + accentStyle.Render(a.flash)
	}
	header += "\n" + center(who, a.width)

	// Tab bar: 1 Book  2 My bookings
	tabs := []struct {
		key  string
		name string
		v    view
	}{
		{"1", "Book", viewBook},
		{"2", "My bookings", viewBookings},
	}
	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.v == a.view {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		tabBar.WriteString(padCenter(label, colWidth))
	}

	var steps, body, help string
	switch a.view {
	case viewBook:
		steps = " " + stepBar(a.step)
		switch a.step {
		case stepService:
			body = a.catalog.View()
			help = " " + helpEntry("j/k", "move") + "  " + helpEntry("enter", "choose") + "  " + helpEntry("?", "help") + "  " + helpEntry("q", "quit")
		case stepSlot:
			body = a.slots.View()
			help = " " + helpEntry("j/k", "move") + "  " + helpEntry("h/l", "day") + "  " + helpEntry("[/]", "month") + "  " + helpEntry("enter", "choose") + "  " + helpEntry("esc", "back")
		case stepPayment:
			body = a.checkout.View()
			help = " " + helpEntry("enter", "pay & confirm") + "  " + helpEntry("esc", "back") + "  " + helpEntry("q", "quit")
		case stepConfirmed:
			body = a.checkout.View()
			help = " " + helpEntry("c", "copy id") + "  " + helpEntry("o", "open") + "  " + helpEntry("n", "new booking") + "  " + helpEntry("2", "my bookings") + "  " + helpEntry("q", "quit")
		}
	case viewBookings:
		body = a.bookings.View()
		help = " " + helpEntry("1-2", "tabs") + "  " + helpEntry("j/k", "move") + "  " + helpEntry("r", "refresh") + "  " + helpEntry("L", "sign out") + "  " + helpEntry("q", "quit")
	}

	// Login overlay
	if a.deps.Gate.LoginOpen() {
		body = "\n" + center(a.login.View(), a.width)
		help = " " + helpEntry("tab", "next field") + "  " + helpEntry("enter", "sign in") + "  " + helpEntry("esc", "cancel")
	}

	// Help overlay
	if a.helpOpen {
		body = helpView()
		help = " " + helpEntry("esc", "close")
	}

	chrome := 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, tabBar.String(), steps, body, help)
}

// center left-pads every line of s so the block sits in the middle of width.
func center(s string, width int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.Repeat(" ", pad) + l
	}
	return strings.Join(lines, "\n")
}

func padCenter(s string, width int) string {
	w := lipgloss.Width(s)
	left := (width - w) / 2
	if left < 0 {
		left = 0
	}
	right := width - w - left
	if right < 0 {
		right = 0
	}
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}
