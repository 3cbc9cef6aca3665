package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/consultly/internal/booking"
	"github.com/naveenspark/consultly/internal/browser"
	"github.com/naveenspark/consultly/internal/format"
	"github.com/naveenspark/consultly/pkg/client"
	"github.com/naveenspark/consultly/pkg/domain"
)

var (
	defaultClipboard = clipboard.WriteAll
	defaultOpenURL   = browser.Open

	// Swapped in tests.
	writeClipboard = defaultClipboard
	openURL        = defaultOpenURL
)

type bookingDoneMsg struct {
	conf *booking.Confirmation
	err  error
}

type copyResultMsg struct{ err error }
type openResultMsg struct{ err error }

// checkoutModel covers step 3 (review and pay) and step 4 (confirmed).
type checkoutModel struct {
	service       domain.Service
	option        booking.SlotOption
	paymentMethod string
	loc           *time.Location
	webURL        string

	submitting bool
	awaitLogin bool // Pay & Confirm pressed while signed out
	errMsg     string
	statusMsg  string
	conf       *booking.Confirmation
	frame      int
}

func newCheckoutModel(svc domain.Service, opt booking.SlotOption, paymentMethod string, loc *time.Location, webURL string) checkoutModel {
	return checkoutModel{
		service:       svc,
		option:        opt,
		paymentMethod: paymentMethod,
		loc:           loc,
		webURL:        webURL,
	}
}

func (m checkoutModel) Update(msg tea.Msg) (checkoutModel, tea.Cmd) {
	switch msg := msg.(type) {
	case bookingDoneMsg:
		m.submitting = false
		m.awaitLogin = false
		if msg.err != nil {
			m.errMsg = bookingErrorMessage(msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.conf = msg.conf
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("copy failed: %v", msg.err)
		} else {
			m.statusMsg = "copied!"
		}
		return m, nil

	case openResultMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("open failed: %v", msg.err)
		}
		return m, nil

	case shimmerTickMsg:
		m.frame++
		return m, nil

	case tea.KeyMsg:
		if m.conf == nil {
			return m, nil
		}
		m.statusMsg = ""
		switch msg.String() {
		case "c":
			id := m.conf.Booking.ID
			return m, func() tea.Msg {
				return copyResultMsg{err: writeClipboard(id)}
			}
		case "o":
			u := browser.BookingURL(m.webURL, m.conf.Booking.ID)
			if u == "" {
				m.statusMsg = "no web address configured"
				return m, nil
			}
			return m, func() tea.Msg {
				return openResultMsg{err: openURL(u)}
			}
		}
	}
	return m, nil
}

func (m checkoutModel) View() string {
	if m.conf != nil {
		return m.viewConfirmed()
	}

	var b strings.Builder
	b.WriteString(" " + sectionHeaderStyle.Render("REVIEW AND PAY") + "\n\n")
	row := func(label, value string) {
		b.WriteString(fmt.Sprintf("   %s %s\n", metaStyle.Render(fmt.Sprintf("%-10s", label)), value))
	}
	row("Service", selectedStyle.Render(m.service.Name))
	if m.service.Consultant != "" {
		row("With", normalStyle.Render(m.service.Consultant))
	}
	row("When", normalStyle.Render(format.When(m.option.Slot.Start, m.loc)))
	if d := format.Duration(m.service.Duration); d != "" {
		row("Length", normalStyle.Render(d))
	}
	row("Price", priceStyle.Render(format.Price(m.service.Price)))
	row("Payment", dimStyle.Render(m.paymentMethod))
	b.WriteString("\n")

	switch {
	case m.submitting:
		b.WriteString("   " + spinner(m.frame) + " " + dimStyle.Render("Processing payment...") + "\n")
	case m.awaitLogin:
		b.WriteString("   " + accentStyle.Render("Sign in to finish your booking.") + "\n")
	default:
		b.WriteString("   " + inputPromptStyle.Render("[ Pay & Confirm ]") + "  " + helpKeyStyle.Render("enter") + "\n")
	}
	if m.errMsg != "" {
		b.WriteString("\n   " + errorStyle.Render(m.errMsg) + "\n")
	}
	return b.String()
}

func (m checkoutModel) viewConfirmed() string {
	c := m.conf
	var b strings.Builder
	b.WriteString(" " + successStyle.Render("Booking Confirmed") + "\n\n")
	row := func(label, value string) {
		b.WriteString(fmt.Sprintf("   %s %s\n", metaStyle.Render(fmt.Sprintf("%-10s", label)), value))
	}
	row("Service", selectedStyle.Render(c.Service.Name))
	row("When", normalStyle.Render(format.When(c.Slot.Start, m.loc)))
	row("Booking", accentStyle.Render(c.Booking.ID))
	row("Paid", priceStyle.Render(format.Price(c.Receipt.Amount)))
	if c.Receipt.PaymentRef != "" {
		row("Reference", dimStyle.Render(c.Receipt.PaymentRef))
	}
	row("Status", StatusStyle(string(c.Booking.Status)).Render(string(c.Booking.Status)))
	b.WriteString("\n")
	if c.Notified {
		b.WriteString("   " + dimStyle.Render("A confirmation email is on its way.") + "\n")
	} else {
		b.WriteString("   " + dimStyle.Render("We could not send the confirmation email.") + "\n")
	}
	if m.statusMsg != "" {
		b.WriteString("\n   " + accentStyle.Render(m.statusMsg) + "\n")
	}
	return b.String()
}

// bookingErrorMessage prefers the backend's own wording, e.g. "Slot full".
func bookingErrorMessage(err error) string {
	switch {
	case errors.Is(err, booking.ErrBusy):
		return "A booking is already in progress."
	case errors.Is(err, booking.ErrNotAuthenticated):
		return "Sign in to book."
	}
	return client.Message(err, "Booking failed. Please try again.")
}
