package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/consultly/internal/booking"
	"github.com/naveenspark/consultly/internal/format"
	"github.com/naveenspark/consultly/pkg/client"
	"github.com/naveenspark/consultly/pkg/domain"
)

type bookingsLoadedMsg struct {
	bookings []domain.Booking
	err      error
}

// bookingsModel is the "My bookings" tab.
type bookingsModel struct {
	bookings []domain.Booking
	cursor   int
	loading  bool
	loaded   bool
	err      error
	loc      *time.Location
	width    int
	height   int
}

func newBookingsModel(loc *time.Location) bookingsModel {
	return bookingsModel{loc: loc}
}

func loadBookings(h *booking.History, user domain.User) tea.Cmd {
	return func() tea.Msg {
		bookings, err := h.List(context.Background(), user)
		return bookingsLoadedMsg{bookings: bookings, err: err}
	}
}

func (m bookingsModel) Update(msg tea.Msg) (bookingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case bookingsLoadedMsg:
		m.loading = false
		m.loaded = msg.err == nil
		m.err = msg.err
		m.bookings = msg.bookings
		if m.cursor >= len(m.bookings) {
			m.cursor = 0
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.bookings)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		}
	}
	return m, nil
}

func (m bookingsModel) View() string {
	var b strings.Builder
	b.WriteString(" " + sectionHeaderStyle.Render("MY BOOKINGS") + "\n\n")

	switch {
	case m.loading:
		b.WriteString("  " + dimStyle.Render("Loading bookings...") + "\n")
		return b.String()
	case m.err != nil:
		b.WriteString("  " + errorStyle.Render(client.Message(m.err, "Could not load your bookings.")) + "\n")
		return b.String()
	case !m.loaded:
		b.WriteString("  " + dimStyle.Render("Sign in to see your bookings.") + "\n")
		return b.String()
	case len(m.bookings) == 0:
		b.WriteString("  " + dimStyle.Render("No bookings yet.") + "\n")
		return b.String()
	}

	for i, bk := range m.bookings {
		cursor := "  "
		style := normalStyle
		if i == m.cursor {
			cursor = accentStyle.Render("> ")
			style = selectedStyle
		}
		name := bk.ServiceID
		if bk.Service != nil && bk.Service.Name != "" {
			name = bk.Service.Name
		}
		when := "-"
		if bk.Slot != nil {
			when = format.When(bk.Slot.Start, m.loc)
		}
		status := string(bk.Status)
		b.WriteString(fmt.Sprintf(" %s%s  %s  %s  %s\n",
			cursor,
			style.Render(fmt.Sprintf("%-24s", truncStr(name, 24))),
			dimStyle.Render(when),
			priceStyle.Render(format.Price(bk.Amount)),
			StatusStyle(status).Render(status),
		))
	}
	return b.String()
}
