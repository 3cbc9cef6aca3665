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

type slotsLoadedMsg struct {
	serviceID string
	day       string
	options   []booking.SlotOption
	err       error
}

// slotsModel is step 2: pick a day and a time.
type slotsModel struct {
	avail   *booking.Availability
	service domain.Service
	day     time.Time // midnight UTC of the picked calendar day
	options []booking.SlotOption
	cursor  int
	loading bool
	err     error
	width   int
	height  int
}

// calendarDay anchors the calendar date of t (in loc) at midnight UTC.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	y, mo, d := t.In(loc).Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func newSlotsModel(a *booking.Availability, svc domain.Service, day time.Time) slotsModel {
	return slotsModel{avail: a, service: svc, day: day, loading: true}
}

func (m slotsModel) dayKey() string {
	return m.day.Format(domain.DayLayout)
}

func (m slotsModel) load() tea.Cmd {
	a := m.avail
	serviceID := m.service.ID
	day := m.day
	return func() tea.Msg {
		opts, err := a.Fetch(context.Background(), serviceID, day)
		return slotsLoadedMsg{serviceID: serviceID, day: day.Format(domain.DayLayout), options: opts, err: err}
	}
}

func (m slotsModel) Init() tea.Cmd {
	return m.load()
}

func (m slotsModel) selected() (booking.SlotOption, bool) {
	if m.loading || m.cursor < 0 || m.cursor >= len(m.options) {
		return booking.SlotOption{}, false
	}
	return m.options[m.cursor], true
}

func (m slotsModel) moveTo(day time.Time) (slotsModel, tea.Cmd) {
	m.day = day
	m.options = nil
	m.cursor = 0
	m.err = nil
	m.loading = true
	return m, m.load()
}

func (m slotsModel) Update(msg tea.Msg) (slotsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case slotsLoadedMsg:
		// A reply for a day or service we've since moved away from.
		if msg.serviceID != m.service.ID || msg.day != m.dayKey() {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.options = msg.options
		if m.cursor >= len(m.options) {
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
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "l", "right":
			return m.moveTo(m.day.AddDate(0, 0, 1))
		case "h", "left":
			return m.moveTo(m.day.AddDate(0, 0, -1))
		case "]":
			return m.moveTo(m.day.AddDate(0, 1, 0))
		case "[":
			return m.moveTo(m.day.AddDate(0, -1, 0))
		case "r":
			return m.moveTo(m.day)
		}
	}
	return m, nil
}

func (m slotsModel) View() string {
	var b strings.Builder
	b.WriteString(" " + sectionHeaderStyle.Render("PICK A TIME") + "  " + selectedStyle.Render(m.service.Name) + "\n")
	b.WriteString(" " + helpKeyStyle.Render("‹ h") + "  " + accentStyle.Render(format.Day(m.day)) + "  " + helpKeyStyle.Render("l ›") + "\n\n")

	switch {
	case m.loading:
		b.WriteString("  " + dimStyle.Render("Loading times...") + "\n")
	case m.err != nil:
		b.WriteString("  " + errorStyle.Render(client.Message(m.err, "Could not load availability.")) + "\n")
		b.WriteString("  " + dimStyle.Render("press r to retry") + "\n")
	case len(m.options) == 0:
		b.WriteString("  " + dimStyle.Render("No free times on this day. Try another date.") + "\n")
	default:
		for i, o := range m.options {
			cursor := "  "
			style := normalStyle
			if i == m.cursor {
				cursor = accentStyle.Render("> ")
				style = selectedStyle
			}
			seats := ""
			if o.Slot.SeatsLeft > 0 {
				seats = metaStyle.Render(fmt.Sprintf("%d left", o.Slot.SeatsLeft))
			}
			b.WriteString(fmt.Sprintf(" %s%s  %s\n", cursor, style.Render(o.Label), seats))
		}
	}
	return b.String()
}
