package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/consultly/internal/booking"
	"github.com/naveenspark/consultly/internal/format"
	"github.com/naveenspark/consultly/pkg/client"
	"github.com/naveenspark/consultly/pkg/domain"
)

type servicesLoadedMsg struct {
	services []domain.Service
	err      error
}

// catalogModel is step 1: pick a service.
type catalogModel struct {
	catalog  *booking.Catalog
	services []domain.Service
	cursor   int
	loading  bool
	err      error
	width    int
	height   int
}

func newCatalogModel(c *booking.Catalog) catalogModel {
	return catalogModel{catalog: c, loading: true}
}

func (m catalogModel) Init() tea.Cmd {
	c := m.catalog
	return func() tea.Msg {
		services, err := c.Load(context.Background())
		return servicesLoadedMsg{services: services, err: err}
	}
}

func (m catalogModel) selected() (domain.Service, bool) {
	if m.cursor < 0 || m.cursor >= len(m.services) {
		return domain.Service{}, false
	}
	return m.services[m.cursor], true
}

func (m catalogModel) Update(msg tea.Msg) (catalogModel, tea.Cmd) {
	switch msg := msg.(type) {
	case servicesLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.services = msg.services
		if m.cursor >= len(m.services) {
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
			if m.cursor < len(m.services)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "r":
			m.loading = true
			m.err = nil
			return m, m.Init()
		}
	}
	return m, nil
}

func (m catalogModel) View() string {
	var b strings.Builder
	b.WriteString(" " + sectionHeaderStyle.Render("CHOOSE A SERVICE") + "\n\n")

	if m.loading {
		b.WriteString("  " + dimStyle.Render("Loading services...") + "\n")
		return b.String()
	}
	if m.err != nil {
		b.WriteString("  " + errorStyle.Render(client.Message(m.err, "Could not load services.")) + "\n")
		b.WriteString("  " + dimStyle.Render("press r to retry") + "\n")
		return b.String()
	}
	if len(m.services) == 0 {
		b.WriteString("  " + dimStyle.Render("No services available right now.") + "\n")
		return b.String()
	}

	nameW := 28
	if m.width > 0 && m.width < 60 {
		nameW = 18
	}
	for i, s := range m.services {
		cursor := "  "
		nameStyle := normalStyle
		if i == m.cursor {
			cursor = accentStyle.Render("> ")
			nameStyle = selectedStyle
		}
		line := fmt.Sprintf(" %s%s  %s  %s",
			cursor,
			nameStyle.Render(fmt.Sprintf("%-*s", nameW, truncStr(s.Name, nameW))),
			priceStyle.Render(fmt.Sprintf("%8s", format.Price(s.Price))),
			metaStyle.Render(format.Duration(s.Duration)),
		)
		b.WriteString(line + "\n")
		if i == m.cursor {
			if s.Consultant != "" {
				b.WriteString("      " + dimStyle.Render("with "+s.Consultant) + "\n")
			}
			if s.Description != "" {
				b.WriteString("      " + dimStyle.Render(truncStr(s.Description, 72)) + "\n")
			}
		}
	}
	return b.String()
}
