package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

func printHelp(out io.Writer) {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#2dd4bf")).
		Bold(true).
		Render("C O N S U L T L Y")

	tagline := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("Book a consultation from your terminal.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"consultly", "Book a session (interactive TUI)"},
		{"consultly login [email]", "Sign in with email and password"},
		{"consultly logout", "Clear your session"},
		{"consultly whoami", "Show who is signed in"},
		{"consultly services", "List bookable services"},
		{"consultly slots <id> [date]", "List free times on a day"},
		{"consultly book <id> <date> <time>", "Book and pay for a time"},
		{"consultly bookings", "List your bookings"},
		{"consultly --version", "Show version"},
		{"consultly help", "You are here"},
	}

	fmt.Fprintf(out, "\n  %s\n\n  %s\n\n  Commands:\n", title, tagline)
	for _, c := range commands {
		fmt.Fprintf(out, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-34s", c.cmd)), descStyle.Render(c.desc))
	}
	fmt.Fprintln(out)
}
