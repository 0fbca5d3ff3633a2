package ui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

var colorClasses = map[string]lipgloss.Color{
	"blue":   lipgloss.Color("33"),
	"red":    lipgloss.Color("196"),
	"orange": lipgloss.Color("208"),
	"yellow": lipgloss.Color("226"),
	"green":  lipgloss.Color("46"),
	"teal":   lipgloss.Color("37"),
}

var sizeMarks = map[string]string{
	"small":  "S",
	"medium": "M",
	"large":  "L",
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	tabStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Padding(0, 1)
	activeTab     = tabStyle.Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Bold(true)
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	bannerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("52")).Bold(true).Padding(0, 1)
	summaryStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).MarginTop(1)
	newStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	changedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	closedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	trackingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// colorFor returns the terminal color of a color class
func colorFor(class string) lipgloss.Color {
	if color, ok := colorClasses[class]; ok {
		return color
	}
	return lipgloss.Color("250")
}

func sizeMark(class string) string {
	if mark, ok := sizeMarks[class]; ok {
		return mark
	}
	return "?"
}

// bannerText renders a request failure the way the board shows it
func bannerText(statusText string, messages []string) string {
	return capitalize(statusText) + ": " + strings.Join(messages, "; ")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
