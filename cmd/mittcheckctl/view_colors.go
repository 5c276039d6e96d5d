package main

import (
	"github.com/charmbracelet/lipgloss"
)

var styleCommand = lipgloss.NewStyle().Foreground(lipgloss.Color("#407FF8")).Bold(true)
var styleCommandBlock = lipgloss.NewStyle().Margin(1, 0).PaddingLeft(2)
var styleParam = lipgloss.NewStyle().Foreground(lipgloss.Color("#00B785"))

var styleListItem = lipgloss.NewStyle().Padding(0, 2)
var styleInfoBox = lipgloss.NewStyle().
	Padding(0, 1).
	Margin(1, 0).
	BorderStyle(lipgloss.RoundedBorder()).
	Width(80)
