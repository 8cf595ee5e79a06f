// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mufeed Ali

package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	counterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
)
