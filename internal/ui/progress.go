// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mufeed Ali

// Package ui renders the full-screen progress view the batch commands show
// on an interactive terminal. It follows the Bubble Tea Model-View-Update
// architecture: batch workers push ItemResult values over a channel, and the
// model folds them into counters and a progress bar.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// ItemStatus classifies the outcome for one file.
type ItemStatus int

const (
	ItemOK ItemStatus = iota
	ItemSkipped
	ItemFailed
)

// ItemResult is the per-file event the batch pushes into the view.
type ItemResult struct {
	Name   string
	Status ItemStatus
	Detail string // size change, error text, etc.
}

// --- Message Types ---

type resultMsg struct{ result ItemResult } // Sent when a file finishes
type drainedMsg struct{}                   // Sent when the results channel closes

type progressModel struct {
	title   string
	total   int
	done    int
	ok      int
	skipped int
	failed  int
	current string

	spin    spinner.Model
	bar     progress.Model
	results <-chan ItemResult
	width   int
}

func newProgressModel(title string, total int, results <-chan ItemResult) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return progressModel{
		title:   title,
		total:   total,
		spin:    s,
		bar:     progress.New(progress.WithDefaultGradient()),
		results: results,
		width:   80,
	}
}

// waitForResult produces a command that blocks for the next batch event.
func waitForResult(results <-chan ItemResult) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-results
		if !ok {
			return drainedMsg{}
		}
		return resultMsg{result: res}
	}
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, waitForResult(m.results))
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		barWidth := msg.Width - 8
		if barWidth > 60 {
			barWidth = 60
		}
		if barWidth > 0 {
			m.bar.Width = barWidth
		}
		return m, nil

	case tea.KeyMsg:
		// The batch keeps running in the workers; ctrl+c only abandons the
		// view. Cancellation of the work itself is handled by the CLI.
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil

	case resultMsg:
		m.done++
		m.current = msg.result.Name
		switch msg.result.Status {
		case ItemOK:
			m.ok++
		case ItemSkipped:
			m.skipped++
		case ItemFailed:
			m.failed++
		}

		cmds := []tea.Cmd{waitForResult(m.results)}
		if m.total > 0 {
			cmds = append(cmds, m.bar.SetPercent(float64(m.done)/float64(m.total)))
		}
		return m, tea.Batch(cmds...)

	case drainedMsg:
		return m, tea.Quit

	case progress.FrameMsg:
		barModel, cmd := m.bar.Update(msg)
		m.bar = barModel.(progress.Model)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString("  " + m.bar.View())
	b.WriteString(fmt.Sprintf("  %d/%d\n\n", m.done, m.total))

	if m.current != "" {
		b.WriteString("  " + m.spin.View() + currentStyle.Render(m.current) + "\n\n")
	}

	counters := []string{
		successStyle.Render(fmt.Sprintf("ok %d", m.ok)),
		skippedStyle.Render(fmt.Sprintf("skipped %d", m.skipped)),
	}
	if m.failed > 0 {
		counters = append(counters, errorStyle.Render(fmt.Sprintf("failed %d", m.failed)))
	}
	b.WriteString("  " + counterStyle.Render(strings.Join(counters, "  ")) + "\n")

	return b.String()
}

// RunProgress renders the progress view until the results channel closes.
// The caller owns the channel and the workers feeding it.
func RunProgress(title string, total int, results <-chan ItemResult) error {
	p := tea.NewProgram(newProgressModel(title, total, results))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("progress view failed: %w", err)
	}
	return nil
}
