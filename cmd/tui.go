// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Thermoquad/srecdump/internal/source"
	"github.com/Thermoquad/srecdump/pkg/srec"
)

const barWidth = 40

// TUI model
type model struct {
	title     string
	dest      string
	progress  *Progress
	spinner   spinner.Model
	recent    []string
	maxRecent int
	width     int
	done      bool
	err       error
	quitting  bool
}

// Messages
type tickMsg time.Time
type progressMsg srec.Stats
type recordMsg string
type doneMsg struct {
	stats srec.Stats
	err   error
}

func initialModel(title, dest string, total int64) model {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("12"))),
	)
	return model{
		title:     title,
		dest:      dest,
		progress:  NewProgress(total),
		spinner:   s,
		recent:    make([]string, 0),
		maxRecent: 8,
		width:     80,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.spinner.Tick,
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		if m.done {
			return m, nil
		}
		m.progress.CalculateRates()
		return m, tickCmd()

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressMsg:
		m.progress.Update(srec.Stats(msg))

	case recordMsg:
		m.addRecord(string(msg))

	case doneMsg:
		m.done = true
		m.err = msg.err
		m.progress.Complete(msg.stats)
		m.progress.CalculateRates()
		return m, tea.Quit
	}

	return m, nil
}

func (m *model) addRecord(line string) {
	m.progress.Record(line)
	m.recent = append(m.recent, line)

	// Keep only last N records
	if len(m.recent) > m.maxRecent {
		m.recent = m.recent[len(m.recent)-m.maxRecent:]
	}
}

// renderBar draws a fixed-width completion bar
func renderBar(fraction float64, width int) string {
	if fraction < 0 {
		return strings.Repeat("░", width)
	}
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func (m model) View() string {
	if m.quitting && !m.done {
		return "Cancelling...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	statsLabelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	statsValueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	// Header
	var s strings.Builder
	s.WriteString(titleStyle.Render("SRECDUMP"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s → %s | Press 'q' to cancel", m.title, m.dest)))
	s.WriteString("\n\n")

	// Status
	switch {
	case m.err != nil:
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ %v", m.err)))
	case m.done:
		s.WriteString(statsValueStyle.Render("✓ Done"))
	default:
		s.WriteString(m.spinner.View())
		s.WriteString(headerStyle.Render(fmt.Sprintf(" Encoding at 0x%04X", m.progress.Address)))
	}
	s.WriteString("\n\n")

	// Progress
	p := m.progress
	statsContent := strings.Builder{}
	statsContent.WriteString(statsValueStyle.Render(renderBar(p.Fraction(), barWidth)))
	if f := p.Fraction(); f >= 0 {
		statsContent.WriteString(fmt.Sprintf(" %5.1f%%", f*100))
	}
	statsContent.WriteString("\n")
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s\n",
		statsLabelStyle.Render("Bytes:"), statsValueStyle.Render(fmt.Sprintf("%d", p.Bytes)),
		statsLabelStyle.Render("Records:"), statsValueStyle.Render(fmt.Sprintf("%d", p.Records)),
	))
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s",
		statsLabelStyle.Render("Byte Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f B/s", p.ByteRate)),
		statsLabelStyle.Render("Record Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f rec/s", p.RecordRate)),
	))

	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Recent records
	s.WriteString(statsLabelStyle.Render("Recent Records:"))
	s.WriteString("\n")
	if len(m.recent) == 0 {
		s.WriteString(headerStyle.Render("  (none yet)"))
		s.WriteString("\n")
	}
	for _, line := range m.recent {
		s.WriteString("  ")
		s.WriteString(renderRecord(line))
		s.WriteString("\n")
	}

	return s.String()
}

// runTUI runs a job behind the progress view. The encoder runs in its own
// goroutine and reports through p.Send.
func runTUI(ctx context.Context, j job) error {
	// Open before the TUI takes the terminal, a password prompt may follow
	out, err := openOutput(ctx, j.output)
	if err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			log.Printf("closing %s: %v", out.info, err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := initialModel(j.title, out.info, j.expectedBytes())
	p := tea.NewProgram(m, tea.WithContext(ctx))

	var encodeErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		var final srec.Stats
		final, encodeErr = encode(ctx, j, out,
			func(_ source.Segment, stats srec.Stats) {
				p.Send(progressMsg(stats))
			},
			func(line string) {
				p.Send(recordMsg(line))
			},
		)
		p.Send(doneMsg{stats: final, err: encodeErr})
	}()

	_, runErr := p.Run()
	cancel()
	<-done

	if encodeErr != nil {
		return encodeErr
	}
	if runErr != nil {
		return fmt.Errorf("TUI error: %v", runErr)
	}
	return nil
}
