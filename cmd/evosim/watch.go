package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/GoCodeAlone/evosim/internal/engine"
)

// watchKeyMap mirrors GoCodeAlone-EvoSim's cli.go keys struct, trimmed to
// the one binding this status view honors.
type watchKeyMap struct {
	quit key.Binding
}

var watchKeys = watchKeyMap{
	quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// watchModel is a bubbletea status view over a running engine, grounded on
// GoCodeAlone-EvoSim's CLIModel tick loop (cli.go), adapted from a
// scrollable world viewport to a single scrolling turn-summary feed since
// this engine's state is tensor-indexed rather than per-entity.
type watchModel struct {
	boot      *bootstrapResult
	turnsLeft int
	lines     []string
	err       error
	done      bool
}

type watchTickMsg time.Time

func doWatchTick() tea.Cmd {
	return tea.Tick(150*time.Millisecond, func(t time.Time) tea.Msg {
		return watchTickMsg(t)
	})
}

func (m watchModel) Init() tea.Cmd {
	return doWatchTick()
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, watchKeys.quit) {
			return m, tea.Quit
		}
	case watchTickMsg:
		if m.done || m.turnsLeft <= 0 {
			m.done = true
			return m, tea.Quit
		}
		report, err := m.boot.Engine.RunTurn(context.Background(), engine.TurnRequest{})
		if err != nil {
			m.err = err
			m.done = true
			return m, tea.Quit
		}
		m.turnsLeft--
		line := fmt.Sprintf("turn %-4d species_alive=%-4d food_web_health=%.3f triggers=%d reemerged=%d",
			report.TurnIndex, len(m.boot.Engine.Repo.Alive()), report.FoodWeb.HealthScore,
			len(report.Triggers), len(report.Reemerged))
		m.lines = append(m.lines, line)
		if len(m.lines) > 20 {
			m.lines = m.lines[len(m.lines)-20:]
		}
		if m.turnsLeft <= 0 {
			m.done = true
			return m, tea.Quit
		}
		return m, doWatchTick()
	}
	return m, nil
}

var (
	watchHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	watchFooterStyle = lipgloss.NewStyle().Faint(true)
)

func (m watchModel) View() string {
	header := watchHeaderStyle.Render(fmt.Sprintf("evosim session %s", m.boot.SessionID))
	body := ""
	for _, l := range m.lines {
		body += l + "\n"
	}
	footer := watchFooterStyle.Render("q to quit")
	if m.err != nil {
		footer = fmt.Sprintf("error: %v\n%s", m.err, footer)
	}
	return header + "\n\n" + body + "\n" + footer + "\n"
}

func runWatch(boot *bootstrapResult, turns int) error {
	m := watchModel{boot: boot, turnsLeft: turns}
	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := finalModel.(watchModel); ok && fm.err != nil {
		return fm.err
	}
	return nil
}
