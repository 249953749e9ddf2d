package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/encounter-tracker/pkg/combatant"
	"github.com/jwebster45206/encounter-tracker/pkg/session"
)

const addPlaceholder = "name, initiative (+2 to roll, 15 for fixed), hp"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	activeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// ConsoleUI is the BubbleTea model that runs the tracker console.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	client   *apiClient
	sess     session.Session
	viewport viewport.Model
	input    textinput.Model
	ready    bool
	width    int
	height   int

	adding        bool
	showQuitModal bool
	status        string
	statusIsError bool
}

type sessionMsg struct {
	sess session.Session
	err  error
}

type exportedMsg struct {
	err error
}

func NewConsoleUI(client *apiClient, sess session.Session) *ConsoleUI {
	input := textinput.New()
	input.Placeholder = addPlaceholder
	input.CharLimit = 120

	return &ConsoleUI{
		client: client,
		sess:   sess,
		input:  input,
	}
}

func (ui *ConsoleUI) Init() tea.Cmd {
	return nil
}

func (ui *ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		ui.width = msg.Width
		ui.height = msg.Height
		if !ui.ready {
			ui.viewport = viewport.New(msg.Width, msg.Height-7)
			ui.ready = true
		} else {
			ui.viewport.Width = msg.Width
			ui.viewport.Height = msg.Height - 7
		}
		ui.viewport.SetContent(ui.rosterView())
		return ui, nil

	case sessionMsg:
		if msg.err != nil {
			ui.setError(msg.err.Error())
			return ui, nil
		}
		ui.sess = msg.sess
		ui.setStatus("")
		ui.viewport.SetContent(ui.rosterView())
		return ui, nil

	case exportedMsg:
		if msg.err != nil {
			ui.setError(msg.err.Error())
		} else {
			ui.setStatus("Export string copied to clipboard.")
		}
		return ui, nil

	case tea.KeyMsg:
		return ui.handleKey(msg)
	}

	var cmd tea.Cmd
	ui.viewport, cmd = ui.viewport.Update(msg)
	return ui, cmd
}

func (ui *ConsoleUI) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if ui.showQuitModal {
		switch msg.String() {
		case "y", "enter":
			return ui, tea.Quit
		default:
			ui.showQuitModal = false
			return ui, nil
		}
	}

	if ui.adding {
		switch msg.Type {
		case tea.KeyEsc:
			ui.adding = false
			ui.input.Blur()
			return ui, nil
		case tea.KeyEnter:
			c, err := parseAddInput(ui.input.Value())
			ui.adding = false
			ui.input.Blur()
			ui.input.SetValue("")
			if err != nil {
				ui.setError(err.Error())
				return ui, nil
			}
			return ui, ui.dispatchCmd(func() (session.Session, error) {
				return ui.client.AddCombatant(ui.sess.ID, c)
			})
		}
		var cmd tea.Cmd
		ui.input, cmd = ui.input.Update(msg)
		return ui, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		ui.showQuitModal = true
		return ui, nil
	case "a":
		ui.adding = true
		ui.input.Focus()
		return ui, textinput.Blink
	case "d":
		if !ui.sess.Active && len(ui.sess.Combatants) > 0 {
			last := ui.sess.Combatants[len(ui.sess.Combatants)-1]
			return ui, ui.dispatchCmd(func() (session.Session, error) {
				return ui.client.RemoveCombatant(ui.sess.ID, last.ID)
			})
		}
		return ui, nil
	case "s":
		return ui, ui.actionCmd(session.TypeStartSession)
	case "e":
		return ui, ui.actionCmd(session.TypeEndSession)
	case "n", " ":
		return ui, ui.actionCmd(session.TypeAdvanceTurn)
	case "p":
		return ui, ui.actionCmd(session.TypeRetreatTurn)
	case "x":
		return ui, ui.exportCmd()
	case "i":
		return ui, ui.importCmd()
	}

	var cmd tea.Cmd
	ui.viewport, cmd = ui.viewport.Update(msg)
	return ui, cmd
}

func (ui *ConsoleUI) actionCmd(t session.ActionType) tea.Cmd {
	return ui.dispatchCmd(func() (session.Session, error) {
		return ui.client.Dispatch(ui.sess.ID, map[string]any{"type": t})
	})
}

func (ui *ConsoleUI) dispatchCmd(fn func() (session.Session, error)) tea.Cmd {
	return func() tea.Msg {
		s, err := fn()
		return sessionMsg{sess: s, err: err}
	}
}

func (ui *ConsoleUI) exportCmd() tea.Cmd {
	return func() tea.Msg {
		data, err := ui.client.ExportSession(ui.sess.ID)
		if err != nil {
			return exportedMsg{err: err}
		}
		return exportedMsg{err: clipboard.WriteAll(data)}
	}
}

func (ui *ConsoleUI) importCmd() tea.Cmd {
	return func() tea.Msg {
		data, err := clipboard.ReadAll()
		if err != nil {
			return sessionMsg{err: fmt.Errorf("clipboard read failed: %w", err)}
		}
		s, err := ui.client.ImportSession(ui.sess.ID, data)
		return sessionMsg{sess: s, err: err}
	}
}

func (ui *ConsoleUI) View() string {
	if !ui.ready {
		return "Loading..."
	}

	if ui.showQuitModal {
		return lipgloss.Place(ui.width, ui.height, lipgloss.Center, lipgloss.Center,
			"Quit the tracker? The encounter stays on the server. (y/n)")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Encounter Tracker"))
	b.WriteString("  ")
	if ui.sess.Active {
		b.WriteString(activeStyle.Render(fmt.Sprintf("Round %d, turn %d of %d", ui.sess.Round, ui.sess.TurnIndex, len(ui.sess.Combatants))))
	} else {
		b.WriteString(dimStyle.Render("Setup"))
	}
	b.WriteString("\n\n")
	b.WriteString(ui.viewport.View())
	b.WriteString("\n")

	if ui.adding {
		b.WriteString("Add: " + ui.input.View())
	} else if ui.status != "" {
		if ui.statusIsError {
			b.WriteString(errStyle.Render(wordwrap.String(ui.status, ui.width)))
		} else {
			b.WriteString(wordwrap.String(ui.status, ui.width))
		}
	}
	b.WriteString("\n")
	help := "a add · d drop last · s start · e end · n next turn · p previous turn · x export to clipboard · i import from clipboard · q quit"
	b.WriteString(dimStyle.Render(wordwrap.String(help, ui.width)))
	return b.String()
}

func (ui *ConsoleUI) rosterView() string {
	if len(ui.sess.Combatants) == 0 {
		return dimStyle.Render("No combatants yet. Press 'a' to add one.")
	}

	var b strings.Builder
	for i, c := range ui.sess.Combatants {
		marker := "  "
		if ui.sess.Active && ui.sess.TurnIndex == i+1 {
			marker = "▶ "
		}
		init := fmt.Sprintf("%d", c.InitiativeValue)
		if c.InitiativeKind == combatant.InitiativeRoll {
			init = fmt.Sprintf("%+d (roll)", c.InitiativeValue)
		}
		line := fmt.Sprintf("%s%-24s  init %-10s  hp %d/%d", marker, c.Name, init, c.HP, c.MaxHP)
		if ui.sess.Active && ui.sess.TurnIndex == i+1 {
			line = activeStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (ui *ConsoleUI) setStatus(msg string) {
	ui.status = msg
	ui.statusIsError = false
}

func (ui *ConsoleUI) setError(msg string) {
	ui.status = msg
	ui.statusIsError = true
}

// parseAddInput turns "Goblin, +2, 7" into a roll-initiative combatant and
// "Knight, 15, 25" into a fixed one.
func parseAddInput(raw string) (combatant.Combatant, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 3 {
		return combatant.Combatant{}, fmt.Errorf("expected: %s", addPlaceholder)
	}
	name := strings.TrimSpace(parts[0])
	initRaw := strings.TrimSpace(parts[1])
	hpRaw := strings.TrimSpace(parts[2])

	if name == "" {
		return combatant.Combatant{}, fmt.Errorf("name is required")
	}

	kind := combatant.InitiativeFixed
	if strings.HasPrefix(initRaw, "+") || strings.HasPrefix(initRaw, "-") {
		kind = combatant.InitiativeRoll
	}
	init, err := strconv.Atoi(initRaw)
	if err != nil {
		return combatant.Combatant{}, fmt.Errorf("initiative must be a number, got %q", initRaw)
	}
	hp, err := strconv.Atoi(hpRaw)
	if err != nil {
		return combatant.Combatant{}, fmt.Errorf("hp must be a number, got %q", hpRaw)
	}

	c := combatant.New(name, kind, init, hp, hp)
	if err := c.Validate(); err != nil {
		return combatant.Combatant{}, err
	}
	return c, nil
}
