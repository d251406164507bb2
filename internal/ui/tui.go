// Package ui provides the terminal interface to a task list.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/agalitsyn/todo-list/internal/model"
	"github.com/agalitsyn/todo-list/internal/todo"
)

// RunTUI renders store until the user quits or ctx is done.
func RunTUI(ctx context.Context, store *todo.Store) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	m := newTUIModel(ctx, store)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// The store calls back from inside Update and from its timer goroutine;
	// Send blocks until the event loop reads, so never call it inline.
	store.SetOnChange(func() { go program.Send(changedMsg{}) })
	defer store.SetOnChange(nil)

	_, err := program.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type inputMode int

const (
	modeList inputMode = iota
	modeAdd
	modeSearch
)

type changedMsg struct{}

type tuiModel struct {
	ctx   context.Context
	store *todo.Store
	view  todo.View

	input    textinput.Model
	mode     inputMode
	cursor   int
	category model.Category
	width    int
}

func newTUIModel(ctx context.Context, store *todo.Store) *tuiModel {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = model.MaxTaskTextLength

	return &tuiModel{
		ctx:      ctx,
		store:    store,
		view:     store.View(),
		input:    ti,
		category: model.CategoryPersonal,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case changedMsg:
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.mode != modeList {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m *tuiModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "a", "n":
		return m, m.startInput(modeAdd, m.view.State.Input, "Add a new task...")
	case "/":
		return m, m.startInput(modeSearch, m.view.State.Search, "Search...")
	case "tab":
		if m.view.Categories {
			m.dispatch(todo.FilterIntent{Filter: m.view.State.Filter.Next()})
			m.cursor = 0
		}
	case "c":
		m.category = nextCategory(m.category)
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.view.Tasks)-1 {
			m.cursor++
		}
	case " ", "enter":
		if t, ok := m.selected(); ok {
			m.dispatch(todo.ToggleIntent{ID: t.ID})
		}
	case "d", "delete":
		if t, ok := m.selected(); ok {
			m.dispatch(todo.DeleteIntent{ID: t.ID})
		}
	case "x":
		m.dispatch(todo.ClearCompletedIntent{})
	case "esc":
		m.store.DismissNotification()
		m.refresh()
	}
	return m, nil
}

func (m *tuiModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.stopInput()
		return m, nil
	case "enter":
		if m.mode == modeAdd {
			m.dispatch(todo.AddIntent{Category: m.category})
			if m.view.State.Input == "" {
				m.input.SetValue("")
				m.cursor = len(m.view.Tasks) - 1
			}
			return m, nil
		}
		m.stopInput()
		return m, nil
	case "tab":
		if m.mode == modeAdd {
			m.category = nextCategory(m.category)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == modeAdd {
		m.dispatch(todo.InputIntent{Text: m.input.Value()})
	} else {
		m.dispatch(todo.SearchIntent{Query: m.input.Value()})
		m.cursor = 0
	}
	return m, cmd
}

func (m *tuiModel) startInput(mode inputMode, value, placeholder string) tea.Cmd {
	m.mode = mode
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *tuiModel) stopInput() {
	m.mode = modeList
	m.input.Blur()
}

func (m *tuiModel) dispatch(intent todo.Intent) {
	view, _ := m.store.Dispatch(m.ctx, intent)
	m.view = view
	m.clampCursor()
}

func (m *tuiModel) refresh() {
	m.view = m.store.View()
	m.clampCursor()
}

func (m *tuiModel) clampCursor() {
	if m.cursor >= len(m.view.Tasks) {
		m.cursor = len(m.view.Tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *tuiModel) selected() (model.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view.Tasks) {
		return model.Task{}, false
	}
	return m.view.Tasks[m.cursor], true
}

func nextCategory(c model.Category) model.Category {
	for i, cat := range model.Categories {
		if cat == c {
			return model.Categories[(i+1)%len(model.Categories)]
		}
	}
	return model.Categories[0]
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	completedStyle = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("241"))

	severityStyles = map[todo.Severity]lipgloss.Style{
		todo.SeveritySuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		todo.SeverityInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		todo.SeverityWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		todo.SeverityError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
)

func (m *tuiModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("My To-Do List 📝"))
	b.WriteString("\n")

	var status []string
	if m.view.Categories {
		status = append(status, fmt.Sprintf("filter: %s", m.view.State.Filter))
	}
	if m.view.State.Search != "" {
		status = append(status, fmt.Sprintf("search: %q", m.view.State.Search))
	}
	if len(status) > 0 {
		b.WriteString(dimStyle.Render(strings.Join(status, " · ")))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(m.view.Tasks) == 0 {
		if m.view.Stats.Total == 0 {
			b.WriteString(dimStyle.Render("  Nothing to do. Press a to add a task."))
		} else {
			b.WriteString(dimStyle.Render("  No tasks match."))
		}
		b.WriteString("\n")
	}
	for i, t := range m.view.Tasks {
		b.WriteString(m.renderTask(i, t))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderStats(m.view))
	b.WriteString("\n")

	if m.mode != modeList {
		label := "new"
		if m.mode == modeSearch {
			label = "search"
		} else if m.view.Categories {
			label = fmt.Sprintf("new %s", m.category)
		}
		b.WriteString(fmt.Sprintf("\n%s %s\n", dimStyle.Render(label), m.input.View()))
	}

	if n := m.view.Notification; n.Visible {
		style, ok := severityStyles[n.Severity]
		if !ok {
			style = dimStyle
		}
		b.WriteString("\n" + style.Render(n.Message) + "\n")
	}

	b.WriteString("\n" + dimStyle.Render(m.helpLine()) + "\n")
	return b.String()
}

func (m *tuiModel) renderTask(i int, t model.Task) string {
	cursor := "  "
	if i == m.cursor && m.mode == modeList {
		cursor = cursorStyle.Render("› ")
	}
	check := "[ ]"
	text := t.Text
	if t.Completed {
		check = "[x]"
		text = completedStyle.Render(text)
	}
	line := fmt.Sprintf("%s%s ", cursor, check)
	if t.Category != "" {
		line += t.Category.Emoji() + " "
	}
	return line + text
}

func renderStats(view todo.View) string {
	s := fmt.Sprintf("%d total · %d active · %d done", view.Stats.Total, view.Stats.Active, view.Stats.Completed)
	if !view.Categories {
		return dimStyle.Render(s)
	}
	parts := []string{s}
	for _, c := range model.Categories {
		parts = append(parts, fmt.Sprintf("%s %d", c.Emoji(), view.Stats.ActiveByCategory[c]))
	}
	return dimStyle.Render(strings.Join(parts, "  "))
}

func (m *tuiModel) helpLine() string {
	switch m.mode {
	case modeAdd:
		return "enter add · tab category · esc back"
	case modeSearch:
		return "enter/esc back"
	default:
		return "a add · / search · tab filter · c category · space toggle · d delete · x clear done · q quit"
	}
}
