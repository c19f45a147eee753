package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joescharf/board/internal/editsession"
	"github.com/joescharf/board/internal/elevation"
	"github.com/joescharf/board/internal/models"
)

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldTextArea
	fieldSelect
	fieldPerson
	fieldDate
)

// editField is one row of the modal. Select and person fields cycle
// through options; the others wrap a bubbles input.
type editField struct {
	label    string
	key      editsession.Field
	kind     fieldKind
	input    textinput.Model
	area     textarea.Model
	options  []string
	selected int // -1 for an unset person
	err      string
}

// EditModal is the terminal counterpart of the edit issue dialog. Every
// change is pushed into the underlying session as it happens.
type EditModal struct {
	session *editsession.Session
	people  []models.Person
	fields  []editField
	focused int

	viewport viewport.Model
	surface  *elevation.Offset
	trigger  *elevation.Trigger

	theme  Theme
	width  int
	height int

	closed  bool
	outcome editsession.Outcome
	err     error
}

var errInvalidDate = errors.New("want YYYY-MM-DD")

const (
	headerHeight = 2
	footerHeight = 2
	labelWidth   = 12
)

// NewEditModal builds a modal for an open session.
func NewEditModal(sess *editsession.Session, theme Theme) EditModal {
	people := sess.People()
	m := EditModal{
		session: sess,
		people:  people,
		theme:   theme,
		surface: elevation.NewOffset(),
	}
	m.trigger = elevation.Watch(m.surface, 0, nil)

	statuses := make([]string, len(models.IssueStatuses))
	for i, s := range models.IssueStatuses {
		statuses[i] = string(s)
	}
	priorities := make([]string, len(models.IssuePriorities))
	for i, p := range models.IssuePriorities {
		priorities[i] = string(p)
	}

	m.fields = []editField{
		makeTextField("Summary", editsession.FieldSummary, sess.Summary()),
		makeTextAreaField("Description", editsession.FieldDescription, sess.Description().Text),
		makeSelectField("Status", editsession.FieldStatus, string(sess.Status()), statuses),
		makeSelectField("Priority", editsession.FieldPriority, string(sess.Priority()), priorities),
		m.makePersonField("Reporter", editsession.FieldReporter, sess.Reporter()),
		m.makePersonField("Assignee", editsession.FieldAssignee, sess.Assignee()),
		makeDateField("Due", editsession.FieldDueDate, models.FormatDate(sess.DueDate())),
	}
	m.fields[0] = focusField(m.fields[0])

	m.viewport = viewport.New(60, 20)
	m.refreshBody()
	return m
}

func makeTextField(label string, key editsession.Field, value string) editField {
	ti := textinput.New()
	ti.SetValue(value)
	ti.CharLimit = 255
	ti.Width = 50
	return editField{label: label, key: key, kind: fieldText, input: ti}
}

func makeTextAreaField(label string, key editsession.Field, value string) editField {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.CharLimit = 10000
	ta.SetWidth(50)
	ta.SetHeight(5)
	ta.SetValue(value)
	return editField{label: label, key: key, kind: fieldTextArea, area: ta}
}

func makeDateField(label string, key editsession.Field, value string) editField {
	ti := textinput.New()
	ti.Placeholder = "YYYY-MM-DD"
	ti.CharLimit = len(models.DateLayout)
	ti.Width = 12
	ti.SetValue(value)
	return editField{label: label, key: key, kind: fieldDate, input: ti}
}

func makeSelectField(label string, key editsession.Field, value string, options []string) editField {
	selected := 0
	for i, opt := range options {
		if opt == value {
			selected = i
			break
		}
	}
	return editField{label: label, key: key, kind: fieldSelect, options: options, selected: selected}
}

func (m EditModal) makePersonField(label string, key editsession.Field, sel editsession.Selection) editField {
	f := editField{label: label, key: key, kind: fieldPerson, selected: -1}
	for _, p := range m.people {
		f.options = append(f.options, p.Name)
	}
	if p, ok := sel.Person(); ok {
		for i, candidate := range m.people {
			if candidate.ID == p.ID {
				f.selected = i
				break
			}
		}
	}
	return f
}

func focusField(f editField) editField {
	switch f.kind {
	case fieldText, fieldDate:
		f.input.Focus()
	case fieldTextArea:
		f.area.Focus()
	}
	return f
}

func blurField(f editField) editField {
	switch f.kind {
	case fieldText, fieldDate:
		f.input.Blur()
	case fieldTextArea:
		f.area.Blur()
	}
	return f
}

// Init implements tea.Model.
func (m EditModal) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m EditModal) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.closed {
		return m, tea.Quit
	}

	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.surface.SetOffset(m.viewport.YOffset)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+s":
			return m.close(editsession.OutcomeSaved)
		case "esc", "ctrl+c":
			return m.close(editsession.OutcomeCancelled)
		case "tab":
			m.moveFocus(1)
			return m, nil
		case "shift+tab":
			m.moveFocus(-1)
			return m, nil
		case "pgdown":
			m.scroll(m.viewport.Height / 2)
			return m, nil
		case "pgup":
			m.scroll(-m.viewport.Height / 2)
			return m, nil
		}

		field := &m.fields[m.focused]
		switch field.kind {
		case fieldSelect, fieldPerson:
			m.handleSelectKey(field, msg.String())
		case fieldText, fieldDate:
			before := field.input.Value()
			var cmd tea.Cmd
			field.input, cmd = field.input.Update(msg)
			cmds = append(cmds, cmd)
			if field.input.Value() != before {
				m.pushText(field)
			}
		case fieldTextArea:
			before := field.area.Value()
			var cmd tea.Cmd
			field.area, cmd = field.area.Update(msg)
			cmds = append(cmds, cmd)
			if field.area.Value() != before {
				m.pushText(field)
			}
		}
	}

	m.refreshBody()
	return m, tea.Batch(cmds...)
}

func (m *EditModal) moveFocus(delta int) {
	m.fields[m.focused] = blurField(m.fields[m.focused])
	m.focused = (m.focused + delta + len(m.fields)) % len(m.fields)
	m.fields[m.focused] = focusField(m.fields[m.focused])
	m.refreshBody()
}

func (m *EditModal) scroll(delta int) {
	m.viewport.SetYOffset(m.viewport.YOffset + delta)
	m.surface.SetOffset(m.viewport.YOffset)
}

func (m *EditModal) handleSelectKey(field *editField, key string) {
	n := len(field.options)
	if n == 0 {
		return
	}
	switch key {
	case "left", "h":
		if field.selected < 0 {
			field.selected = 0
		}
		field.selected = (field.selected - 1 + n) % n
	case "right", "l":
		field.selected = (field.selected + 1) % n
	case "x", "delete", "backspace":
		if field.kind != fieldPerson {
			return
		}
		field.selected = -1
		field.err = ""
		m.pushPerson(field, nil)
		return
	default:
		return
	}

	field.err = ""
	switch field.kind {
	case fieldSelect:
		m.pushSelect(field, field.options[field.selected])
	case fieldPerson:
		p := m.people[field.selected]
		m.pushPerson(field, &p)
	}
}

func (m *EditModal) pushSelect(field *editField, value string) {
	var err error
	switch field.key {
	case editsession.FieldStatus:
		err = m.session.SetStatus(models.IssueStatus(value))
	case editsession.FieldPriority:
		err = m.session.SetPriority(models.IssuePriority(value))
	}
	m.setErr(field, err)
}

func (m *EditModal) pushPerson(field *editField, p *models.Person) {
	var err error
	switch field.key {
	case editsession.FieldReporter:
		err = m.session.SelectReporter(p)
	case editsession.FieldAssignee:
		err = m.session.SelectAssignee(p)
	}
	m.setErr(field, err)
}

// pushText hands the widget value to the session. The widgets rewrite some
// characters (tabs become spaces), so a value that already matches what the
// session holds is left alone.
func (m *EditModal) pushText(field *editField) {
	var err error
	switch field.key {
	case editsession.FieldSummary:
		if v := field.input.Value(); v != m.session.Summary() {
			err = m.session.SetSummary(v)
		}
	case editsession.FieldDescription:
		if v := field.area.Value(); v != m.session.Description().Text {
			err = m.session.SetDescription(v)
		}
	case editsession.FieldDueDate:
		if v := field.input.Value(); v != models.FormatDate(m.session.DueDate()) {
			err = m.pushDate(v)
		}
	}
	m.setErr(field, err)
}

func (m *EditModal) pushDate(value string) error {
	if value == "" {
		return m.session.SetDueDate(nil)
	}
	d, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return errInvalidDate
	}
	return m.session.SetDueDate(&d)
}

func (m *EditModal) setErr(field *editField, err error) {
	if err != nil {
		field.err = err.Error()
		return
	}
	field.err = ""
}

func (m EditModal) close(o editsession.Outcome) (tea.Model, tea.Cmd) {
	var err error
	if o == editsession.OutcomeSaved {
		err = m.session.Save(context.Background())
	} else {
		err = m.session.Cancel()
	}
	if err != nil {
		m.err = err
		return m, nil
	}
	m.closed = true
	m.outcome = o
	m.trigger.Stop()
	return m, tea.Quit
}

// SetSize sets the modal dimensions.
func (m *EditModal) SetSize(width, height int) {
	m.width = width
	m.height = height

	m.viewport.Width = max(width-4, 20)
	m.viewport.Height = max(height-headerHeight-footerHeight-2, 3)
	m.refreshBody()
}

// Closed reports whether the modal closed its session, and how.
func (m EditModal) Closed() (bool, editsession.Outcome) {
	return m.closed, m.outcome
}

// Err returns the last close error, if any.
func (m EditModal) Err() error { return m.err }

// HeaderLevel reports the current header elevation.
func (m EditModal) HeaderLevel() elevation.Level { return m.trigger.Header() }

func (m *EditModal) refreshBody() {
	m.viewport.SetContent(m.renderBody())
}

func (m EditModal) renderBody() string {
	r := m.theme.Renderer
	labelStyle := r.NewStyle().Foreground(m.theme.Secondary).Width(labelWidth).Align(lipgloss.Right)
	focusedLabelStyle := r.NewStyle().Foreground(m.theme.Primary).Bold(true).Width(labelWidth).Align(lipgloss.Right)
	selectStyle := r.NewStyle().Foreground(m.theme.Primary)
	errStyle := r.NewStyle().Foreground(m.theme.Error)
	subtle := r.NewStyle().Foreground(m.theme.Subtext).Italic(true)
	indent := strings.Repeat(" ", labelWidth+1)

	var b strings.Builder
	for i, field := range m.fields {
		isFocused := i == m.focused
		if isFocused {
			b.WriteString(focusedLabelStyle.Render(field.label + ":"))
		} else {
			b.WriteString(labelStyle.Render(field.label + ":"))
		}
		b.WriteString(" ")

		switch field.kind {
		case fieldText, fieldDate:
			b.WriteString(field.input.View())
		case fieldTextArea:
			lines := strings.Split(field.area.View(), "\n")
			for idx, line := range lines {
				if idx > 0 {
					b.WriteString("\n" + indent)
				}
				b.WriteString(line)
			}
		case fieldSelect:
			val := field.options[field.selected]
			if isFocused {
				val = selectStyle.Render(fmt.Sprintf("< %s >", val))
			}
			b.WriteString(val)
		case fieldPerson:
			b.WriteString(m.personLabel(field, isFocused, selectStyle, subtle))
		}

		if field.err != "" {
			b.WriteString("  " + errStyle.Render(field.err))
		}
		b.WriteString("\n")
		if field.kind == fieldTextArea {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m EditModal) personLabel(field editField, focused bool, selectStyle, subtle lipgloss.Style) string {
	var sel editsession.Selection
	if field.key == editsession.FieldReporter {
		sel = m.session.Reporter()
	} else {
		sel = m.session.Assignee()
	}

	var label string
	switch sel.State() {
	case editsession.Selected:
		p, _ := sel.Person()
		label = p.Name
	case editsession.Cleared:
		if def := m.session.DefaultPerson(); def != nil {
			label = def.Name + " " + subtle.Render("(cleared)")
		} else {
			label = subtle.Render("(cleared)")
		}
	default:
		label = subtle.Render("none")
	}
	if focused {
		return selectStyle.Render("< ") + label + selectStyle.Render(" >")
	}
	return label
}

func (m EditModal) renderHeader() string {
	r := m.theme.Renderer
	title := fmt.Sprintf("%s / %s / %s", m.session.ProjectID(), m.session.IssueType(), m.session.IssueID())
	style := r.NewStyle().Bold(true).Foreground(m.theme.Primary)
	if m.trigger.Header() == elevation.Raised {
		style = style.BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(m.theme.Border)
	} else {
		style = style.PaddingBottom(1)
	}
	return style.Render(title)
}

func (m EditModal) renderFooter() string {
	r := m.theme.Renderer
	help := "[Tab] Next  [PgUp/PgDn] Scroll  [Ctrl+S] Save  [Esc] Cancel"
	switch m.fields[m.focused].kind {
	case fieldSelect:
		help = "[←/→] Change  " + help
	case fieldPerson:
		help = "[←/→] Change  [x] Clear  " + help
	}

	style := r.NewStyle().Foreground(m.theme.Subtext).Italic(true)
	if m.trigger.Footer() == elevation.Raised {
		style = style.BorderStyle(lipgloss.NormalBorder()).BorderTop(true).BorderForeground(m.theme.Border)
	} else {
		style = style.PaddingTop(1)
	}
	out := style.Render(help)
	if m.err != nil {
		out = r.NewStyle().Foreground(m.theme.Error).Render(m.err.Error()) + "\n" + out
	}
	return out
}

// View implements tea.Model.
func (m EditModal) View() string {
	if m.closed {
		return ""
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderFooter(),
	)
	box := m.theme.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Primary).
		Padding(0, 1).
		Render(content)
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// Run shows the modal until the user saves or cancels. If the program
// exits any other way (e.g. ctx is cancelled) the session is cancelled.
func Run(ctx context.Context, m EditModal) (editsession.Outcome, error) {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	final, err := p.Run()

	fm, ok := final.(EditModal)
	if !ok || !fm.closed {
		if cerr := m.session.Cancel(); cerr != nil && err == nil && !errors.Is(cerr, editsession.ErrClosed) {
			err = cerr
		}
		return editsession.OutcomeCancelled, err
	}
	return fm.outcome, err
}
