package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/formulate/formula"
	"github.com/ardnew/formulate/log"
)

const (
	evalPrompt = "= "
	ctrlPrompt = ": "
)

func helpMessage() string {
	return `
Commands (press Esc to toggle mode, or prefix with ':' in eval mode):

  set KEY=VALUE ...   Bind values (numbers, text, [1, 2, 3])
  role KEY=REF ...    Map role keys to references (@value.id)
  unset KEY           Remove a value or role
  roles               List roles and values
  strict [on|off]     Reject unresolved references
  owner [ID]          Set the node owning the formula
  edit                Edit the session as YAML in $EDITOR
  version             Print the logic version
  metrics             Print evaluation counters
  clear               Clear the program cache
  cls                 Clear screen
  help                Print this message
  quit                Exit

Type an expression to evaluate it. Tab / Shift-Tab cycle completions,
Up / Down walk history, Shift-Up / Shift-Down stay within the current mode.
Ctrl-C on an empty line or Ctrl-D exits.
`
}

type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

//nolint:gochecknoglobals
var (
	promptStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

type editDoneMsg struct{ session *Session }

type editErrorMsg struct{ err error }

// model is the Bubble Tea model of the REPL.
type model struct {
	ctx     context.Context
	engine  *formula.Engine
	session *Session
	logger  log.Logger
	history *History
	input   textinput.Model

	historyIdx int
	matches    fuzzy.Matches
	wordStart  int
	wordEnd    int
	suggIdx    int
	tabActive  bool
	preTab     string
	preTabPos  int
	width      int
	quitting   bool
	mode       inputMode
	stash      [2]string // input of the inactive mode
}

// Run starts an interactive session evaluating against engine. History is
// persisted to historyPath; an empty path keeps it in memory.
func Run(
	ctx context.Context,
	engine *formula.Engine,
	session *Session,
	historyPath string,
	logger log.Logger,
) error {
	if session == nil {
		session = NewSession()
	}

	history := NewHistory(historyPath)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "history not loaded", slog.Any("error", err))
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("history_path", historyPath),
		slog.Int("history", history.Len()),
	)

	_, err := tea.NewProgram(
		newModel(ctx, engine, session, history, logger),
		tea.WithContext(ctx),
	).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	engine *formula.Engine,
	session *Session,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.CharLimit = formula.DefaultMaxLength
	ti.Width = defaultWidth
	ti.Focus()

	return model{
		ctx:        ctx,
		engine:     engine,
		session:    session,
		logger:     logger,
		history:    history,
		input:      ti,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
	}
}

func (m model) Init() tea.Cmd { return textinput.Blink }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editDoneMsg:
		if msg.session == nil {
			return m, tea.Println(hintStyle.Render("edit cancelled"))
		}

		*m.session = *msg.session

		return m, tea.Println(resultStyle.Render("session updated"))

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("edit: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	input := m.input.Value()
	call := detectFunctionCall(input, m.input.Position())

	var hint string

	switch {
	case m.historyIdx < m.history.Len():
		hint = hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len()))

	case strings.TrimSpace(input) == "":
		if m.mode == modeEval {
			hint = hintStyle.Render("Type an expression, or press Esc for commands")
		} else {
			hint = hintStyle.Render("Type a command, or help (press Esc to return)")
		}

	case len(m.matches) > 0 && (m.tabActive || !call.inCall):
		hint = renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width)

	case call.inCall && m.mode == modeEval:
		if sig, params := getSignature(call.name); sig != "" {
			hint = renderSignatureHint(sig, params, call.argIndex)
		} else {
			hint = renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width)
		}
	}

	return m.input.View() + "\n" + hint + "\n"
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		m.refresh(false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.tabActive && len(m.matches) > 0 {
			m.tabActive = false
			m.refresh(true)

			return m, nil
		}

		return m.submit()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.recall(-1, false), nil

	case tea.KeyDown:
		return m.recall(1, false), nil

	case tea.KeyShiftUp:
		return m.recall(-1, true), nil

	case tea.KeyShiftDown:
		return m.recall(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTab)
			m.input.SetCursor(m.preTabPos)
			m.refresh(false)

			return m, nil
		}

		if m.mode == modeEval {
			return m.switchMode(modeCtrl), nil
		}

		return m.switchMode(modeEval), nil
	}

	typed := msg.Type == tea.KeyRunes
	if !typed || msg.String() == " " {
		m.tabActive = false
	}

	var cmd tea.Cmd

	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refresh(typed)

	return m, cmd
}

// cycle steps the selected completion by dir, wrapping around. A single
// candidate is accepted immediately.
func (m model) cycle(dir int) model {
	n := len(m.matches)

	switch {
	case n == 0:
		return m

	case n == 1:
		m.replaceWord(m.matches[0].Str)
		m.tabActive, m.suggIdx, m.matches = false, -1, nil

		return m

	case !m.tabActive:
		m.tabActive = true
		m.preTab, m.preTabPos = m.input.Value(), m.input.Position()

		m.suggIdx = 0
		if dir < 0 {
			m.suggIdx = n - 1
		}

	default:
		m.suggIdx = (m.suggIdx + dir + n) % n
	}

	m.replaceWord(m.matches[m.suggIdx].Str)

	return m
}

func (m *model) replaceWord(s string) {
	in := m.input.Value()

	m.input.SetValue(in[:m.wordStart] + s + in[m.wordEnd:])
	m.input.SetCursor(m.wordStart + len(s))
	m.wordEnd = m.wordStart + len(s)
}

// refresh recomputes completions. With accept set, a word that already
// equals its only candidate is taken as completed.
func (m *model) refresh(accept bool) {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if accept && len(m.matches) == 1 &&
		strings.EqualFold(m.input.Value()[m.wordStart:m.wordEnd], m.matches[0].Str) {
		m.replaceWord(m.matches[0].Str)
		m.suggIdx, m.matches = -1, nil
	}
}

// recall walks history by dir. With sameMode set, entries of the other mode
// are skipped; otherwise the mode follows the recalled entry.
func (m model) recall(dir int, sameMode bool) model {
	for i := m.historyIdx + dir; i >= 0 && i < m.history.Len(); i += dir {
		e, err := m.history.Entry(i)
		if err != nil || (sameMode && e.Mode != m.mode) {
			continue
		}

		if e.Mode != m.mode {
			m = m.switchMode(e.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(e.Line)
		m.input.SetCursor(len(e.Line))
		m.refresh(false)

		return m
	}

	if dir > 0 {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		m.refresh(false)
	}

	return m
}

// switchMode changes the input mode, keeping each mode's pending input.
func (m model) switchMode(mode inputMode) model {
	if mode == m.mode {
		return m
	}

	m.stash[m.mode] = m.input.Value()
	m.mode = mode

	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
	}

	m.input.SetValue(m.stash[mode])
	m.input.CursorEnd()
	m.refresh(false)

	return m
}

func (m model) submit() (model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return m, nil
	}

	mode := m.mode
	if cmd, ok := strings.CutPrefix(line, ":"); ok {
		mode, line = modeCtrl, strings.TrimSpace(cmd)
	}

	m.input.SetValue("")
	m.stash = [2]string{}

	if _, err := m.history.Append(line, mode); err != nil {
		m.logger.DebugContext(m.ctx, "history not saved", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()
	m.refresh(false)

	if mode == modeCtrl {
		echo := tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(line))
		out, cmd := m.command(line)

		return m, tea.Sequence(echo, out, cmd)
	}

	echo := tea.Println(promptStyle.Render(evalPrompt) + inputStyle.Render(line))

	return m, tea.Sequence(echo, tea.Println(m.evaluate(line)))
}

// evaluate runs expr against the session and renders the outcome.
func (m model) evaluate(expr string) string {
	res, err := m.engine.Evaluate(m.ctx, m.session.Request(expr))

	m.logger.TraceContext(m.ctx, "repl eval",
		slog.String("expr", expr),
		slog.Any("value", res.Value),
		slog.Any("errors", res.Errors),
	)

	if err != nil {
		var pe *formula.ParseError
		if errors.As(err, &pe) && pe.Snippet() != "" {
			return errorStyle.Render(pe.Error()) + "\n" + hintStyle.Render(pe.Snippet())
		}

		return errorStyle.Render(err.Error())
	}

	out := resultStyle.Render(FormatValue(res.Value))
	if res.Fatal() {
		out = errorStyle.Render("error")
	}

	if len(res.Errors) > 0 {
		kinds := make([]string, len(res.Errors))
		for i, k := range res.Errors {
			kinds[i] = k.String()
		}

		out += "  " + warnStyle.Render(strings.Join(kinds, ", "))
	}

	return out
}

// command executes a control command. It returns the printed response and
// an optional follow-up command.
func (m model) command(line string) (tea.Cmd, tea.Cmd) {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]

	m.logger.TraceContext(m.ctx, "repl command",
		slog.String("command", name), slog.Any("args", args))

	say := func(s string) tea.Cmd { return tea.Println(s) }

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return nil, tea.Quit

	case "h", "help":
		return say(helpMessage()), nil

	case "set", "role":
		if len(args) == 0 {
			return say(errorStyle.Render("usage: " + name + " KEY=VALUE ...")), nil
		}

		for _, a := range joinAssignments(args) {
			k, v, ok := Assignment(a)
			if !ok {
				return say(errorStyle.Render("not an assignment: " + a)), nil
			}

			if name == "set" {
				m.session.Set(k, v)
			} else {
				m.session.SetRole(k, v)
			}
		}

		return nil, nil

	case "unset":
		for _, k := range args {
			if !m.session.Unset(k) {
				return say(warnStyle.Render("not bound: " + k)), nil
			}
		}

		return nil, nil

	case "roles":
		return say(m.listBindings()), nil

	case "strict":
		if len(args) > 0 {
			m.session.Strict = args[0] == "on" || args[0] == "true"
		}

		return say(hintStyle.Render("strict " + strconv.FormatBool(m.session.Strict))), nil

	case "owner":
		if len(args) > 0 {
			m.session.Owner = args[0]
		}

		return say(hintStyle.Render("owner " + strconv.Quote(m.session.Owner))), nil

	case "v", "version":
		return say(resultStyle.Render(m.engine.Version())), nil

	case "metrics":
		return say(m.listMetrics()), nil

	case "clear":
		s := m.engine.ClearCache()

		return say(hintStyle.Render(fmt.Sprintf("cache cleared (%d programs compiled so far)", s.ParseCount))), nil

	case "cls":
		return nil, tea.ClearScreen

	case "e", "edit":
		return nil, m.edit()
	}

	return say(errorStyle.Render("unknown command: " + name + " (try help)")), nil
}

// joinAssignments regroups whitespace-split fields so that a value
// containing spaces stays with its key: "l=[1," "2]" becomes "l=[1, 2]".
func joinAssignments(fields []string) []string {
	var out []string

	for _, f := range fields {
		if n := len(out); n > 0 && !strings.Contains(f, "=") {
			out[n-1] += " " + f

			continue
		}

		out = append(out, f)
	}

	return out
}

func (m model) listBindings() string {
	var b strings.Builder

	for _, k := range m.session.Names() {
		b.WriteString("  " + k)

		if ref, ok := m.session.Roles[k]; ok {
			b.WriteString(hintStyle.Render(" -> " + ref))
		}

		if v, ok := m.session.Values[k]; ok {
			b.WriteString(" = " + resultStyle.Render(fmt.Sprint(v)))
		}

		b.WriteString("\n")
	}

	if b.Len() == 0 {
		return hintStyle.Render("  (no bindings)")
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func (m model) listMetrics() string {
	s, c := m.engine.Metrics(), m.engine.Stats()

	return fmt.Sprintf(
		"  evaluations       %d\n  parse errors      %d\n  division by zero  %d\n"+
			"  unknown variables %d\n  invalid results   %d\n  cached programs   %d (%d hits)",
		s.Evaluations, s.ParseErrors, s.DivisionByZero,
		s.UnknownVariables, s.InvalidResults, c.Entries, c.HitCount,
	)
}

func (m model) edit() tea.Cmd {
	cmd := &editSessionCommand{ctx: m.ctx, session: m.session, logger: m.logger}

	return tea.Exec(cmd, func(err error) tea.Msg {
		if err != nil {
			return editErrorMsg{err: err}
		}

		return editDoneMsg{session: cmd.result}
	})
}
