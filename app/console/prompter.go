package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// Prompter is the input side of the console. Select returns the index of the
// chosen option. Every method returns io.EOF once input is exhausted.
type Prompter interface {
	Select(title string, options []string) (int, error)
	Ask(label, def string) (string, error)
	Confirm(question string) (bool, error)
	Multiline(label string) (string, error)
	Pause() error
}

// NewPrompter picks the bubbles based prompter when both ends are terminals
// and the line prompter otherwise.
func NewPrompter(in *os.File, out *os.File) Prompter {
	lines := NewLinePrompter(in, out)
	if isatty.IsTerminal(in.Fd()) && isatty.IsTerminal(out.Fd()) {
		return &TeaPrompter{LinePrompter: lines, in: in, out: out}
	}
	return lines
}

// LinePrompter reads plain lines and shows numbered choices. It works over
// pipes and is what the tests drive.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

func (p *LinePrompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *LinePrompter) Select(title string, options []string) (int, error) {
	fmt.Fprintf(p.out, "\n%s\n", title)
	for i, opt := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, opt)
	}
	for {
		fmt.Fprint(p.out, "> ")
		line, err := p.readLine()
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		fmt.Fprintf(p.out, "Enter a number from 1 to %d\n", len(options))
	}
}

// Ask returns def when the answer is blank.
func (p *LinePrompter) Ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s (%s) ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s ", label)
	}
	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	if line = strings.TrimSpace(line); line == "" {
		return def, nil
	}
	return line, nil
}

func (p *LinePrompter) Confirm(question string) (bool, error) {
	for {
		fmt.Fprintf(p.out, "%s (y/n) ", question)
		line, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no", "":
			return false, nil
		}
	}
}

// Multiline collects lines until an empty one or end of input.
func (p *LinePrompter) Multiline(label string) (string, error) {
	fmt.Fprintln(p.out, label)
	var lines []string
	for {
		line, err := p.readLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(line) == "" {
			break
		}
		lines = append(lines, strings.TrimRight(line, " \t"))
	}
	return strings.Join(lines, "\n"), nil
}

func (p *LinePrompter) Pause() error {
	fmt.Fprint(p.out, "\nPress enter to continue...")
	_, err := p.readLine()
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// TeaPrompter shows selections as a bubbles list and leaves free text
// entry to the embedded line prompter.
type TeaPrompter struct {
	*LinePrompter
	in  io.Reader
	out io.Writer
}

type choiceItem string

func (c choiceItem) Title() string       { return string(c) }
func (c choiceItem) Description() string { return "" }
func (c choiceItem) FilterValue() string { return string(c) }

type selectModel struct {
	menu   list.Model
	chosen int
	quit   bool
}

func (m selectModel) Init() tea.Cmd { return nil }

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.menu.SetSize(msg.Width-4, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quit = true
			return m, tea.Quit
		case "esc", "q":
			// The last option is always Back, Cancel or Exit.
			m.chosen = len(m.menu.Items()) - 1
			return m, tea.Quit
		case "enter":
			m.chosen = m.menu.Index()
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

func (m selectModel) View() string {
	return m.menu.View()
}

func (p *TeaPrompter) Select(title string, options []string) (int, error) {
	items := make([]list.Item, len(options))
	for i, opt := range options {
		items[i] = choiceItem(opt)
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	l := list.New(items, delegate, 60, len(options)*2+6)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	final, err := tea.NewProgram(selectModel{menu: l}, tea.WithInput(p.in), tea.WithOutput(p.out)).Run()
	if err != nil {
		return 0, err
	}
	m := final.(selectModel)
	if m.quit {
		return 0, io.EOF
	}
	return m.chosen, nil
}

func (p *TeaPrompter) Confirm(question string) (bool, error) {
	i, err := p.Select(question, []string{"Yes", "No"})
	return i == 0, err
}
