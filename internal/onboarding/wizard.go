// Package onboarding runs the first-run setup that writes the config file.
package onboarding

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"

	"seamless/config"
	"seamless/internal/engine"
)

// ErrCancelled is returned when the user leaves the wizard early.
var ErrCancelled = errors.New("cancelled")

const wizardMaxWidth = 72

var (
	wizardRed     = lipgloss.AdaptiveColor{Light: "#FE5F86", Dark: "#FE5F86"}
	wizardPrimary = lipgloss.AdaptiveColor{Light: "#f7c0af", Dark: "#f7c0af"}
	wizardAccent  = lipgloss.Color("#3ccad7")
)

type wizardStyles struct {
	Base,
	HeaderText,
	ErrorHeaderText,
	Help lipgloss.Style
}

func newWizardStyles(lg *lipgloss.Renderer) wizardStyles {
	s := wizardStyles{}
	s.Base = lg.NewStyle().Padding(0)
	s.HeaderText = lg.NewStyle().Foreground(wizardPrimary).Bold(true).Padding(0)
	s.ErrorHeaderText = s.HeaderText.Foreground(wizardRed)
	s.Help = lg.NewStyle().Foreground(lipgloss.Color("240"))
	return s
}

type wizardModel struct {
	width     int
	styles    wizardStyles
	form      *huh.Form
	answers   *answers
	cancelled bool
}

func newWizardModel(a *answers) *wizardModel {
	lg := lipgloss.DefaultRenderer()
	styles := newWizardStyles(lg)
	m := &wizardModel{
		width:   wizardMaxWidth - styles.Base.GetHorizontalFrameSize(),
		styles:  styles,
		answers: a,
	}

	theme := createHuhTheme()
	theme.FieldSeparator = lipgloss.NewStyle().SetString("\n")
	theme.Help.FullKey = theme.Help.FullKey.MarginTop(1)

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("").
				Description("seamless scrolls a feed of items in an endless loop.\n\nThis setup writes a config file with your choices.\nEvery value can be changed later by editing it.\n\nPress Enter to continue."),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Direction").
				Options(
					huh.NewOption("Up", string(engine.Up)),
					huh.NewOption("Down", string(engine.Down)),
					huh.NewOption("Left", string(engine.Left)),
					huh.NewOption("Right", string(engine.Right)),
				).
				Value(&a.Direction),
			huh.NewInput().
				Title("Step").
				Description("Cells moved per frame.").
				Value(&a.Step).
				Validate(validateStep),
			huh.NewInput().
				Title("Loop limit").
				Description("Wraparounds before stopping, -1 for no limit.").
				Value(&a.Limit).
				Validate(validateLimit),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Feed").
				Description("Glob of YAML or Markdown files to show.").
				Value(&a.Feed).
				Validate(validateFeed),
			huh.NewConfirm().
				Title("Pause while the pointer is over the viewport?").
				Value(&a.Hover),
			huh.NewConfirm().
				Title("Step with the mouse wheel while paused?").
				Value(&a.Wheel),
		),
	).
		WithTheme(theme).
		WithWidth(wizardMaxWidth).
		WithShowHelp(false).
		WithShowErrors(false)

	return m
}

func (m *wizardModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m *wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width <= 0 {
			break
		}
		m.width = min(msg.Width, wizardMaxWidth) - m.styles.Base.GetHorizontalFrameSize()
		if m.width <= 0 {
			m.width = wizardMaxWidth
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
		cmds = append(cmds, cmd)
	}
	if m.form.State == huh.StateCompleted {
		cmds = append(cmds, tea.Quit)
	}
	return m, tea.Batch(cmds...)
}

func (m *wizardModel) View() string {
	if m.form == nil {
		return ""
	}
	if m.cancelled {
		return m.styles.Base.Render(m.appBoundaryView("setup cancelled") + "\n")
	}
	if m.form.State == huh.StateCompleted {
		return m.styles.Base.Render(m.appBoundaryView("seamless") + "\n")
	}

	header := m.appBoundaryView("seamless")
	if errs := m.errorView(); errs != "" {
		header = m.appErrorBoundaryView(errs)
	}

	lines := strings.Split(m.form.View(), "\n")
	for i, line := range lines {
		lines[i] = " " + line
	}
	return header + "\n\n" + strings.Join(lines, "\n") + "\n\n" +
		m.styles.Help.Render(" enter next • shift+tab back • esc quit") + "\n"
}

func (m *wizardModel) errorView() string {
	var out strings.Builder
	for _, err := range m.form.Errors() {
		if out.Len() > 0 {
			out.WriteString("\n")
		}
		out.WriteString(err.Error())
	}
	return out.String()
}

func (m *wizardModel) appBoundaryView(text string) string {
	if m.width <= 0 {
		return ""
	}
	label := m.styles.HeaderText.Render(text)
	line := " " + strings.Repeat("⁘⁙", 24) + "⁘"
	result := lipgloss.JoinHorizontal(lipgloss.Top, label, applyGradient(line, wizardPrimary, wizardAccent))
	return lipgloss.NewStyle().Width(m.width).MarginTop(1).Render(result)
}

func (m *wizardModel) appErrorBoundaryView(text string) string {
	if m.width <= 0 {
		return ""
	}
	label := m.styles.ErrorHeaderText.Render(text)
	line := lipgloss.NewStyle().Foreground(wizardRed).Render(" " + strings.Repeat("/", m.width))
	return lipgloss.NewStyle().Width(m.width).MarginTop(1).Render(lipgloss.JoinHorizontal(lipgloss.Top, label, line))
}

// applyGradient blends from one color to another across the text, or paints
// it solid when the terminal lacks TrueColor.
func applyGradient(text string, from, to color.Color) string {
	rs := []rune(text)
	n := len(rs)
	if n == 0 {
		return ""
	}

	c1, _ := colorful.MakeColor(from)
	if termenv.ColorProfile() != termenv.TrueColor {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c1.Hex())).Bold(true).Render(text)
	}

	c2, _ := colorful.MakeColor(to)
	var out strings.Builder
	for i, r := range rs {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		c := c1.BlendLab(c2, t).Clamped()
		out.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Bold(true).Render(string(r)))
	}
	return out.String()
}

// RunWizard asks for the main settings, checks the feed pattern and writes
// the config to path.
func RunWizard(path string) (config.File, error) {
	a := defaultAnswers()
	def := config.Default()
	a.Hover = def.Ticker.Hover
	a.Wheel = def.Ticker.Wheel

	model := newWizardModel(&a)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return def, err
	}
	wm, ok := final.(*wizardModel)
	if !ok {
		return def, fmt.Errorf("unexpected wizard model type %T", final)
	}
	if wm.cancelled {
		return def, ErrCancelled
	}

	f, err := a.apply()
	if err != nil {
		return def, err
	}

	var matches int
	var globErr error
	spinnerStyle := lipgloss.NewStyle().MarginLeft(2).Foreground(lipgloss.Color("#f7c0af"))
	err = spinner.New().
		Title("Checking feed...").
		Style(spinnerStyle).
		Action(func() {
			matches, globErr = countMatches(f.FeedPattern())
		}).
		Run()
	if err != nil {
		return def, ErrCancelled
	}
	if globErr != nil {
		return def, fmt.Errorf("check feed pattern: %w", globErr)
	}

	if err := config.Save(path, f); err != nil {
		return def, err
	}

	base := lipgloss.NewStyle().Foreground(lipgloss.Color("#dddddd"))
	highlight := lipgloss.NewStyle().Foreground(wizardPrimary).Bold(true)
	fmt.Println()
	fmt.Println(base.Render(" ✔︎ Saved " + path))
	if matches == 0 {
		fmt.Println(base.Render(" No files match the feed yet; they show up as soon as they are written."))
	} else {
		fmt.Println(base.Render(fmt.Sprintf(" %d feed files found.", matches)))
	}
	fmt.Println()
	fmt.Print(base.Render(" Run '"))
	fmt.Print(highlight.Render("seamless"))
	fmt.Print(base.Render("' to start."))
	fmt.Println()
	fmt.Println()
	return f, nil
}

func createHuhTheme() *huh.Theme {
	primary := lipgloss.Color("#f7c0af")
	fg := lipgloss.Color("#dddddd")
	fgMuted := lipgloss.Color("#7f7f7f")
	fgSubtle := lipgloss.Color("#888888")
	bg := lipgloss.Color("#101012")
	errColor := lipgloss.Color("#bf5d47")
	success := lipgloss.Color("#87bf47")

	theme := huh.ThemeBase16()

	base := lipgloss.NewStyle().Foreground(fg)

	theme.Focused.Base = base.MarginLeft(1)
	theme.Focused.Title = base.Foreground(primary).Bold(true)
	theme.Focused.Description = base.Foreground(fgMuted)
	theme.Focused.ErrorIndicator = base.Foreground(errColor)
	theme.Focused.ErrorMessage = base.Foreground(errColor)

	theme.Focused.SelectSelector = base.Foreground(primary).Bold(true)
	theme.Focused.SelectedOption = base.Foreground(primary).Bold(true)
	theme.Focused.SelectedPrefix = base.Foreground(success).Bold(true).SetString("✓ ")
	theme.Focused.UnselectedOption = base
	theme.Focused.UnselectedPrefix = base.Foreground(fgMuted).SetString("> ")
	theme.Focused.Option = base

	theme.Focused.FocusedButton = base.Background(primary).Foreground(bg).Bold(true).Padding(0, 2)
	theme.Focused.BlurredButton = base.Foreground(fgMuted).Padding(0).MarginLeft(1)

	theme.Focused.NoteTitle = base.Foreground(primary).Bold(true)
	theme.Focused.Card = base.Padding(0)

	theme.Focused.TextInput.Cursor = base.Foreground(primary)
	theme.Focused.TextInput.Placeholder = base.Foreground(fgSubtle)
	theme.Focused.TextInput.Prompt = base.Foreground(primary)

	theme.Blurred.Base = base
	theme.Blurred.Title = base.Foreground(fgMuted)
	theme.Blurred.Description = base.Foreground(fgSubtle)
	theme.Blurred.NoteTitle = base.Foreground(fgMuted)
	theme.Blurred.TextInput.Placeholder = base.Foreground(fgSubtle)
	theme.Blurred.TextInput.Prompt = base.Foreground(fgMuted)

	theme.Form = base
	theme.Group = base.Padding(0).MarginBottom(0)

	return theme
}
