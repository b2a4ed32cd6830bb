package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sigco3111/rpg-script-editor/internal/handlers"
	"github.com/sigco3111/rpg-script-editor/pkg/script"
)

// ConsoleUI is the BubbleTea model that runs the play session UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	view         *handlers.PlayView
	transcript   []string
	playViewport viewport.Model
	metaViewport viewport.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool
	notice       string

	// Quit confirmation state
	showQuitModal bool
}

type playActionMsg struct {
	view *handlers.PlayView
	err  error
}

var titleCaser = cases.Title(language.English)

var (
	playPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	sceneTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	contentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, view *handlers.PlayView) ConsoleUI {
	playVp := viewport.New(50, 20)
	playVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:       cfg,
		client:       client,
		view:         view,
		playViewport: playVp,
		metaViewport: metaVp,
		ready:        false,
	}
}

// sceneTypeLabel turns a wire scene type into a display label,
// e.g. "regular_combat" becomes "Regular Combat".
func sceneTypeLabel(t script.SceneType) string {
	return titleCaser.String(strings.ReplaceAll(string(t), "_", " "))
}

// renderView formats one play view as a transcript block.
func renderView(view *handlers.PlayView, width int) string {
	var b strings.Builder

	switch {
	case view.Error != "":
		b.WriteString(errorStyle.Render("Error: "+view.Error) + "\n")
	case view.Ended:
		b.WriteString(titleStyle.Render("THE END") + "\n")
		b.WriteString(contentStyle.Render(wordwrap.String("The path is complete. Press Q to leave.", width)) + "\n")
	case view.RepeatOffer != nil:
		b.WriteString(sceneTitleStyle.Render("Victory: "+view.RepeatOffer.SceneTitle) + "\n")
		msg := "The enemy falls."
		if view.RepeatOffer.Reward != "" {
			msg = fmt.Sprintf("The enemy falls. You receive: %s.", view.RepeatOffer.Reward)
		}
		b.WriteString(contentStyle.Render(wordwrap.String(msg, width)) + "\n")
		b.WriteString(choiceStyle.Render("  [R] Fight again    [P] Proceed") + "\n")
	case view.Scene != nil:
		sc := view.Scene
		header := fmt.Sprintf("%s  (%s)", sc.Title, sceneTypeLabel(sc.Type))
		b.WriteString(sceneTitleStyle.Render(header) + "\n")

		content := sc.Content
		if view.SpeakerName != "" {
			content = view.SpeakerName + ": " + content
		}
		b.WriteString(contentStyle.Render(wordwrap.String(content, width)) + "\n")

		if len(view.EnemyNames) > 0 {
			b.WriteString(errorStyle.Render("Enemies: "+strings.Join(view.EnemyNames, ", ")) + "\n")
		}
		if sc.Item != "" {
			b.WriteString(choiceStyle.Render("Obtained: "+sc.Item) + "\n")
		}
		if sc.NewLocationName != "" {
			b.WriteString(choiceStyle.Render("Now entering: "+sc.NewLocationName) + "\n")
		}
		for i, choice := range sc.Choices {
			b.WriteString(choiceStyle.Render(fmt.Sprintf("  [%d] %s", i+1, choice.Text)) + "\n")
		}
	}

	if view.TownMessage != "" {
		b.WriteString(loadingStyle.Render(wordwrap.String(view.TownMessage, width)) + "\n")
	}

	return b.String()
}

// writePlayContent rebuilds the transcript viewport for the current width.
func (m *ConsoleUI) writePlayContent() {
	width := m.playViewport.Width - 6
	if width < 10 {
		width = 10
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("SCRIPT PLAYER") + "\n\n")
	if m.view != nil && m.view.StageTitle != "" {
		content.WriteString("Playing: " + m.view.StageTitle + "\n\n")
	}
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, block := range m.transcript {
		content.WriteString(block + "\n")
	}

	if m.loading {
		content.WriteString(loadingStyle.Render("...") + "\n")
	}
	if m.err != nil {
		content.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	}
	if m.notice != "" {
		content.WriteString(promptStyle.Render(m.notice) + "\n")
	}

	m.playViewport.SetContent(content.String())
	m.playViewport.GotoBottom()
}

func (m *ConsoleUI) writeMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("SESSION") + "\n\n")

	if m.view != nil {
		content.WriteString("Session ID:\n")
		id := m.view.SessionID
		if len(id) > 8 {
			id = id[:8] + "..."
		}
		content.WriteString(id + "\n\n")

		content.WriteString("Stage:\n")
		content.WriteString(m.view.StageTitle + "\n\n")

		if m.view.Scene != nil {
			content.WriteString("Scene:\n")
			content.WriteString(sceneTypeLabel(m.view.Scene.Type) + "\n\n")
		}
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Enter/N: Advance\n")
	content.WriteString("• 1-9: Pick a choice\n")
	content.WriteString("• R: Fight again\n")
	content.WriteString("• P: Proceed\n")
	content.WriteString("• D: Concede combat\n")
	content.WriteString("• S: Shop  I: Inn\n")
	content.WriteString("• C: Copy scene text\n")
	content.WriteString("• Q/Ctrl+C: Quit\n")

	return content.String()
}

func (m ConsoleUI) Init() tea.Cmd {
	return nil
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.playViewport, vpCmd = m.playViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		playWidth := int(float64(m.width)*0.75) - 4
		metaWidth := m.width - playWidth - 6

		m.playViewport.Width = playWidth - 2
		m.playViewport.Height = m.height - 5
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4

		if !m.ready {
			m.ready = true
			m.transcript = append(m.transcript, renderView(m.view, m.playViewport.Width-6))
		}
		m.writePlayContent()
		m.metaViewport.SetContent(m.writeMetadata())

	case tea.KeyMsg:
		return m.handleKey(msg)

	case playActionMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.view = msg.view
			m.transcript = append(m.transcript, renderView(m.view, m.playViewport.Width-6))
			m.metaViewport.SetContent(m.writeMetadata())
		}
		m.writePlayContent()
		return m, nil
	}

	m.playViewport, vpCmd = m.playViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)
	return m, tea.Batch(vpCmd, mvCmd)
}

func (m ConsoleUI) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.showQuitModal = true
		return m, nil
	case tea.KeyEnter:
		return m.dispatch(PlayActionRequest{Action: handlers.PlayActionAdvance})
	}

	key := strings.ToLower(msg.String())

	// Number keys pick a dialogue choice
	if m.view != nil && m.view.Scene != nil && len(m.view.Scene.Choices) > 0 && len(key) == 1 {
		if n := int(key[0] - '0'); n >= 1 && n <= len(m.view.Scene.Choices) {
			target := m.view.Scene.Choices[n-1].NextSceneID
			return m.dispatch(PlayActionRequest{Action: handlers.PlayActionChoose, TargetSceneID: target})
		}
	}

	switch key {
	case "q":
		m.showQuitModal = true
		return m, nil
	case "n":
		return m.dispatch(PlayActionRequest{Action: handlers.PlayActionAdvance})
	case "r":
		return m.dispatch(PlayActionRequest{Action: handlers.PlayActionRetry})
	case "p":
		return m.dispatch(PlayActionRequest{Action: handlers.PlayActionProceed})
	case "d":
		return m.dispatch(PlayActionRequest{Action: handlers.PlayActionDefeat})
	case "s":
		return m.dispatch(PlayActionRequest{Action: handlers.PlayActionTownService, Service: "shop"})
	case "i":
		return m.dispatch(PlayActionRequest{Action: handlers.PlayActionTownService, Service: "inn"})
	case "c":
		if m.view != nil && m.view.Scene != nil {
			if err := clipboard.WriteAll(m.view.Scene.Content); err != nil {
				m.notice = "Copy failed: " + err.Error()
			} else {
				m.notice = "Scene text copied to clipboard"
			}
			m.writePlayContent()
		}
		return m, nil
	}

	return m, nil
}

// dispatch sends a play action unless a request is already in flight.
func (m ConsoleUI) dispatch(req PlayActionRequest) (tea.Model, tea.Cmd) {
	if m.loading || m.view == nil {
		return m, nil
	}
	m.loading = true
	m.notice = ""
	m.writePlayContent()

	sessionID := m.view.SessionID
	return m, func() tea.Msg {
		view, err := sendPlayAction(m.client, m.config.APIBaseURL, sessionID, req)
		return playActionMsg{view, err}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, m.quit()
		default:
			switch msg.String() {
			case "y", "Y":
				return m, m.quit()
			case "n", "N":
				m.showQuitModal = false
				return m, nil
			}
		}
	}

	return m, nil
}

// quit ends the session on the server before leaving the program.
func (m ConsoleUI) quit() tea.Cmd {
	sessionID := ""
	if m.view != nil {
		sessionID = m.view.SessionID
	}
	return tea.Sequence(func() tea.Msg {
		if sessionID != "" {
			_ = endPlay(m.client, m.config.APIBaseURL, sessionID)
		}
		return nil
	}, tea.Quit)
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the Stage?"))
	content.WriteString("\n\n")
	content.WriteString("Quit and end this play session?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	playWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - playWidth - 6

	playPanel := playPanelStyle.Width(playWidth).Height(m.height - 3).Render(
		m.playViewport.View(),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, playPanel, metaPanel)
}
