package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tidelake/lakeacl/internal/utils"
)

// View states
type viewState int

const (
	accountView viewState = iota
	keyView
)

// Strings
const (
	txtAccountPlaceholder = "analytics-account"
	txtKeyPlaceholder     = "••••••••"
	txtAccountPrompt      = "Enter your Tidelake analytics account"
	txtCheckingServer     = "Checking server..."
	txtExchangingKey      = "Exchanging key..."
	txtKeyPrompt          = "Enter the access key for %s"
	txtKeyInfo            = "The key is exchanged for a short-lived token and stored locally."
	txtInvalidAccount     = "Invalid account name"
	txtInvalidKey         = "Invalid access key"
	txtHelp               = "Press 'Enter' to submit. 'Esc' to go back/quit. 'Ctrl+C' to quit."
)

// Styles
var (
	focusedStyle     = green
	helpStyle        = gray
	errorTextStyle   = red
	errorHeaderStyle = red.Bold(true)
	spinnerStyle     = cyan
	placeholderStyle = gray
	titleStyle       = cyan.Bold(true)
)

type LoginTUIOpts struct {
	Account              string
	ServerURL            string
	ConfigPath           string
	Note                 string // optional note to display to the user
	AccountSubmitHandler func(account string) error
	KeySubmitHandler     func(account, key string) error
	AccountValidator     func(account string) bool
	KeyValidator         func(key string) bool
}

// Model holds the application's state
type loginModel struct {
	opts *LoginTUIOpts

	accountInput textinput.Model
	keyInput     textinput.Model
	spinner      spinner.Model

	currentView  viewState
	previousView viewState

	isLoading    bool
	errorMessage string // For all types of errors
	message      string // For loading messages
	width        int

	submittedAccount string // To store the account for the key callback
}

// --- Messages ---
type accountProcessedMsg struct{ err error }
type keyProcessedMsg struct{ err error }

// newLoginModel creates the initial state of the application
func newLoginModel(opts *LoginTUIOpts) loginModel {
	account := textinput.New()
	account.Placeholder = txtAccountPlaceholder
	account.Focus()
	account.CharLimit = 64
	account.Width = 64
	account.PromptStyle = focusedStyle
	account.TextStyle = focusedStyle
	account.PlaceholderStyle = placeholderStyle
	if opts.Account != "" {
		account.SetValue(opts.Account)
	}

	key := textinput.New()
	key.Placeholder = txtKeyPlaceholder
	key.CharLimit = 128
	key.Width = 64
	key.EchoMode = textinput.EchoPassword
	key.EchoCharacter = '•'
	key.PromptStyle = focusedStyle
	key.TextStyle = focusedStyle
	key.PlaceholderStyle = placeholderStyle

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return loginModel{
		opts:         opts,
		currentView:  accountView,
		previousView: accountView,
		accountInput: account,
		keyInput:     key,
		spinner:      s,
		isLoading:    false,
	}
}

// Init is the first command that is run when the program starts
func (m loginModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update handles messages and updates the model accordingly
func (m loginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Handle input focus and key processing
		if m.accountInput.Focused() {
			// Clear error when user starts typing in the account field
			m.errorMessage = ""
			m.accountInput, cmd = m.accountInput.Update(msg)
			cmds = append(cmds, cmd)
		} else if m.keyInput.Focused() {
			// Clear error when user starts typing in the key field
			m.errorMessage = ""
			m.keyInput, cmd = m.keyInput.Update(msg)
			cmds = append(cmds, cmd)
		}

		// Handle special keys
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit

		case tea.KeyEsc:
			// Handle Escape key (go back)
			return m.handleEscapeKey()

		case tea.KeyEnter:
			if m.isLoading {
				return m, nil // Don't process Enter if already loading
			}

			switch m.currentView {
			case accountView:
				return m.submitAccount()

			case keyView:
				return m.submitKey()
			}
		}

	case spinner.TickMsg:
		// Always update the spinner
		var spinnerCmd tea.Cmd
		m.spinner, spinnerCmd = m.spinner.Update(msg)
		cmds = append(cmds, spinnerCmd)

	case accountProcessedMsg:
		return m.handleAccountMsg(msg)

	case keyProcessedMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
	}

	return m, tea.Batch(cmds...)
}

// handleEscapeKey processes the Escape key to navigate back
func (m loginModel) handleEscapeKey() (tea.Model, tea.Cmd) {
	// If we're in key view, go back to account view
	if m.currentView == keyView {
		m.currentView = accountView
		m.keyInput.Blur()
		m.accountInput.Focus()
		m.errorMessage = ""
		return m, textinput.Blink
	}

	// If we're already in account view, quit
	return m, tea.Quit
}

// submitAccount validates and submits the account name
func (m loginModel) submitAccount() (tea.Model, tea.Cmd) {
	m.previousView = accountView
	m.errorMessage = "" // Clear any previous error

	accountVal := strings.TrimSpace(m.accountInput.Value())
	if !m.opts.AccountValidator(accountVal) {
		m.errorMessage = txtInvalidAccount
		return m, nil
	}

	// Account format is valid, proceed with submission
	m.errorMessage = ""
	m.isLoading = true
	m.message = txtCheckingServer
	m.submittedAccount = accountVal

	// Blur the input while loading
	m.accountInput.Blur()

	return m, func() tea.Msg {
		err := m.opts.AccountSubmitHandler(m.submittedAccount)
		return accountProcessedMsg{err: err}
	}
}

// submitKey validates and submits the access key
func (m loginModel) submitKey() (tea.Model, tea.Cmd) {
	m.previousView = keyView
	m.errorMessage = "" // Clear any previous error

	keyVal := strings.TrimSpace(m.keyInput.Value())
	if !m.opts.KeyValidator(keyVal) {
		m.errorMessage = txtInvalidKey
		return m, nil
	}

	m.errorMessage = ""
	m.isLoading = true
	m.message = txtExchangingKey

	// Blur the input while loading
	m.keyInput.Blur()

	return m, func() tea.Msg {
		err := m.opts.KeySubmitHandler(m.submittedAccount, keyVal)
		return keyProcessedMsg{err: err}
	}
}

// handleAccountMsg processes the response from account submission
func (m loginModel) handleAccountMsg(msg accountProcessedMsg) (tea.Model, tea.Cmd) {
	m.isLoading = false

	if msg.err != nil {
		// Store the API error and refocus the account input
		m.errorMessage = fmt.Sprintf("%s %s", errorHeaderStyle.Render("ERROR:"), msg.err.Error())
		m.accountInput.Focus()
		return m, textinput.Blink
	}

	// Server answered; move on to the key
	m.currentView = keyView
	m.message = ""
	m.errorMessage = "" // Clear any error messages

	// Focus the key input
	m.keyInput.Focus()

	return m, textinput.Blink
}

// handleKeyMsg processes the response from key submission
func (m loginModel) handleKeyMsg(msg keyProcessedMsg) (tea.Model, tea.Cmd) {
	m.isLoading = false

	if msg.err != nil {
		// Store the API error and refocus the key input
		m.errorMessage = fmt.Sprintf("%s %s", errorHeaderStyle.Render("ERROR:"), msg.err.Error())
		m.keyInput.Focus()
		return m, textinput.Blink
	}

	// Key exchange was successful. Quit the TUI.
	return m, tea.Quit
}

// View renders the UI based on the current model state.
func (m loginModel) View() string {
	var b strings.Builder
	// Render header
	b.WriteString(titleStyle.Render(utils.LakeAclArt))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s%s\n", gray.Render("Server  "), green.Render(m.opts.ServerURL)))
	b.WriteString(fmt.Sprintf("%s%s\n", gray.Render("Config  "), green.Render(m.opts.ConfigPath)))
	if m.opts.Note != "" {
		b.WriteString(fmt.Sprintf("\n%s\n", yellow.Render(m.opts.Note)))
	}
	b.WriteString("\n")

	// Render content based on current view
	switch m.currentView {
	case accountView:
		m.renderAccountView(&b)
	case keyView:
		m.renderKeyView(&b)
	}
	// Render loading, error, and help views
	m.renderLoadingView(&b)
	m.renderErrorView(&b)
	m.renderHelpView(&b)
	b.WriteString("\n")
	return b.String()
}

// renderAccountView renders the account input view
func (m loginModel) renderAccountView(b *strings.Builder) {
	b.WriteString(txtAccountPrompt)
	b.WriteString("\n\n")
	b.WriteString(m.accountInput.View())
}

// renderKeyView renders the key input view
func (m loginModel) renderKeyView(b *strings.Builder) {
	b.WriteString(fmt.Sprintf(txtKeyPrompt, green.Render(m.submittedAccount)))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(txtKeyInfo))
	b.WriteString("\n\n")
	b.WriteString(m.keyInput.View())
}

// renderLoadingView renders the loading view
func (m loginModel) renderLoadingView(b *strings.Builder) {
	if m.isLoading {
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("%s %s", m.spinner.View(), m.message))
	}
}

// renderErrorView renders the error view
func (m loginModel) renderErrorView(b *strings.Builder) {
	if m.errorMessage != "" {
		b.WriteString("\n\n")
		b.WriteString(errorTextStyle.Render(m.errorMessage))
	}
}

// renderHelpView renders the help view
func (m loginModel) renderHelpView(b *strings.Builder) {
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(txtHelp))
}

// RunLoginTUI is the main entry point to start the Bubble Tea login interface.
func RunLoginTUI(opts LoginTUIOpts) error {
	loginM := newLoginModel(&opts)
	model, err := tea.NewProgram(loginM, tea.WithAltScreen()).Run()
	if err != nil {
		log.Printf("Error running TUI: %v", err)
		return fmt.Errorf("TUI encountered an error during execution: %w", err)
	}

	// Check the final model state for errors or interruptions
	if fm, ok := model.(loginModel); ok {
		// Check for errors
		if fm.errorMessage != "" {
			return fmt.Errorf("login process interrupted: %s", fm.errorMessage)
		}

		// If we're still in account view when we exit, the user probably quit
		if fm.currentView == accountView {
			return fmt.Errorf("login process cancelled by user")
		}
	}

	// If we reach here, the login was successful or the user quit cleanly
	return nil
}
