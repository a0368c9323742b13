package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type errMsg error

type loginDoneMsg struct {
	needsCode bool
}

type LoginModel struct {
	Client   *Client
	Inputs   []textinput.Model
	FocusIdx int
	Err      error
	NeedCode bool
}

const (
	inputEmail = iota
	inputPassword
	inputCode
)

func NewLoginModel(c *Client) LoginModel {
	inputs := make([]textinput.Model, 3)

	inputs[inputEmail] = textinput.New()
	inputs[inputEmail].Placeholder = "admin@medstock.local"
	inputs[inputEmail].Prompt = "Email: "
	inputs[inputEmail].Focus()

	inputs[inputPassword] = textinput.New()
	inputs[inputPassword].Placeholder = "password"
	inputs[inputPassword].EchoMode = textinput.EchoPassword
	inputs[inputPassword].Prompt = "Password: "

	inputs[inputCode] = textinput.New()
	inputs[inputCode].Placeholder = "123456"
	inputs[inputCode].Prompt = "2FA code: "
	inputs[inputCode].CharLimit = 10

	return LoginModel{Client: c, Inputs: inputs}
}

func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	cmds := make([]tea.Cmd, len(m.Inputs))

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			return m, m.loginCmd
		case tea.KeyTab, tea.KeyDown:
			m.nextInput()
		case tea.KeyShiftTab, tea.KeyUp:
			m.prevInput()
		}
	case errMsg:
		m.Err = msg
	case loginDoneMsg:
		if msg.needsCode {
			m.NeedCode = true
			m.Err = nil
			m.focus(inputCode)
		}
	}

	for i := range m.Inputs {
		m.Inputs[i], cmds[i] = m.Inputs[i].Update(msg)
	}
	return m, tea.Batch(cmds...)
}

func (m *LoginModel) focus(idx int) {
	m.Inputs[m.FocusIdx].Blur()
	m.FocusIdx = idx
	m.Inputs[m.FocusIdx].Focus()
}

func (m *LoginModel) nextInput() {
	m.focus((m.FocusIdx + 1) % len(m.Inputs))
}

func (m *LoginModel) prevInput() {
	m.focus((m.FocusIdx + len(m.Inputs) - 1) % len(m.Inputs))
}

func (m LoginModel) loginCmd() tea.Msg {
	email := m.Inputs[inputEmail].Value()
	password := m.Inputs[inputPassword].Value()
	code := m.Inputs[inputCode].Value()

	needsCode, err := m.Client.Login(email, password, code)
	if err != nil {
		return errMsg(err)
	}
	return loginDoneMsg{needsCode: needsCode}
}

func (m LoginModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("MedStock Console") + "\n\n")
	for i := range m.Inputs {
		if i == inputCode && !m.NeedCode {
			continue
		}
		b.WriteString(m.Inputs[i].View())
		b.WriteRune('\n')
	}
	b.WriteString("\n")
	b.WriteString(blurredStyle.Render("Tab to switch fields, Enter to sign in"))
	if m.NeedCode {
		b.WriteString("\n" + focusedStyle.Render("Two-factor code required"))
	}
	if m.Err != nil {
		b.WriteString("\n\n" + errorMessageStyle(m.Err.Error()))
	}
	return b.String()
}
