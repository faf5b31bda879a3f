// terminal_frontend.go - reference terminal front-end (bubbletea/lipgloss)
//
// Renders the active system's Display as downsampled ANSI half-block glyphs,
// lists registered frontend functions, and forwards keystrokes to the
// system's Input component. This is the reference front-end named in the
// spec; it is not the only possible one (the FrontendInterface contract in
// frontend.go is front-end-agnostic).

package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	frontendTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	frontendDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	frontendFrameStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// chip8KeyMap maps QWERTY runes to the Chip8 hex keypad layout:
//
//	1 2 3 4        1 2 3 C
//	q w e r   ->   4 5 6 D
//	a s d f        7 8 9 E
//	z x c v        A 0 B F
var chip8KeyMap = map[rune]KeyCode{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// gbKeyMap maps WASD + jk + enter/space to the GameBoy's 8 buttons, matching
// the registration order in gbKeyNames (right,left,up,down,a,b,select,start).
var gbKeyMap = map[rune]KeyCode{
	'd': 0, 'a': 1, 'w': 2, 's': 3,
	'k': 4, 'j': 5, ' ': 6, '\r': 7,
}

func keyMapFor(sysName string) map[rune]KeyCode {
	switch sysName {
	case "chip8":
		return chip8KeyMap
	default:
		return gbKeyMap
	}
}

type frontendTickMsg time.Time

type terminalModel struct {
	sys      *System
	fe       *FrontendInterface
	keys     map[rune]KeyCode
	input    *Input
	display  *Display
	romPath  string
	quitting bool
}

func runTerminalFrontend(sys *System, romPath string, logger *log.Logger) error {
	fe := NewFrontendInterface(sys, logger, func() string { return romPath }, nil)
	display, _ := sys.GetFirstComponentByType(ComponentDisplay).(*Display)
	input, _ := sys.GetFirstComponentByType(ComponentInput).(*Input)

	m := terminalModel{
		sys:     sys,
		fe:      fe,
		keys:    keyMapFor(sys.Name()),
		input:   input,
		display: display,
		romPath: romPath,
	}

	p := tea.NewProgram(m)
	_, err := p.Run()
	return err
}

func (m terminalModel) Init() tea.Cmd {
	return tickFrontend()
}

func tickFrontend() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return frontendTickMsg(t)
	})
}

func (m terminalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "r":
			m.fe.RestartSystem(func() {})
			return m, nil
		}
		if len(msg.Runes) == 1 {
			if code, ok := m.keys[msg.Runes[0]]; ok && m.input != nil {
				m.input.PressKey(code)
			}
		}
		return m, nil
	case frontendTickMsg:
		if m.input != nil {
			for _, code := range m.keys {
				m.input.ReleaseKey(code)
			}
		}
		return m, tickFrontend()
	}
	return m, nil
}

func (m terminalModel) View() string {
	if m.quitting {
		return "\n"
	}
	var b strings.Builder
	b.WriteString(frontendTitleStyle.Render(fmt.Sprintf("%s — %s", m.sys.Name(), m.romPath)))
	b.WriteString("\n\n")
	b.WriteString(frontendFrameStyle.Render(renderDisplay(m.display)))
	b.WriteString("\n")
	b.WriteString(frontendDimStyle.Render("keys: press mapped keys to drive input · r: restart · esc/ctrl+c: quit"))
	b.WriteString("\n")
	if fns := m.sys.FrontendFunctions(); len(fns) > 0 {
		names := make([]string, 0, len(fns))
		for name := range fns {
			names = append(names, name)
		}
		b.WriteString(frontendDimStyle.Render(fmt.Sprintf("registered functions: %s", strings.Join(names, ", "))))
		b.WriteString("\n")
	}
	return b.String()
}

// renderDisplay downsamples the Display to one terminal cell per two rows,
// using the half-block character so foreground/background encode a pair of
// vertically adjacent pixels each.
func renderDisplay(d *Display) string {
	if d == nil {
		return "(no display)"
	}
	w, h := d.Width(), d.Height()
	var b strings.Builder
	for y := 0; y+1 < h; y += 2 {
		for x := 0; x < w; x++ {
			top, _ := d.GetPixel(x, y)
			bot, _ := d.GetPixel(x, y+1)
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(ansiHex(top))).
				Background(lipgloss.Color(ansiHex(bot)))
			b.WriteString(style.Render("▀"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func ansiHex(p Pixel) string {
	return fmt.Sprintf("#%02x%02x%02x", p.R, p.G, p.B)
}
