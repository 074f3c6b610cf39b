package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// form is a vertical stack of text inputs with one focused field.
type form struct {
	labels []string
	inputs []textinput.Model
	focus  int
}

type field struct {
	label    string
	secret   bool
	charLim  int
	placehdr string
}

func newForm(fields ...field) form {
	f := form{}
	for _, fd := range fields {
		in := textinput.New()
		in.Placeholder = fd.placehdr
		in.CharLimit = fd.charLim
		in.Width = 32
		in.Prompt = "› "
		if fd.secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		f.labels = append(f.labels, fd.label)
		f.inputs = append(f.inputs, in)
	}
	if len(f.inputs) > 0 {
		f.inputs[0].Focus()
	}
	return f
}

func loginForm() form {
	return newForm(
		field{label: "Username", charLim: 64, placehdr: "username"},
		field{label: "Password", secret: true, charLim: 128},
	)
}

func registerForm() form {
	return newForm(
		field{label: "Username", charLim: 64, placehdr: "username"},
		field{label: "Email", charLim: 254, placehdr: "you@example.com"},
		field{label: "Password", secret: true, charLim: 128},
		field{label: "Confirm password", secret: true, charLim: 128},
	)
}

func (f *form) move(step int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + step + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f *form) last() bool { return f.focus == len(f.inputs)-1 }

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

// values returns the trimmed field contents; secrets are left as typed.
func (f form) values() []string {
	out := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		if in.EchoMode == textinput.EchoPassword {
			out[i] = in.Value()
			continue
		}
		out[i] = strings.TrimSpace(in.Value())
	}
	return out
}

func (f *form) reset() {
	for i := range f.inputs {
		f.inputs[i].Reset()
		f.inputs[i].Blur()
	}
	f.focus = 0
	f.inputs[0].Focus()
}

func (f form) view(s func(...string) string) string {
	var b strings.Builder
	for i, in := range f.inputs {
		b.WriteString(s(f.labels[i]))
		b.WriteString("\n")
		b.WriteString(in.View())
		b.WriteString("\n\n")
	}
	return b.String()
}
