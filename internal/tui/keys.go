package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle       key.Binding
	Pause        key.Binding
	Reset        key.Binding
	NextDuration key.Binding
	PrevDuration key.Binding
	NextVoice    key.Binding
	PrevVoice    key.Binding
	Mode         key.Binding
	Test         key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Toggle:       key.NewBinding(key.WithKeys(" ", "s"), key.WithHelp("space/s", "start/pause")),
		Pause:        key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Reset:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		NextDuration: key.NewBinding(key.WithKeys("d"), key.WithHelp("d/D", "duration")),
		PrevDuration: key.NewBinding(key.WithKeys("D")),
		NextVoice:    key.NewBinding(key.WithKeys("v"), key.WithHelp("v/V", "voice")),
		PrevVoice:    key.NewBinding(key.WithKeys("V")),
		Mode:         key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "count up/down")),
		Test:         key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "test voice")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Reset, k.NextDuration, k.NextVoice, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Pause, k.Reset},
		{k.NextDuration, k.Mode},
		{k.NextVoice, k.Test},
		{k.Help, k.Quit},
	}
}
