package config

import "fmt"

// Action identifies one hotkey-driven feature.
type Action int

const (
	ActionConvertLastWord Action = iota + 1
	ActionPauseToggle
	ActionConvertSelection
	ActionSwitchLayout
)

// actionIDBase keeps action ids in the range used for RegisterHotKey ids.
const actionIDBase = 20000

// Action names as used in config files, validation messages and the CLI.
const (
	NameConvertLastWord  = "convert_last_word"
	NamePause            = "pause"
	NameConvertSelection = "convert_selection"
	NameSwitchLayout     = "switch_layout"
)

// Actions lists every action in declaration order.
func Actions() []Action {
	return []Action{ActionConvertLastWord, ActionPauseToggle, ActionConvertSelection, ActionSwitchLayout}
}

// ID returns the stable numeric id posted to the main loop.
func (a Action) ID() int32 {
	return actionIDBase + int32(a)
}

func (a Action) String() string {
	switch a {
	case ActionConvertLastWord:
		return NameConvertLastWord
	case ActionPauseToggle:
		return NamePause
	case ActionConvertSelection:
		return NameConvertSelection
	case ActionSwitchLayout:
		return NameSwitchLayout
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ParseAction resolves an action name.
func ParseAction(name string) (Action, error) {
	for _, a := range Actions() {
		if a.String() == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", name)
}
