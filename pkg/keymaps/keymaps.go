package keymaps

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type KeyDefinition struct {
	DefaultKey string
	Help       string
}

var KeyDefinitions = map[string]KeyDefinition{
	"ShowHelp":          {"ctrl+b", "show/hide commands"},
	"QuitApp":           {"q", "quit"},
	"AddTask":           {"a", "add task"},
	"EditTask":          {"e", "edit task"},
	"DeleteTask":        {"d", "delete task"},
	"AdvanceStatus":     {"space", "advance task status"},
	"FilterTasks":       {"f", "filter tasks"},
	"CycleFilterStatus": {"s", "cycle status filter"},
	"ClearFilter":       {"c", "clear filter"},
	"Refresh":           {"r", "reload tasks"},
	"Logout":            {"ctrl+l", "log out"},
}

type KeyMap struct {
	ShowHelp          key.Binding
	QuitApp           key.Binding
	AddTask           key.Binding
	EditTask          key.Binding
	DeleteTask        key.Binding
	AdvanceStatus     key.Binding
	FilterTasks       key.Binding
	CycleFilterStatus key.Binding
	ClearFilter       key.Binding
	Refresh           key.Binding
	Logout            key.Binding
}

// BuildKeyMap applies configOverrides on top of the defaults.
// Action names match case-insensitively since viper lowercases config keys.
func BuildKeyMap(configOverrides map[string]string) KeyMap {
	overrides := make(map[string]string, len(configOverrides))
	for action, keys := range configOverrides {
		overrides[strings.ToLower(action)] = keys
	}

	km := KeyMap{}
	for action, def := range KeyDefinitions {
		keyStr := def.DefaultKey
		if override, exists := overrides[strings.ToLower(action)]; exists && override != "" {
			keyStr = override
		}

		binding := parseKeyBinding(keyStr, def.DefaultKey, def.Help)
		switch action {
		case "ShowHelp":
			km.ShowHelp = binding
		case "QuitApp":
			km.QuitApp = binding
		case "AddTask":
			km.AddTask = binding
		case "EditTask":
			km.EditTask = binding
		case "DeleteTask":
			km.DeleteTask = binding
		case "AdvanceStatus":
			km.AdvanceStatus = binding
		case "FilterTasks":
			km.FilterTasks = binding
		case "CycleFilterStatus":
			km.CycleFilterStatus = binding
		case "ClearFilter":
			km.ClearFilter = binding
		case "Refresh":
			km.Refresh = binding
		case "Logout":
			km.Logout = binding
		}
	}
	return km
}

func parseKeyBinding(keyStr, defaultKey, helpText string) key.Binding {
	// Handle multiple keys separated by commas
	var keys []string
	for _, k := range strings.Split(keyStr, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		keys = []string{defaultKey}
	}

	matches := keys
	for _, k := range keys {
		// the space bar reports itself as " "
		if k == "space" {
			matches = append(append([]string{}, keys...), " ")
			break
		}
	}

	return key.NewBinding(
		key.WithKeys(matches...),
		key.WithHelp(keys[0], helpText),
	)
}

// GetDefaultKeyMappings returns the default key mappings for configuration
func GetDefaultKeyMappings() map[string]string {
	keyMappings := make(map[string]string)
	for action, def := range KeyDefinitions {
		keyMappings[action] = def.DefaultKey
	}
	return keyMappings
}
