package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"taskdesk/pkg/api"
	"taskdesk/pkg/keymaps"
	"taskdesk/pkg/utils"
)

// EnvPrefix namespaces environment overrides, e.g. TASKDESK_API_URL
const EnvPrefix = "TASKDESK"

// Config holds the application configuration
type Config struct {
	APIURL     string            `mapstructure:"api_url"`
	Storage    string            `mapstructure:"storage"`
	LogFile    string            `mapstructure:"log_file"`
	KeyMap     map[string]string `mapstructure:"keymap"`
	StylesFile string            `mapstructure:"styles_file"`
}

// Styles holds the application colors and styling information
type Styles struct {
	// UI element colors
	BorderColor string `json:"border_color"`
	AccentColor string `json:"accent_color"`

	// Text colors
	NormalTextColor   string `json:"normal_text_color"`
	SelectedTextColor string `json:"selected_text_color"`
	SelectedBgColor   string `json:"selected_bg_color"`
	ErrorColor        string `json:"error_color"`
	SuccessColor      string `json:"success_color"`

	// Task status colors
	ToDoColor       string `json:"todo_color"`
	InProgressColor string `json:"in_progress_color"`
	DoneColor       string `json:"done_color"`
}

// DefaultStyles returns the built-in color scheme
func DefaultStyles() Styles {
	return Styles{
		BorderColor:       "240",
		AccentColor:       "205",
		NormalTextColor:   "86",
		SelectedTextColor: "229",
		SelectedBgColor:   "57",
		ErrorColor:        "9",
		SuccessColor:      "10",
		ToDoColor:         "4",
		InProgressColor:   "3",
		DoneColor:         "2",
	}
}

// flagKeys maps command-line flag names to config keys
var flagKeys = map[string]string{
	"api-url":  "api_url",
	"storage":  "storage",
	"log-file": "log_file",
}

// Load resolves the configuration. Later sources win: built-in defaults, the JSON
// config file (created when missing), .env files, TASKDESK_* environment, flags.
func Load(configPath string, flags *pflag.FlagSet) (Config, Styles, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, Styles{}, err
	}

	configDir := filepath.Join(homeDir, ".config", "taskdesk")
	if configPath == "" {
		configPath = filepath.Join(configDir, "config.json")
	}

	v := viper.New()
	v.SetDefault("api_url", api.DefaultBaseURL)
	v.SetDefault("storage", filepath.Join(configDir, "storage.db"))
	v.SetDefault("log_file", filepath.Join(configDir, "taskdesk.log"))
	v.SetDefault("keymap", defaultKeyMap())
	v.SetDefault("styles_file", filepath.Join(configDir, "styles.json"))

	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return Config{}, Styles{}, fmt.Errorf("error reading config %s: %w", configPath, err)
		}

		// If the file doesn't exist, create it with default values
		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return Config{}, Styles{}, err
		}
		if err := v.WriteConfigAs(configPath); err != nil {
			return Config{}, Styles{}, fmt.Errorf("error writing default config: %w", err)
		}
		utils.Log("Created default config at %s", configPath)
	}

	loadDotEnv(".env", filepath.Join(filepath.Dir(configPath), ".env"))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, Styles{}, err
				}
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, Styles{}, fmt.Errorf("error parsing config: %w", err)
	}

	styles, err := loadStyles(config.StylesFile)
	if err != nil {
		return config, styles, fmt.Errorf("error loading styles: %w", err)
	}

	return config, styles, nil
}

// loadDotEnv exports variables from the .env files that exist; already set variables win
func loadDotEnv(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			utils.Log("Ignoring unreadable env file %s: %v", path, err)
			continue
		}
		utils.Log("Loaded environment from %s", path)
	}
}

// loadStyles loads the application styles from the specified path
func loadStyles(stylesPath string) (Styles, error) {
	defaultStyles := DefaultStyles()

	stylesData, err := os.ReadFile(stylesPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return defaultStyles, err
		}

		// If the file doesn't exist, create it with default values
		if err := os.MkdirAll(filepath.Dir(stylesPath), 0755); err != nil {
			return defaultStyles, err
		}

		stylesData, err = json.MarshalIndent(defaultStyles, "", "  ")
		if err != nil {
			return defaultStyles, err
		}

		if err := os.WriteFile(stylesPath, stylesData, 0644); err != nil {
			return defaultStyles, err
		}

		return defaultStyles, nil
	}

	// Missing keys keep their default color
	loadedStyles := defaultStyles
	if err := json.Unmarshal(stylesData, &loadedStyles); err != nil {
		return defaultStyles, err
	}

	return loadedStyles, nil
}

// defaultKeyMap lowercases action names so a fresh default matches what viper reads back from the file
func defaultKeyMap() map[string]string {
	defaults := keymaps.GetDefaultKeyMappings()
	out := make(map[string]string, len(defaults))
	for action, keys := range defaults {
		out[strings.ToLower(action)] = keys
	}
	return out
}
