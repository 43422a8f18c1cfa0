package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config exposes the settings shared by the CLI and the terminal UI.
type Config interface {
	BasePath() string
	APIURL() string
	LogFile() string
	LogLevel() string
	SidebarBreakpoint() int
	LoginAddr() string
	AuthURL() string
	CalendarID() string
	CalendarCredentials() string
	CalendarToken() string
}

const (
	DefaultAPIURL            = "http://localhost:8080/api/v1"
	DefaultSidebarBreakpoint = 100
)

// LoadConfig reads .planner.yaml from $PLANNER_CONFIG_PATH, the working
// directory or ~/.config/planner, layered under PLANNER_* environment
// variables. A missing config file is not an error.
func LoadConfig() (Config, error) {
	v := viper.New()
	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("path", "~/.config/planner/session")
	v.SetDefault("log_file", "~/.config/planner/planner.log")
	v.SetDefault("log_level", "info")
	v.SetDefault("layout.sidebar_breakpoint", DefaultSidebarBreakpoint)
	v.SetDefault("login.addr", "127.0.0.1:5173")
	v.SetDefault("login.auth_url", "")
	v.SetDefault("calendar.id", "primary")
	v.SetDefault("calendar.credentials", "~/.config/planner/credentials.json")
	v.SetDefault("calendar.token", "~/.config/planner/calendar-token.json")

	v.SetConfigName(".planner") // .yaml is implicit
	v.SetEnvPrefix("PLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("PLANNER_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "planner"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("store: read config: %w", err)
		}
	}

	return &fileConfig{
		Path:              expandHome(v.GetString("path")),
		API:               strings.TrimRight(v.GetString("api_url"), "/"),
		Log:               expandHome(v.GetString("log_file")),
		Level:             v.GetString("log_level"),
		Breakpoint:        v.GetInt("layout.sidebar_breakpoint"),
		Login:             v.GetString("login.addr"),
		Auth:              v.GetString("login.auth_url"),
		Calendar:          v.GetString("calendar.id"),
		CalendarCredsPath: expandHome(v.GetString("calendar.credentials")),
		CalendarTokenPath: expandHome(v.GetString("calendar.token")),
	}, nil
}

type fileConfig struct {
	Path              string `json:"path"`
	API               string `json:"api_url"`
	Log               string `json:"log_file"`
	Level             string `json:"log_level"`
	Breakpoint        int    `json:"sidebar_breakpoint"`
	Login             string `json:"login_addr"`
	Auth              string `json:"auth_url"`
	Calendar          string `json:"calendar_id"`
	CalendarCredsPath string `json:"calendar_credentials"`
	CalendarTokenPath string `json:"calendar_token"`
}

func (f *fileConfig) BasePath() string { return f.Path }
func (f *fileConfig) APIURL() string   { return f.API }
func (f *fileConfig) LogFile() string  { return f.Log }
func (f *fileConfig) LogLevel() string { return f.Level }

func (f *fileConfig) SidebarBreakpoint() int {
	if f.Breakpoint <= 0 {
		return DefaultSidebarBreakpoint
	}
	return f.Breakpoint
}

func (f *fileConfig) LoginAddr() string { return f.Login }

// AuthURL defaults to the backend's Google login route derived from the API
// URL.
func (f *fileConfig) AuthURL() string {
	if f.Auth != "" {
		return f.Auth
	}
	base := strings.TrimSuffix(f.API, "/api/v1")
	return base + "/auth/google"
}

func (f *fileConfig) CalendarID() string          { return f.Calendar }
func (f *fileConfig) CalendarCredentials() string { return f.CalendarCredsPath }
func (f *fileConfig) CalendarToken() string       { return f.CalendarTokenPath }

// expandHome resolves a leading ~. Paths homedir cannot expand are kept as
// written.
func expandHome(p string) string {
	if expanded, err := homedir.Expand(p); err == nil {
		return expanded
	}
	return p
}
