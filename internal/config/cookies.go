package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	apierrors "github.com/diogo/dagchat/internal/errors"
)

// DefaultSessionCookie is the Flask session cookie name used by the
// Airflow webserver.
const DefaultSessionCookie = "session"

// Cookies holds the web session cookie sent with every API request. The
// plugin keys the chat session on it.
type Cookies struct {
	mu    sync.RWMutex `json:"-"`
	Name  string       `json:"name"`
	Value string       `json:"value"`
}

// NewCookies returns a cookie set with the given name (DefaultSessionCookie
// when empty) and value.
func NewCookies(name, value string) *Cookies {
	if name == "" {
		name = DefaultSessionCookie
	}
	return &Cookies{Name: name, Value: value}
}

// Snapshot returns name and value atomically
func (c *Cookies) Snapshot() (name, value string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Name, c.Value
}

// SetValue replaces the cookie value (thread-safe)
func (c *Cookies) SetValue(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Value = value
}

// CookieListItem represents a cookie in browser export format
type CookieListItem struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain,omitempty"`
}

// LoadCookies loads cookies from the cookies file
func LoadCookies() (*Cookies, error) {
	cookiesPath, err := GetCookiesPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(cookiesPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: import one with 'dagchat import-cookies <file>'", apierrors.ErrNoCookies)
		}
		return nil, fmt.Errorf("failed to read cookies file: %w", err)
	}

	return parseCookies(data, "")
}

// ResolveCookies returns the session cookie from DAGCHAT_SESSION_COOKIE
// when set, otherwise from the cookies file.
func ResolveCookies() (*Cookies, error) {
	if v := os.Getenv(EnvSessionCookie); v != "" {
		return NewCookies(DefaultSessionCookie, v), nil
	}
	return LoadCookies()
}

// parseCookies accepts {"name": ..., "value": ...}, a dict {cookie: value}
// or a browser export list [{name, value}]. name selects the cookie to
// pick from dicts and lists; empty means DefaultSessionCookie.
func parseCookies(data []byte, name string) (*Cookies, error) {
	if name == "" {
		name = DefaultSessionCookie
	}

	var single CookieListItem
	if err := json.Unmarshal(data, &single); err == nil && single.Name != "" && single.Value != "" {
		return NewCookies(single.Name, single.Value), nil
	}

	var dict map[string]string
	if err := json.Unmarshal(data, &dict); err == nil {
		value, ok := dict[name]
		if !ok || value == "" {
			return nil, fmt.Errorf("missing required cookie: %s", name)
		}
		return NewCookies(name, value), nil
	}

	var list []CookieListItem
	if err := json.Unmarshal(data, &list); err == nil {
		for _, item := range list {
			if item.Name == name && item.Value != "" {
				return NewCookies(name, item.Value), nil
			}
		}
		return nil, fmt.Errorf("missing required cookie: %s", name)
	}

	return nil, fmt.Errorf("invalid cookies format: expected {name, value}, list [{name, value}] or dict {name: value}")
}

// SaveCookies saves cookies to the cookies file
func SaveCookies(cookies *Cookies) error {
	if err := ValidateCookies(cookies); err != nil {
		return err
	}
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	name, value := cookies.Snapshot()
	data, err := json.MarshalIndent(CookieListItem{Name: name, Value: value}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cookies: %w", err)
	}

	// Owner read/write only
	if err := os.WriteFile(filepath.Join(configDir, "cookies.json"), data, 0o600); err != nil {
		return fmt.Errorf("failed to write cookies file: %w", err)
	}
	return nil
}

// ImportCookies imports the named cookie from a source file
func ImportCookies(sourcePath, name string) error {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("source file not found: %s", sourcePath)
		}
		return fmt.Errorf("could not read file: %w", err)
	}

	cookies, err := parseCookies(data, name)
	if err != nil {
		return err
	}
	return SaveCookies(cookies)
}

// ValidateCookies checks if cookies are usable
func ValidateCookies(cookies *Cookies) error {
	if cookies == nil {
		return fmt.Errorf("cookies are nil")
	}
	name, value := cookies.Snapshot()
	if name == "" || value == "" {
		return fmt.Errorf("missing required cookie: %s", DefaultSessionCookie)
	}
	return nil
}
