package commands

import (
	"context"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"golang.org/x/term"

	"github.com/diogo/dagchat/internal/api"
	"github.com/diogo/dagchat/internal/browser"
	"github.com/diogo/dagchat/internal/chat"
	"github.com/diogo/dagchat/internal/config"
	"github.com/diogo/dagchat/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(ctx context.Context, backend chat.Backend, opts tui.Options) error
}

// CookieExtractor reads the Airflow session cookie from a browser store.
type CookieExtractor func(ctx context.Context, b browser.SupportedBrowser, target browser.Target) (*browser.ExtractResult, error)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// TUI runs the full-screen chat.
	TUI TUIInterface

	// ClientOptions are appended to the options built from config.
	ClientOptions []api.ClientOption

	// LoadCookies resolves the session cookie for API requests.
	LoadCookies func() (*config.Cookies, error)

	// ExtractCookies reads cookies from a local browser.
	ExtractCookies CookieExtractor

	// Clipboard receives copied replies.
	Clipboard func(string) error

	// Interactive reports whether stdin and stdout are a terminal.
	Interactive func() bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

// RunChat implements TUIInterface
func (d *DefaultTUI) RunChat(ctx context.Context, backend chat.Backend, opts tui.Options) error {
	return tui.Run(ctx, backend, opts)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		TUI:            &DefaultTUI{},
		LoadCookies:    config.ResolveCookies,
		ExtractCookies: browser.ExtractSessionCookie,
		Clipboard:      clipboard.WriteAll,
		Interactive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		},
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}
