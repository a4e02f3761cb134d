package commands

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/diogo/dagchat/internal/api"
	"github.com/diogo/dagchat/internal/apitest"
	"github.com/diogo/dagchat/internal/browser"
	"github.com/diogo/dagchat/internal/chat"
	"github.com/diogo/dagchat/internal/config"
	"github.com/diogo/dagchat/internal/tui"
)

type fakeTUI struct {
	calls   int
	opts    tui.Options
	backend chat.Backend
	err     error
}

func (f *fakeTUI) RunChat(ctx context.Context, backend chat.Backend, opts tui.Options) error {
	f.calls++
	f.backend = backend
	f.opts = opts
	return f.err
}

type testEnv struct {
	srv    *apitest.Server
	tui    *fakeTUI
	deps   *Dependencies
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	copied []string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv(config.EnvHome, t.TempDir())
	t.Setenv(config.EnvServerURL, "")
	t.Setenv(config.EnvTimeout, "")
	t.Setenv(config.EnvVerbose, "")
	t.Setenv(config.EnvSessionCookie, "")

	e := &testEnv{
		srv:    apitest.NewServer(),
		tui:    &fakeTUI{},
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	ids := 0
	e.deps = &Dependencies{
		TUI: e.tui,
		ClientOptions: []api.ClientOption{
			api.WithHTTPDoer(apitest.NewDoer(e.srv)),
			api.WithRequestIDs(func() string {
				ids++
				return fmt.Sprintf("req-%d", ids)
			}),
		},
		LoadCookies: func() (*config.Cookies, error) {
			return config.NewCookies(config.DefaultSessionCookie, "cookie-value"), nil
		},
		ExtractCookies: func(ctx context.Context, b browser.SupportedBrowser, target browser.Target) (*browser.ExtractResult, error) {
			return nil, fmt.Errorf("no browser in tests")
		},
		Clipboard: func(s string) error {
			e.copied = append(e.copied, s)
			return nil
		},
		Interactive: func() bool { return false },
		Stdin:       strings.NewReader(""),
		Stdout:      e.stdout,
		Stderr:      e.stderr,
	}
	return e
}

func (e *testEnv) run(args ...string) error {
	cmd := NewRootCmd(e.deps)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}
