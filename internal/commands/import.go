package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/dagchat/internal/browser"
	"github.com/diogo/dagchat/internal/config"
)

func (a *app) newImportCookiesCmd() *cobra.Command {
	var (
		browserName string
		cookieName  string
	)

	cmd := &cobra.Command{
		Use:   "import-cookies [path]",
		Short: "Import the Airflow session cookie",
		Long: `Import the Airflow web session cookie from a JSON file or a browser.

The file may contain a single object {"name": "session", "value": "..."},
a list of such objects, or a dictionary {"session": "..."}.

With --browser the cookie is read from the browser's cookie store for the
configured server_url host (auto tries every supported browser).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case browserName != "":
				return a.runImportFromBrowser(cmd, browserName, cookieName)
			case len(args) == 1:
				return a.runImportCookies(args[0], cookieName)
			}
			return fmt.Errorf("pass a cookies file or --browser (%s)", strings.Join(browser.ListAvailableBrowsers(), ", "))
		},
	}

	cmd.Flags().StringVarP(&browserName, "browser", "b", "", "Read the cookie from a browser (auto, chrome, firefox, edge, chromium, opera)")
	cmd.Flags().StringVar(&cookieName, "cookie-name", config.DefaultSessionCookie, "Session cookie name")

	return cmd
}

func (a *app) runImportCookies(sourcePath, name string) error {
	if err := config.ImportCookies(sourcePath, name); err != nil {
		return fmt.Errorf("failed to import cookies: %w", err)
	}

	cookiesPath, _ := config.GetCookiesPath()
	fmt.Fprintf(a.deps.Stdout, "Cookies imported successfully to %s\n", cookiesPath)
	return nil
}

func (a *app) runImportFromBrowser(cmd *cobra.Command, browserName, cookieName string) error {
	b, err := browser.ParseBrowser(browserName)
	if err != nil {
		return err
	}

	target := browser.Target{ServerURL: a.cfg.ServerURL, CookieName: cookieName}
	result, err := a.deps.ExtractCookies(cmd.Context(), b, target)
	if err != nil {
		return fmt.Errorf("failed to extract cookies: %w", err)
	}

	if err := config.SaveCookies(result.Cookies); err != nil {
		return fmt.Errorf("failed to save cookies: %w", err)
	}

	cookiesPath, _ := config.GetCookiesPath()
	fmt.Fprintf(a.deps.Stdout, "Imported %s cookie for %s from %s to %s\n",
		cookieName, result.Host, result.BrowserName, cookiesPath)
	return nil
}
