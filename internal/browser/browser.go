// Package browser extracts the Airflow web session cookie from local
// browser profiles.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/browserutils/kooky"
	_ "github.com/browserutils/kooky/browser/chrome"
	_ "github.com/browserutils/kooky/browser/chromium"
	_ "github.com/browserutils/kooky/browser/edge"
	_ "github.com/browserutils/kooky/browser/firefox"
	_ "github.com/browserutils/kooky/browser/opera"

	"github.com/diogo/dagchat/internal/config"
)

// SupportedBrowser represents a supported browser type
type SupportedBrowser string

const (
	BrowserAuto     SupportedBrowser = "auto"
	BrowserChrome   SupportedBrowser = "chrome"
	BrowserChromium SupportedBrowser = "chromium"
	BrowserFirefox  SupportedBrowser = "firefox"
	BrowserEdge     SupportedBrowser = "edge"
	BrowserOpera    SupportedBrowser = "opera"
)

// AllSupportedBrowsers returns a list of all supported browsers
func AllSupportedBrowsers() []SupportedBrowser {
	return []SupportedBrowser{
		BrowserChrome,
		BrowserChromium,
		BrowserFirefox,
		BrowserEdge,
		BrowserOpera,
	}
}

// String returns the string representation of the browser
func (b SupportedBrowser) String() string {
	return string(b)
}

// ParseBrowser parses a browser string into a SupportedBrowser
func ParseBrowser(s string) (SupportedBrowser, error) {
	switch strings.ToLower(s) {
	case "auto", "":
		return BrowserAuto, nil
	case "chrome", "google-chrome":
		return BrowserChrome, nil
	case "chromium":
		return BrowserChromium, nil
	case "firefox", "mozilla", "mozilla-firefox":
		return BrowserFirefox, nil
	case "edge", "microsoft-edge", "msedge":
		return BrowserEdge, nil
	case "opera":
		return BrowserOpera, nil
	default:
		return "", fmt.Errorf("unsupported browser: %s. Supported: chrome, chromium, firefox, edge, opera", s)
	}
}

// ExtractResult contains the result of cookie extraction
type ExtractResult struct {
	Cookies     *config.Cookies
	BrowserName string
	Host        string
}

// Target identifies the cookie to extract.
type Target struct {
	// ServerURL is the Airflow webserver the cookie was issued by.
	ServerURL string
	// CookieName defaults to config.DefaultSessionCookie.
	CookieName string
}

func (t Target) host() (string, error) {
	u, err := url.Parse(t.ServerURL)
	if err != nil || u.Hostname() == "" {
		return "", fmt.Errorf("invalid server URL %q", t.ServerURL)
	}
	return strings.ToLower(u.Hostname()), nil
}

func (t Target) cookieName() string {
	if t.CookieName == "" {
		return config.DefaultSessionCookie
	}
	return t.CookieName
}

// ExtractSessionCookie extracts the Airflow web session cookie for the
// target server from a browser's cookie store.
func ExtractSessionCookie(ctx context.Context, browser SupportedBrowser, target Target) (*ExtractResult, error) {
	host, err := target.host()
	if err != nil {
		return nil, err
	}
	if browser == BrowserAuto {
		return extractFromAllBrowsers(ctx, host, target.cookieName())
	}
	return extractFromBrowser(ctx, browser, host, target.cookieName())
}

// extractFromAllBrowsers tries to extract cookies from all supported browsers
func extractFromAllBrowsers(ctx context.Context, host, name string) (*ExtractResult, error) {
	// Try browsers in order of popularity
	browsers := []SupportedBrowser{
		BrowserChrome,
		BrowserFirefox,
		BrowserEdge,
		BrowserChromium,
		BrowserOpera,
	}

	var lastErr error
	for _, browser := range browsers {
		result, err := extractFromBrowser(ctx, browser, host, name)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return nil, fmt.Errorf("could not find %s cookie for %s in any browser: %w", name, host, lastErr)
	}
	return nil, fmt.Errorf("could not find %s cookie for %s in any supported browser", name, host)
}

// extractFromBrowser tries all profiles of the browser until one holds
// the cookie.
func extractFromBrowser(ctx context.Context, browser SupportedBrowser, host, name string) (*ExtractResult, error) {
	stores := kooky.FindAllCookieStores(ctx)

	var matchingStores []kooky.CookieStore
	var browserName string

	for _, store := range stores {
		storeName := store.Browser()
		if matchesBrowser(storeName, browser) {
			matchingStores = append(matchingStores, store)
			if browserName == "" {
				browserName = storeName
			}
		} else {
			store.Close()
		}
	}

	if len(matchingStores) == 0 {
		return nil, fmt.Errorf("browser %s not found or no cookie store available", browser)
	}
	defer func() {
		for _, s := range matchingStores {
			s.Close()
		}
	}()

	var lastErr error
	for _, store := range matchingStores {
		result, err := extractCookiesFromStore(ctx, store, browserName, store.Profile(), host, name)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// matchesBrowser checks if a browser name matches the target browser
func matchesBrowser(browserName string, target SupportedBrowser) bool {
	browserName = strings.ToLower(browserName)

	switch target {
	case BrowserChrome:
		return strings.Contains(browserName, "chrome") && !strings.Contains(browserName, "chromium")
	case BrowserChromium:
		return strings.Contains(browserName, "chromium")
	case BrowserFirefox:
		return strings.Contains(browserName, "firefox")
	case BrowserEdge:
		return strings.Contains(browserName, "edge")
	case BrowserOpera:
		return strings.Contains(browserName, "opera")
	default:
		return false
	}
}

// domainMatches reports whether a cookie issued for domain is sent to
// host. Leading dots mark domain cookies that also cover subdomains.
func domainMatches(domain, host string) bool {
	domain = strings.ToLower(domain)
	if domain == "" {
		return false
	}
	if domain == host {
		return true
	}
	if strings.HasPrefix(domain, ".") {
		bare := domain[1:]
		return host == bare || strings.HasSuffix(host, domain)
	}
	return false
}

// pickCookie returns the value of the named cookie for host. Host-only
// cookies win over domain cookies.
func pickCookie(cookies []*kooky.Cookie, host, name string) string {
	var value string
	for _, c := range cookies {
		if c == nil || c.Name != name || !domainMatches(c.Domain, host) {
			continue
		}
		if strings.EqualFold(c.Domain, host) {
			return c.Value
		}
		if value == "" {
			value = c.Value
		}
	}
	return value
}

// extractCookiesFromStore extracts the session cookie from one store
func extractCookiesFromStore(ctx context.Context, store kooky.CookieStore, browserName, profile, host, name string) (*ExtractResult, error) {
	var matched []*kooky.Cookie
	for cookie := range store.TraverseCookies(kooky.Valid, kooky.DomainContains(host)).OnlyCookies() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		matched = append(matched, cookie)
	}

	displayName := browserName
	if profile != "" {
		displayName = fmt.Sprintf("%s (profile: %s)", browserName, profile)
	}

	value := pickCookie(matched, host, name)
	if value == "" {
		return nil, fmt.Errorf("cookie %s not found for %s in %s. Please log into the Airflow UI first", name, host, displayName)
	}

	return &ExtractResult{
		Cookies:     config.NewCookies(name, value),
		BrowserName: displayName,
		Host:        host,
	}, nil
}

// ListAvailableBrowsers returns a list of browsers that have cookie stores
func ListAvailableBrowsers() []string {
	ctx := context.Background()
	stores := kooky.FindAllCookieStores(ctx)
	var browsers []string

	seen := make(map[string]bool)
	for _, store := range stores {
		name := store.Browser()
		if !seen[name] {
			browsers = append(browsers, name)
			seen[name] = true
		}
		store.Close()
	}

	return browsers
}
