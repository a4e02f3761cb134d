package browser

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/browserutils/kooky"
)

func TestParseBrowser(t *testing.T) {
	tests := []struct {
		input    string
		expected SupportedBrowser
		wantErr  bool
	}{
		{"auto", BrowserAuto, false},
		{"", BrowserAuto, false},
		{"chrome", BrowserChrome, false},
		{"Chrome", BrowserChrome, false},
		{"CHROME", BrowserChrome, false},
		{"google-chrome", BrowserChrome, false},
		{"chromium", BrowserChromium, false},
		{"firefox", BrowserFirefox, false},
		{"Firefox", BrowserFirefox, false},
		{"mozilla", BrowserFirefox, false},
		{"mozilla-firefox", BrowserFirefox, false},
		{"edge", BrowserEdge, false},
		{"microsoft-edge", BrowserEdge, false},
		{"msedge", BrowserEdge, false},
		{"opera", BrowserOpera, false},
		{"invalid", "", true},
		{"safari", "", true}, // Not supported
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseBrowser(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseBrowser(%q) expected error, got nil", tt.input)
				}
			} else {
				if err != nil {
					t.Errorf("ParseBrowser(%q) unexpected error: %v", tt.input, err)
				}
				if result != tt.expected {
					t.Errorf("ParseBrowser(%q) = %v, want %v", tt.input, result, tt.expected)
				}
			}
		})
	}
}

func TestSupportedBrowserString(t *testing.T) {
	tests := []struct {
		browser  SupportedBrowser
		expected string
	}{
		{BrowserAuto, "auto"},
		{BrowserChrome, "chrome"},
		{BrowserChromium, "chromium"},
		{BrowserFirefox, "firefox"},
		{BrowserEdge, "edge"},
		{BrowserOpera, "opera"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if result := tt.browser.String(); result != tt.expected {
				t.Errorf("SupportedBrowser.String() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestAllSupportedBrowsers(t *testing.T) {
	browsers := AllSupportedBrowsers()

	if len(browsers) == 0 {
		t.Error("AllSupportedBrowsers() returned empty slice")
	}

	// Check that all expected browsers are present
	expected := map[SupportedBrowser]bool{
		BrowserChrome:   true,
		BrowserChromium: true,
		BrowserFirefox:  true,
		BrowserEdge:     true,
		BrowserOpera:    true,
	}

	for _, browser := range browsers {
		if !expected[browser] {
			t.Errorf("Unexpected browser in AllSupportedBrowsers(): %v", browser)
		}
		delete(expected, browser)
	}

	if len(expected) > 0 {
		t.Errorf("Missing browsers in AllSupportedBrowsers(): %v", expected)
	}
}

func TestMatchesBrowser(t *testing.T) {
	tests := []struct {
		browserName string
		target      SupportedBrowser
		expected    bool
	}{
		{"chrome", BrowserChrome, true},
		{"Google Chrome", BrowserChrome, true},
		{"chromium", BrowserChrome, false}, // chromium should not match chrome
		{"chromium", BrowserChromium, true},
		{"Chromium", BrowserChromium, true},
		{"firefox", BrowserFirefox, true},
		{"Firefox", BrowserFirefox, true},
		{"Mozilla Firefox", BrowserFirefox, true},
		{"edge", BrowserEdge, true},
		{"Microsoft Edge", BrowserEdge, true},
		{"opera", BrowserOpera, true},
		{"Opera", BrowserOpera, true},
		{"safari", BrowserChrome, false},
		{"", BrowserChrome, false},
	}

	for _, tt := range tests {
		t.Run(tt.browserName+"_"+tt.target.String(), func(t *testing.T) {
			result := matchesBrowser(tt.browserName, tt.target)
			if result != tt.expected {
				t.Errorf("matchesBrowser(%q, %v) = %v, want %v", tt.browserName, tt.target, result, tt.expected)
			}
		})
	}
}

func TestDomainMatches(t *testing.T) {
	tests := []struct {
		domain string
		host   string
		want   bool
	}{
		{"airflow.example.com", "airflow.example.com", true},
		{"AIRFLOW.example.com", "airflow.example.com", true},
		{".example.com", "airflow.example.com", true},
		{".example.com", "example.com", true},
		{"example.com", "airflow.example.com", false},
		{".other.com", "airflow.example.com", false},
		{".ample.com", "example.com", false},
		{"", "airflow.example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.domain+"_"+tt.host, func(t *testing.T) {
			if got := domainMatches(tt.domain, tt.host); got != tt.want {
				t.Errorf("domainMatches(%q, %q) = %v, want %v", tt.domain, tt.host, got, tt.want)
			}
		})
	}
}

func cookie(name, value, domain string) *kooky.Cookie {
	c := &kooky.Cookie{}
	c.Name = name
	c.Value = value
	c.Domain = domain
	return c
}

func TestPickCookie(t *testing.T) {
	host := "airflow.example.com"

	t.Run("host cookie wins", func(t *testing.T) {
		cookies := []*kooky.Cookie{
			cookie("session", "wide", ".example.com"),
			cookie("session", "exact", "airflow.example.com"),
		}
		if got := pickCookie(cookies, host, "session"); got != "exact" {
			t.Errorf("pickCookie = %q, want exact", got)
		}
	})

	t.Run("domain cookie fallback", func(t *testing.T) {
		cookies := []*kooky.Cookie{
			cookie("_ga", "x", ".example.com"),
			cookie("session", "wide", ".example.com"),
		}
		if got := pickCookie(cookies, host, "session"); got != "wide" {
			t.Errorf("pickCookie = %q, want wide", got)
		}
	})

	t.Run("other host ignored", func(t *testing.T) {
		cookies := []*kooky.Cookie{
			cookie("session", "foreign", "airflow.example.com.evil.io"),
			nil,
		}
		if got := pickCookie(cookies, host, "session"); got != "" {
			t.Errorf("pickCookie = %q, want empty", got)
		}
	})
}

func TestTargetHost(t *testing.T) {
	host, err := Target{ServerURL: "https://Airflow.Example.com:8443/home"}.host()
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	if host != "airflow.example.com" {
		t.Errorf("host = %q", host)
	}

	if _, err := (Target{ServerURL: "not a url"}).host(); err == nil {
		t.Error("expected error for URL without host")
	}
	if (Target{}).cookieName() != "session" {
		t.Error("default cookie name should be session")
	}
}

func TestListAvailableBrowsers(t *testing.T) {
	// Result depends on the browsers installed on the machine
	browsers := ListAvailableBrowsers()
	t.Logf("Found %d browsers: %v", len(browsers), browsers)
}

func TestExtractSessionCookie_InvalidBrowser(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := ExtractSessionCookie(ctx, "nonexistent", Target{ServerURL: "http://localhost:8080"})
	if err == nil {
		t.Error("ExtractSessionCookie with nonexistent browser should return error")
	}
}

func TestExtractSessionCookie_InvalidURL(t *testing.T) {
	_, err := ExtractSessionCookie(context.Background(), BrowserChrome, Target{ServerURL: "::"})
	if err == nil || !strings.Contains(err.Error(), "invalid server URL") {
		t.Errorf("err = %v, want invalid server URL", err)
	}
}

func TestExtractCookiesFromStore(t *testing.T) {
	ctx := context.Background()

	stores := kooky.FindAllCookieStores(ctx)
	if len(stores) == 0 {
		t.Skip("No cookie stores available for testing")
	}
	defer func() {
		for _, store := range stores {
			_ = store.Close()
		}
	}()

	store := stores[0]
	result, err := extractCookiesFromStore(ctx, store, store.Browser(), store.Profile(), "airflow.invalid", "session")
	if err == nil {
		t.Fatalf("unexpected cookie for airflow.invalid: %+v", result)
	}
	if !strings.Contains(err.Error(), "session") {
		t.Errorf("error should name the cookie, got: %v", err)
	}
}
