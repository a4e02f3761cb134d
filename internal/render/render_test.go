package render

import (
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/diogo/dagchat/internal/config"
)

func TestMarkdown(t *testing.T) {
	ClearCache()
	defer ClearCache()

	out, err := Markdown("# Daily ETL\n\nLoad **orders** into the warehouse.", DefaultOptions().WithStyle("notty"))
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	if !strings.Contains(out, "Daily ETL") {
		t.Errorf("output missing heading: %q", out)
	}
	if CacheSize() != 1 {
		t.Errorf("CacheSize = %d, want 1", CacheSize())
	}
}

func TestMarkdownPoolConcurrency(t *testing.T) {
	ClearCache()
	defer ClearCache()

	opts := DefaultOptions().WithStyle("notty")
	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := Markdown("- a\n- b", opts); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent render: %v", err)
	}
	if CacheSize() != 1 {
		t.Errorf("CacheSize = %d, want 1", CacheSize())
	}
}

func TestOptionsFromConfig(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "")
	os.Unsetenv("GLAMOUR_STYLE")

	md := config.MarkdownConfig{Style: "light", EnableEmoji: true, PreserveNewLines: false, TableWrap: true}
	opts := OptionsFromConfig(md, 100)

	if opts.Style != "light" || opts.Width != 100 || !opts.EnableEmoji || opts.PreserveNewLines {
		t.Errorf("unexpected options: %+v", opts)
	}

	if got := OptionsFromConfig(config.MarkdownConfig{}, 0); got.Style != "dark" || got.Width != 80 {
		t.Errorf("zero config should keep defaults, got %+v", got)
	}
}

func TestOptionsFromConfigEnvOverride(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "dracula")

	opts := OptionsFromConfig(config.MarkdownConfig{Style: "light"}, 0)
	if opts.Style != "dracula" {
		t.Errorf("Style = %q, want dracula", opts.Style)
	}
}

func TestTUIThemes(t *testing.T) {
	names := TUIThemeNames()
	if len(names) != 3 {
		t.Fatalf("got %d themes", len(names))
	}
	for _, name := range names {
		theme, ok := GetTUIThemeByName(name)
		if !ok {
			t.Fatalf("theme %q not found", name)
		}
		if theme.Name != name || theme.Primary == "" || theme.Danger == "" || theme.Warning == "" {
			t.Errorf("theme %q incomplete: %+v", name, theme)
		}
	}

	if TUIThemeOrDefault("nope").Name != DefaultTUITheme {
		t.Error("unknown theme should fall back to default")
	}
}
