package theme

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/debemdeboas/the-press/internal/cache"
	"github.com/debemdeboas/the-press/internal/config"
)

func TestGenerateSyntaxCSS(t *testing.T) {
	testCases := []struct {
		name  string
		theme string
	}{
		{name: "Valid Theme - Monokai", theme: "monokai"},
		{name: "Valid Theme - Github", theme: "github"},
		{name: "Non-existent Theme - Fallback", theme: "nonexistent-theme-12345"},
		{name: "Empty Theme Name", theme: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			css1 := GenerateSyntaxCSS(tc.theme)
			if !strings.Contains(string(css1), ".chroma") {
				t.Errorf("Expected CSS to contain '.chroma' class")
			}

			cachedCSS, found := cache.GetSyntaxCSS(tc.theme)
			if !found || cachedCSS != css1 {
				t.Errorf("Expected generated CSS to be cached")
			}

			if css2 := GenerateSyntaxCSS(tc.theme); css1 != css2 {
				t.Errorf("Expected second call to return identical CSS from cache")
			}
		})
	}
}

func TestGetSyntaxThemes(t *testing.T) {
	themes := GetSyntaxThemes()
	if !slices.IsSorted(themes) {
		t.Error("Themes are not sorted")
	}
	for _, theme := range []string{"github", "monokai", "gruvbox"} {
		if !slices.Contains(themes, theme) {
			t.Errorf("Expected common theme %s to be available", theme)
		}
	}
}

func TestGetSyntaxThemeFromRequest(t *testing.T) {
	original := config.AppConfig
	defer func() { config.AppConfig = original }()
	config.AppConfig = config.Default()
	config.AppConfig.Theme.SyntaxHighlighting.Default = "dracula"

	testCases := []struct {
		name     string
		query    string
		cookie   string
		expected string
	}{
		{name: "No preference uses default", expected: "dracula"},
		{name: "Cookie", cookie: "monokai", expected: "monokai"},
		{name: "Query beats cookie", query: "github", cookie: "monokai", expected: "github"},
		{name: "Unknown cookie falls back", cookie: "no-such-style", expected: "dracula"},
		{name: "Unknown query uses cookie", query: "no-such-style", cookie: "monokai", expected: "monokai"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			target := "/"
			if tc.query != "" {
				target += "?theme=" + tc.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: config.CookieSyntaxTheme, Value: tc.cookie})
			}

			if got := GetSyntaxThemeFromRequest(req); got != tc.expected {
				t.Errorf("Expected syntax theme %s, got %s", tc.expected, got)
			}
		})
	}

	t.Run("Missing config", func(t *testing.T) {
		config.AppConfig = nil
		if got := GetDefaultSyntaxTheme(); got != "gruvbox" {
			t.Errorf("Expected gruvbox, got %s", got)
		}
	})
}

func BenchmarkGenerateSyntaxCSS(b *testing.B) {
	GenerateSyntaxCSS("monokai")
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		GenerateSyntaxCSS("monokai")
	}
}
