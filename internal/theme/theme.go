// Package theme resolves the code highlighting style of a request and generates its CSS.
package theme

import (
	"html/template"
	"net/http"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/debemdeboas/the-press/internal/cache"
	"github.com/debemdeboas/the-press/internal/config"
)

const fallbackSyntaxTheme = "gruvbox"

func GetDefaultSyntaxTheme() string {
	if config.AppConfig != nil && config.AppConfig.Theme.SyntaxHighlighting.Default != "" {
		return config.AppConfig.Theme.SyntaxHighlighting.Default
	}
	return fallbackSyntaxTheme
}

// GetSyntaxThemeFromRequest prefers the ?theme= query, then the syntax theme cookie.
// Unknown style names fall back to the configured default.
func GetSyntaxThemeFromRequest(r *http.Request) string {
	if name := r.URL.Query().Get("theme"); IsSyntaxTheme(name) {
		return name
	}
	if cookie, err := r.Cookie(config.CookieSyntaxTheme); err == nil && IsSyntaxTheme(cookie.Value) {
		return cookie.Value
	}
	return GetDefaultSyntaxTheme()
}

func IsSyntaxTheme(name string) bool {
	if name == "" {
		return false
	}
	_, ok := styles.Registry[name]
	return ok
}

func GetSyntaxThemes() []string {
	styleNames := styles.Names()
	slices.Sort(styleNames)
	return styleNames
}

func GetFormatter() *html.Formatter {
	formatter := html.New(
		html.WithClasses(true),
		html.TabWidth(4),
		html.WithLineNumbers(true),
		html.WrapLongLines(true),
	)
	return formatter
}

func GenerateSyntaxCSS(theme string) template.CSS {
	if css, ok := cache.GetSyntaxCSS(theme); ok {
		return css
	}

	var buf strings.Builder
	formatter := GetFormatter()
	style := styles.Get(theme)

	bg := style.Get(chroma.Background)
	if !bg.Colour.IsSet() {
		// Dark text on light backgrounds when the style has no foreground colour
		luminance := (0.299*float64(bg.Background.Red()) +
			0.587*float64(bg.Background.Green()) +
			0.114*float64(bg.Background.Blue())) / 255
		if luminance > 0.5 {
			buf.WriteString(".chroma { color: #181818; }\n")
		}
	}

	formatter.WriteCSS(&buf, style)
	css := template.CSS(buf.String())
	cache.SetSyntaxCSS(theme, css)
	return css
}
