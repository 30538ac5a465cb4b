package config

const (
	HCType        = "Content-Type"
	HETag         = "ETag"
	HCacheControl = "Cache-Control"
	HHxRedirect   = "Hx-Redirect"
	HHxRequest    = "Hx-Request"
	HRequestID    = "X-Request-Id"

	HContentSecurityPolicy = "Content-Security-Policy"

	CTypeCSS  = "text/css"
	CTypeHTML = "text/html"
	CTypeJSON = "application/json"
)

const (
	HTTPErrMethodNotAllowed = "Method not allowed"
)

const (
	CookieSyntaxTheme = "syntax-theme"
	CookieAuthToken   = "auth_token"
	CookieClerk       = "__session"
)
