// Package routes defines HTTP route constants for the application.
package routes

// API Routes
const (
	// Static and assets
	RobotsPath = "/robots.txt"
	SyntaxCSS  = "/syntax.css"
	Uploads    = "/uploads/"

	// SSE
	SSEPath = "/sse"

	// Admin area
	AdminPath      = "/admin/"
	AdminPostsPath = "/admin/posts"

	// Author API
	APIPosts       = "/api/posts"
	APIPost        = "/api/posts/{id}"
	APIPostToggle  = "/api/posts/{id}/toggle"
	APIDrafts      = "/api/drafts"
	APIDraft       = "/api/drafts/{id}"
	APIDraftBody   = "/api/drafts/{id}/content"
	APIDraftCmds   = "/api/drafts/{id}/commands"
	APIDraftSlug   = "/api/drafts/{id}/slug"
	APIDraftImages = "/api/drafts/{id}/images"
	APIDraftSave   = "/api/drafts/{id}/save"
	APIMedia       = "/api/media"
	APIUsers       = "/api/users"
	APISettings    = "/api/settings"

	// Public API
	APIBlogs          = "/api/blogs"
	APIBlog           = "/api/blogs/{slug}"
	APIBlogsPopular   = "/api/blogs/popular"
	APIIncrementViews = "/api/blogs/increment-views"

	// Webhooks
	WebhookUser = "/webhook/user"

	// Auth routes
	AuthChallenge = "/auth/challenge"
	AuthVerify    = "/auth/verify"
	AuthLogin     = "/auth/login"
)
