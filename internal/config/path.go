package config

const (
	AdminUrlPath      = "/admin/"
	AdminPostsUrlPath = "/admin/posts"
	LoginUrlPath      = "/auth/login"

	UploadsUrlPath = "/uploads/"

	TemplatesLocalDir = "templates"
	TemplateLogin     = "login.html"
	TemplateNameLogin = "login"
	TemplateAdmin     = "admin.html"
	TemplateNameAdmin = "admin"
)
