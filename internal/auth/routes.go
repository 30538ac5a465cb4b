package auth

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/debemdeboas/the-press/internal/config"
	"github.com/debemdeboas/the-press/internal/routes"
)

//go:embed templates/login.html
var templatesFS embed.FS

func loginTemplate() (*template.Template, error) {
	return template.ParseFS(templatesFS, config.TemplatesLocalDir+"/"+config.TemplateLogin)
}

// RegisterEd25519AuthRoutes registers the challenge, verify and login routes.
func RegisterEd25519AuthRoutes(mux *http.ServeMux, provider *Ed25519AuthProvider) error {
	tmpl, err := loginTemplate()
	if err != nil {
		return err
	}

	mux.HandleFunc(routes.AuthChallenge, Ed25519ChallengeHandler(provider))
	mux.HandleFunc(routes.AuthVerify, Ed25519VerifyHandler(provider))
	mux.HandleFunc(routes.AuthLogin, Ed25519AuthPageHandler(tmpl))
	return nil
}
