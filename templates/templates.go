// Package templates renders the configuration files written during a
// provisioning run.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

//go:embed files/*.tmpl
var templateFS embed.FS

// Template names.
const (
	Settings     = "settings.py.tmpl"
	SocketUnit   = "gunicorn.socket.tmpl"
	ServiceUnit  = "gunicorn.service.tmpl"
	SiteBlock    = "site.conf.tmpl"
	RenewCrontab = "certbot-renew.tmpl"
)

// DefaultSocket is the path Gunicorn listens on.
const DefaultSocket = "/run/gunicorn.sock"

// Database holds the credentials embedded in the settings module.
type Database struct {
	Name     string
	User     string
	Password string
}

// Data holds every value substituted into the templates.
type Data struct {
	Domain     string
	User       string
	Project    string
	Socket     string
	SocketUnit string
	Workers    int
	Module     string
	Database   Database
	Schedule   string
}

var templateCache sync.Map

// Render executes the named template with data.
func Render(name string, data Data) (string, error) {
	tmpl, err := loadTemplate(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func loadTemplate(name string) (*template.Template, error) {
	if value, ok := templateCache.Load(name); ok {
		return value.(*template.Template), nil
	}
	tmpl, err := template.New(name).
		Option("missingkey=error").
		Funcs(sprig.TxtFuncMap()).
		Funcs(template.FuncMap{"pyquote": pyQuote}).
		ParseFS(templateFS, "files/"+name)
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", name, err)
	}
	templateCache.Store(name, tmpl)
	return tmpl, nil
}

var pyEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)

// pyQuote escapes s for use inside a single-quoted Python string literal.
func pyQuote(s string) string {
	return pyEscaper.Replace(s)
}
