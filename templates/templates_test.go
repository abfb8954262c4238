package templates

import (
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testData() Data {
	return Data{
		Domain:     "example.com",
		User:       "deploy",
		Project:    "/srv/app",
		Socket:     DefaultSocket,
		SocketUnit: "gunicorn.socket",
		Workers:    3,
		Module:     "core",
		Database: Database{
			Name:     "blog",
			User:     "bloguser",
			Password: "s3cret",
		},
		Schedule: "0 */12 * * *",
	}
}

func TestRenderSettings(t *testing.T) {
	got, err := Render(Settings, testData())
	require.NoError(t, err)
	assert.Contains(t, got, "ALLOWED_HOSTS = ['example.com']\n")
	assert.Contains(t, got, "DEBUG = False\n")
	assert.Contains(t, got, "'ENGINE': 'django.db.backends.postgresql_psycopg2',\n")
	assert.Contains(t, got, "'HOST': 'localhost',\n")
	assert.Contains(t, got, "'NAME': 'blog',\n")
	assert.Contains(t, got, "'PASSWORD': 's3cret',\n")
	assert.Contains(t, got, "'PORT': '',\n")
	assert.Contains(t, got, "'USER': 'bloguser'\n")
	assert.True(t, strings.HasPrefix(got, "from .base import *\n"))
}

func TestRenderSettingsEscapesQuotes(t *testing.T) {
	d := testData()
	d.Database.Password = `it's\here`
	got, err := Render(Settings, d)
	require.NoError(t, err)
	assert.Contains(t, got, `'PASSWORD': 'it\'s\\here',`)
}

func TestRenderSocketUnit(t *testing.T) {
	got, err := Render(SocketUnit, testData())
	require.NoError(t, err)
	assert.Equal(t, `[Unit]
Description=gunicorn socket

[Socket]
ListenStream=/run/gunicorn.sock

[Install]
WantedBy=sockets.target
`, got)
}

func TestRenderServiceUnit(t *testing.T) {
	got, err := Render(ServiceUnit, testData())
	require.NoError(t, err)
	lines := strings.Split(got, "\n")

	field := func(key string) string {
		for _, l := range lines {
			if strings.HasPrefix(l, key+"=") {
				return strings.TrimPrefix(l, key+"=")
			}
		}
		t.Fatalf("no %s= line in\n%s", key, got)
		return ""
	}
	assert.Equal(t, "/srv/app", field("WorkingDirectory"))
	assert.True(t, strings.HasPrefix(field("ExecStart"), "/srv/app/venv/bin/"))
	assert.Equal(t, "deploy", field("User"))
	assert.Equal(t, "www-data", field("Group"))
	assert.Equal(t, "gunicorn.socket", field("Requires"))
	assert.Contains(t, got, "          --workers 3 \\\n")
	assert.Contains(t, got, "          --bind unix:/run/gunicorn.sock \\\n")
	assert.Contains(t, got, "          core.wsgi:application\n")
}

func TestRenderSiteBlock(t *testing.T) {
	got, err := Render(SiteBlock, testData())
	require.NoError(t, err)
	assert.Contains(t, got, "    server_name example.com;\n")
	assert.Contains(t, got, "    location /static/ {\n        root /srv/app;\n    }\n")
	assert.Contains(t, got, "    location /media/ {\n        root /srv/app;\n    }\n")
	assert.Contains(t, got, "        proxy_pass http://unix:/run/gunicorn.sock;\n")
	assert.Contains(t, got, "location = /favicon.ico { access_log off; log_not_found off; }")
}

func TestRenderRenewCrontab(t *testing.T) {
	got, err := Render(RenewCrontab, testData())
	require.NoError(t, err)
	assert.Contains(t, got, "0 */12 * * * root certbot -q renew --deploy-hook 'systemctl reload nginx'\n")
}

func TestRenderIsDeterministic(t *testing.T) {
	c := qt.New(t)
	for _, name := range []string{Settings, SocketUnit, ServiceUnit, SiteBlock, RenewCrontab} {
		c.Run(name, func(c *qt.C) {
			first, err := Render(name, testData())
			c.Assert(err, qt.IsNil)
			second, err := Render(name, testData())
			c.Assert(err, qt.IsNil)
			c.Assert(second, qt.Equals, first)
		})
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := Render("nginx.conf.tmpl", testData())
	assert.Error(t, err)
}
