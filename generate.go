package siteprov

import (
	"fmt"
	"path"

	"github.com/stuartcarnie/siteprov/config"
	"github.com/stuartcarnie/siteprov/files"
	"github.com/stuartcarnie/siteprov/templates"
)

const (
	siteConf     = "site.conf"
	renewCrontab = "certbot-renew"
)

// generated describes a file written below the project directory.
type generated struct {
	name     string
	template string
	// path returns the file path relative to the project.
	path func(cfg *config.Config) string
}

var (
	settingsFile = generated{
		name:     "settings",
		template: templates.Settings,
		path:     func(cfg *config.Config) string { return cfg.App.Settings },
	}
	socketFile  = workFile("socket unit", templates.SocketUnit, socketUnit)
	serviceFile = workFile("service unit", templates.ServiceUnit, serviceUnit)
	siteFile    = workFile("site block", templates.SiteBlock, siteConf)
	renewFile   = workFile("renewal crontab", templates.RenewCrontab, renewCrontab)
)

func workFile(name, tmpl, file string) generated {
	return generated{
		name:     name,
		template: tmpl,
		path:     func(*config.Config) string { return path.Join(workDir, file) },
	}
}

func (p *Provisioner) socket() string {
	return templates.DefaultSocket
}

func (p *Provisioner) templateData() templates.Data {
	cfg := p.Config
	return templates.Data{
		Domain:     cfg.Domain,
		User:       cfg.User,
		Project:    cfg.Project,
		Socket:     p.socket(),
		SocketUnit: socketUnit,
		Workers:    cfg.App.Workers,
		Module:     cfg.App.Module,
		Database: templates.Database{
			Name:     cfg.Database.Name,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
		},
		Schedule: cfg.Certificate.RenewSchedule,
	}
}

func (p *Provisioner) render(gens ...generated) ([]files.File, error) {
	data := p.templateData()
	out := make([]files.File, 0, len(gens))
	for _, g := range gens {
		content, err := templates.Render(g.template, data)
		if err != nil {
			return nil, fmt.Errorf("cannot render %s: %w", g.name, err)
		}
		out = append(out, files.File{
			Name:    g.name,
			Path:    g.path(p.Config),
			Content: content,
		})
	}
	return out, nil
}

func (p *Provisioner) writeFiles(gens ...generated) error {
	_, err := p.commit(p.Config.Project, gens...)
	return err
}

func (p *Provisioner) commit(root string, gens ...generated) ([]*files.LocalFile, error) {
	fs, err := p.render(gens...)
	if err != nil {
		return nil, err
	}
	written, err := p.Files.Commit(root, fs...)
	if err != nil {
		return nil, err
	}
	for _, lf := range written {
		if lf.Unchanged {
			p.Console.Info(fmt.Sprintf("%s - unchanged.", lf.FullPath))
			continue
		}
		p.Console.Success(fmt.Sprintf("%s - successfully created.", lf.FullPath))
	}
	return written, nil
}

// Render writes every generated file below dir without running any
// command. Missing answers are prompted for.
func (p *Provisioner) Render(dir string) ([]*files.LocalFile, error) {
	if err := p.identify(); err != nil {
		return nil, err
	}
	if err := p.askDatabase(); err != nil {
		return nil, err
	}
	if err := p.askDomain(); err != nil {
		return nil, err
	}
	gens := []generated{settingsFile, socketFile, serviceFile, siteFile}
	if p.Config.Certificate.RenewSchedule != "" {
		gens = append(gens, renewFile)
	}
	return p.commit(dir, gens...)
}

// askDatabase prompts for the database settings that are not configured.
func (p *Provisioner) askDatabase() error {
	db := &p.Config.Database
	var err error
	if db.Name == "" {
		if db.Name, err = p.ask("Database Name"); err != nil {
			return err
		}
	}
	if db.User == "" {
		if db.User, err = p.ask("Database username"); err != nil {
			return err
		}
	}
	if db.Password == "" {
		if db.Password, err = p.Prompt.Password("Database password"); err != nil {
			return err
		}
		if db.Password == "" {
			return fmt.Errorf("database password must not be empty")
		}
	}
	return nil
}

// askDomain prompts for the domain when it is not configured.
func (p *Provisioner) askDomain() error {
	if p.Config.Domain != "" {
		return nil
	}
	domain, err := p.ask("Domain without protocol (for example.com)")
	if err != nil {
		return err
	}
	if err := config.ValidateDomain(domain); err != nil {
		return err
	}
	p.Config.Domain = domain
	return nil
}

func (p *Provisioner) ask(label string) (string, error) {
	v, err := p.Prompt.Input(label)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", fmt.Errorf("%s must not be empty", label)
	}
	return v, nil
}
