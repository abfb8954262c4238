package siteprov

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/stuartcarnie/siteprov/config"
	"github.com/stuartcarnie/siteprov/internal/sockwatch"
	"github.com/stuartcarnie/siteprov/process"
)

const (
	socketUnit  = "gunicorn.socket"
	serviceUnit = "gunicorn.service"
	systemdDir  = "/etc/systemd/system"
	sitesDir    = "/etc/nginx/sites-available"
	enabledDir  = "/etc/nginx/sites-enabled"
	cronFile    = "/etc/cron.d/certbot-renew"
	workDir     = "tmp"
	venvDir     = "venv"
)

var basePackages = []string{
	"python3-pip", "python3-dev", "libpq-dev", "postgresql", "postgresql-contrib", "nginx", "curl",
}

var certbotPackages = []string{
	"python3-certbot-nginx",
	"python3-acme",
	"python3-certbot",
	"python3-mock",
	"python3-openssl",
	"python3-pkg-resources",
	"python3-pyparsing",
	"python3-zope.interface",
}

// Steps returns the steps of a provisioning run in execution order.
func Steps() []*Step {
	return []*Step{{
		Name:  "password",
		Title: "Initial Server Setup - user password",
		run:   (*Provisioner).resetPassword,
	}, {
		Name:  "firewall",
		Title: "Initial Server Setup - firewall",
		run:   (*Provisioner).firewall,
	}, {
		Name:  "packages",
		Title: "Installing the Packages from the Debian Repositories",
		run:   (*Provisioner).installPackages,
	}, {
		Name:      "database",
		Title:     "Creating the PostgreSQL Database and User",
		DependsOn: []string{"packages"},
		run:       (*Provisioner).createDatabase,
	}, {
		Name:      "virtualenv",
		Title:     "Creating a Python Virtual Environment for your Project",
		DependsOn: []string{"packages"},
		run:       (*Provisioner).createVirtualenv,
	}, {
		Name:  "settings",
		Title: "Creating Production Settings for a Django Project",
		run:   (*Provisioner).writeSettings,
	}, {
		Name:      "bootstrap",
		Title:     "Applying basic migrations and creating superuser",
		DependsOn: []string{"database", "virtualenv", "settings"},
		run:       (*Provisioner).bootstrapApp,
	}, {
		Name:      "gunicorn",
		Title:     "Creating Systemd Socket and Service Files for Gunicorn",
		DependsOn: []string{"bootstrap"},
		run:       (*Provisioner).installGunicorn,
	}, {
		Name:      "nginx",
		Title:     "Configure Nginx to Proxy Pass to Gunicorn",
		DependsOn: []string{"gunicorn"},
		run:       (*Provisioner).configureNginx,
	}, {
		Name:      "certificate",
		Title:     "Create the SSL Certificate with Let's Encrypt",
		DependsOn: []string{"firewall", "nginx"},
		run:       (*Provisioner).issueCertificate,
	}, {
		Name:      "renewal",
		Title:     "Scheduling certificate renewal",
		DependsOn: []string{"certificate"},
		run:       (*Provisioner).scheduleRenewal,
	}}
}

func (p *Provisioner) batch(ctx context.Context, name string, cmds ...process.Command) error {
	return process.RunBatch(ctx, p.Runner, p.Console, process.NewBatch(name, cmds...))
}

func (p *Provisioner) resetPassword(ctx context.Context) error {
	ok, err := p.confirmPasswordReset()
	if err != nil {
		return err
	}
	if !ok {
		p.Console.Info("Keeping the current password")
		return nil
	}
	cfg := p.Config
	cmd := process.Sudo("passwd", cfg.User).Interact()
	strategy := process.RetryStrategy(cfg.PasswordRetry.Delay.D(), cfg.PasswordRetry.MaxAttempts)
	n, err := process.Retry(ctx, strategy, func() error {
		p.Console.Info(fmt.Sprintf("Running command: %s", cmd))
		return p.Runner.Run(ctx, cmd)
	}, func(n int, err error) {
		p.Console.Warn(fmt.Sprintf("Password change failed (attempt %d): %v", n, err))
	})
	if err != nil {
		return fmt.Errorf("password not changed after %d attempt(s): %w", n, err)
	}
	p.Console.Success("Password changed")
	return nil
}

func (p *Provisioner) confirmPasswordReset() (bool, error) {
	if p.Config.ResetPassword != nil {
		return *p.Config.ResetPassword, nil
	}
	return p.Prompt.YesNo("Do you want to set a new password for the user who is currently logged in?")
}

func (p *Provisioner) firewall(ctx context.Context) error {
	return p.batch(ctx, "firewall",
		process.Sudo("apt", "update"),
		process.Sudo("apt", "install", "-y", "ufw"),
		process.Sudo("ufw", "app", "list"),
		process.Sudo("ufw", "allow", "OpenSSH"),
		process.Sudo("ufw", "enable"),
		process.Sudo("ufw", "status"),
	)
}

func (p *Provisioner) installPackages(ctx context.Context) error {
	return p.batch(ctx, "packages",
		process.Sudo("apt", "update"),
		process.Sudo(append([]string{"apt", "install", "-y"}, basePackages...)...),
	)
}

func (p *Provisioner) createDatabase(ctx context.Context) error {
	if err := p.askDatabase(); err != nil {
		return err
	}
	return p.batch(ctx, "database", createDatabaseCommand(p.Config.Database))
}

func (p *Provisioner) createVirtualenv(ctx context.Context) error {
	return p.batch(ctx, "virtualenv",
		process.Sudo("-H", "pip3", "install", "--upgrade", "pip"),
		process.Sudo("-H", "pip3", "install", "virtualenv"),
		process.Cmd("virtualenv", venvDir).In(p.Config.Project),
	)
}

func (p *Provisioner) writeSettings(ctx context.Context) error {
	if err := p.askDatabase(); err != nil {
		return err
	}
	if err := p.askDomain(); err != nil {
		return err
	}
	return p.writeFiles(settingsFile)
}

func (p *Provisioner) bootstrapApp(ctx context.Context) error {
	cfg := p.Config
	venv := filepath.Join(cfg.Project, venvDir, "bin")
	pip := filepath.Join(venv, "pip")
	python := filepath.Join(venv, "python")
	env := venvEnv(cfg)
	app := func(c process.Command) process.Command {
		return c.In(cfg.Project).WithEnv(env...)
	}
	return p.batch(ctx, "bootstrap",
		app(process.Cmd(pip, "install", "-r", cfg.App.Requirements)),
		app(process.Cmd(pip, "install", "gunicorn", "psycopg2-binary")),
		app(process.Cmd(python, "manage.py", "makemigrations")),
		app(process.Cmd(python, "manage.py", "migrate")),
		app(process.Cmd(python, "manage.py", "createsuperuser")).Interact(),
		app(process.Cmd(python, "manage.py", "collectstatic", "--noinput")),
	)
}

// venvEnv returns the environment that runs commands inside the
// project's virtualenv.
func venvEnv(cfg *config.Config) []string {
	venv := filepath.Join(cfg.Project, venvDir)
	return []string{
		"VIRTUAL_ENV=" + venv,
		"PATH=" + filepath.Join(venv, "bin") + string(os.PathListSeparator) + os.Getenv("PATH"),
		"DJANGO_SETTINGS_MODULE=" + cfg.SettingsModule(),
	}
}

func (p *Provisioner) installGunicorn(ctx context.Context) error {
	cfg := p.Config
	if err := p.Files.MkdirAll(filepath.Join(cfg.Project, workDir)); err != nil {
		return err
	}
	if err := p.writeFiles(socketFile, serviceFile); err != nil {
		return err
	}
	err := p.batch(ctx, "gunicorn",
		process.Sudo("cp", p.projectPath(workDir, socketUnit), path.Join(systemdDir, socketUnit)),
		process.Sudo("cp", p.projectPath(workDir, serviceUnit), path.Join(systemdDir, serviceUnit)),
		process.Sudo("systemctl", "daemon-reload"),
		process.Sudo("systemctl", "start", socketUnit),
		process.Sudo("systemctl", "enable", socketUnit),
		process.Sudo("systemctl", "status", socketUnit, "--no-pager"),
	)
	if err != nil {
		return err
	}
	if err := p.waitForSocket(ctx); err != nil {
		return err
	}
	return p.batch(ctx, "gunicorn journal",
		process.Sudo("journalctl", "-u", socketUnit, "--no-pager"),
	)
}

func (p *Provisioner) waitForSocket(ctx context.Context) error {
	sock := p.socket()
	if p.Options.DryRun {
		p.Console.Info(fmt.Sprintf("Would wait for %s", sock))
		return nil
	}
	p.Console.Info(fmt.Sprintf("Waiting for %s", sock))
	info, err := p.WaitSocket(ctx, sock, p.Config.SocketWait.D())
	if err != nil {
		if errors.Is(err, sockwatch.ErrTimeout) {
			return fmt.Errorf("%s did not appear within %v: %w", sock, p.Config.SocketWait, err)
		}
		return err
	}
	if !sockwatch.IsSocket(info) {
		p.Console.Warn(fmt.Sprintf("%s exists but is not a socket (%v)", sock, info.Mode()))
		return nil
	}
	p.Console.Success(fmt.Sprintf("%s: socket", sock))
	return nil
}

func (p *Provisioner) configureNginx(ctx context.Context) error {
	if err := p.askDomain(); err != nil {
		return err
	}
	if err := p.writeFiles(siteFile); err != nil {
		return err
	}
	domain := p.Config.Domain
	available := path.Join(sitesDir, domain)
	return p.batch(ctx, "nginx",
		process.Sudo("cp", p.projectPath(workDir, siteConf), available),
		process.Sudo("ln", "-sf", available, path.Join(enabledDir, domain)),
		process.Sudo("nginx", "-t"),
		process.Sudo("systemctl", "restart", "nginx"),
	)
}

func (p *Provisioner) issueCertificate(ctx context.Context) error {
	if err := p.askDomain(); err != nil {
		return err
	}
	return p.batch(ctx, "certificate",
		process.Sudo(append([]string{"apt", "install", "-y"}, certbotPackages...)...),
		process.Sudo("ufw", "allow", "Nginx Full"),
		certbotCommand(p.Config),
		process.Sudo("certbot", "renew", "--dry-run"),
	)
}

// certbotCommand asks certbot for a certificate. Without an email
// address certbot asks the operator for one, so it runs attached to
// the terminal.
func certbotCommand(cfg *config.Config) process.Command {
	args := []string{"certbot", "--nginx", "-d", cfg.Domain}
	if cfg.Certificate.Email == "" {
		return process.Sudo(args...).Interact()
	}
	args = append(args, "--non-interactive", "--agree-tos", "--email", cfg.Certificate.Email)
	return process.Sudo(args...)
}

func (p *Provisioner) scheduleRenewal(ctx context.Context) error {
	schedule, err := p.Config.RenewSchedule()
	if err != nil {
		return err
	}
	if schedule == nil {
		return notApplicable("no renewal schedule configured")
	}
	if err := p.writeFiles(renewFile); err != nil {
		return err
	}
	if err := p.batch(ctx, "renewal",
		process.Sudo("cp", p.projectPath(workDir, renewCrontab), cronFile),
	); err != nil {
		return err
	}
	p.Console.Info(fmt.Sprintf("Next renewal check at %s", schedule.Next(p.Now()).Format("2006-01-02 15:04 MST")))
	return nil
}

func (p *Provisioner) projectPath(elem ...string) string {
	return filepath.Join(append([]string{p.Config.Project}, elem...)...)
}
