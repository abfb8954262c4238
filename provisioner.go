// Package siteprov provisions a Debian host to serve a Django application
// through PostgreSQL, Gunicorn and Nginx with a Let's Encrypt certificate.
package siteprov

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/scylladb/go-set/strset"
	"go.uber.org/zap"

	"github.com/stuartcarnie/siteprov/config"
	"github.com/stuartcarnie/siteprov/console"
	"github.com/stuartcarnie/siteprov/files"
	"github.com/stuartcarnie/siteprov/internal/sockwatch"
	"github.com/stuartcarnie/siteprov/process"
)

const (
	// Version the version of siteprov
	Version = "1.0"
)

// Prompter asks the operator for the answers missing from the configuration.
type Prompter interface {
	YesNo(question string) (bool, error)
	Input(label string) (string, error)
	Password(label string) (string, error)
}

// Options control how a run treats its steps.
type Options struct {
	// DryRun skips waiting for the Gunicorn socket. Commands and file
	// writes are dry only when the Runner and Files given are.
	DryRun bool
	// FailFast stops the run at the first failed step.
	FailFast bool
	// BestEffort runs steps even when one of their dependencies failed.
	BestEffort bool
	// Skip names steps that are not run.
	Skip *strset.Set
}

// Provisioner drives a provisioning run.
type Provisioner struct {
	Config  *config.Config
	Console console.Console
	Runner  process.Runner
	Prompt  Prompter
	Files   *files.Writer
	Options Options

	// WaitSocket waits for the Gunicorn socket to appear.
	WaitSocket func(ctx context.Context, path string, timeout time.Duration) (os.FileInfo, error)
	// Now returns the current time.
	Now func() time.Time
}

// New returns a provisioner writing files to the local file system.
func New(cfg *config.Config, c console.Console, r process.Runner, pr Prompter, opts Options) *Provisioner {
	return &Provisioner{
		Config:     cfg,
		Console:    c,
		Runner:     r,
		Prompt:     pr,
		Files:      files.NewOSWriter(),
		Options:    opts,
		WaitSocket: sockwatch.Wait,
		Now:        time.Now,
	}
}

// Run executes every step of the plan in order and returns a summary of
// their outcomes. An error is returned when the run could not start,
// or when ctx was cancelled; step failures are only reported in the
// summary.
func (p *Provisioner) Run(ctx context.Context) (*Summary, error) {
	if err := p.identify(); err != nil {
		return nil, err
	}
	plan, err := NewPlan(Steps())
	if err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	if err := p.checkSkip(plan); err != nil {
		return nil, err
	}
	p.Console.Info(p.Config.Project)

	sum := &Summary{}
	stopped := false
	for i, s := range plan.Steps {
		o := Outcome{Step: s}
		switch {
		case stopped:
			o.Status = NotRun
		case p.Options.Skip != nil && p.Options.Skip.Has(s.Name):
			o.Status = Skipped
			o.Reason = "skipped on request"
		default:
			if dep := p.unsatisfied(s, sum); dep != "" && !p.Options.BestEffort {
				o.Status = Blocked
				o.Reason = fmt.Sprintf("%s %s", dep, sum.Status(dep))
				p.Console.Warn(fmt.Sprintf("Skipping %s: dependency %s", s.Name, o.Reason))
				break
			}
			p.Console.Header(fmt.Sprintf("Step %d - %s", i+1, s.Title))
			p.runStep(ctx, s, &o)
			if o.Status == Failed && p.Options.FailFast {
				stopped = true
			}
			if ctx.Err() != nil {
				stopped = true
			}
		}
		zap.L().Debug("step", zap.String("name", s.Name), zap.Stringer("status", o.Status), zap.Error(o.Err))
		sum.Outcomes = append(sum.Outcomes, o)
	}

	p.finish(sum)
	if err := ctx.Err(); err != nil {
		return sum, err
	}
	return sum, nil
}

func (p *Provisioner) runStep(ctx context.Context, s *Step, o *Outcome) {
	err := s.run(p, ctx)
	var na notApplicable
	switch {
	case err == nil:
		o.Status = Succeeded
	case errors.As(err, &na):
		o.Status = Skipped
		o.Reason = string(na)
		p.Console.Info(fmt.Sprintf("Nothing to do: %s", na))
	default:
		o.Status = Failed
		o.Err = err
		p.Console.Error(fmt.Sprintf("Step %s failed: %v", s.Name, err))
		var ee *process.ExitError
		if errors.As(err, &ee) && len(ee.Tail) > 0 {
			p.Console.Warn(fmt.Sprintf("Last output of %s:\n%s", ee.Command, strings.TrimRight(string(ee.Tail), "\n")))
		}
	}
}

// unsatisfied returns the first dependency of s that did not succeed.
func (p *Provisioner) unsatisfied(s *Step, sum *Summary) string {
	for _, dep := range s.DependsOn {
		if !sum.Status(dep).satisfied() {
			return dep
		}
	}
	return ""
}

func (p *Provisioner) identify() error {
	if p.Config.User != "" && p.Config.Project != "" {
		return nil
	}
	if err := p.Config.Identify(); err != nil {
		return fmt.Errorf("cannot identify environment: %w", err)
	}
	return nil
}

func (p *Provisioner) checkSkip(plan *Plan) error {
	if p.Options.Skip == nil {
		return nil
	}
	unknown := strset.Difference(p.Options.Skip, strset.New(plan.Names()...))
	if !unknown.IsEmpty() {
		names := unknown.List()
		sort.Strings(names)
		return fmt.Errorf("unknown steps to skip: %s", strings.Join(names, ", "))
	}
	return nil
}

func (p *Provisioner) finish(sum *Summary) {
	if p.Config.Domain != "" {
		p.Console.Success(finishBanner(p.Config.Domain))
	}
	sum.Report(p.Console)
	if sum.Failed() {
		p.Console.Error(fmt.Sprintf("%d step(s) failed and %d were blocked", sum.Count(Failed), sum.Count(Blocked)))
	}
}

const finishRule = "# FINISH ## FINISH ## FINISH ## FINISH ## FINISH ## FINISH ## FINISH ## FINISH ## FINISH ## FINISH #"

func finishBanner(domain string) string {
	rule := strings.Repeat("#", len(finishRule))
	return strings.Join([]string{
		rule,
		finishRule,
		rule,
		"# Enjoy your site at https://" + domain,
		rule,
		finishRule,
		rule,
	}, "\n")
}

// notApplicable is returned by a step that has nothing to do.
type notApplicable string

func (na notApplicable) Error() string {
	return string(na)
}
