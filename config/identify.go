package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
)

// These are variables so tests can replace them.
var (
	currentUser = user.Current
	getwd       = os.Getwd
)

// Identify records the invoking user's login name and resolves the
// project path, defaulting to the current working directory. A failure
// leaves the run without the values every later step depends on.
func (c *Config) Identify() error {
	u, err := currentUser()
	if err != nil {
		return fmt.Errorf("cannot determine current user: %w", err)
	}
	if u.Username == "" {
		return fmt.Errorf("current user (uid %s) has no login name", u.Uid)
	}
	c.User = u.Username

	project := c.Project
	if project == "" {
		project, err = getwd()
		if err != nil {
			return fmt.Errorf("cannot determine project directory: %w", err)
		}
	}
	project, err = filepath.Abs(project)
	if err != nil {
		return fmt.Errorf("cannot resolve project directory: %w", err)
	}
	info, err := os.Stat(project)
	if err != nil {
		return fmt.Errorf("cannot use project directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project %q is not a directory", project)
	}
	c.Project = project
	return nil
}
