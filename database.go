package siteprov

import (
	"strings"

	"github.com/stuartcarnie/siteprov/config"
	"github.com/stuartcarnie/siteprov/process"
)

// createDatabaseSQL is fed to psql on standard input after the password
// has been set. The values are psql variables interpolated as quoted
// identifiers (:"name") or literals (:'name'), so they never form part of
// the SQL text.
const createDatabaseSQL = `CREATE DATABASE :"db_name";
CREATE USER :"db_user" WITH PASSWORD :'db_password';
ALTER ROLE :"db_user" SET client_encoding TO 'utf8';
ALTER ROLE :"db_user" SET default_transaction_isolation TO 'read committed';
ALTER ROLE :"db_user" SET timezone TO 'UTC';
GRANT ALL PRIVILEGES ON DATABASE :"db_name" TO :"db_user";
`

// psqlEscaper quotes a value for a single-quoted psql meta-command argument.
var psqlEscaper = strings.NewReplacer(`\`, `\\`, `'`, `''`, "\n", `\n`, "\r", `\r`)

// createDatabaseCommand returns the psql invocation creating the database
// and its owner. The password travels on standard input only, so it is
// not visible in the process list.
func createDatabaseCommand(db config.Database) process.Command {
	stdin := `\set db_password '` + psqlEscaper.Replace(db.Password) + "'\n" + createDatabaseSQL
	return process.Sudo("-u", "postgres", "psql",
		"-X",
		"-v", "ON_ERROR_STOP=1",
		"-v", "db_name="+db.Name,
		"-v", "db_user="+db.User,
	).WithStdin(stdin)
}
