package signup

import "embed"

var (
	//go:embed assets/signup.html
	defaultPage []byte

	//go:embed assets/signup.yaml
	defaultDefinition []byte

	//go:embed assets/welcome.html
	welcomePage []byte

	// Migrations holds the goose migrations creating the accounts table.
	//
	//go:embed migrations/*.sql
	Migrations embed.FS
)

// MigrationsDir is the directory of Migrations holding the SQL files.
const MigrationsDir = "migrations"
