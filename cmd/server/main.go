/*
main.go - Application entry point

PURPOSE:
  Command-line entry for the timesheet engine. Every subcommand reads the
  same configuration (config.yaml and environment) and opens the same
  SQLite database.

COMMANDS:
  serve     Run the HTTP API with graceful shutdown
  migrate   Apply pending schema migrations and print the version
  token     Issue a bearer token for a user
  seed      Create a demo tenant with users, a workspace and a project

ENVIRONMENT:
  CONFIG_PATH      YAML config file (default ./config.yaml, optional)
  AUTH_JWT_SECRET  Required, at least 32 characters
  DATABASE_PATH    SQLite file, or ":memory:"
  See config/config.go for the full list.

EXAMPLES:
  AUTH_JWT_SECRET=... ./server migrate
  AUTH_JWT_SECRET=... ./server seed
  AUTH_JWT_SECRET=... ./server token --user demo-admin --tenant demo --role COMPANY_ADMIN
  AUTH_JWT_SECRET=... ./server serve

SEE ALSO:
  - serve.go: Server startup and shutdown
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
