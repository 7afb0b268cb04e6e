// Package cli implements the gatecheck administrative command line. It
// operates directly on the broker database, so it works without a running
// server: bootstrapping the first admin account, managing the privilege
// graph, generating signing keys, and minting tokens.
package cli

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	internaldb "gatecheck/internal/db"
	"gatecheck/internal/db/repository"
	"gatecheck/internal/service/access"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var dbPath string

	rootCmd := &cobra.Command{
		Use:           "gatecheck",
		Short:         "Access broker administration CLI",
		Long:          "Administer gatecheck users, groups, projects, and signing keys directly against the broker database.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if v := os.Getenv("DB_PATH"); v != "" && dbPath == "gatecheck.sqlite" {
				dbPath = v
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "gatecheck.sqlite", "path to the broker SQLite database")

	rootCmd.AddCommand(newUserCmd(&dbPath))
	rootCmd.AddCommand(newGroupCmd(&dbPath))
	rootCmd.AddCommand(newProjectCmd(&dbPath))
	rootCmd.AddCommand(newKeygenCmd())
	rootCmd.AddCommand(newTokenCmd(&dbPath))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// runtime bundles the database handles and services a command needs.
type runtime struct {
	writeDB *sql.DB
	readDB  *sql.DB
	users   *repository.UserRepo
	access  *access.Service
}

func openRuntime(dbPath string) (*runtime, error) {
	writeDB, readDB, err := internaldb.OpenSQLitePair(dbPath, 2)
	if err != nil {
		return nil, err
	}
	if err := internaldb.RunMigrations(writeDB); err != nil {
		writeDB.Close() //nolint:errcheck
		readDB.Close()  //nolint:errcheck
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	readUsers := repository.NewUserRepo(readDB)
	accessSvc := access.New(
		writeDB,
		repository.NewUserRepo(writeDB),
		repository.NewGroupRepo(writeDB),
		repository.NewProjectRepo(writeDB),
		repository.NewPrivilegeRepo(writeDB),
		logger,
	).WithReadPool(
		readUsers,
		repository.NewGroupRepo(readDB),
		repository.NewProjectRepo(readDB),
		repository.NewPrivilegeRepo(readDB),
	)
	return &runtime{writeDB: writeDB, readDB: readDB, users: readUsers, access: accessSvc}, nil
}

func (rt *runtime) Close() {
	rt.writeDB.Close() //nolint:errcheck
	rt.readDB.Close()  //nolint:errcheck
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gatecheck version %s (commit: %s)\n", version, commit)
		},
	}
}
