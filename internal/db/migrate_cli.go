package db

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"
)

// ErrUsage is returned for malformed migrate invocations; the caller
// prints help and exits non-zero.
var ErrUsage = errors.New("invalid migrate usage")

// RunMigrateCommand handles the 'migrate' subcommand. Confirmation prompts
// read from in; all output goes to out.
func RunMigrateCommand(args []string, dbPath string, in io.Reader, out io.Writer) error {
	if len(args) < 1 {
		PrintMigrateHelp(out)
		return ErrUsage
	}
	action := args[0]
	if action == "help" {
		PrintMigrateHelp(out)
		return nil
	}

	migFS, err := getMigrationsFS()
	if err != nil {
		return err
	}

	// Open without running migrations; this command manages the schema.
	database, err := OpenDB(dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	switch action {
	case "up":
		return handleMigrateUp(database, migFS, out)
	case "down":
		return handleMigrateDown(database, migFS, out)
	case "status":
		return handleMigrateStatus(database, migFS, out)
	case "version":
		if len(args) < 2 {
			fmt.Fprintln(out, "Usage: swarm migrate version <version_number>")
			return ErrUsage
		}
		return handleMigrateVersion(database, migFS, args[1], out)
	case "force":
		if len(args) < 2 {
			fmt.Fprintln(out, "Usage: swarm migrate force <version_number>")
			return ErrUsage
		}
		return handleMigrateForce(database, migFS, args[1], in, out)
	default:
		fmt.Fprintf(out, "Unknown migrate action: %s\n\n", action)
		PrintMigrateHelp(out)
		return ErrUsage
	}
}

func handleMigrateUp(database *DB, migFS fs.FS, out io.Writer) error {
	fmt.Fprintln(out, "Running migrations...")
	if err := database.MigrateUp(migFS); err != nil {
		return err
	}
	version, dirty, _ := database.MigrateVersion(migFS)
	fmt.Fprintf(out, "All migrations applied. Current version: %d (dirty: %v)\n", version, dirty)
	return nil
}

func handleMigrateDown(database *DB, migFS fs.FS, out io.Writer) error {
	fmt.Fprintln(out, "Rolling back one migration...")
	if err := database.MigrateDown(migFS); err != nil {
		return err
	}
	version, dirty, _ := database.MigrateVersion(migFS)
	fmt.Fprintf(out, "Rolled back. Current version: %d (dirty: %v)\n", version, dirty)
	return nil
}

func handleMigrateStatus(database *DB, migFS fs.FS, out io.Writer) error {
	status, err := database.GetMigrationStatus(migFS)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "=== Migration Status ===")
	fmt.Fprintf(out, "Current version: %d\n", status.CurrentVersion)
	fmt.Fprintf(out, "Latest available: %d\n", status.LatestVersion)
	fmt.Fprintf(out, "Dirty: %v\n", status.Dirty)

	switch {
	case status.Dirty:
		fmt.Fprintln(out, "\nWARNING: Database is in a dirty state!")
		fmt.Fprintln(out, "A migration failed mid-execution. Inspect the database, then run:")
		fmt.Fprintln(out, "  swarm migrate force <version>")
	case status.Pending() > 0:
		fmt.Fprintf(out, "\n%d migration(s) pending. Run 'swarm migrate up' to update.\n", status.Pending())
	default:
		fmt.Fprintln(out, "\nDatabase is up to date.")
	}
	return nil
}

func handleMigrateVersion(database *DB, migFS fs.FS, versionStr string, out io.Writer) error {
	target, err := strconv.ParseUint(versionStr, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid version number %q: %w", versionStr, err)
	}

	fmt.Fprintf(out, "Migrating to version %d...\n", target)
	if err := database.MigrateTo(migFS, uint(target)); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated to version %d\n", target)
	return nil
}

// handleMigrateForce forces the migration version (recovery only).
func handleMigrateForce(database *DB, migFS fs.FS, versionStr string, in io.Reader, out io.Writer) error {
	version, err := strconv.Atoi(versionStr)
	if err != nil {
		return fmt.Errorf("invalid version number %q: %w", versionStr, err)
	}

	fmt.Fprintf(out, "WARNING: Forcing migration version to %d\n", version)
	fmt.Fprintln(out, "This should only be used to recover from a dirty migration state.")
	fmt.Fprint(out, "Continue? [y/N]: ")

	response, _ := bufio.NewReader(in).ReadString('\n')
	response = strings.TrimSpace(response)
	if response != "y" && response != "Y" {
		fmt.Fprintln(out, "Aborted")
		return nil
	}

	if err := database.MigrateForce(migFS, version); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migration version forced to %d\n", version)
	return nil
}

// PrintMigrateHelp displays the help message for the migrate command.
func PrintMigrateHelp(out io.Writer) {
	fmt.Fprint(out, `Database Migration Commands

Usage: swarm migrate <command> [options]

Commands:
  up              Apply all pending migrations
  down            Rollback one migration
  status          Show current migration status and version
  version <N>     Migrate to specific version N
  force <N>       Force migration version to N (recovery only)
  help            Show this help message

Options:
  -db <path>      Path to database file (default: swarm.db)

Examples:
  swarm migrate up
  swarm migrate status
  swarm migrate version 1
`)
}
