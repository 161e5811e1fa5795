package service

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"inkwell/app/repositories"
	"inkwell/config"
	"inkwell/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version is reported by the version command.
var Version = "1.0.0"

// cli carries what every subcommand needs once flags are parsed.
type cli struct {
	configPath string
	cfg        *config.Config
	logger     zerolog.Logger
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		osExit(1)
	}
}

// NewRootCommand builds the inkwell command tree.
func NewRootCommand() *cobra.Command {
	c := &cli{logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "inkwell",
		Short: "Blog service with an HTTP API and an interactive console",
		Long: `inkwell manages authors, posts and comments.

It serves a JSON API over HTTP and offers a menu driven console over the
same storage. Settings come from inkwell.yaml, a .env file and INKWELL_*
environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = logger.New(cfg.Log, cfg.Env)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a YAML config file (default inkwell.yaml if present)")

	root.AddCommand(
		c.serveCommand(),
		c.consoleCommand(),
		c.dbCommand(),
		versionCommand(),
	)
	return root
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// The version needs no configuration.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "inkwell version %s\n", Version)
		},
	}
}

func (c *cli) dbCommand() *cobra.Command {
	db := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance",
	}

	var yes bool
	clean := &cobra.Command{
		Use:   "clean",
		Short: "Remove the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.clean(cmd.InOrStdin(), cmd.OutOrStdout(), yes)
		},
	}
	clean.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.initDb(cmd.OutOrStdout())
		},
	}

	backup := &cobra.Command{
		Use:   "backup [file]",
		Short: "Write a backup of the database",
		Long:  "Write a backup of the database. Without a file argument the backup goes to the configured backup directory.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			return c.backup(cmd.OutOrStdout(), target)
		},
	}

	var force bool
	restore := &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace the database with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.restore(cmd.InOrStdin(), cmd.OutOrStdout(), args[0], force)
		},
	}
	restore.Flags().BoolVarP(&force, "yes", "y", false, "replace an existing database without asking")

	db.AddCommand(clean, initCmd, backup, restore)
	return db
}

var errCancelled = errors.New("operation cancelled")

// clean removes the database.
func (c *cli) clean(in io.Reader, out io.Writer, yes bool) error {
	exists, err := storeExists(c.cfg.Storage)
	if err != nil {
		return err
	}
	if !exists {
		fmt.Fprintln(out, "Database is already clean (does not exist)")
		return nil
	}

	if !yes && !confirm(in, out, "Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Fprintln(out, "Operation cancelled")
		return nil
	}

	if err := os.RemoveAll(c.cfg.Storage.Path); err != nil {
		return fmt.Errorf("failed to clean database: %w", err)
	}
	c.logger.Info().Str("path", c.cfg.Storage.Path).Msg("database removed")
	fmt.Fprintln(out, "Database cleaned successfully")
	return nil
}

// initDb creates an empty database with its schema.
func (c *cli) initDb(out io.Writer) error {
	exists, err := storeExists(c.cfg.Storage)
	if err != nil {
		return err
	}
	if exists {
		fmt.Fprintln(out, "Database already exists. Use 'clean' first if you want to reinitialize.")
		return nil
	}

	store, err := openStore(c.cfg.Storage, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := store.Close(); err != nil {
		return err
	}

	fmt.Fprintln(out, "Database initialized successfully")
	return nil
}

var errNoBackup = errors.New("driver does not support backup and restore")

// checkBackupDriver fails early, before anything is opened or removed, for
// drivers without backup support.
func (c *cli) checkBackupDriver() error {
	if c.cfg.Storage.Driver != repositories.DriverBadger {
		return fmt.Errorf("%s: %w", c.cfg.Storage.Driver, errNoBackup)
	}
	return nil
}

func backupper(store repositories.Store) (repositories.Backupper, error) {
	b, ok := store.(repositories.Backupper)
	if !ok {
		return nil, errNoBackup
	}
	return b, nil
}

// backup streams a backup of the database to target, or to a timestamped
// file in the backup directory.
func (c *cli) backup(out io.Writer, target string) error {
	if err := c.checkBackupDriver(); err != nil {
		return err
	}
	exists, err := storeExists(c.cfg.Storage)
	if err != nil {
		return err
	}
	if !exists {
		fmt.Fprintln(out, "No database exists to backup")
		return nil
	}

	store, err := openStore(c.cfg.Storage, c.logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	b, err := backupper(store)
	if err != nil {
		return err
	}

	if target == "" {
		if err := os.MkdirAll(c.cfg.Storage.BackupDir, 0755); err != nil {
			return fmt.Errorf("failed to create backup directory: %w", err)
		}
		target = filepath.Join(c.cfg.Storage.BackupDir, fmt.Sprintf("backup_%d.db", time.Now().Unix()))
	}

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer f.Close()

	if err := b.Backup(f); err != nil {
		return fmt.Errorf("failed to backup database: %w", err)
	}

	c.logger.Info().Str("file", target).Msg("database backed up")
	fmt.Fprintf(out, "Database backed up successfully to %s\n", target)
	return nil
}

// restore replaces the database with the contents of backupFile.
func (c *cli) restore(in io.Reader, out io.Writer, backupFile string, force bool) error {
	if err := c.checkBackupDriver(); err != nil {
		return err
	}
	fi, err := os.Stat(backupFile)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("backup file does not exist: %s", backupFile)
	}
	if err != nil {
		return err
	}
	if fi.Size() == 0 {
		return fmt.Errorf("backup file is empty: %s", backupFile)
	}

	exists, err := storeExists(c.cfg.Storage)
	if err != nil {
		return err
	}
	if exists {
		if !force && !confirm(in, out, "Existing database found. Do you want to replace it?") {
			fmt.Fprintln(out, "Operation cancelled")
			return errCancelled
		}
		if err := os.RemoveAll(c.cfg.Storage.Path); err != nil {
			return fmt.Errorf("failed to remove existing database: %w", err)
		}
	}

	store, err := openStore(c.cfg.Storage, c.logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	b, err := backupper(store)
	if err != nil {
		return err
	}

	f, err := os.Open(backupFile)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	if err := b.Restore(f); err != nil {
		return fmt.Errorf("failed to restore database: %w", err)
	}

	c.logger.Info().Str("file", backupFile).Msg("database restored")
	fmt.Fprintln(out, "Database restored successfully")
	return nil
}
