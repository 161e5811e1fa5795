package service

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"inkwell/app/repositories"
	"inkwell/app/services"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	dir        string
	configPath string
	dbPath     string
	backupDir  string
}

// setupTestDB writes a config that keeps the database and backups in a
// temporary directory.
func setupTestDB(t *testing.T, driver string) testEnv {
	t.Helper()
	dir := t.TempDir()
	env := testEnv{
		dir:        dir,
		configPath: filepath.Join(dir, "inkwell.yaml"),
		dbPath:     filepath.Join(dir, "data", "blog"),
		backupDir:  filepath.Join(dir, "backups"),
	}
	config := strings.Join([]string{
		"env: test",
		"log:",
		"  level: disabled",
		"  format: json",
		"storage:",
		"  driver: " + driver,
		"  path: " + env.dbPath,
		"  backup_dir: " + env.backupDir,
	}, "\n")
	require.NoError(t, os.WriteFile(env.configPath, []byte(config), 0o644))
	return env
}

// run executes the command line with input on stdin and returns its output.
func (e testEnv) run(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

// seed opens the database directly and adds one author.
func (e testEnv) seed(t *testing.T, driver string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(e.dbPath), 0o755))
	store, err := repositories.Open(driver, e.dbPath)
	require.NoError(t, err)
	defer store.Close()

	_, err = services.NewBlog(store).Authors.Create(context.Background(), services.AuthorInput{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
}

func (e testEnv) authorCount(t *testing.T, driver string) int {
	t.Helper()
	store, err := repositories.Open(driver, e.dbPath)
	require.NoError(t, err)
	defer store.Close()

	authors, err := services.NewBlog(store).Authors.List(context.Background())
	require.NoError(t, err)
	return len(authors)
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"version", "--config", "does-not-exist.yaml"})
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "inkwell version "+Version+"\n", out.String())
}

func TestUnknownCommand(t *testing.T) {
	env := setupTestDB(t, repositories.DriverBadger)

	_, err := env.run(t, "", "unknown")
	assert.ErrorContains(t, err, `unknown command "unknown"`)
}

func TestInvalidConfig(t *testing.T) {
	env := setupTestDB(t, "postgres")

	_, err := env.run(t, "", "db", "init")
	assert.ErrorContains(t, err, `unknown storage driver "postgres"`)
}

func TestExecuteExitCode(t *testing.T) {
	var exitCode int
	oldOsExit := osExit
	defer func() { osExit = oldOsExit }()
	osExit = func(code int) { exitCode = code }

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"inkwell", "db", "restore"}

	Execute()
	assert.Equal(t, 1, exitCode)
}

func TestInitDb(t *testing.T) {
	for _, driver := range []string{repositories.DriverBadger, repositories.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			env := setupTestDB(t, driver)

			output, err := env.run(t, "", "db", "init")
			require.NoError(t, err)
			assert.Contains(t, output, "Database initialized successfully")
			if driver == repositories.DriverSQLite {
				assert.FileExists(t, env.dbPath)
			} else {
				assert.DirExists(t, env.dbPath)
			}

			output, err = env.run(t, "", "db", "init")
			require.NoError(t, err)
			assert.Contains(t, output, "Database already exists")
		})
	}
}

func TestClean(t *testing.T) {
	env := setupTestDB(t, repositories.DriverBadger)

	t.Run("clean non-existent database", func(t *testing.T) {
		output, err := env.run(t, "", "db", "clean")
		require.NoError(t, err)
		assert.Contains(t, output, "Database is already clean")
	})

	t.Run("clean existing database - cancelled", func(t *testing.T) {
		_, err := env.run(t, "", "db", "init")
		require.NoError(t, err)

		output, err := env.run(t, "n\n", "db", "clean")
		require.NoError(t, err)
		assert.Contains(t, output, "Operation cancelled")
		assert.DirExists(t, env.dbPath)
	})

	t.Run("clean existing database - confirmed", func(t *testing.T) {
		output, err := env.run(t, "y\n", "db", "clean")
		require.NoError(t, err)
		assert.Contains(t, output, "Database cleaned successfully")
		assert.NoDirExists(t, env.dbPath)
	})

	t.Run("clean with --yes", func(t *testing.T) {
		_, err := env.run(t, "", "db", "init")
		require.NoError(t, err)

		output, err := env.run(t, "", "db", "clean", "--yes")
		require.NoError(t, err)
		assert.Contains(t, output, "Database cleaned successfully")
		assert.NoDirExists(t, env.dbPath)
	})
}

func TestBackupAndRestore(t *testing.T) {
	env := setupTestDB(t, repositories.DriverBadger)

	t.Run("backup non-existent database", func(t *testing.T) {
		output, err := env.run(t, "", "db", "backup")
		require.NoError(t, err)
		assert.Contains(t, output, "No database exists to backup")
	})

	env.seed(t, repositories.DriverBadger)
	backupFile := filepath.Join(env.dir, "blog.bak")

	t.Run("backup to file", func(t *testing.T) {
		output, err := env.run(t, "", "db", "backup", backupFile)
		require.NoError(t, err)
		assert.Contains(t, output, "Database backed up successfully to "+backupFile)
		assert.FileExists(t, backupFile)
	})

	t.Run("backup to backup directory", func(t *testing.T) {
		output, err := env.run(t, "", "db", "backup")
		require.NoError(t, err)
		assert.Contains(t, output, "Database backed up successfully")

		entries, err := os.ReadDir(env.backupDir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("restore non-existent backup", func(t *testing.T) {
		_, err := env.run(t, "", "db", "restore", filepath.Join(env.dir, "missing.bak"))
		assert.ErrorContains(t, err, "backup file does not exist")
	})

	t.Run("restore with existing database - cancelled", func(t *testing.T) {
		output, err := env.run(t, "n\n", "db", "restore", backupFile)
		assert.ErrorIs(t, err, errCancelled)
		assert.Contains(t, output, "Operation cancelled")
		assert.Equal(t, 1, env.authorCount(t, repositories.DriverBadger))
	})

	t.Run("restore into clean state", func(t *testing.T) {
		_, err := env.run(t, "", "db", "clean", "--yes")
		require.NoError(t, err)

		output, err := env.run(t, "", "db", "restore", backupFile)
		require.NoError(t, err)
		assert.Contains(t, output, "Database restored successfully")
		assert.Equal(t, 1, env.authorCount(t, repositories.DriverBadger))
	})

	t.Run("restore with existing database - confirmed", func(t *testing.T) {
		output, err := env.run(t, "y\n", "db", "restore", backupFile)
		require.NoError(t, err)
		assert.Contains(t, output, "Database restored successfully")
		assert.Equal(t, 1, env.authorCount(t, repositories.DriverBadger))
	})
}

func TestBackupUnsupportedDriver(t *testing.T) {
	env := setupTestDB(t, repositories.DriverSQLite)
	env.seed(t, repositories.DriverSQLite)

	_, err := env.run(t, "", "db", "backup")
	assert.ErrorIs(t, err, errNoBackup)

	backupFile := filepath.Join(env.dir, "blog.bak")
	require.NoError(t, os.WriteFile(backupFile, []byte("data"), 0o644))
	_, err = env.run(t, "y\n", "db", "restore", backupFile)
	assert.ErrorIs(t, err, errNoBackup)
	assert.Equal(t, 1, env.authorCount(t, repositories.DriverSQLite))
}

func TestRunServer(t *testing.T) {
	t.Run("stops when the context ends", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
		assert.NoError(t, runServer(ctx, srv, time.Second, zerolog.Nop()))
	})

	t.Run("reports listen errors", func(t *testing.T) {
		srv := &http.Server{Addr: "127.0.0.1:-1", Handler: http.NotFoundHandler()}
		err := runServer(context.Background(), srv, time.Second, zerolog.Nop())
		assert.ErrorContains(t, err, "listen on 127.0.0.1:-1")
	})
}
