package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sadopc/drivetheory/internal/catalog"
	"github.com/sadopc/drivetheory/internal/config"
	"github.com/sadopc/drivetheory/internal/progress"
	"github.com/sadopc/drivetheory/internal/store"
)

// env is the opened database plus the progress store loaded from it.
type env struct {
	db        *store.Store
	progress  *progress.Store
	persister *store.Persister
	logger    *slog.Logger
	logFile   io.Closer
}

// openEnv resolves configuration, opens the database and loads progress.
// In TUI mode logs go to a file next to the database because the terminal
// belongs to Bubble Tea.
func openEnv(cmd *cobra.Command, tuiMode bool) (*env, error) {
	if err := config.LoadEnv(); err != nil {
		return nil, err
	}

	dbFlag, _ := cmd.Flags().GetString("db")
	dbPath, err := config.ResolveDBPath(dbFlag)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	levelFlag, _ := cmd.Flags().GetString("log-level")
	level, err := config.LevelFromEnv(levelFlag)
	if err != nil {
		return nil, err
	}

	e := &env{}
	var w io.Writer = cmd.ErrOrStderr()
	if tuiMode {
		f, err := config.OpenLogFile(dbPath)
		if err != nil {
			return nil, err
		}
		w = f
		e.logFile = f
	}
	e.logger = config.NewLogger(w, level)
	slog.SetDefault(e.logger)

	db, err := store.New(dbPath)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	e.db = db
	e.progress = progress.NewStore(
		progress.WithCategories(catalog.Seeds()),
		progress.WithLogger(e.logger),
	)
	e.persister = store.NewPersister(db, progress.StorageKey, progress.CurrentVersion, store.DefaultRetryConfig(), e.logger)

	if err := e.load(); err != nil {
		e.Close()
		return nil, err
	}
	e.logger.Debug("environment ready", "db", dbPath)
	return e, nil
}

// load restores progress from the database. A blob that cannot be decoded is
// copied aside and the learner starts from defaults.
func (e *env) load() error {
	blob, err := e.persister.Load()
	if err != nil {
		return err
	}
	if blob == nil {
		return nil
	}
	if err := e.progress.FromSerialized(blob); err != nil {
		backup, berr := e.db.BackupBlob(progress.StorageKey)
		e.logger.Warn("stored progress unreadable, starting fresh",
			"error", err, "backup", backup, "backup_error", berr)
	}
	return nil
}

// save writes the current progress synchronously.
func (e *env) save(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	blob, err := e.progress.Serialize()
	if err != nil {
		return err
	}
	err = e.persister.Save(ctx, e.persister.Next(), blob)
	if errors.Is(err, store.ErrStaleWrite) {
		return nil
	}
	return err
}

func (e *env) Close() {
	if e.db != nil {
		e.db.Close()
	}
	if e.logFile != nil {
		e.logFile.Close()
	}
}
