package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/stucknotes/stuck/internal/audit"
	"github.com/stucknotes/stuck/internal/backup"
	"github.com/stucknotes/stuck/internal/cli"
	"github.com/stucknotes/stuck/internal/config"
	"github.com/stucknotes/stuck/internal/database"
	"github.com/stucknotes/stuck/internal/repository"
	"github.com/stucknotes/stuck/internal/security"
	"github.com/stucknotes/stuck/internal/store"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		logger := zerolog.New(os.Stderr)
		logger.Error().Err(err).Msg("failed to load configuration")
		return err
	}

	log := newLogger(cfg)

	keys := security.NewKeyManager(cfg.DBEncryptionKey, cfg.BackupEncryptionKey)

	db, err := database.Connect(database.Config{
		Path:          cfg.DBPath,
		EncryptionKey: keys.DBKey(),
	})
	if err != nil {
		log.Error().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
		return err
	}
	defer db.Close()

	useFTS, err := database.Migrate(db)
	if err != nil {
		log.Error().Err(err).Msg("failed to run migrations")
		return err
	}
	if !useFTS {
		log.Warn().Msg("FTS5 unavailable, search falls back to substring matching")
	}
	log.Debug().Int("open_conns", database.GetStats(db).OpenConnections).Str("path", cfg.DBPath).Msg("database ready")

	auditor, err := audit.NewLogger(db, log, cfg.AuditAsyncMode)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize activity log")
		return err
	}
	defer auditor.Close()

	noteRepo := repository.NewNoteRepository(db, useFTS)
	folderRepo := repository.NewFolderRepository(db)

	st, err := store.New(noteRepo, folderRepo, auditor, log, store.Options{
		TrashRetentionDays: cfg.TrashRetentionDays,
		AutosaveRPS:        cfg.AutosaveRPS,
		AutosaveBurst:      cfg.AutosaveBurst,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to load note store")
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st.StartJanitor(ctx, cfg.JanitorInterval)

	app := &cli.App{
		Store:   st,
		Auditor: auditor,
		Log:     log,
	}

	if key := keys.BackupKey(); key != nil {
		mgr, err := backup.NewManager(db, log, cfg.BackupDir, key, cfg.BackupRetentionDays)
		if err != nil {
			log.Error().Err(err).Msg("failed to initialize backups")
			return err
		}
		app.Backup = mgr
		go mgr.StartAutomatedBackups(ctx, cfg.BackupInterval)
	}

	root := cli.NewRootCmd(app)
	cmdErr := root.ExecuteContext(ctx)
	if cmdErr != nil {
		log.Error().Err(cmdErr).Msg("command failed")
	}

	// Every scheduled write must land before the process exits
	flushCtx, flushCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer flushCancel()
	if err := st.Flush(flushCtx); err != nil {
		log.Error().Err(err).Msg("failed to flush pending writes")
		if cmdErr == nil {
			cmdErr = err
		}
	}

	return cmdErr
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stderr
	if cfg.Environment == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	if cfg.LogPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0700); err == nil {
			if f, err := os.OpenFile(cfg.LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600); err == nil {
				out = zerolog.MultiLevelWriter(out, f)
			}
		}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
