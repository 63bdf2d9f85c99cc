package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/MrSnakeDoc/tabshell/internal/config"
	"github.com/MrSnakeDoc/tabshell/internal/logger"
	"github.com/MrSnakeDoc/tabshell/internal/persist"
	"github.com/MrSnakeDoc/tabshell/internal/sources/homepage"
	"github.com/MrSnakeDoc/tabshell/internal/state"
	"github.com/MrSnakeDoc/tabshell/internal/utils"
)

// ImportBookmarks merges a Homepage bookmarks.yaml into the persisted state
// without starting the server. The server must not be running against the
// same storage.
func ImportBookmarks(ctx context.Context, path string) (homepage.Result, error) {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = log.Sync() }()

	bookmarks, err := homepage.LoadFile(path)
	if err != nil {
		return homepage.Result{}, err
	}

	kv, err := openKV(cfg, log)
	if err != nil {
		return homepage.Result{}, fmt.Errorf("failed to open %s storage: %w", cfg.Storage, err)
	}
	defer utils.CloseLogged(kv, cfg.Storage, log)

	store := state.New(state.WithLogger(log.Named("state")))
	adapter := persist.NewAdapter(kv, cfg.StateKey, log.Named("persist"))
	// Saving over a snapshot we could not read would discard it.
	if err := adapter.Load(ctx, store); err != nil {
		return homepage.Result{}, fmt.Errorf("refusing to import over unreadable state: %w", err)
	}

	res := homepage.Import(store, homepage.Entries(bookmarks))
	if res.Added == 0 {
		return res, nil
	}
	if err := adapter.Save(ctx, store.Snapshot()); err != nil {
		return res, err
	}
	return res, nil
}

// ExportState writes the persisted snapshot, as stored, to w.
func ExportState(ctx context.Context, w io.Writer) error {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = log.Sync() }()

	kv, err := openKV(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", cfg.Storage, err)
	}
	defer utils.CloseLogged(kv, cfg.Storage, log)

	data, err := kv.Get(ctx, cfg.StateKey)
	if errors.Is(err, persist.ErrNotFound) {
		return fmt.Errorf("no state stored under %q", cfg.StateKey)
	}
	if err != nil {
		return fmt.Errorf("failed to read state: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}
