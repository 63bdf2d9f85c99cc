package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/tabshell/internal/logger"
	"github.com/MrSnakeDoc/tabshell/internal/state"
)

// DefaultKey is the key the state blob is stored under.
const DefaultKey = "browser-storage"

// Adapter loads and saves the state blob through a KV.
type Adapter struct {
	kv     KV
	key    string
	logger logger.Logger
}

// NewAdapter creates an adapter storing the blob under key.
func NewAdapter(kv KV, key string, log logger.Logger) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	return &Adapter{
		kv:     kv,
		key:    key,
		logger: log,
	}
}

// Load rehydrates store from the persisted blob.
//
// Whatever happens, the store ends up initialized with at least one tab:
// a missing, unreadable or unparseable blob leaves the defaults in place.
// The returned error only reports why the defaults were used.
func (a *Adapter) Load(ctx context.Context, store *state.Store) error {
	defer store.Bootstrap()

	data, err := a.kv.Get(ctx, a.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			a.logger.Info("no persisted state found, starting fresh",
				logger.String("key", a.key))
			return nil
		}
		a.logger.Warn("failed to read persisted state, using defaults",
			logger.String("key", a.key),
			logger.Error(err))
		return fmt.Errorf("failed to read state: %w", err)
	}

	loaded, err := Decode(data)
	if err != nil {
		a.logger.Warn("failed to decode persisted state, using defaults",
			logger.String("key", a.key),
			logger.Int("bytes", len(data)),
			logger.Error(err))
		return fmt.Errorf("failed to decode state: %w", err)
	}

	store.Hydrate(loaded)
	a.logger.Info("persisted state loaded",
		logger.Int("tabs", len(loaded.Tabs)),
		logger.Int("bookmarks", len(loaded.Bookmarks)),
		logger.Int("history", loaded.History.Len()))
	return nil
}

// Save writes the save projection of st. Failures are logged; the error is
// returned so the caller can schedule a retry.
func (a *Adapter) Save(ctx context.Context, st state.State) error {
	data, err := Encode(st)
	if err != nil {
		a.logger.Error("failed to encode state", logger.Error(err))
		return err
	}
	if err := a.kv.Set(ctx, a.key, data); err != nil {
		a.logger.Warn("failed to save state",
			logger.String("key", a.key),
			logger.Error(err))
		return fmt.Errorf("failed to save state: %w", err)
	}
	a.logger.Debug("state saved",
		logger.String("key", a.key),
		logger.Int("bytes", len(data)),
		logger.Uint64("revision", st.Revision))
	return nil
}
