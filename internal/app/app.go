package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/tabshell/internal/bridge"
	"github.com/MrSnakeDoc/tabshell/internal/config"
	"github.com/MrSnakeDoc/tabshell/internal/emulation"
	"github.com/MrSnakeDoc/tabshell/internal/httpserver"
	"github.com/MrSnakeDoc/tabshell/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tabshell/internal/logger"
	"github.com/MrSnakeDoc/tabshell/internal/persist"
	"github.com/MrSnakeDoc/tabshell/internal/redis"
	"github.com/MrSnakeDoc/tabshell/internal/scheduler"
	"github.com/MrSnakeDoc/tabshell/internal/sources/homepage"
	"github.com/MrSnakeDoc/tabshell/internal/state"
	badgerstore "github.com/MrSnakeDoc/tabshell/internal/store/badger"
	memorystore "github.com/MrSnakeDoc/tabshell/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/tabshell/internal/store/redis"
	surfacerod "github.com/MrSnakeDoc/tabshell/internal/surface/rod"
	"github.com/MrSnakeDoc/tabshell/internal/utils"
	"github.com/MrSnakeDoc/tabshell/internal/version"
)

type App struct {
	cfg            *config.Config
	logger         logger.Logger
	kv             persist.KV
	store          *state.Store
	adapter        *persist.Adapter
	saver          *scheduler.Saver
	bridge         *bridge.Bridge
	emulator       *emulation.Emulator
	presetReloader *scheduler.PresetReloader
	presetTrigger  chan struct{}
	refresher      *scheduler.ThumbnailRefresher

	// set in Run when a render surface is configured
	browser *surfacerod.Browser
	manager *surfacerod.Manager
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Open storage early - fail fast if unavailable
	kv, err := openKV(cfg, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to open %s storage: %v", cfg.Storage, err)
		os.Exit(1)
	}
	loggerClient.Info("storage initialized", logger.String("backend", cfg.Storage))

	store := state.New(state.WithLogger(loggerClient.Named("state")))
	adapter := persist.NewAdapter(kv, cfg.StateKey, loggerClient.Named("persist"))
	saver := scheduler.NewSaver(store, adapter, loggerClient.Named("saver"), cfg.SaveDebounce)

	br := bridge.New(store, loggerClient.Named("bridge"),
		bridge.WithNotifier(logNotifier{log: loggerClient}),
		bridge.WithSharer(logSharer{log: loggerClient}),
		bridge.WithThumbnailDelay(cfg.ThumbnailDelay),
		bridge.WithZoomReapplyDelay(cfg.ZoomReapplyDelay),
	)

	catalog := emulation.NewCatalog(nil)
	emulator := emulation.NewEmulator(catalog, cfg.ViewportWidth, cfg.ViewportHeight)

	a := &App{
		cfg:      cfg,
		logger:   loggerClient,
		kv:       kv,
		store:    store,
		adapter:  adapter,
		saver:    saver,
		bridge:   br,
		emulator: emulator,
	}

	// Device presets file is optional; the built-in list is used without it.
	if cfg.PresetsFile != "" {
		loggerClient.Info("presets file configured, initializing preset reloader",
			logger.String("file", cfg.PresetsFile))
		a.presetTrigger = make(chan struct{}, 1)
		a.presetReloader = scheduler.NewPresetReloader(
			cfg.PresetsFile,
			catalog,
			loggerClient.Named("presets"),
			cfg.PresetsReloadInterval,
			a.presetTrigger,
		)
	}

	if cfg.ThumbnailInterval > 0 {
		a.refresher = scheduler.NewThumbnailRefresher(br, loggerClient.Named("thumbnails"), cfg.ThumbnailInterval)
	}

	return a
}

func openKV(cfg *config.Config, log logger.Logger) (persist.KV, error) {
	switch cfg.Storage {
	case config.StorageRedis:
		log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(context.Background(), redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, log)
		if err != nil {
			return nil, err
		}
		return redisstore.NewStore(client), nil
	case config.StorageMemory:
		log.Warn("in-memory storage selected, state will not survive a restart")
		return memorystore.New(), nil
	default:
		store, err := badgerstore.Open(badgerstore.Options{Dir: cfg.DataDir}, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting tabshell v%s on %s", version.Version, a.cfg.ListenAddr)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Persisted state must be in the store before the first tab is shown.
	if err := a.adapter.Load(ctx, a.store); err != nil {
		a.logger.Warn("starting from default state", logger.Error(err))
	}
	a.logger.Info("state loaded",
		logger.Int("tabs", len(a.store.Tabs())),
		logger.String("active_tab", a.store.ActiveTabID()))
	a.importBookmarks()

	if err := a.saver.Start(ctx); err != nil {
		return fmt.Errorf("failed to start saver: %w", err)
	}
	a.logger.Info("snapshot saver started",
		logger.Duration("debounce", a.cfg.SaveDebounce))

	if a.presetReloader != nil {
		if err := a.presetReloader.Start(ctx); err != nil {
			a.logger.Warn("presets file unusable, keeping built-in presets", logger.Error(err))
			a.presetReloader.Stop()
			a.presetReloader = nil
			a.presetTrigger = nil
		} else {
			a.logger.Info("preset reloader started",
				logger.Duration("interval", a.cfg.PresetsReloadInterval))
		}
	}

	// The surface outlives the signal context so shutdown can close pages in order.
	surfaceCtx, cancelSurface := context.WithCancel(context.Background())
	defer cancelSurface()
	if a.cfg.Surface == config.SurfaceRod {
		if err := a.startSurface(surfaceCtx); err != nil {
			return err
		}
	}

	if a.refresher != nil {
		if err := a.refresher.Start(ctx); err != nil {
			return fmt.Errorf("failed to start thumbnail refresher: %w", err)
		}
		a.logger.Info("thumbnail refresher started",
			logger.Duration("interval", a.cfg.ThumbnailInterval))
	}

	server := httpserver.New(httpserver.Options{
		Addr:           a.cfg.ListenAddr,
		RequestTimeout: a.cfg.RequestTimeout,
	}, a.logger.Named("http"), a.deps())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Start(); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("⏳ Shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
		return nil
	})
	runErr := g.Wait()

	a.shutdown()
	cancelSurface()

	if runErr != nil {
		return runErr
	}
	a.logger.Info("✅ tabshell stopped cleanly")
	return nil
}

func (a *App) startSurface(ctx context.Context) error {
	browser, err := surfacerod.Connect(ctx, surfacerod.Options{
		ControlURL:        a.cfg.BrowserURL,
		Bin:               a.cfg.BrowserBin,
		Headless:          a.cfg.Headless,
		NavigationTimeout: a.cfg.NavTimeout,
	}, a.logger.Named("surface"))
	if err != nil {
		return fmt.Errorf("failed to start render surface: %w", err)
	}
	a.browser = browser
	a.manager = surfacerod.NewManager(browser, a.bridge, a.store, a.logger.Named("surface"))
	a.manager.Start(ctx)
	a.logger.Info("render surface started", logger.Bool("headless", a.cfg.Headless))
	return nil
}

func (a *App) deps() deps.Deps {
	d := deps.Deps{
		Logger:         a.logger.Named("http"),
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		TimeNow:        time.Now,
		Location:       time.Local,
		AllowedHosts:   a.cfg.AllowedHosts,
		AllowedCIDRS:   a.cfg.AllowedCIDRS,
		TrustProxy:     a.cfg.TrustProxy,
		RateLimit:      a.cfg.RateLimit,
		CORSOrigins:    a.cfg.CORSOrigins,
		Store:          a.store,
		Bridge:         a.bridge,
		Emulator:       a.emulator,
		StorageBackend: a.cfg.Storage,
	}
	if p, ok := a.kv.(deps.Pinger); ok {
		d.StoragePing = p
	}
	if a.manager != nil {
		d.Surfaces = a.manager
	}
	if a.presetTrigger != nil {
		d.PresetReloadTrigger = a.presetTrigger
	}
	return d
}

// shutdown stops the workers in dependency order once the server is down.
func (a *App) shutdown() {
	if a.refresher != nil {
		a.refresher.Stop()
	}
	if a.presetReloader != nil {
		a.presetReloader.Stop()
	}

	a.saver.Stop()
	flushCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.saver.Flush(flushCtx); err != nil {
		a.logger.Error("failed to write final snapshot", logger.Error(err))
	} else {
		a.logger.Info("✅ final snapshot written")
	}

	a.bridge.Close()
	if a.manager != nil {
		a.manager.Close()
	}
	if a.browser != nil {
		utils.CloseLogged(a.browser, "browser", a.logger)
	}
	utils.CloseLogged(a.kv, a.cfg.Storage, a.logger)
}

func (a *App) importBookmarks() {
	if a.cfg.BookmarksImport == "" {
		return
	}
	config, err := homepage.LoadFile(a.cfg.BookmarksImport)
	if err != nil {
		a.logger.Warn("bookmark import skipped",
			logger.String("file", a.cfg.BookmarksImport),
			logger.Error(err))
		return
	}
	res := homepage.Import(a.store, homepage.Entries(config))
	a.logger.Info("bookmarks imported",
		logger.String("file", a.cfg.BookmarksImport),
		logger.Int("added", res.Added),
		logger.Int("folders", res.Folders),
		logger.Int("skipped", res.Skipped))
}
