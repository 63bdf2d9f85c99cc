package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/tabshell/internal/bridge"
	"github.com/MrSnakeDoc/tabshell/internal/emulation"
	"github.com/MrSnakeDoc/tabshell/internal/logger"
	"github.com/MrSnakeDoc/tabshell/internal/state"
)

// DeviceEmulator applies device metrics to a mounted tab. A zero size clears
// the override.
type DeviceEmulator interface {
	EmulateDevice(ctx context.Context, tabID string, width, height int, mobile bool) error
}

// Pinger reports whether a storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger              logger.Logger
	StartTime           time.Time
	Version             string
	Commit              string
	BuildDate           string
	GoVersion           string
	TimeNow             func() time.Time   // for testing, defaults to time.Now
	Location            *time.Location     // day boundaries for grouped history (nil = time.Local)
	AllowedHosts        []string           // Host headers allowed to access the API
	AllowedCIDRS        []string           // client IPs allowed to access the API
	TrustProxy          bool               // true if running behind a trusted reverse proxy
	RateLimit           int                // burst per client IP on mutating routes (0 = unlimited)
	CORSOrigins         []string           // browser origins allowed to call the API (empty = no CORS)
	Store               *state.Store       // authoritative browser state
	Bridge              *bridge.Bridge     // render-surface commands
	Emulator            *emulation.Emulator
	Surfaces            DeviceEmulator     // nil when no render surface is configured
	StorageBackend      string             // "badger" | "redis" | "memory"
	StoragePing         Pinger             // nil when the backend has nothing to ping
	PresetReloadTrigger chan struct{}      // manual preset reload (nil if no presets file)
}

// Now returns the configured clock, falling back to time.Now.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}

// Loc returns the configured location, falling back to time.Local.
func (d Deps) Loc() *time.Location {
	if d.Location != nil {
		return d.Location
	}
	return time.Local
}
