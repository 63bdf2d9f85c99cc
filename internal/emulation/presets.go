package emulation

import (
	"fmt"
	"slices"
	"sync"
)

// ResponsiveID selects the free-form responsive viewport instead of a preset.
const ResponsiveID = "responsive"

// Responsive viewport bounds.
const (
	MinResponsiveWidth  = 200
	MinResponsiveHeight = 300
	MaxResponsiveSize   = 2800
)

type Category string

const (
	CategoryPhone   Category = "phone"
	CategoryTablet  Category = "tablet"
	CategoryDesktop Category = "desktop"
)

func (c Category) valid() bool {
	switch c {
	case CategoryPhone, CategoryTablet, CategoryDesktop:
		return true
	}
	return false
}

// Preset is a named device screen size.
type Preset struct {
	ID       string   `yaml:"id" json:"id"`
	Name     string   `yaml:"name" json:"name"`
	Width    int      `yaml:"width" json:"width"`
	Height   int      `yaml:"height" json:"height"`
	Category Category `yaml:"category" json:"category"`
}

func (p Preset) validate() error {
	switch {
	case p.ID == "":
		return fmt.Errorf("preset %q has no id", p.Name)
	case p.ID == ResponsiveID:
		return fmt.Errorf("preset id %q is reserved", p.ID)
	case p.Width <= 0 || p.Height <= 0:
		return fmt.Errorf("preset %q has invalid size %dx%d", p.ID, p.Width, p.Height)
	case !p.Category.valid():
		return fmt.Errorf("preset %q has unknown category %q", p.ID, p.Category)
	}
	return nil
}

// DefaultPresets returns the built-in device list.
func DefaultPresets() []Preset {
	return []Preset{
		{ID: "iphone-14", Name: "iPhone 14", Width: 390, Height: 844, Category: CategoryPhone},
		{ID: "iphone-14-pro", Name: "iPhone 14 Pro", Width: 393, Height: 852, Category: CategoryPhone},
		{ID: "iphone-se", Name: "iPhone SE", Width: 375, Height: 667, Category: CategoryPhone},
		{ID: "pixel-7", Name: "Pixel 7", Width: 412, Height: 915, Category: CategoryPhone},
		{ID: "galaxy-s23", Name: "Galaxy S23", Width: 384, Height: 854, Category: CategoryPhone},
		{ID: "ipad-pro-11", Name: `iPad Pro 11"`, Width: 834, Height: 1194, Category: CategoryTablet},
		{ID: "ipad-pro-12", Name: `iPad Pro 12.9"`, Width: 1024, Height: 1366, Category: CategoryTablet},
		{ID: "ipad-air", Name: "iPad Air", Width: 820, Height: 1180, Category: CategoryTablet},
		{ID: "surface-pro", Name: "Surface Pro 7", Width: 912, Height: 1368, Category: CategoryTablet},
		{ID: "desktop-1080", Name: "Desktop 1080p", Width: 1920, Height: 1080, Category: CategoryDesktop},
		{ID: "desktop-1440", Name: "Desktop 1440p", Width: 2560, Height: 1440, Category: CategoryDesktop},
		{ID: "macbook-pro", Name: `MacBook Pro 16"`, Width: 1728, Height: 1117, Category: CategoryDesktop},
	}
}

// ClampResponsive bounds a responsive viewport size.
func ClampResponsive(width, height int) (int, int) {
	return min(max(width, MinResponsiveWidth), MaxResponsiveSize),
		min(max(height, MinResponsiveHeight), MaxResponsiveSize)
}

// Catalog is a swappable, concurrency-safe preset list.
type Catalog struct {
	mu      sync.RWMutex
	presets []Preset
}

// NewCatalog returns a catalog holding presets, or the defaults when empty.
func NewCatalog(presets []Preset) *Catalog {
	if len(presets) == 0 {
		presets = DefaultPresets()
	}
	return &Catalog{presets: slices.Clone(presets)}
}

func (c *Catalog) All() []Preset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.presets)
}

func (c *Catalog) Get(id string) (Preset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := slices.IndexFunc(c.presets, func(p Preset) bool { return p.ID == id })
	if i < 0 {
		return Preset{}, false
	}
	return c.presets[i], true
}

// Replace swaps the preset list. An empty list is ignored.
func (c *Catalog) Replace(presets []Preset) {
	if len(presets) == 0 {
		return
	}
	c.mu.Lock()
	c.presets = slices.Clone(presets)
	c.mu.Unlock()
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.presets)
}
