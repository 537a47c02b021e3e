package banner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xtding233/recruit-engine/internal/currency"
	"github.com/xtding233/recruit-engine/internal/rarity"
)

// rawDefaults are the settings a defaults.yaml (or a file-local defaults
// block) can provide for every banner that does not set them itself.
type rawDefaults struct {
	FeaturedBias    *float64 `yaml:"featured_bias,omitempty"`
	TenPullDiscount *float64 `yaml:"ten_pull_discount,omitempty"`
	Pulls           []int    `yaml:"pulls,omitempty"`
}

type rawPity struct {
	Enabled     bool            `yaml:"enabled"`
	Ceiling     int             `yaml:"ceiling"`
	Target      rarity.Tier     `yaml:"target"`
	ResetOnPull *bool           `yaml:"reset_on_pull,omitempty"` // default true
	CarryOver   bool            `yaml:"carry_over"`
	Family      string          `yaml:"family,omitempty"`
	Soft        *SoftPityConfig `yaml:"soft,omitempty"`
}

type rawBanner struct {
	ID           string                  `yaml:"id"`
	Name         string                  `yaml:"name"`
	Active       *bool                   `yaml:"active,omitempty"` // default true
	Start        time.Time               `yaml:"start"`
	End          *time.Time              `yaml:"end,omitempty"`
	Rates        map[rarity.Tier]float64 `yaml:"rates"`
	Cost         currency.Tariff         `yaml:"cost"`
	Pulls        []int                   `yaml:"pulls,omitempty"`
	Pity         rawPity                 `yaml:"pity"`
	Guarantees   []GuaranteeRule         `yaml:"guarantees,omitempty"`
	Featured     []string                `yaml:"featured,omitempty"`
	FeaturedBias *float64                `yaml:"featured_bias,omitempty"`
}

type rawFile struct {
	Defaults *rawDefaults `yaml:"defaults,omitempty"`
	Banners  []rawBanner  `yaml:"banners"`
}

// Loader reads banner YAML files from a directory and resolves them into
// validated Banner values. Resolution order is defaults.yaml → file-local
// defaults → banner, with the most specific layer winning.
type Loader struct {
	dir string

	mu    sync.Mutex
	cache []*Banner
}

func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Load parses every *.yaml/*.yml under the loader's directory and returns
// the resolved banners. Results are cached until Invalidate.
func (l *Loader) Load() ([]*Banner, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cache != nil {
		return l.cache, nil
	}

	paths, err := bannerFiles(l.dir)
	if err != nil {
		return nil, err
	}

	base, err := readDefaults(filepath.Join(l.dir, "defaults.yaml"))
	if err != nil {
		return nil, fmt.Errorf("read defaults: %w", err)
	}

	var banners []*Banner
	ids := make(map[string]string) // id -> file it came from
	for _, path := range paths {
		if filepath.Base(path) == "defaults.yaml" {
			continue
		}
		var file rawFile
		if err := readYAML(path, &file); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		defaults := mergeDefaults(base, file.Defaults)
		for _, raw := range file.Banners {
			if prev, dup := ids[raw.ID]; dup {
				return nil, fmt.Errorf("banner %q defined in both %s and %s", raw.ID, prev, path)
			}
			ids[raw.ID] = path
			b, err := buildBanner(raw, defaults)
			if err != nil {
				return nil, fmt.Errorf("%s: banner %q: %w", path, raw.ID, err)
			}
			if err := Validate(b); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			banners = append(banners, b)
		}
	}
	l.cache = banners
	return banners, nil
}

// Invalidate clears the cache. Called by the file watcher on change.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = nil
}

// Paths returns the files the loader currently depends on, for watching.
func (l *Loader) Paths() ([]string, error) {
	paths, err := bannerFiles(l.dir)
	if err != nil {
		return nil, err
	}
	return append(paths, filepath.Join(l.dir, "defaults.yaml")), nil
}

func bannerFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read banner dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// readYAML loads one YAML file. A missing file is not an error; the zero
// value is left as-is.
func readYAML(path string, out interface{}) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(b, out)
}

func readDefaults(path string) (rawDefaults, error) {
	var d rawDefaults
	if err := readYAML(path, &d); err != nil {
		return rawDefaults{}, err
	}
	return d, nil
}

// mergeDefaults overlays b on a where b provides a value.
func mergeDefaults(a rawDefaults, b *rawDefaults) rawDefaults {
	if b == nil {
		return a
	}
	out := a
	if b.FeaturedBias != nil {
		out.FeaturedBias = b.FeaturedBias
	}
	if b.TenPullDiscount != nil {
		out.TenPullDiscount = b.TenPullDiscount
	}
	if len(b.Pulls) > 0 {
		out.Pulls = append([]int(nil), b.Pulls...)
	}
	return out
}

func buildBanner(raw rawBanner, defaults rawDefaults) (*Banner, error) {
	pulls := raw.Pulls
	if len(pulls) == 0 {
		pulls = defaults.Pulls
	}
	if len(pulls) == 0 {
		pulls = []int{1, 10}
	}

	tariff := raw.Cost
	if tariff.TenPullDiscount == 0 && defaults.TenPullDiscount != nil {
		tariff.TenPullDiscount = *defaults.TenPullDiscount
	}
	costs, err := tariff.Table(pulls)
	if err != nil {
		return nil, fmt.Errorf("cost: %w", err)
	}

	var bias *float64
	if raw.FeaturedBias != nil {
		v := *raw.FeaturedBias
		bias = &v
	} else if defaults.FeaturedBias != nil {
		v := *defaults.FeaturedBias
		bias = &v
	}

	active := true
	if raw.Active != nil {
		active = *raw.Active
	}
	resetOnPull := true
	if raw.Pity.ResetOnPull != nil {
		resetOnPull = *raw.Pity.ResetOnPull
	}

	rates := make(map[rarity.Tier]float64, len(raw.Rates))
	for t, w := range raw.Rates {
		rates[t] = w
	}

	return &Banner{
		ID:      raw.ID,
		Name:    raw.Name,
		Active:  active,
		StartAt: raw.Start,
		EndAt:   raw.End,
		Rates:   rates,
		Costs:   costs,
		Pity: PityConfig{
			Enabled:     raw.Pity.Enabled,
			Ceiling:     raw.Pity.Ceiling,
			Target:      raw.Pity.Target,
			ResetOnPull: resetOnPull,
			CarryOver:   raw.Pity.CarryOver,
			Family:      raw.Pity.Family,
			Soft:        raw.Pity.Soft,
		},
		Guarantees:   append([]GuaranteeRule(nil), raw.Guarantees...),
		Featured:     append([]string(nil), raw.Featured...),
		FeaturedBias: bias,
	}, nil
}
