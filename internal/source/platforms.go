// Package source loads per-platform trending snapshots into a single item pool.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/deusflow/trenddigest/internal/news"
)

// Platform kinds.
const (
	KindFile = "file"
	KindFeed = "feed"
)

// Platform describes where one platform's snapshot comes from.
type Platform struct {
	ID   string `yaml:"id"`
	Kind string `yaml:"kind"`
	// Path is a snapshot file, relative to the data dir unless absolute.
	Path string `yaml:"path,omitempty"`
	URL  string `yaml:"url,omitempty"`
}

// PlatformsConfig is YAML config structure
//
//	platforms:
//	  - id: baidu_top
//	    kind: file
//	  - id: xinhua_news
//	    kind: feed
//	    url: https://...
type PlatformsConfig struct {
	Platforms []Platform `yaml:"platforms"`
}

// LoadOrder is the fixed order platforms are concatenated into the pool.
var LoadOrder = []string{
	"baidu_top",
	"weibo_hot",
	"xinhua_news",
	"tencent_wechat_hot",
	"thepaper_news",
	"ladymax_news",
}

// DefaultPlatforms returns every known platform as a snapshot file in dataDir.
func DefaultPlatforms(dataDir string) []Platform {
	out := make([]Platform, 0, len(LoadOrder))
	for _, id := range LoadOrder {
		out = append(out, Platform{
			ID:   id,
			Kind: KindFile,
			Path: filepath.Join(dataDir, id+".json"),
		})
	}
	return out
}

// LoadPlatforms reads the platform list from YAML. A missing file yields
// DefaultPlatforms. Relative snapshot paths are resolved against dataDir.
func LoadPlatforms(path, dataDir string) ([]Platform, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultPlatforms(dataDir), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg PlatformsConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(cfg.Platforms) == 0 {
		return nil, fmt.Errorf("%s lists no platforms", path)
	}

	seen := make(map[string]struct{})
	for i := range cfg.Platforms {
		p := &cfg.Platforms[i]
		if !news.KnownPlatform(p.ID) {
			return nil, fmt.Errorf("unknown platform %q", p.ID)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("platform %q listed twice", p.ID)
		}
		seen[p.ID] = struct{}{}

		if p.Kind == "" {
			p.Kind = KindFile
		}
		switch p.Kind {
		case KindFile:
			if p.Path == "" {
				p.Path = p.ID + ".json"
			}
			if !filepath.IsAbs(p.Path) {
				p.Path = filepath.Join(dataDir, p.Path)
			}
		case KindFeed:
			if p.URL == "" {
				return nil, fmt.Errorf("platform %q: feed url is required", p.ID)
			}
		default:
			return nil, fmt.Errorf("platform %q: unknown kind %q", p.ID, p.Kind)
		}
	}
	return cfg.Platforms, nil
}
