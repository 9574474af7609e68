package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/deusflow/trenddigest/internal/news"
)

// Snapshot is the on-disk format written by the platform collectors.
type Snapshot struct {
	AsOf   string         `json:"as_of"`
	Source string         `json:"source"`
	Items  []SnapshotItem `json:"items"`
}

// SnapshotItem is one collected entry.
type SnapshotItem struct {
	Title       string        `json:"title"`
	Value       any           `json:"value,omitempty"`
	URL         string        `json:"url"`
	Translation string        `json:"translation,omitempty"`
	Extra       SnapshotExtra `json:"extra"`
}

// SnapshotExtra holds the optional fields collectors attach.
type SnapshotExtra struct {
	Translation string `json:"translation,omitempty"`
	Description string `json:"description,omitempty"`
	Summary     string `json:"summary,omitempty"`
	Category    string `json:"category,omitempty"`
}

// FileLoader reads platform snapshots from JSON files.
type FileLoader struct {
	MaxItems int
	Logger   *slog.Logger
}

// LoadPlatform returns the top items of one snapshot file. A missing file is
// not an error; it yields no items.
func (l *FileLoader) LoadPlatform(ctx context.Context, p Platform) ([]news.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p.Path)
	if errors.Is(err, os.ErrNotExist) {
		l.logger().Warn("snapshot missing", "platform", p.ID, "path", p.Path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", p.Path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", p.Path, err)
	}
	return SnapshotItems(p.ID, snap, l.MaxItems), nil
}

// SnapshotItems converts the first limit entries into items ranked by position.
// Entries with neither title nor link are dropped but keep their rank slot.
func SnapshotItems(platform string, snap Snapshot, limit int) []news.Item {
	entries := snap.Items
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	out := make([]news.Item, 0, len(entries))
	for idx, e := range entries {
		it := news.Item{
			Platform:    platform,
			Rank:        idx + 1,
			Title:       e.Title,
			URL:         e.URL,
			Translation: e.Extra.Translation,
			Extra: news.Extra{
				Description: e.Extra.Description,
				Summary:     e.Extra.Summary,
				Category:    e.Extra.Category,
			},
		}
		if it.Translation == "" {
			it.Translation = e.Translation
		}
		if !it.Usable() {
			continue
		}
		out = append(out, it)
	}
	return out
}

func (l *FileLoader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}
