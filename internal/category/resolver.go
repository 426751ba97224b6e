// Package category resolves free-text item descriptions to a closed set of
// expense categories backed by a reviewable mapping asset.
package category

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Fallback is the category assigned when no mapping entry matches.
const Fallback = "misc"

//go:embed mapping.yaml
var defaultMapping []byte

type mappingFile struct {
	Categories map[string][]string `yaml:"categories"`
}

// Resolver maps item keywords to expense categories. Lookup is exact match
// first, then substring in either direction with the longest keyword winning
// ties. Safe for concurrent use; reloads swap the table atomically under the
// write lock.
type Resolver struct {
	byKeyword  map[string]string
	categories map[string]struct{}
	// keys holds all keywords sorted longest first for the substring pass.
	keys []string
	mu   sync.RWMutex
}

// NewResolver builds a resolver from the embedded mapping asset.
func NewResolver() (*Resolver, error) {
	r := &Resolver{}
	if err := r.load(defaultMapping); err != nil {
		return nil, err
	}
	return r, nil
}

// NewResolverFromFile builds a resolver from a mapping file on disk,
// overriding the embedded asset.
func NewResolverFromFile(path string) (*Resolver, error) {
	r := &Resolver{}
	if err := r.LoadFile(path); err != nil {
		return nil, err
	}
	return r, nil
}

// LoadFile replaces the mapping table with the contents of path.
// The current table is kept when the file cannot be read or parsed.
func (r *Resolver) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading category mapping: %w", err)
	}
	return r.load(data)
}

func (r *Resolver) load(data []byte) error {
	var mf mappingFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return fmt.Errorf("parsing category mapping: %w", err)
	}
	if len(mf.Categories) == 0 {
		return fmt.Errorf("category mapping has no categories")
	}

	byKeyword := make(map[string]string)
	categories := make(map[string]struct{})
	for name, keywords := range mf.Categories {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		categories[name] = struct{}{}
		for _, kw := range keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			byKeyword[kw] = name
		}
	}
	if len(byKeyword) == 0 {
		return fmt.Errorf("category mapping has no keywords")
	}

	keys := make([]string, 0, len(byKeyword))
	for k := range byKeyword {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	r.mu.Lock()
	r.byKeyword = byKeyword
	r.categories = categories
	r.keys = keys
	r.mu.Unlock()
	return nil
}

// Resolve returns the category for an item description. Empty input and
// unmatched items resolve to the fallback category; Resolve never fails.
func (r *Resolver) Resolve(item string) string {
	item = strings.ToLower(strings.TrimSpace(item))
	if item == "" {
		return Fallback
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if cat, ok := r.byKeyword[item]; ok {
		return cat
	}
	for _, key := range r.keys {
		if strings.Contains(item, key) || strings.Contains(key, item) {
			return r.byKeyword[key]
		}
	}
	return Fallback
}

// Known reports whether name is in the closed category set. The fallback
// category always counts, so mapping files without a misc section still
// accept it.
func (r *Resolver) Known(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == Fallback {
		return true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.categories[name]
	return ok
}

// Categories returns the sorted set of category names in the mapping.
func (r *Resolver) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.categories))
	for cat := range r.categories {
		names = append(names, cat)
	}
	sort.Strings(names)
	return names
}

// KeywordCount returns the number of keywords in the current table.
func (r *Resolver) KeywordCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.keys)
}

// Watch reloads the mapping from path whenever the file changes, until ctx
// is cancelled. Reload failures keep the current table.
func (r *Resolver) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating mapping watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watching %s: %w", path, err)
	}

	go r.watchLoop(ctx, watcher, path)
	return nil
}

func (r *Resolver) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string) {
	// Editors often fire several events per save; debounce before reloading.
	const debounceDelay = 500 * time.Millisecond
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			_ = watcher.Close()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				if err := r.LoadFile(path); err != nil {
					slog.Error("Failed to reload category mapping, keeping current table",
						"path", path,
						"error", err)
					return
				}
				slog.Info("Category mapping reloaded",
					"path", path,
					"keywords", r.KeywordCount())
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Category mapping watcher error", "error", err)
		}
	}
}
