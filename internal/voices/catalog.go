// Package voices exposes the speech service's voice catalog, cached with a
// TTL and backed by a built-in table of official voices.
package voices

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/nikhilbhutani/podcastgen/internal/cache"
	"github.com/nikhilbhutani/podcastgen/internal/minimax"
	"github.com/nikhilbhutani/podcastgen/internal/podcast"
)

const (
	CategoryFemale    = "female"
	CategoryMale      = "male"
	CategoryCharacter = "character"
	CategoryCloned    = "cloned"
	CategoryGenerated = "generated"
)

const (
	SourceRemote  = "remote"
	SourceCache   = "cache"
	SourceBuiltin = "builtin"
)

const cacheKey = "voices:catalog"

type Voice struct {
	ID       string `json:"voice_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Official bool   `json:"official"`
}

// Listing is what List returns. Source says where the voices came from.
type Listing struct {
	Voices    []Voice   `json:"voices"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Lister is satisfied by *minimax.VoiceService.
type Lister interface {
	List(ctx context.Context, t minimax.VoiceType) (*minimax.VoiceList, error)
}

type Catalog struct {
	remote Lister
	cache  cache.Store
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Catalog)

func WithTTL(ttl time.Duration) Option {
	return func(c *Catalog) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// NewCatalog builds a catalog. remote and store may be nil, in which case
// the built-in table is served.
func NewCatalog(remote Lister, store cache.Store, opts ...Option) *Catalog {
	c := &Catalog{remote: remote, cache: store, ttl: 24 * time.Hour, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List serves the cached listing when fresh, otherwise fetches and caches
// the remote list. A failed fetch falls back to the built-in table and is
// not cached.
func (c *Catalog) List(ctx context.Context) (*Listing, error) {
	if c.cache != nil {
		var cached Listing
		err := c.cache.Get(ctx, cacheKey, &cached)
		if err == nil && len(cached.Voices) > 0 {
			cached.Source = SourceCache
			return &cached, nil
		}
		if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			slog.WarnContext(ctx, "voice cache read failed", "error", err)
		}
	}
	return c.Refresh(ctx)
}

// Refresh bypasses the cache.
func (c *Catalog) Refresh(ctx context.Context) (*Listing, error) {
	if c.remote == nil {
		return c.builtin(), nil
	}
	list, err := c.remote.List(ctx, minimax.VoiceTypeAll)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.WarnContext(ctx, "voice list fetch failed, serving built-in table", "error", err)
		return c.builtin(), nil
	}
	voices := fromRemote(list)
	if len(voices) == 0 {
		return c.builtin(), nil
	}
	listing := &Listing{Voices: voices, Source: SourceRemote, FetchedAt: c.now()}
	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, listing, c.ttl); err != nil {
			slog.WarnContext(ctx, "voice cache write failed", "error", err)
		}
	}
	return listing, nil
}

func (c *Catalog) builtin() *Listing {
	return &Listing{Voices: Official(), Source: SourceBuiltin, FetchedAt: c.now()}
}

func fromRemote(list *minimax.VoiceList) []Voice {
	var out []Voice
	seen := make(map[string]bool)
	add := func(info minimax.VoiceInfo, fallbackCategory string) {
		id := strings.TrimSpace(info.VoiceID)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		v := Voice{ID: id, Name: info.VoiceName, Category: fallbackCategory}
		if known, ok := officialByID[id]; ok {
			v.Official = true
			v.Category = known.Category
			if v.Name == "" {
				v.Name = known.Name
			}
		}
		if v.Name == "" {
			v.Name = id
		}
		out = append(out, v)
	}
	for _, info := range list.SystemVoice {
		add(info, CategoryCharacter)
	}
	for _, info := range list.VoiceCloning {
		add(info, CategoryCloned)
	}
	for _, info := range list.VoiceGeneration {
		add(info, CategoryGenerated)
	}
	return out
}

// Lookup finds id in the official table.
func Lookup(id string) (Voice, bool) {
	v, ok := officialByID[id]
	return v, ok
}

func IsOfficial(id string) bool {
	_, ok := officialByID[id]
	return ok
}

// Lookup searches the current listing first, then the official table.
func (c *Catalog) Lookup(ctx context.Context, id string) (Voice, bool) {
	if listing, err := c.List(ctx); err == nil {
		for _, v := range listing.Voices {
			if v.ID == id {
				return v, true
			}
		}
	}
	return Lookup(id)
}

// Recommended returns n distinct voices for scene: the scene defaults
// first, then its recommendations, then general presenter voices.
func Recommended(scene podcast.Scene, n int) []string {
	if n <= 0 {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, group := range [][]string{scene.DefaultVoices(), scene.RecommendedVoices(), backupVoices} {
		for _, id := range group {
			if len(out) == n {
				return out
			}
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// ByCategory groups voices for display, each group sorted by ID.
func ByCategory(voices []Voice) map[string][]Voice {
	out := make(map[string][]Voice)
	for _, v := range voices {
		out[v.Category] = append(out[v.Category], v)
	}
	for _, vs := range out {
		sort.Slice(vs, func(i, j int) bool { return vs[i].ID < vs[j].ID })
	}
	return out
}
