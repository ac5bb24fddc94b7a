package theme

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/Jaysins/ohship-tenant-sub000/internal/cache"
	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

const (
	KeyConfig    = "themeConfig"
	KeyVersion   = "themeConfigVersion"
	KeyTimestamp = "themeConfigTimestamp"

	DefaultFreshness = 30 * time.Minute
)

type API interface {
	GetThemeVersion(ctx context.Context) (models.ThemeVersion, error)
	GetThemeConfig(ctx context.Context) (models.TenantConfig, error)
}

// Entry is what the cache persists: the merged config, the server revision it came from and
// the epoch-ms it was last confirmed.
type Entry struct {
	Config    models.TenantConfig
	Version   int64
	Timestamp int64
}

type CacheInfo struct {
	HasCache         bool  `json:"hasCache"`
	Version          int64 `json:"version"`
	AgeSeconds       int64 `json:"age_seconds"`
	IsFresh          bool  `json:"isFresh"`
	ExpiresInSeconds int64 `json:"expiresIn_seconds"`
}

type Service struct {
	store     cache.Store
	api       API
	freshness time.Duration
	now       func() time.Time
	sf        singleflight.Group
}

func New(store cache.Store, api API, freshness time.Duration) *Service {
	if freshness <= 0 {
		freshness = DefaultFreshness
	}
	return &Service{store: store, api: api, freshness: freshness, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// GetThemeConfig returns the tenant configuration, touching the network only when the
// cached copy is older than the freshness window. A failed refresh falls back to the cached
// copy even when it is stale; with no cache at all the error is returned.
//
// Concurrent callers share one load. It outlives any single caller's cancellation; a
// cancelled caller stops waiting and the others still get the result.
func (s *Service) GetThemeConfig(ctx context.Context) (models.TenantConfig, error) {
	ch := s.sf.DoChan("theme-config", func() (any, error) {
		return s.load(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return models.TenantConfig{}, errors.Wrap(ctx.Err(), "theme config")
	case res := <-ch:
		if res.Err != nil {
			return models.TenantConfig{}, res.Err
		}
		return cloneConfig(res.Val.(models.TenantConfig)), nil
	}
}

// ConfigOrDefault never fails: callers that must render something use it at startup.
func (s *Service) ConfigOrDefault(ctx context.Context) models.TenantConfig {
	cfg, err := s.GetThemeConfig(ctx)
	if err != nil {
		slog.Warn("theme config unavailable, using defaults", "error", err.Error())
		return models.DefaultTenantConfig()
	}
	return cfg
}

func (s *Service) load(ctx context.Context) (models.TenantConfig, error) {
	now := s.now()
	entry, cached := s.readEntry(ctx)
	if cached && s.isFresh(entry, now) {
		return entry.Config, nil
	}

	ver, err := s.api.GetThemeVersion(ctx)
	if err != nil {
		return s.fallback(entry, cached, errors.Wrap(err, "theme version"))
	}

	if cached && entry.Version == ver.Version {
		if err := s.store.Set(ctx, KeyTimestamp, formatInt(now.UnixMilli())); err != nil {
			slog.Warn("extend theme cache", "error", err.Error())
		}
		return entry.Config, nil
	}

	raw, err := s.api.GetThemeConfig(ctx)
	if err != nil {
		return s.fallback(entry, cached, errors.Wrap(err, "theme config"))
	}
	cfg := MergeWithDefaults(raw)
	if err := s.writeEntry(ctx, Entry{Config: cfg, Version: ver.Version, Timestamp: now.UnixMilli()}); err != nil {
		slog.Warn("persist theme cache", "error", err.Error())
	}
	slog.Info("theme config refreshed", "version", ver.Version)
	return cfg, nil
}

func (s *Service) fallback(entry Entry, cached bool, err error) (models.TenantConfig, error) {
	if cached {
		slog.Warn("theme refresh failed, serving cached config", "version", entry.Version, "error", err.Error())
		return entry.Config, nil
	}
	slog.Error("theme refresh failed", "error", err.Error())
	return models.TenantConfig{}, err
}

// ClearThemeCache drops the cached entry. Safe to call repeatedly.
func (s *Service) ClearThemeCache(ctx context.Context) error {
	var firstErr error
	for _, k := range []string{KeyConfig, KeyVersion, KeyTimestamp} {
		if err := s.store.Remove(ctx, k); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Service) GetCacheInfo(ctx context.Context) CacheInfo {
	entry, ok := s.readEntry(ctx)
	if !ok {
		return CacheInfo{}
	}
	age := s.now().Sub(time.UnixMilli(entry.Timestamp))
	if age < 0 {
		age = 0
	}
	expiresIn := s.freshness - age
	if expiresIn < 0 {
		expiresIn = 0
	}
	return CacheInfo{
		HasCache:         true,
		Version:          entry.Version,
		AgeSeconds:       int64(age / time.Second),
		IsFresh:          age < s.freshness,
		ExpiresInSeconds: int64(expiresIn / time.Second),
	}
}

func (s *Service) isFresh(e Entry, now time.Time) bool {
	return now.Sub(time.UnixMilli(e.Timestamp)) < s.freshness
}

// readEntry treats any missing or unreadable key as "no cache".
func (s *Service) readEntry(ctx context.Context) (Entry, bool) {
	rawCfg, ok, err := s.store.Get(ctx, KeyConfig)
	if err != nil || !ok {
		return Entry{}, false
	}
	rawVer, ok, err := s.store.Get(ctx, KeyVersion)
	if err != nil || !ok {
		return Entry{}, false
	}
	rawTS, ok, err := s.store.Get(ctx, KeyTimestamp)
	if err != nil || !ok {
		return Entry{}, false
	}

	var e Entry
	if err := json.Unmarshal(rawCfg, &e.Config); err != nil {
		slog.Warn("corrupt theme cache", "error", err.Error())
		return Entry{}, false
	}
	if e.Version, err = strconv.ParseInt(string(rawVer), 10, 64); err != nil {
		return Entry{}, false
	}
	if e.Timestamp, err = strconv.ParseInt(string(rawTS), 10, 64); err != nil {
		return Entry{}, false
	}
	return e, true
}

// writeEntry stores the config first and the timestamp last, so a partially written entry
// never looks fresh.
func (s *Service) writeEntry(ctx context.Context, e Entry) error {
	b, err := json.Marshal(e.Config)
	if err != nil {
		return errors.Wrap(err, "encode theme config")
	}
	if err := s.store.Set(ctx, KeyConfig, b); err != nil {
		return err
	}
	if err := s.store.Set(ctx, KeyVersion, formatInt(e.Version)); err != nil {
		return err
	}
	return s.store.Set(ctx, KeyTimestamp, formatInt(e.Timestamp))
}

func formatInt(v int64) []byte {
	return []byte(strconv.FormatInt(v, 10))
}

func cloneConfig(c models.TenantConfig) models.TenantConfig {
	out := c
	if c.Features != nil {
		out.Features = make(map[string]bool, len(c.Features))
		for k, v := range c.Features {
			out.Features[k] = v
		}
	}
	return out
}
