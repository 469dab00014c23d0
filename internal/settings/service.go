package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-kedai/internal/cache"
)

// Service resolves and updates site settings.
type Service struct {
	Store  Store
	Cache  *cache.JSON
	Logger zerolog.Logger
}

// Get returns the resolved settings, served from cache when possible. When no
// store is configured the defaults are returned.
func (s *Service) Get(ctx context.Context) (SiteSettings, error) {
	if s == nil || s.Store == nil {
		return Defaults(), nil
	}
	var cached SiteSettings
	if hit, err := s.Cache.Get(ctx, cache.KeySiteSettings, &cached); err != nil {
		s.Logger.Warn().Err(err).Msg("settings cache read failed")
	} else if hit {
		return cached, nil
	}
	rows, err := s.Store.ListRows(ctx)
	if err != nil {
		return SiteSettings{}, fmt.Errorf("list settings: %w", err)
	}
	resolved := FromRows(rows)
	if err := s.Cache.Set(ctx, cache.KeySiteSettings, resolved); err != nil {
		s.Logger.Warn().Err(err).Msg("settings cache write failed")
	}
	return resolved, nil
}

// Update applies a partial update and returns the new settings.
func (s *Service) Update(ctx context.Context, update map[string]json.RawMessage) (SiteSettings, error) {
	if s == nil || s.Store == nil {
		return SiteSettings{}, errors.New("settings store not configured")
	}
	rows, err := RowsFromUpdate(update)
	if err != nil {
		return SiteSettings{}, err
	}
	if err := s.Store.Upsert(ctx, rows); err != nil {
		return SiteSettings{}, fmt.Errorf("upsert settings: %w", err)
	}
	if err := s.Cache.Delete(ctx, cache.KeySiteSettings); err != nil {
		s.Logger.Warn().Err(err).Msg("settings cache invalidation failed")
	}
	return s.Get(ctx)
}
