package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-kedai/internal/cache"
)

// Service manages payment methods.
type Service struct {
	Store  Store
	Cache  *cache.JSON
	Logger zerolog.Logger
}

// All returns every stored method including inactive ones.
func (s *Service) All(ctx context.Context) ([]Method, error) {
	methods, err := s.Store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	return methods, nil
}

// Active returns the methods offered at checkout in display order.
func (s *Service) Active(ctx context.Context) ([]Method, error) {
	var cached []Method
	if hit, err := s.Cache.Get(ctx, cache.KeyPaymentMethods, &cached); err != nil {
		s.Logger.Warn().Err(err).Msg("payment cache read failed")
	} else if hit {
		return cached, nil
	}
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]Method, 0, len(all))
	for _, m := range all {
		if m.Active {
			active = append(active, m)
		}
	}
	if err := s.Cache.Set(ctx, cache.KeyPaymentMethods, active); err != nil {
		s.Logger.Warn().Err(err).Msg("payment cache write failed")
	}
	return active, nil
}

// Resolve returns the active method with the given id.
func (s *Service) Resolve(ctx context.Context, id string) (Method, error) {
	id = strings.TrimSpace(id)
	all, err := s.All(ctx)
	if err != nil {
		return Method{}, err
	}
	for _, m := range all {
		if m.ID != id {
			continue
		}
		if !m.Active {
			return Method{}, fmt.Errorf("%s: %w", id, ErrInactive)
		}
		return m, nil
	}
	return Method{}, fmt.Errorf("%s: %w", id, ErrNotFound)
}

// Save validates and stores a method.
func (s *Service) Save(ctx context.Context, m Method) (Method, error) {
	m.ID = strings.ToLower(strings.TrimSpace(m.ID))
	m.Name = strings.TrimSpace(m.Name)
	if err := Validate(m); err != nil {
		return Method{}, err
	}
	if err := s.Store.Save(ctx, m); err != nil {
		return Method{}, fmt.Errorf("save payment method: %w", err)
	}
	s.invalidate(ctx)
	return m, nil
}

// Delete removes a method.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.Cache.Delete(ctx, cache.KeyPaymentMethods); err != nil {
		s.Logger.Warn().Err(err).Msg("payment cache invalidation failed")
	}
}
