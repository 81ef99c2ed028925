// Package referencedata serves the lookups that seed the questionnaire: states, local government
// areas, property types and policy tiers. Lists are read from Postgres, cached in Redis, and fall
// back to static defaults when neither is available.
package referencedata

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"property-quote/internal/common/errors"
	"property-quote/internal/common/logger"
	"property-quote/internal/common/metrics"
	"property-quote/internal/quote/catalog"
)

const cachePrefix = "refdata:"

type Service struct {
	db     *sql.DB
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewService creates the service. db and redisClient may be nil; lookups then use the cache
// only, or the static lists.
func NewService(db *sql.DB, redisClient *redis.Client, ttl time.Duration, log logger.Logger) *Service {
	return &Service{
		db:     db,
		redis:  redisClient,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "referencedata"}),
	}
}

func (s *Service) States(ctx context.Context) ([]State, Source) {
	return lookup(ctx, s, "states", fallbackStates, func(ctx context.Context) ([]State, error) {
		rows, err := s.db.QueryContext(ctx, queryStates)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var out []State
		for rows.Next() {
			var st State
			if err := rows.Scan(&st.Code, &st.Name); err != nil {
				return nil, err
			}
			out = append(out, st)
		}
		return out, rows.Err()
	})
}

// LGAs lists the local government areas of state. There is no static fallback; the LGA
// question is free text.
func (s *Service) LGAs(ctx context.Context, state string) ([]LGA, Source) {
	key := "lgas:" + strings.ToLower(strings.TrimSpace(state))
	return lookup(ctx, s, key, []LGA{}, func(ctx context.Context) ([]LGA, error) {
		rows, err := s.db.QueryContext(ctx, queryLGAs, state)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var out []LGA
		for rows.Next() {
			var l LGA
			if err := rows.Scan(&l.State, &l.Name); err != nil {
				return nil, err
			}
			out = append(out, l)
		}
		return out, rows.Err()
	})
}

func (s *Service) PropertyTypes(ctx context.Context) ([]PropertyType, Source) {
	return lookup(ctx, s, "property_types", fallbackPropertyTypes, func(ctx context.Context) ([]PropertyType, error) {
		rows, err := s.db.QueryContext(ctx, queryPropertyTypes)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var out []PropertyType
		for rows.Next() {
			var p PropertyType
			if err := rows.Scan(&p.Code, &p.Label); err != nil {
				return nil, err
			}
			out = append(out, p)
		}
		return out, rows.Err()
	})
}

func (s *Service) Tiers(ctx context.Context) ([]Tier, Source) {
	return lookup(ctx, s, "tiers", fallbackTiers, func(ctx context.Context) ([]Tier, error) {
		rows, err := s.db.QueryContext(ctx, queryTiers)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var out []Tier
		for rows.Next() {
			var t Tier
			if err := rows.Scan(&t.ID, &t.Label, &t.BasePrice); err != nil {
				return nil, err
			}
			out = append(out, t)
		}
		return out, rows.Err()
	})
}

// CatalogOptions loads every seeded list and returns the options to build a catalog with.
func (s *Service) CatalogOptions(ctx context.Context) []catalog.CatalogOption {
	states, _ := s.States(ctx)
	types, _ := s.PropertyTypes(ctx)
	tiers, _ := s.Tiers(ctx)

	stateOpts := make([]catalog.ReferenceOption, 0, len(states))
	for _, st := range states {
		stateOpts = append(stateOpts, catalog.ReferenceOption{Value: st.Name, Label: st.Name})
	}
	typeOpts := make([]catalog.ReferenceOption, 0, len(types))
	for _, p := range types {
		typeOpts = append(typeOpts, catalog.ReferenceOption{Value: p.Code, Label: p.Label})
	}
	tierOpts := make([]catalog.ReferenceOption, 0, len(tiers))
	for _, t := range tiers {
		tierOpts = append(tierOpts, catalog.ReferenceOption{Value: t.ID, Label: t.Label})
	}

	return []catalog.CatalogOption{
		catalog.WithStates(stateOpts),
		catalog.WithOccupancies(typeOpts),
		catalog.WithTiers(tierOpts),
	}
}

// Invalidate drops every cached list.
func (s *Service) Invalidate(ctx context.Context) error {
	if s.redis == nil {
		return nil
	}
	keys, err := s.redis.Keys(ctx, cachePrefix+"*").Result()
	if err != nil {
		return errors.NewReferenceDataFailedError("cache", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return s.redis.Del(ctx, keys...).Err()
}

// Refresh drops the cache and builds a catalog from freshly loaded lists.
func (s *Service) Refresh(ctx context.Context) (*catalog.Catalog, error) {
	if err := s.Invalidate(ctx); err != nil {
		return nil, err
	}
	c := catalog.New(s.CatalogOptions(ctx)...)
	if err := c.Check(); err != nil {
		return nil, errors.NewReferenceDataFailedError("catalog", err)
	}
	s.logger.Info("reference data refreshed", nil)
	return c, nil
}

// lookup reads key from the cache, then the database, then returns fallback. A database
// result is written back to the cache. An empty database result counts as a miss.
func lookup[T any](ctx context.Context, s *Service, key string, fallback []T,
	load func(context.Context) ([]T, error)) ([]T, Source) {
	cacheKey := cachePrefix + key

	if s.redis != nil {
		if val, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var cached []T
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached, SourceCache
			}
		} else if err != redis.Nil {
			s.logger.Warn("reference cache read failed", map[string]interface{}{"key": cacheKey, "error": err.Error()})
		}
	}

	if s.db != nil {
		items, err := load(ctx)
		switch {
		case err != nil:
			s.logger.Warn("reference lookup failed, using fallback", map[string]interface{}{
				"resource": key,
				"error":    err.Error(),
			})
		case len(items) > 0:
			if s.redis != nil {
				if data, err := json.Marshal(items); err == nil {
					if err := s.redis.Set(ctx, cacheKey, data, s.ttl).Err(); err != nil {
						s.logger.Warn("reference cache write failed", map[string]interface{}{"key": cacheKey, "error": err.Error()})
					}
				}
			}
			return items, SourceDatabase
		}
	}

	metrics.ReferenceDataFallbacks.WithLabelValues(resourceName(key)).Inc()
	out := make([]T, len(fallback))
	copy(out, fallback)
	return out, SourceFallback
}

func resourceName(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}
