// Package queries binds each content table to a query cache key. Every
// operation fetches its whole table once per cold key and serves the cached
// result afterwards.
package queries

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/querycache"
)

// Cache keys, one per content table.
const (
	KeyPersonalInfo    querycache.Key = "personal-info"
	KeyProjects        querycache.Key = "projects"
	KeySkills          querycache.Key = "skills"
	KeyCertifications  querycache.Key = "certifications"
	KeyJourneyTimeline querycache.Key = "journey-timeline"
)

// Keys lists every content key.
func Keys() []querycache.Key {
	return []querycache.Key{KeyPersonalInfo, KeyProjects, KeySkills, KeyCertifications, KeyJourneyTimeline}
}

// Result is the consumer view of a query. Data is shared with other callers
// and must not be modified.
type Result[T any] struct {
	Data      T
	IsLoading bool
	Err       error
}

// Query is one cached content read.
type Query[T any] struct {
	key   querycache.Key
	cache *querycache.Cache
	load  func(ctx context.Context) (T, error)
}

// Key returns the cache key the query is bound to.
func (q Query[T]) Key() querycache.Key { return q.key }

// Fetch waits for the query to settle and returns its result.
func (q Query[T]) Fetch(ctx context.Context) Result[T] {
	v, err := q.cache.Get(ctx, q.key, q.loader())
	return toResult[T](v, err)
}

// Refetch invalidates the key and fetches again.
func (q Query[T]) Refetch(ctx context.Context) Result[T] {
	v, err := q.cache.Refetch(ctx, q.key, q.loader())
	return toResult[T](v, err)
}

// State returns the current result without waiting or triggering a load.
// IsLoading is true while the first load for the key is pending.
func (q Query[T]) State() Result[T] {
	snap := q.cache.Peek(q.key)
	if snap.Status == querycache.StatusPending {
		return Result[T]{IsLoading: true}
	}
	return toResult[T](snap.Value, snap.Err)
}

func (q Query[T]) loader() querycache.Loader {
	return func(ctx context.Context) (any, error) {
		return q.load(ctx)
	}
}

func toResult[T any](v any, err error) Result[T] {
	if err != nil {
		return Result[T]{Err: err}
	}
	if v == nil {
		return Result[T]{}
	}
	data, ok := v.(T)
	if !ok {
		return Result[T]{Err: fmt.Errorf("queries: cached value has type %T", v)}
	}
	return Result[T]{Data: data}
}

// Client holds the five content queries.
type Client struct {
	PersonalInfo    Query[content.PersonalInfo]
	Projects        Query[[]content.Project]
	Skills          Query[[]content.Skill]
	Certifications  Query[[]content.Certification]
	JourneyTimeline Query[[]content.JourneyEntry]

	cache *querycache.Cache
}

// New binds store reads to cache keys.
func New(store content.Store, cache *querycache.Cache, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.With("component", "queries")

	return &Client{
		cache: cache,
		PersonalInfo: Query[content.PersonalInfo]{
			key:   KeyPersonalInfo,
			cache: cache,
			load: func(ctx context.Context) (content.PersonalInfo, error) {
				logger.Debug("fetching personal info")
				info, err := store.PersonalInfo(ctx)
				if err != nil {
					logger.Error("error fetching personal info", "error", err)
					return content.PersonalInfo{}, err
				}
				return info, nil
			},
		},
		Projects: Query[[]content.Project]{
			key:   KeyProjects,
			cache: cache,
			load:  orderedLoad(logger, "projects", store.Projects, content.ProjectOrder),
		},
		Skills: Query[[]content.Skill]{
			key:   KeySkills,
			cache: cache,
			load:  orderedLoad(logger, "skills", store.Skills, content.SkillOrder),
		},
		Certifications: Query[[]content.Certification]{
			key:   KeyCertifications,
			cache: cache,
			load:  orderedLoad(logger, "certifications", store.Certifications, content.CertificationOrder),
		},
		JourneyTimeline: Query[[]content.JourneyEntry]{
			key:   KeyJourneyTimeline,
			cache: cache,
			load:  orderedLoad(logger, "journey timeline", store.JourneyTimeline, content.JourneyOrder),
		},
	}
}

// InvalidateAll drops every cached content result.
func (c *Client) InvalidateAll() []querycache.Key {
	return c.cache.InvalidateAll()
}

func orderedLoad[T any](
	logger *slog.Logger,
	name string,
	fetch func(context.Context) ([]T, error),
	order func(T) content.SortOrder,
) func(context.Context) ([]T, error) {
	return func(ctx context.Context) ([]T, error) {
		logger.Debug("fetching "+name)
		rows, err := fetch(ctx)
		if err != nil {
			logger.Error("error fetching "+name, "error", err)
			return nil, err
		}
		if rows == nil {
			rows = []T{}
		}
		content.SortBySortOrder(rows, order)
		logger.Debug("fetched "+name, "count", len(rows))
		return rows, nil
	}
}
