// Package visits records privacy-conscious page views and serves the admin
// API over them. Client addresses are stored only as salted hashes.
package visits

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Visit is one recorded page view.
type Visit struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// PathStat counts views of one path.
type PathStat struct {
	Path  string `bun:"path" json:"path"`
	Views int64  `bun:"views" json:"views"`
}

// Stats summarizes recorded visits.
type Stats struct {
	TotalVisits    int64      `json:"total_visits"`
	UniqueVisitors int64      `json:"unique_visitors"`
	VisitsToday    int64      `json:"visits_today"`
	VisitsThisWeek int64      `json:"visits_this_week"`
	TopPaths       []PathStat `json:"top_paths"`
	RecentVisits   []Visit    `json:"recent_visits"`
}

type visitModel struct {
	bun.BaseModel `bun:"table:visitors,alias:v"`

	ID        int64     `bun:"id,pk,autoincrement"`
	HashedIP  string    `bun:"hashed_ip,notnull"`
	UserAgent string    `bun:"user_agent,nullzero"`
	Path      string    `bun:"path,nullzero"`
	Timestamp time.Time `bun:"timestamp,notnull"`
}

func (m *visitModel) toVisit() Visit {
	return Visit{
		ID:        m.ID,
		HashedIP:  m.HashedIP,
		UserAgent: m.UserAgent,
		Path:      m.Path,
		Timestamp: m.Timestamp,
	}
}

// Store persists visits in the visitors table.
type Store struct {
	db  *bun.DB
	now func() time.Time
}

// NewStore wraps an open database.
func NewStore(db *bun.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Migrate creates the visitors table and its timestamp index.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*visitModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("visits.Migrate: %w", err)
	}
	_, err := s.db.NewCreateIndex().
		Model((*visitModel)(nil)).
		Index("visitors_timestamp_idx").
		IfNotExists().
		Column("timestamp").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("visits.Migrate: %w", err)
	}
	return nil
}

// Record stores one visit. A zero timestamp means now.
func (s *Store) Record(ctx context.Context, v Visit) error {
	if v.Timestamp.IsZero() {
		v.Timestamp = s.now()
	}
	m := &visitModel{
		HashedIP:  v.HashedIP,
		UserAgent: v.UserAgent,
		Path:      v.Path,
		Timestamp: v.Timestamp.UTC(),
	}
	if _, err := s.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return fmt.Errorf("visits.Record: %w", err)
	}
	return nil
}

// Recent returns the newest visits first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Visit, error) {
	var rows []visitModel
	err := s.db.NewSelect().
		Model(&rows).
		OrderExpr("timestamp DESC, id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("visits.Recent: %w", err)
	}
	out := make([]Visit, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toVisit())
	}
	return out, nil
}

func (s *Store) countSince(ctx context.Context, since time.Time) (int64, error) {
	q := s.db.NewSelect().Model((*visitModel)(nil))
	if !since.IsZero() {
		q = q.Where("timestamp >= ?", since.UTC())
	}
	n, err := q.Count(ctx)
	return int64(n), err
}

// Stats computes the admin dashboard summary.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	now := s.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	stats := &Stats{}
	var err error

	if stats.TotalVisits, err = s.countSince(ctx, time.Time{}); err != nil {
		return nil, fmt.Errorf("visits.Stats: total: %w", err)
	}
	if stats.VisitsToday, err = s.countSince(ctx, startOfDay); err != nil {
		return nil, fmt.Errorf("visits.Stats: today: %w", err)
	}
	if stats.VisitsThisWeek, err = s.countSince(ctx, now.Add(-7*24*time.Hour)); err != nil {
		return nil, fmt.Errorf("visits.Stats: week: %w", err)
	}

	err = s.db.NewSelect().
		Model((*visitModel)(nil)).
		ColumnExpr("COUNT(DISTINCT hashed_ip)").
		Scan(ctx, &stats.UniqueVisitors)
	if err != nil {
		return nil, fmt.Errorf("visits.Stats: unique: %w", err)
	}

	stats.TopPaths = []PathStat{}
	err = s.db.NewSelect().
		Model((*visitModel)(nil)).
		Column("path").
		ColumnExpr("COUNT(*) AS views").
		Group("path").
		OrderExpr("views DESC, path ASC").
		Limit(10).
		Scan(ctx, &stats.TopPaths)
	if err != nil {
		return nil, fmt.Errorf("visits.Stats: top paths: %w", err)
	}

	if stats.RecentVisits, err = s.Recent(ctx, 50); err != nil {
		return nil, err
	}
	return stats, nil
}

// Cleanup deletes visits older than retention and returns how many went.
func (s *Store) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now().Add(-retention).UTC()
	res, err := s.db.NewDelete().
		Model((*visitModel)(nil)).
		Where("timestamp < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("visits.Cleanup: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("visits.Cleanup: %w", err)
	}
	return n, nil
}
