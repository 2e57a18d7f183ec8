// Package sqlstore is the sqlite-backed content.Store.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"

	"github.com/Zachkp/portfolio/internal/content"
)

// orderBySortOrder puts rows without a sort order last, matching the hosted
// store's NULLS LAST ordering.
const orderBySortOrder = "sort_order IS NULL, sort_order ASC"

// DSN builds a modernc sqlite DSN for a database file.
func DSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Open opens a bun database on the sqlite DSN.
func Open(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore.Open: %w", err)
	}
	if err := sqldb.Ping(); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("sqlstore.Open: %w", err)
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// Store reads content tables through bun.
type Store struct {
	db *bun.DB
}

// New wraps an open database.
func New(db *bun.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the content tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, model := range allModels() {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("sqlstore.Migrate: %w", err)
		}
	}
	return nil
}

// PersonalInfo returns the single personal_info row.
func (s *Store) PersonalInfo(ctx context.Context) (content.PersonalInfo, error) {
	var rows []personalInfoModel
	if err := s.db.NewSelect().Model(&rows).Limit(2).Scan(ctx); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return content.PersonalInfo{}, fmt.Errorf("sqlstore.PersonalInfo: %w", err)
	}
	switch len(rows) {
	case 0:
		return content.PersonalInfo{}, content.ErrSingletonNotFound
	case 1:
		return modelToPersonalInfo(&rows[0]), nil
	default:
		return content.PersonalInfo{}, content.ErrSingletonAmbiguous
	}
}

// Projects returns every project ordered by sort_order.
func (s *Store) Projects(ctx context.Context) ([]content.Project, error) {
	var rows []projectModel
	if err := s.selectOrdered(ctx, &rows); err != nil {
		return nil, fmt.Errorf("sqlstore.Projects: %w", err)
	}
	out := make([]content.Project, len(rows))
	for i := range rows {
		out[i] = modelToProject(&rows[i])
	}
	return out, nil
}

// Skills returns every skill ordered by sort_order.
func (s *Store) Skills(ctx context.Context) ([]content.Skill, error) {
	var rows []skillModel
	if err := s.selectOrdered(ctx, &rows); err != nil {
		return nil, fmt.Errorf("sqlstore.Skills: %w", err)
	}
	out := make([]content.Skill, len(rows))
	for i := range rows {
		out[i] = modelToSkill(&rows[i])
	}
	return out, nil
}

// Certifications returns every certification ordered by sort_order.
func (s *Store) Certifications(ctx context.Context) ([]content.Certification, error) {
	var rows []certificationModel
	if err := s.selectOrdered(ctx, &rows); err != nil {
		return nil, fmt.Errorf("sqlstore.Certifications: %w", err)
	}
	out := make([]content.Certification, len(rows))
	for i := range rows {
		out[i] = modelToCertification(&rows[i])
	}
	return out, nil
}

// JourneyTimeline returns every timeline entry ordered by sort_order.
func (s *Store) JourneyTimeline(ctx context.Context) ([]content.JourneyEntry, error) {
	var rows []journeyModel
	if err := s.selectOrdered(ctx, &rows); err != nil {
		return nil, fmt.Errorf("sqlstore.JourneyTimeline: %w", err)
	}
	out := make([]content.JourneyEntry, len(rows))
	for i := range rows {
		out[i] = modelToJourney(&rows[i])
	}
	return out, nil
}

func (s *Store) selectOrdered(ctx context.Context, dest any) error {
	err := s.db.NewSelect().Model(dest).OrderExpr(orderBySortOrder).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}

// Replace swaps the stored content for b in one transaction.
func (s *Store) Replace(ctx context.Context, b content.Bundle) error {
	now := time.Now().UTC()

	info := personalInfoToModel(b.PersonalInfo)
	info.CreatedAt, info.UpdatedAt = now, now

	projects := make([]*projectModel, 0, len(b.Projects))
	for _, p := range b.Projects {
		m, err := projectToModel(p)
		if err != nil {
			return fmt.Errorf("sqlstore.Replace: %w", err)
		}
		m.CreatedAt, m.UpdatedAt = now, now
		projects = append(projects, m)
	}
	skills := make([]*skillModel, 0, len(b.Skills))
	for _, sk := range b.Skills {
		m := skillToModel(sk)
		m.CreatedAt, m.UpdatedAt = now, now
		skills = append(skills, m)
	}
	certs := make([]*certificationModel, 0, len(b.Certifications))
	for _, c := range b.Certifications {
		m := certificationToModel(c)
		m.CreatedAt, m.UpdatedAt = now, now
		certs = append(certs, m)
	}
	journey := make([]*journeyModel, 0, len(b.JourneyTimeline))
	for _, j := range b.JourneyTimeline {
		m := journeyToModel(j)
		m.CreatedAt, m.UpdatedAt = now, now
		journey = append(journey, m)
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range allModels() {
			if _, err := tx.NewDelete().Model(model).Where("1 = 1").Exec(ctx); err != nil {
				return err
			}
		}
		if _, err := tx.NewInsert().Model(info).Exec(ctx); err != nil {
			return err
		}
		if len(projects) > 0 {
			if _, err := tx.NewInsert().Model(&projects).Exec(ctx); err != nil {
				return err
			}
		}
		if len(skills) > 0 {
			if _, err := tx.NewInsert().Model(&skills).Exec(ctx); err != nil {
				return err
			}
		}
		if len(certs) > 0 {
			if _, err := tx.NewInsert().Model(&certs).Exec(ctx); err != nil {
				return err
			}
		}
		if len(journey) > 0 {
			if _, err := tx.NewInsert().Model(&journey).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sqlstore.Replace: %w", err)
	}
	return nil
}
