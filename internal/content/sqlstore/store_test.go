package sqlstore

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/Zachkp/portfolio/internal/content"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := Open("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := New(newTestDB(t))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, store.Migrate(ctx))
	return store
}

func testBundle() content.Bundle {
	b := content.Bundle{
		PersonalInfo: content.PersonalInfo{Name: "Ada", Role: "Engineer", Email: "ada@example.com"},
		Projects: []content.Project{
			{Name: "Third", Description: "d", Category: "Website", SortOrder: 3},
			{Name: "Unordered", Description: "d", Category: "Desktop", SortOrder: content.UnsetSortOrder},
			{Name: "First", Description: "d", Category: "Mobile App", SortOrder: 1,
				Technologies: []string{"Go", "HTMX"},
				Stats:        []content.Stat{{Label: "Users", Value: "10"}, {Label: "Age", Value: "2y"}}},
		},
		Skills: []content.Skill{
			{Name: "SQL", Category: "Database", Description: "d", Proficiency: 80, SortOrder: 2},
			{Name: "Go", Category: "Backend Development", Description: "d", Proficiency: 95, SortOrder: 1},
		},
		Certifications: []content.Certification{
			{Name: "B", Organization: "Org", Date: "2024", SortOrder: 2},
			{Name: "A", Organization: "Org", Date: "2023", SortOrder: 1, Link: "https://example.com/a"},
		},
		JourneyTimeline: []content.JourneyEntry{
			{Phase: "02", Title: "Later", Period: "2024", Description: "d", SortOrder: 2},
			{Phase: "01", Title: "Start", Period: "2020", Description: "d", SortOrder: 1, Highlights: []string{"first job"}},
		},
	}
	b.AssignIDs()
	return b
}

func TestStore_ReplaceAndReadOrdered(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Replace(ctx, testBundle()))

	info, err := store.PersonalInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada", info.Name)
	assert.Empty(t, info.Phone)

	projects, err := store.Projects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 3)
	assert.Equal(t, []string{"First", "Third", "Unordered"}, []string{projects[0].Name, projects[1].Name, projects[2].Name})
	assert.True(t, content.IsOrdered(projects, content.ProjectOrder))
	assert.Equal(t, []string{"Go", "HTMX"}, projects[0].Technologies)
	assert.Equal(t, []content.Stat{{Label: "Users", Value: "10"}, {Label: "Age", Value: "2y"}}, projects[0].Stats)
	assert.Equal(t, content.DefaultStats(), projects[1].Stats, "missing stats column falls back to defaults")
	assert.Equal(t, content.UnsetSortOrder, projects[2].SortOrder)
	assert.Empty(t, projects[1].Features)

	skills, err := store.Skills(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Go", skills[0].Name)

	certs, err := store.Certifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A", certs[0].Name)
	assert.Equal(t, "https://example.com/a", certs[0].Link)

	journey, err := store.JourneyTimeline(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Start", journey[0].Title)
	assert.Equal(t, []string{"first job"}, journey[0].Highlights)
}

func TestStore_ReplaceOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Replace(ctx, testBundle()))

	next := testBundle()
	next.Projects = nil
	require.NoError(t, store.Replace(ctx, next))

	projects, err := store.Projects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)

	_, err = store.PersonalInfo(ctx)
	assert.NoError(t, err, "replace keeps exactly one personal info row")
}

func TestStore_PersonalInfoSingleton(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.PersonalInfo(ctx)
	assert.ErrorIs(t, err, content.ErrSingletonNotFound)

	require.NoError(t, store.Replace(ctx, testBundle()))
	extra := personalInfoToModel(content.PersonalInfo{ID: "second", Name: "Bob", Role: "Designer"})
	extra.CreatedAt, extra.UpdatedAt = time.Now(), time.Now()
	_, err = store.db.NewInsert().Model(extra).Exec(ctx)
	require.NoError(t, err)

	_, err = store.PersonalInfo(ctx)
	assert.ErrorIs(t, err, content.ErrSingletonAmbiguous)
}

func TestStore_EmptyTables(t *testing.T) {
	store := newTestStore(t)
	skills, err := store.Skills(context.Background())
	require.NoError(t, err)
	assert.Empty(t, skills)
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "file:x?mode=memory", DSN("file:x?mode=memory"))
	assert.True(t, strings.HasPrefix(DSN("portfolio.db"), "file:portfolio.db?"))
}
