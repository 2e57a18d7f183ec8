package content

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestParseStats_KeepsDocumentOrder(t *testing.T) {
	stats := ParseStats([]byte(`{"Users": 1200, "Uptime": "99.9%", "Open Source": true, "Stars": 4.5}`))
	assert.Equal(t, []Stat{
		{Label: "Users", Value: "1200"},
		{Label: "Uptime", Value: "99.9%"},
		{Label: "Open Source", Value: "true"},
		{Label: "Stars", Value: "4.5"},
	}, stats)
}

func TestParseStats_NonObjectFallsBackToDefaults(t *testing.T) {
	for _, raw := range []string{``, `null`, `[1,2]`, `"text"`, `{"broken":`} {
		assert.Equal(t, DefaultStats(), ParseStats([]byte(raw)), "input %q", raw)
	}
}

func TestParseStats_EmptyObject(t *testing.T) {
	assert.Empty(t, ParseStats([]byte(`{}`)))
}

func TestEncodeStats_RoundTripsOrder(t *testing.T) {
	in := []Stat{{Label: "Zeta", Value: "1"}, {Label: "Alpha", Value: "two"}}
	raw, err := EncodeStats(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Zeta":"1","Alpha":"two"}`, string(raw))
	assert.Equal(t, in, ParseStats(raw))
}

func TestSortBySortOrder_StableWithUnsetLast(t *testing.T) {
	projects := []Project{
		{ID: "c", SortOrder: SortOrderOf(nil)},
		{ID: "a", SortOrder: SortOrderOf(intPtr(2))},
		{ID: "b", SortOrder: SortOrderOf(intPtr(1))},
		{ID: "d", SortOrder: SortOrderOf(intPtr(2))},
	}
	SortBySortOrder(projects, ProjectOrder)

	ids := make([]string, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"b", "a", "d", "c"}, ids)
	assert.True(t, IsOrdered(projects, ProjectOrder))
}

func TestSortOrder_UnsetEncodesAsNull(t *testing.T) {
	raw, err := json.Marshal(Skill{Name: "Go", SortOrder: UnsetSortOrder})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"sort_order":null`)
	assert.NotContains(t, string(raw), "2147483647")

	raw, err = json.Marshal(Skill{Name: "Go", SortOrder: 3})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"sort_order":3`)

	var back Skill
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Go","sort_order":null}`), &back))
	assert.False(t, back.SortOrder.IsSet())
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Go","sort_order":7}`), &back))
	assert.Equal(t, SortOrder(7), back.SortOrder)
}

func TestSkillValidate(t *testing.T) {
	valid := Skill{Name: "Go", Category: "Backend Development", Description: "Services", Proficiency: 90}
	require.NoError(t, valid.Validate())

	tooHigh := valid
	tooHigh.Proficiency = 101
	assert.Error(t, tooHigh.Validate())

	negative := valid
	negative.Proficiency = -1
	assert.Error(t, negative.Validate())

	unknown := valid
	unknown.Category = "Juggling"
	assert.Error(t, unknown.Validate())
}

func TestPersonalInfoValidate(t *testing.T) {
	require.NoError(t, PersonalInfo{Name: "Ada", Role: "Engineer", Email: "ada@example.com"}.Validate())
	assert.Error(t, PersonalInfo{Role: "Engineer"}.Validate())
	assert.Error(t, PersonalInfo{Name: "Ada", Role: "Engineer", Email: "not-an-email"}.Validate())
}

func TestProjectAndCertificationValidate(t *testing.T) {
	assert.NoError(t, Project{Name: "Site", Description: "A site"}.Validate())
	assert.Error(t, Project{Name: "Site"}.Validate())
	assert.NoError(t, Certification{Name: "CKA", Organization: "CNCF", Date: "2024"}.Validate())
	assert.Error(t, Certification{Name: "CKA", Date: "2024"}.Validate())
	assert.NoError(t, JourneyEntry{Phase: "1", Title: "Start", Period: "2020", Description: "d"}.Validate())
	assert.Error(t, JourneyEntry{Phase: "1"}.Validate())
}

func TestFilterProjects(t *testing.T) {
	projects := []Project{
		{ID: "1", Category: "Website", IsFeatured: true},
		{ID: "2", Category: "Mobile App"},
		{ID: "3", Category: "Website"},
	}
	assert.Len(t, FilterProjects(projects, AllProjects), 3)
	assert.Len(t, FilterProjects(projects, ""), 3)
	assert.Len(t, FilterProjects(projects, "Website"), 2)
	assert.Empty(t, FilterProjects(projects, "Desktop"))
	assert.Len(t, FeaturedProjects(projects), 1)
	assert.Equal(t, []string{AllProjects, "Mobile App", "Website", "Desktop"}, ProjectTabs())
}

func TestGroupSkillsAndStats(t *testing.T) {
	skills := []Skill{
		{Name: "Go", Category: "Backend Development", Proficiency: 95},
		{Name: "SQL", Category: "Database", Proficiency: 80},
		{Name: "Rust", Category: "Programming Languages", Proficiency: 70},
		{Name: "Postgres", Category: "Database", Proficiency: 90},
		{Name: "Juggling", Category: "Circus", Proficiency: 10},
	}

	groups := GroupSkills(skills)
	require.Len(t, groups, 3)
	assert.Equal(t, "Programming Languages", groups[0].Category)
	assert.Equal(t, "Backend Development", groups[1].Category)
	assert.Equal(t, "Database", groups[2].Category)
	assert.Len(t, groups[2].Skills, 2)

	stats := ComputeSkillStats(skills)
	assert.Equal(t, SkillStats{TotalSkills: 5, AverageProficiency: 69, ExpertSkills: 2, Categories: 3}, stats)
	assert.Equal(t, SkillStats{}, ComputeSkillStats(nil))
}

func TestComputeSkillStats_RoundsHalfUp(t *testing.T) {
	stats := ComputeSkillStats([]Skill{{Proficiency: 80}, {Proficiency: 81}})
	assert.Equal(t, 81, stats.AverageProficiency)
}

func TestViewOf_AppliesFallbacks(t *testing.T) {
	v := ViewOf(Project{Name: "Site", Description: "Long description"})
	assert.Equal(t, "Long description", v.Summary)
	assert.Equal(t, "Unknown", v.Start)
	assert.Equal(t, "Present", v.End)
	assert.Equal(t, DefaultProjectImage, v.Image)

	v = ViewOf(Project{ShortDescription: "Short", StartDate: "2023-01", EndDate: "2023-06", ImageURL: "/img.png"})
	assert.Equal(t, "Short", v.Summary)
	assert.Equal(t, "2023-01", v.Start)
	assert.Equal(t, "2023-06", v.End)
	assert.Equal(t, "/img.png", v.Image)
}
