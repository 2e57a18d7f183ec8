package content

// Filter tab labels that match every row.
const (
	AllProjects = "All Projects"
	AllSkills   = "All Skills"
)

// ProjectCategories are the project filter tabs, in display order.
var ProjectCategories = []string{"Mobile App", "Website", "Desktop"}

// SkillCategories is the fixed set of skill categories, in display order.
var SkillCategories = []string{
	"Programming Languages",
	"Frontend Development",
	"Backend Development",
	"Development Tools",
	"Database",
	"Cloud & Deployment",
	"Data Analysis",
	"Design & Other",
}

// ExpertProficiency is the proficiency at which a skill counts as expert.
const ExpertProficiency = 90

// ProjectTabs returns the project filter tabs including the catch-all.
func ProjectTabs() []string {
	return append([]string{AllProjects}, ProjectCategories...)
}

// SkillTabs returns the skill filter tabs including the catch-all.
func SkillTabs() []string {
	return append([]string{AllSkills}, SkillCategories...)
}

// FilterProjects keeps the projects in category. An empty category or
// AllProjects keeps everything.
func FilterProjects(projects []Project, category string) []Project {
	out := []Project{}
	for _, p := range projects {
		if category == "" || category == AllProjects || p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// FeaturedProjects keeps projects flagged as featured.
func FeaturedProjects(projects []Project) []Project {
	out := []Project{}
	for _, p := range projects {
		if p.IsFeatured {
			out = append(out, p)
		}
	}
	return out
}

// FilterSkills keeps the skills in category. An empty category or AllSkills
// keeps everything.
func FilterSkills(skills []Skill, category string) []Skill {
	out := []Skill{}
	for _, s := range skills {
		if category == "" || category == AllSkills || s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

// SkillGroup is the skills of one category.
type SkillGroup struct {
	Category string  `json:"category"`
	Skills   []Skill `json:"skills"`
}

// GroupSkills groups skills by the known categories, in category order.
// Empty categories and skills outside the known set are left out.
func GroupSkills(skills []Skill) []SkillGroup {
	groups := []SkillGroup{}
	for _, category := range SkillCategories {
		members := FilterSkills(skills, category)
		if len(members) > 0 {
			groups = append(groups, SkillGroup{Category: category, Skills: members})
		}
	}
	return groups
}

// SkillStats summarizes the skills page header.
type SkillStats struct {
	TotalSkills        int `json:"total_skills"`
	AverageProficiency int `json:"average_proficiency"`
	ExpertSkills       int `json:"expert_skills"`
	Categories         int `json:"categories"`
}

// ComputeSkillStats derives the header numbers. The average is rounded to
// the nearest integer, halves rounding up.
func ComputeSkillStats(skills []Skill) SkillStats {
	stats := SkillStats{
		TotalSkills: len(skills),
		Categories:  len(GroupSkills(skills)),
	}
	if len(skills) == 0 {
		return stats
	}
	sum := 0
	for _, s := range skills {
		sum += s.Proficiency
		if s.Proficiency >= ExpertProficiency {
			stats.ExpertSkills++
		}
	}
	stats.AverageProficiency = (2*sum + len(skills)) / (2 * len(skills))
	return stats
}

// DefaultProjectImage is used when a project has no image.
const DefaultProjectImage = "https://images.unsplash.com/photo-1517180102446-f3ece451e9d8?w=400&h=300&fit=crop&crop=center"

// ProjectView is a project with display fallbacks applied.
type ProjectView struct {
	Project
	Summary string
	Start   string
	End     string
	Image   string
}

// ViewOf applies the display fallbacks: short description falls back to the
// description, a missing start date shows "Unknown", a missing end date shows
// "Present".
func ViewOf(p Project) ProjectView {
	v := ProjectView{
		Project: p,
		Summary: p.ShortDescription,
		Start:   p.StartDate,
		End:     p.EndDate,
		Image:   p.ImageURL,
	}
	if v.Summary == "" {
		v.Summary = p.Description
	}
	if v.Start == "" {
		v.Start = "Unknown"
	}
	if v.End == "" {
		v.End = "Present"
	}
	if v.Image == "" {
		v.Image = DefaultProjectImage
	}
	return v
}
