package sqlstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/Zachkp/portfolio/internal/content"
)

type personalInfoModel struct {
	bun.BaseModel `bun:"table:personal_info,alias:pi"`

	ID           string    `bun:"id,pk"`
	Name         string    `bun:"name,notnull"`
	Role         string    `bun:"role,notnull"`
	Bio          string    `bun:"bio,nullzero"`
	Quote        string    `bun:"quote,nullzero"`
	Email        string    `bun:"email,nullzero"`
	Phone        string    `bun:"phone,nullzero"`
	Location     string    `bun:"location,nullzero"`
	GithubURL    string    `bun:"github_url,nullzero"`
	LinkedinURL  string    `bun:"linkedin_url,nullzero"`
	PortfolioURL string    `bun:"portfolio_url,nullzero"`
	ImageURL     string    `bun:"image_url,nullzero"`
	ResumeURL    string    `bun:"resume_url,nullzero"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type projectModel struct {
	bun.BaseModel `bun:"table:projects,alias:p"`

	ID               string    `bun:"id,pk"`
	Name             string    `bun:"name,notnull"`
	Description      string    `bun:"description,notnull"`
	ShortDescription string    `bun:"short_description,nullzero"`
	Category         string    `bun:"category,notnull,default:'Website'"`
	Technologies     []string  `bun:"technologies,type:json"`
	Features         []string  `bun:"features,type:json"`
	Stats            string    `bun:"stats,nullzero"`
	StartDate        string    `bun:"start_date,nullzero"`
	EndDate          string    `bun:"end_date,nullzero"`
	LiveDemoURL      string    `bun:"live_demo_url,nullzero"`
	SourceCodeURL    string    `bun:"source_code_url,nullzero"`
	ImageURL         string    `bun:"image_url,nullzero"`
	SortOrder        *int      `bun:"sort_order"`
	IsFeatured       bool      `bun:"is_featured,notnull,default:false"`
	CreatedAt        time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt        time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type skillModel struct {
	bun.BaseModel `bun:"table:skills,alias:s"`

	ID          string    `bun:"id,pk"`
	Name        string    `bun:"name,notnull"`
	Category    string    `bun:"category,notnull"`
	Description string    `bun:"description,notnull"`
	Icon        string    `bun:"icon,nullzero"`
	Proficiency int       `bun:"proficiency,notnull"`
	SortOrder   *int      `bun:"sort_order"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type certificationModel struct {
	bun.BaseModel `bun:"table:certifications,alias:c"`

	ID           string    `bun:"id,pk"`
	Name         string    `bun:"name,notnull"`
	Organization string    `bun:"organization,notnull"`
	Date         string    `bun:"date,notnull"`
	Link         string    `bun:"link,nullzero"`
	SortOrder    *int      `bun:"sort_order"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type journeyModel struct {
	bun.BaseModel `bun:"table:journey_timeline,alias:j"`

	ID          string    `bun:"id,pk"`
	Phase       string    `bun:"phase,notnull"`
	Title       string    `bun:"title,notnull"`
	Period      string    `bun:"period,notnull"`
	Description string    `bun:"description,notnull"`
	Highlights  []string  `bun:"highlights,type:json"`
	Color       string    `bun:"color,nullzero"`
	Icon        string    `bun:"icon,nullzero"`
	SortOrder   *int      `bun:"sort_order"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func allModels() []any {
	return []any{
		(*personalInfoModel)(nil),
		(*projectModel)(nil),
		(*skillModel)(nil),
		(*certificationModel)(nil),
		(*journeyModel)(nil),
	}
}

func sortOrderPtr(v content.SortOrder) *int {
	if !v.IsSet() {
		return nil
	}
	i := int(v)
	return &i
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func modelToPersonalInfo(m *personalInfoModel) content.PersonalInfo {
	return content.PersonalInfo{
		ID:           m.ID,
		Name:         m.Name,
		Role:         m.Role,
		Bio:          m.Bio,
		Quote:        m.Quote,
		Email:        m.Email,
		Phone:        m.Phone,
		Location:     m.Location,
		GithubURL:    m.GithubURL,
		LinkedinURL:  m.LinkedinURL,
		PortfolioURL: m.PortfolioURL,
		ImageURL:     m.ImageURL,
		ResumeURL:    m.ResumeURL,
		UpdatedAt:    m.UpdatedAt,
	}
}

func personalInfoToModel(p content.PersonalInfo) *personalInfoModel {
	return &personalInfoModel{
		ID:           p.ID,
		Name:         p.Name,
		Role:         p.Role,
		Bio:          p.Bio,
		Quote:        p.Quote,
		Email:        p.Email,
		Phone:        p.Phone,
		Location:     p.Location,
		GithubURL:    p.GithubURL,
		LinkedinURL:  p.LinkedinURL,
		PortfolioURL: p.PortfolioURL,
		ImageURL:     p.ImageURL,
		ResumeURL:    p.ResumeURL,
	}
}

func modelToProject(m *projectModel) content.Project {
	var stats []content.Stat
	if m.Stats == "" {
		stats = content.DefaultStats()
	} else {
		stats = content.ParseStats([]byte(m.Stats))
	}
	return content.Project{
		ID:               m.ID,
		Name:             m.Name,
		Description:      m.Description,
		ShortDescription: m.ShortDescription,
		Category:         m.Category,
		Technologies:     orEmpty(m.Technologies),
		Features:         orEmpty(m.Features),
		Stats:            stats,
		StartDate:        m.StartDate,
		EndDate:          m.EndDate,
		LiveDemoURL:      m.LiveDemoURL,
		SourceCodeURL:    m.SourceCodeURL,
		ImageURL:         m.ImageURL,
		SortOrder:        content.SortOrderOf(m.SortOrder),
		IsFeatured:       m.IsFeatured,
		UpdatedAt:        m.UpdatedAt,
	}
}

func projectToModel(p content.Project) (*projectModel, error) {
	m := &projectModel{
		ID:               p.ID,
		Name:             p.Name,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Category:         p.Category,
		Technologies:     orEmpty(p.Technologies),
		Features:         orEmpty(p.Features),
		StartDate:        p.StartDate,
		EndDate:          p.EndDate,
		LiveDemoURL:      p.LiveDemoURL,
		SourceCodeURL:    p.SourceCodeURL,
		ImageURL:         p.ImageURL,
		SortOrder:        sortOrderPtr(p.SortOrder),
		IsFeatured:       p.IsFeatured,
	}
	if m.Category == "" {
		m.Category = "Website"
	}
	if p.Stats != nil {
		raw, err := content.EncodeStats(p.Stats)
		if err != nil {
			return nil, err
		}
		m.Stats = string(raw)
	}
	return m, nil
}

func modelToSkill(m *skillModel) content.Skill {
	return content.Skill{
		ID:          m.ID,
		Name:        m.Name,
		Category:    m.Category,
		Description: m.Description,
		Icon:        m.Icon,
		Proficiency: m.Proficiency,
		SortOrder:   content.SortOrderOf(m.SortOrder),
		UpdatedAt:   m.UpdatedAt,
	}
}

func skillToModel(s content.Skill) *skillModel {
	return &skillModel{
		ID:          s.ID,
		Name:        s.Name,
		Category:    s.Category,
		Description: s.Description,
		Icon:        s.Icon,
		Proficiency: s.Proficiency,
		SortOrder:   sortOrderPtr(s.SortOrder),
	}
}

func modelToCertification(m *certificationModel) content.Certification {
	return content.Certification{
		ID:           m.ID,
		Name:         m.Name,
		Organization: m.Organization,
		Date:         m.Date,
		Link:         m.Link,
		SortOrder:    content.SortOrderOf(m.SortOrder),
		UpdatedAt:    m.UpdatedAt,
	}
}

func certificationToModel(c content.Certification) *certificationModel {
	return &certificationModel{
		ID:           c.ID,
		Name:         c.Name,
		Organization: c.Organization,
		Date:         c.Date,
		Link:         c.Link,
		SortOrder:    sortOrderPtr(c.SortOrder),
	}
}

func modelToJourney(m *journeyModel) content.JourneyEntry {
	return content.JourneyEntry{
		ID:          m.ID,
		Phase:       m.Phase,
		Title:       m.Title,
		Period:      m.Period,
		Description: m.Description,
		Highlights:  orEmpty(m.Highlights),
		Color:       m.Color,
		Icon:        m.Icon,
		SortOrder:   content.SortOrderOf(m.SortOrder),
		UpdatedAt:   m.UpdatedAt,
	}
}

func journeyToModel(j content.JourneyEntry) *journeyModel {
	return &journeyModel{
		ID:          j.ID,
		Phase:       j.Phase,
		Title:       j.Title,
		Period:      j.Period,
		Description: j.Description,
		Highlights:  orEmpty(j.Highlights),
		Color:       j.Color,
		Icon:        j.Icon,
		SortOrder:   sortOrderPtr(j.SortOrder),
	}
}
