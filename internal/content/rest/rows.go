package rest

import (
	"encoding/json"
	"time"

	"github.com/Zachkp/portfolio/internal/content"
)

// Rows mirror the hosted tables; nullable columns are pointers.

type personalInfoRow struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Bio          *string   `json:"bio"`
	Quote        *string   `json:"quote"`
	Email        *string   `json:"email"`
	Phone        *string   `json:"phone"`
	Location     *string   `json:"location"`
	GithubURL    *string   `json:"github_url"`
	LinkedinURL  *string   `json:"linkedin_url"`
	PortfolioURL *string   `json:"portfolio_url"`
	ImageURL     *string   `json:"image_url"`
	ResumeURL    *string   `json:"resume_url"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type projectRow struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	ShortDescription *string         `json:"short_description"`
	Category         string          `json:"category"`
	Technologies     []string        `json:"technologies"`
	Features         []string        `json:"features"`
	Stats            json.RawMessage `json:"stats"`
	StartDate        *string         `json:"start_date"`
	EndDate          *string         `json:"end_date"`
	LiveDemoURL      *string         `json:"live_demo_url"`
	SourceCodeURL    *string         `json:"source_code_url"`
	ImageURL         *string         `json:"image_url"`
	SortOrder        *int            `json:"sort_order"`
	IsFeatured       *bool           `json:"is_featured"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type skillRow struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Icon        *string   `json:"icon"`
	Proficiency int       `json:"proficiency"`
	SortOrder   *int      `json:"sort_order"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type certificationRow struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Organization string    `json:"organization"`
	Date         string    `json:"date"`
	Link         *string   `json:"link"`
	SortOrder    *int      `json:"sort_order"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type journeyRow struct {
	ID          string    `json:"id"`
	Phase       string    `json:"phase"`
	Title       string    `json:"title"`
	Period      string    `json:"period"`
	Description string    `json:"description"`
	Highlights  []string  `json:"highlights"`
	Color       *string   `json:"color"`
	Icon        *string   `json:"icon"`
	SortOrder   *int      `json:"sort_order"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func list(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func (r personalInfoRow) toContent() content.PersonalInfo {
	return content.PersonalInfo{
		ID:           r.ID,
		Name:         r.Name,
		Role:         r.Role,
		Bio:          str(r.Bio),
		Quote:        str(r.Quote),
		Email:        str(r.Email),
		Phone:        str(r.Phone),
		Location:     str(r.Location),
		GithubURL:    str(r.GithubURL),
		LinkedinURL:  str(r.LinkedinURL),
		PortfolioURL: str(r.PortfolioURL),
		ImageURL:     str(r.ImageURL),
		ResumeURL:    str(r.ResumeURL),
		UpdatedAt:    r.UpdatedAt,
	}
}

func (r projectRow) toContent() content.Project {
	return content.Project{
		ID:               r.ID,
		Name:             r.Name,
		Description:      r.Description,
		ShortDescription: str(r.ShortDescription),
		Category:         r.Category,
		Technologies:     list(r.Technologies),
		Features:         list(r.Features),
		Stats:            content.ParseStats(r.Stats),
		StartDate:        str(r.StartDate),
		EndDate:          str(r.EndDate),
		LiveDemoURL:      str(r.LiveDemoURL),
		SourceCodeURL:    str(r.SourceCodeURL),
		ImageURL:         str(r.ImageURL),
		SortOrder:        content.SortOrderOf(r.SortOrder),
		IsFeatured:       r.IsFeatured != nil && *r.IsFeatured,
		UpdatedAt:        r.UpdatedAt,
	}
}

func (r skillRow) toContent() content.Skill {
	return content.Skill{
		ID:          r.ID,
		Name:        r.Name,
		Category:    r.Category,
		Description: r.Description,
		Icon:        str(r.Icon),
		Proficiency: r.Proficiency,
		SortOrder:   content.SortOrderOf(r.SortOrder),
		UpdatedAt:   r.UpdatedAt,
	}
}

func (r certificationRow) toContent() content.Certification {
	return content.Certification{
		ID:           r.ID,
		Name:         r.Name,
		Organization: r.Organization,
		Date:         r.Date,
		Link:         str(r.Link),
		SortOrder:    content.SortOrderOf(r.SortOrder),
		UpdatedAt:    r.UpdatedAt,
	}
}

func (r journeyRow) toContent() content.JourneyEntry {
	return content.JourneyEntry{
		ID:          r.ID,
		Phase:       r.Phase,
		Title:       r.Title,
		Period:      r.Period,
		Description: r.Description,
		Highlights:  list(r.Highlights),
		Color:       str(r.Color),
		Icon:        str(r.Icon),
		SortOrder:   content.SortOrderOf(r.SortOrder),
		UpdatedAt:   r.UpdatedAt,
	}
}
