// Package content defines the portfolio's content entities and the Store
// interface every content backend implements.
package content

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"
)

// Table names shared by every backend.
const (
	TablePersonalInfo    = "personal_info"
	TableProjects        = "projects"
	TableSkills          = "skills"
	TableCertifications  = "certifications"
	TableJourneyTimeline = "journey_timeline"
)

// SortOrder is a row's position in its list. Rows without an explicit
// sort_order carry UnsetSortOrder, which sorts after every ordered row and
// is encoded as JSON null.
type SortOrder int

// UnsetSortOrder marks a row with no sort_order.
const UnsetSortOrder SortOrder = math.MaxInt32

// IsSet reports whether the row has an explicit sort_order.
func (o SortOrder) IsSet() bool { return o != UnsetSortOrder }

// MarshalJSON implements json.Marshaler.
func (o SortOrder) MarshalJSON() ([]byte, error) {
	if !o.IsSet() {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, int64(o), 10), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *SortOrder) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = UnsetSortOrder
		return nil
	}
	v, err := strconv.Atoi(string(b))
	if err != nil {
		return fmt.Errorf("content.SortOrder: %w", err)
	}
	*o = SortOrder(v)
	return nil
}

var (
	// ErrSingletonNotFound is returned when personal_info has no row.
	ErrSingletonNotFound = errors.New("content: personal info row not found")
	// ErrSingletonAmbiguous is returned when personal_info has more than one row.
	ErrSingletonAmbiguous = errors.New("content: personal info has more than one row")
)

// Store reads portfolio content. List methods return rows ordered by
// SortOrder ascending.
type Store interface {
	PersonalInfo(ctx context.Context) (PersonalInfo, error)
	Projects(ctx context.Context) ([]Project, error)
	Skills(ctx context.Context) ([]Skill, error)
	Certifications(ctx context.Context) ([]Certification, error)
	JourneyTimeline(ctx context.Context) ([]JourneyEntry, error)
}

// PersonalInfo is the singleton profile record.
type PersonalInfo struct {
	ID           string    `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	Role         string    `json:"role" yaml:"role"`
	Bio          string    `json:"bio,omitempty" yaml:"bio"`
	Quote        string    `json:"quote,omitempty" yaml:"quote"`
	Email        string    `json:"email,omitempty" yaml:"email"`
	Phone        string    `json:"phone,omitempty" yaml:"phone"`
	Location     string    `json:"location,omitempty" yaml:"location"`
	GithubURL    string    `json:"github_url,omitempty" yaml:"github_url"`
	LinkedinURL  string    `json:"linkedin_url,omitempty" yaml:"linkedin_url"`
	PortfolioURL string    `json:"portfolio_url,omitempty" yaml:"portfolio_url"`
	ImageURL     string    `json:"image_url,omitempty" yaml:"image_url"`
	ResumeURL    string    `json:"resume_url,omitempty" yaml:"resume_url"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"-"`
}

// Stat is one labelled project statistic.
type Stat struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Project is one portfolio project.
type Project struct {
	ID               string    `json:"id" yaml:"id"`
	Name             string    `json:"name" yaml:"name"`
	Description      string    `json:"description" yaml:"description"`
	ShortDescription string    `json:"short_description,omitempty" yaml:"short_description"`
	Category         string    `json:"category" yaml:"category"`
	Technologies     []string  `json:"technologies" yaml:"technologies"`
	Features         []string  `json:"features" yaml:"features"`
	Stats            []Stat    `json:"stats" yaml:"stats"`
	StartDate        string    `json:"start_date,omitempty" yaml:"start_date"`
	EndDate          string    `json:"end_date,omitempty" yaml:"end_date"`
	LiveDemoURL      string    `json:"live_demo_url,omitempty" yaml:"live_demo_url"`
	SourceCodeURL    string    `json:"source_code_url,omitempty" yaml:"source_code_url"`
	ImageURL         string    `json:"image_url,omitempty" yaml:"image_url"`
	SortOrder        SortOrder `json:"sort_order" yaml:"sort_order"`
	IsFeatured       bool      `json:"is_featured" yaml:"is_featured"`
	UpdatedAt        time.Time `json:"updated_at" yaml:"-"`
}

// Skill is one skill with a 0-100 proficiency.
type Skill struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Category    string    `json:"category" yaml:"category"`
	Description string    `json:"description" yaml:"description"`
	Icon        string    `json:"icon,omitempty" yaml:"icon"`
	Proficiency int       `json:"proficiency" yaml:"proficiency"`
	SortOrder   SortOrder `json:"sort_order" yaml:"sort_order"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"-"`
}

// Certification is one earned certificate.
type Certification struct {
	ID           string    `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	Organization string    `json:"organization" yaml:"organization"`
	Date         string    `json:"date" yaml:"date"`
	Link         string    `json:"link,omitempty" yaml:"link"`
	SortOrder    SortOrder `json:"sort_order" yaml:"sort_order"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"-"`
}

// JourneyEntry is one phase of the about-page timeline.
type JourneyEntry struct {
	ID          string    `json:"id" yaml:"id"`
	Phase       string    `json:"phase" yaml:"phase"`
	Title       string    `json:"title" yaml:"title"`
	Period      string    `json:"period" yaml:"period"`
	Description string    `json:"description" yaml:"description"`
	Highlights  []string  `json:"highlights" yaml:"highlights"`
	Color       string    `json:"color,omitempty" yaml:"color"`
	Icon        string    `json:"icon,omitempty" yaml:"icon"`
	SortOrder   SortOrder `json:"sort_order" yaml:"sort_order"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"-"`
}

// SortOrderOf maps a nullable sort_order column to an ordering value.
func SortOrderOf(v *int) SortOrder {
	if v == nil {
		return UnsetSortOrder
	}
	return SortOrder(*v)
}

// SortBySortOrder stably orders rows by the value key returns.
func SortBySortOrder[T any](rows []T, key func(T) SortOrder) {
	slices.SortStableFunc(rows, func(a, b T) int {
		return cmp.Compare(key(a), key(b))
	})
}

// IsOrdered reports whether rows are non-decreasing by key.
func IsOrdered[T any](rows []T, key func(T) SortOrder) bool {
	return slices.IsSortedFunc(rows, func(a, b T) int {
		return cmp.Compare(key(a), key(b))
	})
}

// Sort keys for each list entity.
func ProjectOrder(p Project) SortOrder             { return p.SortOrder }
func SkillOrder(s Skill) SortOrder                 { return s.SortOrder }
func CertificationOrder(c Certification) SortOrder { return c.SortOrder }
func JourneyOrder(j JourneyEntry) SortOrder        { return j.SortOrder }
