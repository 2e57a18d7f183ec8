package content

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Validate checks the personal info record.
func (p PersonalInfo) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Role, validation.Required),
		validation.Field(&p.Email, is.EmailFormat),
		validation.Field(&p.GithubURL, is.URL),
		validation.Field(&p.LinkedinURL, is.URL),
		validation.Field(&p.PortfolioURL, is.URL),
	)
}

// Validate checks a project row.
func (p Project) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Description, validation.Required),
		validation.Field(&p.LiveDemoURL, is.URL),
		validation.Field(&p.SourceCodeURL, is.URL),
	)
}

// Validate checks a skill row. Proficiency must lie in [0,100].
func (s Skill) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.Category, validation.Required, validation.In(toAny(SkillCategories)...)),
		validation.Field(&s.Description, validation.Required),
		validation.Field(&s.Proficiency, validation.Min(0), validation.Max(100)),
	)
}

// Validate checks a certification row.
func (c Certification) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Organization, validation.Required),
		validation.Field(&c.Date, validation.Required),
		validation.Field(&c.Link, is.URL),
	)
}

// Validate checks a timeline entry.
func (j JourneyEntry) Validate() error {
	return validation.ValidateStruct(&j,
		validation.Field(&j.Phase, validation.Required),
		validation.Field(&j.Title, validation.Required),
		validation.Field(&j.Period, validation.Required),
		validation.Field(&j.Description, validation.Required),
	)
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
