package content

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Bundle is a complete set of portfolio content, as read from a seed file.
type Bundle struct {
	PersonalInfo    PersonalInfo    `yaml:"personal_info"`
	Projects        []Project       `yaml:"projects"`
	Skills          []Skill         `yaml:"skills"`
	Certifications  []Certification `yaml:"certifications"`
	JourneyTimeline []JourneyEntry  `yaml:"journey_timeline"`
}

// DecodeBundle parses a YAML seed document, fills in missing ids and
// validates every row.
func DecodeBundle(r io.Reader) (Bundle, error) {
	var b Bundle
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		return Bundle{}, fmt.Errorf("content.DecodeBundle: %w", err)
	}
	b.AssignIDs()
	if err := b.Validate(); err != nil {
		return Bundle{}, fmt.Errorf("content.DecodeBundle: %w", err)
	}
	return b, nil
}

// AssignIDs gives every row without an id a random UUID.
func (b *Bundle) AssignIDs() {
	fill := func(id *string) {
		if *id == "" {
			*id = uuid.NewString()
		}
	}
	fill(&b.PersonalInfo.ID)
	for i := range b.Projects {
		fill(&b.Projects[i].ID)
	}
	for i := range b.Skills {
		fill(&b.Skills[i].ID)
	}
	for i := range b.Certifications {
		fill(&b.Certifications[i].ID)
	}
	for i := range b.JourneyTimeline {
		fill(&b.JourneyTimeline[i].ID)
	}
}

// Validate checks every row, reporting the first invalid one.
func (b Bundle) Validate() error {
	if err := b.PersonalInfo.Validate(); err != nil {
		return fmt.Errorf("personal_info: %w", err)
	}
	for i, p := range b.Projects {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("projects[%d] %q: %w", i, p.Name, err)
		}
	}
	for i, s := range b.Skills {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("skills[%d] %q: %w", i, s.Name, err)
		}
	}
	for i, c := range b.Certifications {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("certifications[%d] %q: %w", i, c.Name, err)
		}
	}
	for i, j := range b.JourneyTimeline {
		if err := j.Validate(); err != nil {
			return fmt.Errorf("journey_timeline[%d] %q: %w", i, j.Title, err)
		}
	}
	return nil
}
