// Package profile holds the portfolio owner's public profile.
package profile

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed profile.yaml
var defaultProfile []byte

type Profile struct {
	Owner      Owner        `yaml:"owner" json:"owner"`
	About      string       `yaml:"about" json:"about"`
	Projects   []Project    `yaml:"projects" json:"projects"`
	Experience []Job        `yaml:"experience" json:"experience"`
	Education  []Education  `yaml:"education" json:"education"`
	Skills     []SkillGroup `yaml:"skills" json:"skills"`
}

type Owner struct {
	Name      string `yaml:"name" json:"name"`
	Title     string `yaml:"title" json:"title"`
	Email     string `yaml:"email" json:"email,omitempty"`
	GitHub    string `yaml:"github" json:"github,omitempty"`
	Location  string `yaml:"location" json:"location,omitempty"`
	Interests string `yaml:"interests" json:"interests,omitempty"`
}

// Project is one portfolio entry. Window names the desktop window that
// presents it.
type Project struct {
	Name        string   `yaml:"name" json:"name"`
	Window      string   `yaml:"window" json:"window"`
	Stack       []string `yaml:"stack" json:"stack"`
	Description string   `yaml:"description" json:"description"`
}

type Job struct {
	Role         string   `yaml:"role" json:"role"`
	Company      string   `yaml:"company" json:"company"`
	Period       string   `yaml:"period" json:"period"`
	Achievements []string `yaml:"achievements" json:"achievements"`
}

type Education struct {
	Degree      string   `yaml:"degree" json:"degree"`
	Institution string   `yaml:"institution" json:"institution"`
	Period      string   `yaml:"period" json:"period"`
	Notes       []string `yaml:"notes" json:"notes"`
}

type SkillGroup struct {
	Group string   `yaml:"group" json:"group"`
	Items []string `yaml:"items" json:"items"`
}

// Default returns the embedded profile.
func Default() *Profile {
	p, err := Parse(defaultProfile)
	if err != nil {
		panic(fmt.Sprintf("profile: embedded profile: %v", err))
	}
	return p
}

// Load reads a profile override from disk.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML profile. An owner name is required.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	if p.Owner.Name == "" {
		return nil, fmt.Errorf("parse profile: owner name is required")
	}
	return &p, nil
}

// YAML renders the profile back to YAML, used as the knowledge block of the
// chat assistant prompt.
func (p *Profile) YAML() string {
	data, err := yaml.Marshal(p)
	if err != nil {
		return ""
	}
	return string(data)
}
