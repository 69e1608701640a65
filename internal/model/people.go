package model

// Person records are shared across events and referenced by ID. Names are
// neutral labels or lookup keys; resolving them to display text is left to
// the presentation layer (see internal/label).

type Instructor struct {
	ID        string   `yaml:"id" json:"id"`
	Name      string   `yaml:"name" json:"name"`
	Bio       string   `yaml:"bio,omitempty" json:"bio,omitempty"`
	Expertise []string `yaml:"expertise,omitempty" json:"expertise,omitempty"`
}

type Presenter struct {
	ID     string   `yaml:"id" json:"id"`
	Name   string   `yaml:"name" json:"name"`
	Bio    string   `yaml:"bio,omitempty" json:"bio,omitempty"`
	Topics []string `yaml:"topics,omitempty" json:"topics,omitempty"`
}

type Host struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	Bio  string `yaml:"bio,omitempty" json:"bio,omitempty"`
}

type DJ struct {
	ID     string   `yaml:"id" json:"id"`
	Name   string   `yaml:"name" json:"name"`
	Bio    string   `yaml:"bio,omitempty" json:"bio,omitempty"`
	Genres []string `yaml:"genres,omitempty" json:"genres,omitempty"`
}
