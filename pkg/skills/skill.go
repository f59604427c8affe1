// Package skills discovers the skills an operator can attach to an outgoing
// message. Skills are packaged as directories containing a SKILL.md file
// whose YAML frontmatter names and describes the skill.
package skills

// Skill is a discovered skill. Values are never mutated after load.
type Skill struct {
	Name        string // Unique name within the catalog
	Description string // One-line summary shown in the palette
	Directory   string // Skill directory as enumerated (symlink path preserved)
	SourcePath  string // SKILL.md path, re-read when the skill is injected
}

// Metadata is the frontmatter block of a SKILL.md file
type Metadata struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// Catalog is the deduplicated skill list, sorted by name.
type Catalog []Skill

// Names returns the skill names in catalog order
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for _, s := range c {
		names = append(names, s.Name)
	}
	return names
}

// Find returns the skill with the given name
func (c Catalog) Find(name string) (Skill, bool) {
	for _, s := range c {
		if s.Name == name {
			return s, true
		}
	}
	return Skill{}, false
}
