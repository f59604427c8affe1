package skills

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jingkaihe/skillq/pkg/logger"
)

// FileName is the reserved name of the definition file inside a skill directory
const FileName = "SKILL.md"

// Discovery loads the skill catalog from an ordered list of directories
type Discovery struct {
	skillDirs []string
	lang      language.Tag
}

// Option is a function that configures a Discovery
type Option func(*Discovery) error

// WithSkillDirs sets the skill directories, highest priority first
func WithSkillDirs(dirs ...string) Option {
	return func(d *Discovery) error {
		d.skillDirs = dirs
		return nil
	}
}

// WithDefaultDirs scans the repo-local and user-global skill directories
func WithDefaultDirs() Option {
	return func(d *Discovery) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "failed to get user home directory")
		}
		d.skillDirs = []string{
			"./.skillq/skills",                          // Repo-local (highest precedence)
			filepath.Join(homeDir, ".skillq", "skills"), // User-global
			"./.claude/skills",
			filepath.Join(homeDir, ".claude", "skills"),
		}
		return nil
	}
}

// WithLanguage sets the locale used to order the catalog
func WithLanguage(tag language.Tag) Option {
	return func(d *Discovery) error {
		d.lang = tag
		return nil
	}
}

// NewDiscovery creates a new skill discovery instance. Without options it
// scans the default directories.
func NewDiscovery(opts ...Option) (*Discovery, error) {
	d := &Discovery{lang: languageFromEnv()}

	if len(opts) == 0 {
		opts = []Option{WithDefaultDirs()}
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Dirs returns the directories scanned, highest priority first
func (d *Discovery) Dirs() []string {
	return d.skillDirs
}

// Load scans every directory and returns the sorted catalog. Missing
// directories and broken skills are skipped, never reported as errors.
func (d *Discovery) Load(ctx context.Context) Catalog {
	var (
		catalog Catalog
		skipped *multierror.Error
	)
	seen := make(map[string]bool)

	for _, dir := range d.skillDirs {
		found, err := d.loadDir(dir)
		skipped = multierror.Append(skipped, err)

		for _, skill := range found {
			if seen[skill.Name] {
				logger.G(ctx).
					WithField("skill", skill.Name).
					WithField("path", skill.SourcePath).
					Debug("skill shadowed by higher priority directory")
				continue
			}
			seen[skill.Name] = true
			catalog = append(catalog, skill)
		}
	}

	if err := skipped.ErrorOrNil(); err != nil {
		logger.G(ctx).WithError(err).Debug("skipped entries while loading skills")
	}

	d.sort(catalog)

	logger.G(ctx).WithField("count", len(catalog)).Debug("skill catalog loaded")
	return catalog
}

// loadDir returns the accepted skills of one directory in enumeration
// order, together with the reasons any entries were skipped.
func (d *Discovery) loadDir(dir string) ([]Skill, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		// Missing or unreadable directory is expected
		return nil, nil
	}

	var (
		found   []Skill
		skipped *multierror.Error
	)
	for _, entry := range entries {
		entryPath := filepath.Join(dir, entry.Name())

		// os.Stat follows symlinks so linked skill directories are picked up
		info, err := os.Stat(entryPath)
		if err != nil || !info.IsDir() {
			continue
		}

		skillPath := filepath.Join(entryPath, FileName)
		if _, err := os.Stat(skillPath); err != nil {
			continue
		}

		skill, err := loadSkill(skillPath, entry.Name())
		if err != nil {
			skipped = multierror.Append(skipped, err)
			continue
		}

		if skill.Description == "" {
			skipped = multierror.Append(skipped, errors.Errorf("%s: missing description", skillPath))
			continue
		}

		skill.Directory = entryPath
		found = append(found, skill)
	}

	return found, skipped.ErrorOrNil()
}

func (d *Discovery) sort(catalog Catalog) {
	c := collate.New(d.lang)
	sort.SliceStable(catalog, func(i, j int) bool {
		return c.CompareString(catalog[i].Name, catalog[j].Name) < 0
	})
}

// loadSkill reads a SKILL.md file. A missing or malformed frontmatter block
// is not an error: the skill falls back to its directory name with an empty
// description.
func loadSkill(path, dirName string) (Skill, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Skill{}, errors.Wrap(err, "failed to read skill file")
	}

	skill := Skill{
		Name:       dirName,
		SourcePath: path,
	}

	md, err := parseMetadata(content)
	if err != nil {
		return skill, nil
	}

	if md.Name != "" {
		skill.Name = md.Name
	}
	skill.Description = md.Description
	return skill, nil
}

// parseMetadata extracts name and description from the frontmatter block.
// Well-formed YAML goes through goldmark-meta; blocks YAML rejects are read
// as plain key: value lines.
func parseMetadata(content []byte) (Metadata, error) {
	lines, ok := frontmatterLines(string(content))
	if !ok {
		return Metadata{}, errors.New("missing frontmatter")
	}

	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return Metadata{}, errors.Wrap(err, "failed to parse markdown")
	}

	// A YAML error leaves metaData nil and the line values stand alone
	metaData, _ := meta.TryGet(pctx)

	return Metadata{
		Name:        metaValue(metaData, lines, "name"),
		Description: metaValue(metaData, lines, "description"),
	}, nil
}

// metaValue prefers the raw line value so that colons and " #" survive.
// Quoted, block and flow values are taken from the YAML decode when there
// is one.
func metaValue(metaData map[string]interface{}, lines map[string]string, key string) string {
	raw := lines[key]
	if raw != "" && !strings.ContainsAny(raw[:1], "\"'|>[{") {
		return raw
	}
	if metaData == nil {
		if raw != "" && (raw[0] == '|' || raw[0] == '>') {
			return ""
		}
		return unquote(raw)
	}

	switch v := metaData[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case int, int64, uint64, float64, bool:
		return fmt.Sprint(v)
	default:
		return ""
	}
}

// frontmatterLines splits each top-level line of the frontmatter block on
// its first colon. Indented lines belong to the previous value and are
// skipped.
func frontmatterLines(content string) (map[string]string, bool) {
	lines := strings.Split(content, "\n")
	if strings.TrimRight(lines[0], "\r") != frontmatterMarker {
		return nil, false
	}

	fields := make(map[string]string)
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == frontmatterMarker {
			return fields, true
		}
		if line == "" || line[0] == ' ' || line[0] == '\t' || line[0] == '#' {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if _, seen := fields[key]; !seen {
			fields[key] = strings.TrimSpace(value)
		}
	}

	return nil, false
}

func unquote(value string) string {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '"' || first == '\'') && first == last {
			return strings.TrimSpace(value[1 : len(value)-1])
		}
	}
	return value
}

// languageFromEnv reads the collation locale from the usual POSIX variables
func languageFromEnv() language.Tag {
	for _, key := range []string{"LC_ALL", "LC_COLLATE", "LANG"} {
		value := os.Getenv(key)
		if value == "" || value == "C" || value == "POSIX" {
			continue
		}
		if i := strings.IndexAny(value, ".@"); i >= 0 {
			value = value[:i]
		}
		if tag, err := language.Parse(strings.ReplaceAll(value, "_", "-")); err == nil {
			return tag
		}
	}
	return language.English
}
