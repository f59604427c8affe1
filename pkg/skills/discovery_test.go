package skills

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// writeSkill creates dir/<dirName>/SKILL.md with the given content and
// returns the skill directory.
func writeSkill(t *testing.T, dir, dirName, content string) string {
	t.Helper()
	skillDir := filepath.Join(dir, dirName)
	require.NoError(t, os.MkdirAll(skillDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(skillDir, FileName), []byte(content), 0o644))
	return skillDir
}

func skillDoc(name, description, body string) string {
	return "---\nname: " + name + "\ndescription: " + description + "\n---\n\n" + body + "\n"
}

func TestNewDiscovery(t *testing.T) {
	t.Run("with default dirs", func(t *testing.T) {
		discovery, err := NewDiscovery()
		require.NoError(t, err)
		assert.Len(t, discovery.Dirs(), 4)
		assert.Equal(t, "./.skillq/skills", discovery.Dirs()[0])
	})

	t.Run("with custom dirs", func(t *testing.T) {
		customDirs := []string{"/tmp/skills1", "/tmp/skills2"}
		discovery, err := NewDiscovery(WithSkillDirs(customDirs...))
		require.NoError(t, err)
		assert.Equal(t, customDirs, discovery.Dirs())
	})
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	testDir := writeSkill(t, tmpDir, "test-skill", skillDoc("test-skill", "A test skill for unit testing", "# Test Skill"))
	writeSkill(t, tmpDir, "another-skill", skillDoc("another-skill", "Another test skill", "Some content here."))

	discovery, err := NewDiscovery(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	catalog := discovery.Load(context.Background())
	require.Len(t, catalog, 2)
	assert.Equal(t, []string{"another-skill", "test-skill"}, catalog.Names())

	testSkill, ok := catalog.Find("test-skill")
	require.True(t, ok)
	assert.Equal(t, "A test skill for unit testing", testSkill.Description)
	assert.Equal(t, testDir, testSkill.Directory)
	assert.Equal(t, filepath.Join(testDir, FileName), testSkill.SourcePath)

	_, ok = catalog.Find("missing")
	assert.False(t, ok)
}

func TestLoadWithSymlinks(t *testing.T) {
	tmpDir := t.TempDir()
	skillsDir := filepath.Join(tmpDir, "skills")
	require.NoError(t, os.MkdirAll(skillsDir, 0o755))

	actualSkillDir := writeSkill(t, filepath.Join(tmpDir, "actual-skills"), "symlinked-skill",
		skillDoc("symlinked-skill", "A skill accessed via symlink", "Linked."))

	symlinkPath := filepath.Join(skillsDir, "symlinked-skill")
	require.NoError(t, os.Symlink(actualSkillDir, symlinkPath))

	writeSkill(t, skillsDir, "regular-skill", skillDoc("regular-skill", "A regular skill directory", "Regular."))

	targetFile := filepath.Join(tmpDir, "somefile.txt")
	require.NoError(t, os.WriteFile(targetFile, []byte("just a file"), 0o644))
	require.NoError(t, os.Symlink(targetFile, filepath.Join(skillsDir, "file-symlink")))
	require.NoError(t, os.Symlink("/non/existent/path", filepath.Join(skillsDir, "broken-symlink")))
	require.NoError(t, os.WriteFile(filepath.Join(skillsDir, "README.md"), []byte("not a skill"), 0o644))

	discovery, err := NewDiscovery(WithSkillDirs(skillsDir))
	require.NoError(t, err)

	catalog := discovery.Load(context.Background())
	assert.Equal(t, []string{"regular-skill", "symlinked-skill"}, catalog.Names())

	linked, ok := catalog.Find("symlinked-skill")
	require.True(t, ok)
	assert.Equal(t, symlinkPath, linked.Directory)
}

func TestLoadPrecedence(t *testing.T) {
	highDir := t.TempDir()
	lowDir := t.TempDir()

	writeSkill(t, highDir, "shared-skill", skillDoc("shared-skill", "From first directory", "First."))
	writeSkill(t, lowDir, "shared-skill", skillDoc("shared-skill", "From second directory", "Second."))
	// Same frontmatter name under a different directory name still collides
	writeSkill(t, lowDir, "renamed", skillDoc("shared-skill", "Renamed duplicate", "Third."))
	writeSkill(t, lowDir, "low-only", skillDoc("low-only", "Only in low priority", "Low."))

	discovery, err := NewDiscovery(WithSkillDirs(highDir, lowDir))
	require.NoError(t, err)

	catalog := discovery.Load(context.Background())
	assert.Equal(t, []string{"low-only", "shared-skill"}, catalog.Names())

	shared, ok := catalog.Find("shared-skill")
	require.True(t, ok)
	assert.Equal(t, "From first directory", shared.Description)
	assert.Equal(t, filepath.Join(highDir, "shared-skill", FileName), shared.SourcePath)
}

func TestLoadMetadataFallback(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantName string // empty means the entry is dropped
	}{
		{
			name:     "missing name falls back to directory name",
			content:  "---\ndescription: Missing name field\n---\n\nContent.\n",
			wantName: "skill-dir",
		},
		{
			name:    "missing description",
			content: "---\nname: no-desc\n---\n\nContent.\n",
		},
		{
			name:    "empty description",
			content: "---\nname: empty-desc\ndescription: \"\"\n---\n",
		},
		{
			name:    "no frontmatter",
			content: "# Just content\nNo frontmatter here.\n",
		},
		{
			name:    "unclosed frontmatter",
			content: "---\nname: open\ndescription: never closed\n",
		},
		{
			name:     "yaml-invalid values are read as text",
			content:  "---\nname: [unclosed\ndescription: broken\n---\n",
			wantName: "[unclosed",
		},
		{
			name:    "block scalar in yaml-invalid block",
			content: "---\nname: block: x\ndescription: |\n  text\n---\n",
		},
		{
			name:    "non-string description",
			content: "---\nname: numeric\ndescription:\n  nested: value\n---\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			writeSkill(t, tmpDir, "skill-dir", tt.content)

			discovery, err := NewDiscovery(WithSkillDirs(tmpDir))
			require.NoError(t, err)

			catalog := discovery.Load(context.Background())
			if tt.wantName == "" {
				assert.Empty(t, catalog)
				return
			}
			assert.Equal(t, []string{tt.wantName}, catalog.Names())
		})
	}
}

func TestLoadKeyValueFrontmatter(t *testing.T) {
	tmpDir := t.TempDir()
	writeSkill(t, tmpDir, "colon", "---\nname: colon\ndescription: Use when: the user asks\n---\n\nBody.\n")
	writeSkill(t, tmpDir, "numeric", "---\nname: numeric\ndescription: 2024\n---\n\nBody.\n")
	writeSkill(t, tmpDir, "hash", "---\nname: hash\ndescription: Handles C# #tags\n---\n\nBody.\n")
	writeSkill(t, tmpDir, "plain", skillDoc("plain", "plain text", "Body."))
	writeSkill(t, tmpDir, "quoted", "---\nname: quoted\ndescription: \"Quoted: value\"\n---\n")
	writeSkill(t, tmpDir, "folded", "---\nname: folded\ndescription: >\n  Folded\n  text\n---\n")

	discovery, err := NewDiscovery(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	catalog := discovery.Load(context.Background())
	require.Equal(t, []string{"colon", "folded", "hash", "numeric", "plain", "quoted"}, catalog.Names())

	want := map[string]string{
		"colon":   "Use when: the user asks",
		"folded":  "Folded text",
		"hash":    "Handles C# #tags",
		"numeric": "2024",
		"plain":   "plain text",
		"quoted":  "Quoted: value",
	}
	for name, description := range want {
		skill, ok := catalog.Find(name)
		require.True(t, ok, name)
		assert.Equal(t, description, skill.Description, name)
	}
}

func TestParseMetadataNumericName(t *testing.T) {
	md, err := parseMetadata([]byte("---\nname: 42\ndescription: true\n---\n"))
	require.NoError(t, err)
	assert.Equal(t, "42", md.Name)
	assert.Equal(t, "true", md.Description)
}

func TestLoadSkipsUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}

	tmpDir := t.TempDir()
	broken := writeSkill(t, tmpDir, "broken", skillDoc("broken", "Unreadable", "x"))
	require.NoError(t, os.Chmod(filepath.Join(broken, FileName), 0o000))
	writeSkill(t, tmpDir, "healthy", skillDoc("healthy", "Readable", "x"))

	discovery, err := NewDiscovery(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	catalog := discovery.Load(context.Background())
	assert.Equal(t, []string{"healthy"}, catalog.Names())
}

func TestLoadIsSorted(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()

	for _, name := range []string{"zeta", "Mu", "alpha"} {
		writeSkill(t, first, name, skillDoc(name, "Skill "+name, "x"))
	}
	for _, name := range []string{"kappa", "Beta", "omega"} {
		writeSkill(t, second, name, skillDoc(name, "Skill "+name, "x"))
	}

	discovery, err := NewDiscovery(WithSkillDirs(first, second), WithLanguage(language.English))
	require.NoError(t, err)

	catalog := discovery.Load(context.Background())
	require.Len(t, catalog, 6)
	assert.Equal(t, []string{"alpha", "Beta", "kappa", "Mu", "omega", "zeta"}, catalog.Names())

	c := collate.New(language.English)
	for i := 1; i < len(catalog); i++ {
		assert.LessOrEqual(t, c.CompareString(catalog[i-1].Name, catalog[i].Name), 0)
	}
}

func TestNonExistentDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	writeSkill(t, tmpDir, "real", skillDoc("real", "Exists", "x"))

	discovery, err := NewDiscovery(WithSkillDirs("/non/existent/path", tmpDir))
	require.NoError(t, err)

	catalog := discovery.Load(context.Background())
	assert.Equal(t, []string{"real"}, catalog.Names())
}

func TestLanguageFromEnv(t *testing.T) {
	tests := []struct {
		name string
		lang string
		want language.Tag
	}{
		{name: "posix locale", lang: "en_GB.UTF-8", want: language.BritishEnglish},
		{name: "C locale", lang: "C", want: language.English},
		{name: "unset", lang: "", want: language.English},
		{name: "garbage", lang: "!!", want: language.English},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LC_ALL", "")
			t.Setenv("LC_COLLATE", "")
			t.Setenv("LANG", tt.lang)
			assert.Equal(t, tt.want.String(), languageFromEnv().String())
		})
	}
}
