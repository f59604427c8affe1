package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jingkaihe/skillq/pkg/presenter"
	"github.com/jingkaihe/skillq/pkg/skills"
)

var listCatalog = skills.Catalog{
	{Name: "planning", Description: "Break work into steps", Directory: "/skills/planning"},
	{Name: "review", Description: strings.Repeat("x", 70), Directory: "/skills/review"},
}

func TestWriteSkillListTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSkillList(&buf, listCatalog, FormatTable))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Contains(t, lines[2], "planning")
	assert.Contains(t, lines[2], "/skills/planning")
	assert.Contains(t, lines[3], strings.Repeat("x", 57)+"...")
	assert.NotContains(t, lines[3], strings.Repeat("x", 58))
}

func TestWriteSkillListJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSkillList(&buf, listCatalog, FormatJSON))

	var entries []skillEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, skillEntry{Name: "planning", Description: "Break work into steps", Directory: "/skills/planning"}, entries[0])
}

func TestWriteSkillListYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSkillList(&buf, listCatalog[:1], FormatYAML))

	assert.Equal(t, "- name: planning\n  description: Break work into steps\n  directory: /skills/planning\n", buf.String())

	var entries []skillEntry
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &entries))
	assert.Equal(t, "planning", entries[0].Name)
}

func TestWriteSkillListUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := writeSkillList(&buf, listCatalog, "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestReportEmptyCatalog(t *testing.T) {
	t.Run("no skills installed", func(t *testing.T) {
		var out bytes.Buffer
		reportEmptyCatalog(presenter.NewWithOptions(&out, &out, presenter.ColorNever), nil)
		assert.Equal(t, "No skills installed\n", out.String())
	})

	t.Run("allowlist filtered everything", func(t *testing.T) {
		var out bytes.Buffer
		reportEmptyCatalog(presenter.NewWithOptions(&out, &out, presenter.ColorNever), []string{"plan*", "review"})
		assert.Equal(t, "⚠ No installed skill matches skills.allowed (plan*, review)\n", out.String())
	})
}

func newShowSkill(t *testing.T, body string) skills.Skill {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, skills.FileName)
	require.NoError(t, os.WriteFile(path, []byte("---\nname: planning\ndescription: Break work into steps\n---\n\n"+body), 0o644))
	return skills.Skill{Name: "planning", Description: "Break work into steps", Directory: dir, SourcePath: path}
}

func TestShowSkill(t *testing.T) {
	skill := newShowSkill(t, "Plan first.\n")

	var out, content bytes.Buffer
	require.NoError(t, showSkill(presenter.NewWithOptions(&out, &out, presenter.ColorNever), &content, skill))

	assert.Empty(t, content.String())
	assert.Contains(t, out.String(), "planning\n--------\n")
	assert.Contains(t, out.String(), "Description: Break work into steps\n")
	assert.Contains(t, out.String(), "Path:        "+skill.SourcePath+"\n")
	assert.True(t, strings.HasSuffix(out.String(), "Plan first.\n\n"))
}

func TestShowSkillQuietPrintsContentOnly(t *testing.T) {
	skill := newShowSkill(t, "Plan first.\n")

	var out, content bytes.Buffer
	p := presenter.NewWithOptions(&out, &out, presenter.ColorNever)
	p.SetQuiet(true)
	require.NoError(t, showSkill(p, &content, skill))

	assert.Empty(t, out.String())
	assert.Equal(t, "Plan first.\n", content.String())
}

func TestShowSkillUnreadableContent(t *testing.T) {
	skill := newShowSkill(t, "Plan first.\n")
	require.NoError(t, os.Remove(skill.SourcePath))

	var out, content bytes.Buffer
	err := showSkill(presenter.NewWithOptions(&out, &out, presenter.ColorNever), &content, skill)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read skill 'planning'")
	assert.Contains(t, out.String(), "⚠ Skill 'planning' was discovered but "+skill.SourcePath+" can no longer be read")
	assert.Empty(t, content.String())
}
