package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jingkaihe/skillq/pkg/presenter"
	"github.com/jingkaihe/skillq/pkg/skills"
)

// Output formats for skill list
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

type SkillListConfig struct {
	Format string
}

func NewSkillListConfig() *SkillListConfig {
	return &SkillListConfig{
		Format: FormatTable,
	}
}

var skillCmd = &cobra.Command{
	Use:   "skill",
	Short: "Inspect the skill catalog",
	Long:  `List the discovered skills and show their content.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var skillListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all discovered skills",
	Long: `List all discovered skills with their names, descriptions, and directory paths.

Examples:
  skillq skill list
  skillq skill list --format json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		config := getSkillListConfigFromFlags(cmd)
		catalog, err := skills.Initialize(commandContext(cmd))
		if err != nil {
			return errors.Wrap(err, "failed to load skills")
		}
		if len(catalog) == 0 {
			reportEmptyCatalog(presenter.Default(), viper.GetStringSlice("skills.allowed"))
			return nil
		}
		return writeSkillList(cmd.OutOrStdout(), catalog, config.Format)
	},
}

var skillShowCmd = &cobra.Command{
	Use:   "show <skill-name>",
	Short: "Show the content of a skill",
	Long:  `Show a skill's metadata and the instructions that would be attached to a message.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := skills.Initialize(commandContext(cmd))
		if err != nil {
			return errors.Wrap(err, "failed to load skills")
		}
		skill, ok := catalog.Find(args[0])
		if !ok {
			return errors.Errorf("skill '%s' not found", args[0])
		}
		return showSkill(presenter.Default(), cmd.OutOrStdout(), skill)
	},
}

func init() {
	listDefaults := NewSkillListConfig()
	skillListCmd.Flags().StringP("format", "f", listDefaults.Format, "Output format (table, json, yaml)")

	skillCmd.AddCommand(skillListCmd)
	skillCmd.AddCommand(skillShowCmd)
}

func getSkillListConfigFromFlags(cmd *cobra.Command) *SkillListConfig {
	config := NewSkillListConfig()
	if format, err := cmd.Flags().GetString("format"); err == nil {
		config.Format = format
	}
	return config
}

// reportEmptyCatalog tells an allowlist that matched nothing apart from a
// machine with no skills at all.
func reportEmptyCatalog(p presenter.Presenter, allowed []string) {
	if len(allowed) > 0 {
		p.Warning(fmt.Sprintf("No installed skill matches skills.allowed (%s)", strings.Join(allowed, ", ")))
		return
	}
	p.Info("No skills installed")
}

// showSkill prints a skill's metadata and content. In quiet mode only the
// content is written, so it can be piped.
func showSkill(p presenter.Presenter, w io.Writer, skill skills.Skill) error {
	content, err := skills.ReadContent(skill)
	if err != nil {
		p.Warning(fmt.Sprintf("Skill '%s' was discovered but %s can no longer be read", skill.Name, skill.SourcePath))
		return err
	}

	if p.IsQuiet() {
		fmt.Fprint(w, content)
		return nil
	}

	p.Section(skill.Name)
	p.Field("Description", skill.Description)
	p.Field("Path", skill.SourcePath)
	p.Separator()
	p.Info(content)
	return nil
}

type skillEntry struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Directory   string `json:"directory" yaml:"directory"`
}

func writeSkillList(w io.Writer, catalog skills.Catalog, format string) error {
	entries := make([]skillEntry, 0, len(catalog))
	for _, skill := range catalog {
		entries = append(entries, skillEntry{
			Name:        skill.Name,
			Description: skill.Description,
			Directory:   skill.Directory,
		})
	}

	switch format {
	case FormatTable:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tDIRECTORY\tDESCRIPTION")
		fmt.Fprintln(tw, "----\t---------\t-----------")
		for _, e := range entries {
			description := e.Description
			if len(description) > 60 {
				description = description[:57] + "..."
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, e.Directory, description)
		}
		return tw.Flush()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return errors.Wrap(err, "failed to encode skills")
		}
		return enc.Close()
	default:
		return errors.Errorf("unknown format %q (expected table, json or yaml)", format)
	}
}
