package skills

import (
	"context"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/viper"

	"github.com/jingkaihe/skillq/pkg/logger"
)

// Initialize builds the catalog from configuration. skill_dirs overrides the
// default directories and skills.allowed, when set, restricts the catalog
// to the listed names.
func Initialize(ctx context.Context) (Catalog, error) {
	var opts []Option
	if dirs := viper.GetStringSlice("skill_dirs"); len(dirs) > 0 {
		opts = append(opts, WithSkillDirs(dirs...))
	}

	discovery, err := NewDiscovery(opts...)
	if err != nil {
		return nil, err
	}

	logger.G(ctx).WithField("dirs", discovery.Dirs()).Debug("discovering skills")

	catalog := discovery.Load(ctx)
	return FilterByAllowlist(catalog, viper.GetStringSlice("skills.allowed")), nil
}

// FilterByAllowlist keeps only the allowed skills, preserving catalog order.
// Entries containing * or ? are glob patterns; other entries match names
// exactly. An empty allowlist keeps everything.
func FilterByAllowlist(catalog Catalog, allowed []string) Catalog {
	if len(allowed) == 0 {
		return catalog
	}

	keep := make(map[string]bool, len(allowed))
	var patterns []glob.Glob
	for _, name := range allowed {
		if strings.ContainsAny(name, "*?") {
			// If glob compilation fails, treat as exact match
			if g, err := glob.Compile(name); err == nil {
				patterns = append(patterns, g)
				continue
			}
		}
		keep[name] = true
	}

	filtered := make(Catalog, 0, len(catalog))
	for _, skill := range catalog {
		if keep[skill.Name] || matchesAny(patterns, skill.Name) {
			filtered = append(filtered, skill)
		}
	}
	return filtered
}

func matchesAny(patterns []glob.Glob, name string) bool {
	for _, g := range patterns {
		if g.Match(name) {
			return true
		}
	}
	return false
}
