// Package fuzzy ranks skills against the query typed into the skill palette.
//
// A verbatim (case-insensitive) substring match always beats a scattered
// subsequence match: containment scores in [100, 150) while a subsequence
// earns 10 points per matched character plus a bonus that grows by 5 for
// every consecutive match.
package fuzzy

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jingkaihe/skillq/pkg/skills"
)

const (
	containsBase   = 100.0
	containsSpread = 50.0
	matchPoints    = 10.0
	runBonusStep   = 5.0

	// DescriptionWeight scales description scores so a name match of the
	// same quality ranks first.
	DescriptionWeight = 0.8
)

// Score rates how well text matches query. Zero means no match. An empty
// query carries no signal and scores zero; Rank treats it as match-all.
func Score(query, text string) float64 {
	if query == "" {
		return 0
	}

	q := strings.ToLower(query)
	t := strings.ToLower(text)

	if strings.Contains(t, q) {
		return containsBase + float64(utf8.RuneCountInString(q))/float64(utf8.RuneCountInString(t))*containsSpread
	}

	need := []rune(q)
	var (
		score float64
		bonus float64
		next  int
	)
	for _, r := range t {
		if next == len(need) {
			break
		}
		if r == need[next] {
			score += matchPoints + bonus
			bonus += runBonusStep
			next++
			continue
		}
		bonus = 0
	}

	if next < len(need) {
		return 0
	}
	return score
}

// SkillScore is the better of the name score and the weighted description score
func SkillScore(query string, skill skills.Skill) float64 {
	return max(Score(query, skill.Name), Score(query, skill.Description)*DescriptionWeight)
}

// Rank filters catalog to the skills matching query, best first. Equal
// scores keep catalog order. A blank query returns the catalog unchanged.
func Rank(query string, catalog []skills.Skill) []skills.Skill {
	if strings.TrimSpace(query) == "" {
		return append([]skills.Skill(nil), catalog...)
	}

	type scored struct {
		skill skills.Skill
		score float64
	}

	matches := make([]scored, 0, len(catalog))
	for _, skill := range catalog {
		if s := SkillScore(query, skill); s > 0 {
			matches = append(matches, scored{skill: skill, score: s})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	ranked := make([]skills.Skill, 0, len(matches))
	for _, m := range matches {
		ranked = append(ranked, m.skill)
	}
	return ranked
}
