package skills

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

const frontmatterMarker = "---"

// ReadContent re-reads the skill definition and returns it without the
// frontmatter block.
func ReadContent(skill Skill) (string, error) {
	content, err := os.ReadFile(skill.SourcePath)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read skill '%s'", skill.Name)
	}
	return StripFrontmatter(string(content)), nil
}

// StripFrontmatter removes the leading frontmatter block. Text without a
// complete block is returned unmodified.
func StripFrontmatter(content string) string {
	body, ok := splitFrontmatter(content)
	if !ok {
		return content
	}
	return body
}

// splitFrontmatter returns the text after the closing marker line. The
// block must open on the first line and is closed by the first later line
// that is exactly the marker.
func splitFrontmatter(content string) (string, bool) {
	lines := strings.Split(content, "\n")
	if strings.TrimRight(lines[0], "\r") != frontmatterMarker {
		return "", false
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontmatterMarker {
			return strings.TrimLeft(strings.Join(lines[i+1:], "\n"), "\r\n"), true
		}
	}

	return "", false
}
