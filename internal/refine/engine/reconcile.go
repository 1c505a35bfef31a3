package engine

import (
	"strings"

	"github.com/stateofclarity/refinery/internal/core/domain"
)

// reconcile resolves conflicts between edits proposed by concurrently deployed
// fixers. First edit per section wins: any later edit touching a section that
// is already claimed is skipped, even one from the same fixer. Edit order
// follows fixer deployment order, so the outcome is deterministic.
func reconcile(edits []domain.Edit) (made, skipped []domain.Edit) {
	claimed := map[string]bool{}
	for _, edit := range edits {
		if claimed[edit.Section] {
			skipped = append(skipped, edit)
			continue
		}
		claimed[edit.Section] = true
		made = append(made, edit)
	}
	return made, skipped
}

// applyEdits rewrites brief content with the reconciled edits. Content is
// markdown with "## <section>" headers; an edit replaces its section's body,
// or appends a new section when the header doesn't exist yet.
func applyEdits(content string, edits []domain.Edit) string {
	for _, edit := range edits {
		if edit.Content == "" {
			continue
		}
		content = replaceSection(content, edit.Section, edit.Content)
	}
	return content
}

func replaceSection(content, section, body string) string {
	header := "## " + section
	start := strings.Index(content, header)
	if start < 0 {
		if content != "" && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		return content + "\n" + header + "\n\n" + body + "\n"
	}

	bodyStart := start + len(header)
	rest := content[bodyStart:]
	end := strings.Index(rest, "\n## ")
	if end < 0 {
		return content[:bodyStart] + "\n\n" + body + "\n"
	}
	return content[:bodyStart] + "\n\n" + body + "\n" + rest[end+1:]
}
