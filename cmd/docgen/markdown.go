package main

import (
	"fmt"
	"strings"
)

func frontMatter(pkg Package, modPath string) string {
	return fmt.Sprintf("---\nid: %s\ntitle: %s\nsidebar_position: %d\n---\n\n`import \"%s/%s\"`\n\n",
		pkg.Name, pkg.Title, pkg.Position, modPath, pkg.Path)
}

// processMarkdown strips the parts of gomarkdoc output the front matter
// replaces: the title line, the index and the import block. Collapsible
// example sections become bold headings.
func processMarkdown(content string) string {
	lines := strings.Split(content, "\n")
	var result []string
	inImport := false
	inIndex := false

	for i, line := range lines {
		if i == 0 && strings.HasPrefix(line, "# ") {
			continue
		}

		if line == "## Index" {
			inIndex = true
			continue
		}
		if inIndex {
			if !strings.HasPrefix(line, "## ") {
				continue
			}
			inIndex = false
		}

		if strings.HasPrefix(line, "```go") && i+1 < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[i+1]), "import ") {
			inImport = true
			continue
		}
		if inImport {
			if line == "```" {
				inImport = false
			}
			continue
		}

		if summary, ok := strings.CutPrefix(line, "<details><summary>"); ok && strings.HasSuffix(summary, "</summary>") {
			summary = strings.TrimSuffix(summary, "</summary>")
			result = append(result, "", "**"+summary+":**", "")
			continue
		}

		switch line {
		case "</details>", "<p>", "</p>":
			continue
		}
		result = append(result, line)
	}
	return strings.Join(result, "\n")
}
