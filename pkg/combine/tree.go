// File: pkg/combine/tree.go
package combine

import (
	"strings"

	"docweave/pkg/structure"
)

// GenerateTableOfContents lists the files of folder, then each subfolder
// followed by its own listing, indenting two spaces per level.
func GenerateTableOfContents(folder *structure.Folder) string {
	var b strings.Builder
	writeTableOfContents(&b, folder, 0)
	return b.String()
}

func writeTableOfContents(b *strings.Builder, folder *structure.Folder, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, name := range folder.Files() {
		b.WriteString(indent + "- " + name + "\n")
	}
	for _, name := range folder.Folders() {
		b.WriteString(indent + "- " + name + "/\n")
		child, _ := folder.Folder(name)
		writeTableOfContents(b, child, depth+1)
	}
}
