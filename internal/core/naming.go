package core

import (
	"fmt"
	"strings"
)

// DocumentExt is the extension of every rendered document.
const DocumentExt = ".xlsx"

var pathSeparators = strings.NewReplacer("/", "_", "\\", "_")

// SafeName makes a group key usable as an archive entry name.
func SafeName(key string) string {
	return pathSeparators.Replace(key)
}

// DocumentNames returns the consolidated name followed by one file name per
// group key. Names that collide after sanitizing get a " (n)" suffix.
// Comparison ignores case since archives are mostly extracted on Windows.
func DocumentNames(consolidated string, keys []string) []string {
	names := make([]string, 0, len(keys)+1)
	taken := map[string]bool{strings.ToLower(consolidated): true}
	names = append(names, consolidated)

	for _, key := range keys {
		base := SafeName(key)
		name := base + DocumentExt
		for n := 1; taken[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s (%d)%s", base, n, DocumentExt)
		}
		taken[strings.ToLower(name)] = true
		names = append(names, name)
	}
	return names
}
