package util

import "strings"

// SafeArtifactName reports whether a client-supplied filename may be used
// to address a stored artifact. It rejects path traversal sequences and
// separators, and requires the expected suffix.
func SafeArtifactName(filename, suffix string) bool {
	if filename == "" {
		return false
	}
	if strings.Contains(filename, "..") ||
		strings.ContainsAny(filename, "/\\") {
		return false
	}
	return strings.HasSuffix(filename, suffix)
}
