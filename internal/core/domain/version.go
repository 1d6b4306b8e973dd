package domain

import "fmt"

// InitialVersion is the version assigned to a newly created document.
const InitialVersion = "1.0"

// BumpVersion advances a document's major.minor version string. A
// content change bumps the major component and resets the minor; a
// metadata-only change bumps the minor. Unparseable input restarts at
// the initial version.
func BumpVersion(current string, contentChanged bool) string {
	var major, minor int
	if _, err := fmt.Sscanf(current, "%d.%d", &major, &minor); err != nil {
		return InitialVersion
	}
	if contentChanged {
		return fmt.Sprintf("%d.0", major+1)
	}
	return fmt.Sprintf("%d.%d", major, minor+1)
}
