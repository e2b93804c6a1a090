package layout

import "regexp"

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)

// stripANSI removes colour sequences so the visible width can be measured
func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}
