package avatar

import "strings"

// FileStem turns an identifier such as an email address into a file name
// without extension.
func FileStem(id string) string {
	id = strings.ReplaceAll(id, "@", "_at_")
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '_' || r == '-' || r == '+':
			return r
		}
		return '_'
	}, id)
}
