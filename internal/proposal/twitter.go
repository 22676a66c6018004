package proposal

import (
	"strings"
	"unicode/utf8"
)

// CleanTwitter reduces a free-text twitter answer to a bare handle.
// A single leading '@' is stripped and URLs keep only their last path
// segment. Results of one character or less count as not provided.
func CleanTwitter(handle string) string {
	handle = strings.TrimPrefix(handle, "@")
	if i := strings.LastIndex(handle, "/"); i >= 0 {
		handle = handle[i+1:]
	}
	if utf8.RuneCountInString(handle) <= 1 {
		return ""
	}
	return handle
}
