package validation

import (
	"fmt"
	"strings"
)

// ValidateFilename validates a filename (not a full path) to prevent path traversal.
// Used for names built from server values such as export ids before they are joined
// to a directory.
func ValidateFilename(filename string) error {
	switch {
	case filename == "":
		return fmt.Errorf("filename cannot be empty")
	case strings.ContainsRune(filename, 0):
		return fmt.Errorf("filename contains null byte: %q", filename)
	case strings.ContainsAny(filename, `/\`):
		return fmt.Errorf("filename cannot contain path separators: %s", filename)
	case filename == "." || filename == "..":
		return fmt.Errorf("filename cannot be %q", filename)
	}
	return nil
}
