package utils

import (
	"path/filepath"
	"strings"
)

// IsCSVFileName checks that an uploaded file name carries a .csv extension.
func IsCSVFileName(name string) bool {
	name = strings.TrimSpace(name)
	base := filepath.Base(name)
	if base == "." || base == "/" || strings.EqualFold(base, ".csv") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".csv")
}
