package utils

import (
	"strconv"
)

// IntOr converts s to int, falling back to def when s is empty or invalid.
func IntOr(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
