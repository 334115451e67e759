package utils

import "fmt"

const ShortenLogLength = 16

// ShortenLog shortens a hash or address for log lines, keeping the 0x prefix readable
func ShortenLog(hash string) string {
	indexCut := ShortenLogLength / 2
	if len(hash) <= ShortenLogLength {
		return hash
	}
	return fmt.Sprintf("%s...%s", hash[:indexCut+2], hash[len(hash)-indexCut:])
}
