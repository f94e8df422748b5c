package model

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// ResearchID derives a stable identifier from a question. The same question
// always maps to the same output directory and summary cache entry.
func ResearchID(question string) string {
	sum := sha3.Sum256([]byte(strings.TrimSpace(question)))
	return hex.EncodeToString(sum[:16])
}
