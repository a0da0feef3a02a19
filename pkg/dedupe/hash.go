package dedupe

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// NormalizeTitle lower-cases and trims a title.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// TitleHash returns the upper-case hex SHA-256 of the normalized title.
func TitleHash(title string) string {
	sum := sha256.Sum256([]byte(NormalizeTitle(title)))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// SimHash64 is the near-duplicate fingerprint of text.
// TODO: implement shingled SimHash once a near-duplicate threshold is agreed; always 0 until then.
func SimHash64(text string) int64 {
	_ = text
	return 0
}
