package textutil

import (
	"golang.org/x/text/unicode/norm"
)

// NormalizeFileName composes name into Unicode NFC and otherwise leaves it
// untouched. Attachment paths read back from HFS+ volumes are decomposed
// (NFD), which makes visually identical names compare unequal on other
// filesystems.
func NormalizeFileName(name string) string {
	return norm.NFC.String(name)
}
