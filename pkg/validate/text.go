// Package validate screens tool definitions and tool-call payloads before
// they are trusted or dispatched.
package validate

import "fmt"

// Unicode prompt-injection background:
// https://www.robustintelligence.com/blog-posts/understanding-and-mitigating-unicode-tag-prompt-injection

// DetectionCategory classifies a problematic character found in tool text.
type DetectionCategory string

const (
	TagChar        DetectionCategory = "Unicode Tag (U+E0000-U+E007F)"
	BidiControl    DetectionCategory = "Bidirectional Control"
	InvisibleFmt   DetectionCategory = "Invisible Formatting"
	DeprecatedChar DetectionCategory = "Deprecated/Non-Character"
)

// Detection describes one problematic rune found in a scanned string.
type Detection struct {
	Rune       rune              `json:"rune"`
	Hex        string            `json:"hex"`   // e.g. "U+E0020"
	Index      int               `json:"index"` // byte index in the original string
	Category   DetectionCategory `json:"category"`
	Translated string            `json:"translated,omitempty"` // plaintext equivalent, if any
}

// isTag reports whether r is in the Unicode Tags block, which renders
// invisibly but survives into model context.
func isTag(r rune) bool {
	return r >= 0xE0000 && r <= 0xE007F
}

// isBidiControl covers the bidirectional control characters from TR9.
func isBidiControl(r rune) bool {
	return (r >= 0x202A && r <= 0x202E) || // LRE, RLE, PDF, LRO, RLO
		(r >= 0x2066 && r <= 0x2069) || // LRI, RLI, FSI, PDI
		r == 0x061C // ALM
}

// isInvisibleFormatting covers zero-width characters. Some have legitimate
// uses (ZWJ in emoji sequences), but their presence in a tool description
// is suspicious.
func isInvisibleFormatting(r rune) bool {
	switch r {
	case 0x200B, 0x200C, 0x200D, 0x2060, 0xFEFF:
		return true
	}
	return false
}

// isNonCharacter covers explicitly reserved non-characters.
func isNonCharacter(r rune) bool {
	if r >= 0xFDD0 && r <= 0xFDEF {
		return true
	}
	// FFFE/FFFF at the end of any plane
	return (r & 0xFFFE) == 0xFFFE
}

var bidiNames = map[rune]string{
	0x202A: "[LRE]", 0x202B: "[RLE]", 0x202C: "[PDF]",
	0x202D: "[LRO]", 0x202E: "[RLO]", 0x061C: "[ALM]",
	0x2066: "[LRI]", 0x2067: "[RLI]", 0x2068: "[FSI]", 0x2069: "[PDI]",
}

var invisibleNames = map[rune]string{
	0x200B: "[ZWSP]", 0x200C: "[ZWNJ]", 0x200D: "[ZWJ]",
	0x2060: "[WJ]", 0xFEFF: "[ZWNBSP/BOM]",
}

// DetectHiddenUnicode scans text for runes in the problematic categories
// above and returns one Detection per hit, with a plaintext translation
// where one exists. An empty result means the text is clean.
func DetectHiddenUnicode(text string) []Detection {
	detected := make([]Detection, 0)
	for index, r := range text {
		var category DetectionCategory
		var translated string

		switch {
		case isTag(r):
			category = TagChar
			switch {
			case r >= 0xE0020 && r <= 0xE007E:
				// Tag characters mirror ASCII printables U+0020..U+007E.
				translated = string(rune(r - 0xE0000))
			case r == 0xE0001:
				translated = "[Start Tag]"
			case r == 0xE007F:
				translated = "[Cancel Tag]"
			}
		case isBidiControl(r):
			category = BidiControl
			if name, ok := bidiNames[r]; ok {
				translated = name
			} else {
				translated = "[Bidi]"
			}
		case isInvisibleFormatting(r):
			category = InvisibleFmt
			if name, ok := invisibleNames[r]; ok {
				translated = name
			} else {
				translated = "[Invisible]"
			}
		case isNonCharacter(r):
			category = DeprecatedChar
			translated = "[NonChar]"
		default:
			continue
		}

		detected = append(detected, Detection{
			Rune:       r,
			Hex:        fmt.Sprintf("U+%04X", r),
			Index:      index,
			Category:   category,
			Translated: translated,
		})
	}
	return detected
}
