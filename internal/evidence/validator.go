// Package evidence validates and stores untrusted uploads attached to
// bans. Content is sniffed by magic number; accepted files are written
// under a single root with generated names so path traversal is
// structurally impossible.
package evidence

import "bytes"

// signature is a magic-number match at a fixed offset
type signature struct {
	offset int
	magic  []byte
}

func (s signature) matches(data []byte) bool {
	if len(data) < s.offset+len(s.magic) {
		return false
	}
	return bytes.Equal(data[s.offset:s.offset+len(s.magic)], s.magic)
}

// Executables and archives are rejected outright. The blocklist takes
// precedence over the allowlist.
var blockedSignatures = []signature{
	{0, []byte("MZ")},                   // Windows PE
	{0, []byte{0x7F, 'E', 'L', 'F'}},    // ELF
	{0, []byte{0xFE, 0xED, 0xFA, 0xCE}}, // Mach-O 32-bit
	{0, []byte{0xFE, 0xED, 0xFA, 0xCF}}, // Mach-O 64-bit
	{0, []byte{0xCE, 0xFA, 0xED, 0xFE}}, // Mach-O 32-bit, reversed
	{0, []byte{0xCF, 0xFA, 0xED, 0xFE}}, // Mach-O 64-bit, reversed
	{0, []byte{'P', 'K', 0x03, 0x04}},   // ZIP
	{0, []byte{'P', 'K', 0x05, 0x06}},   // ZIP, empty archive
}

var allowedSignatures = []signature{
	{0, []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}}, // PNG
	{0, []byte{0xFF, 0xD8, 0xFF}},                            // JPEG
	{0, []byte("GIF87a")},
	{0, []byte("GIF89a")},
	{8, []byte("WEBP")}, // RIFF....WEBP
	{0, []byte("BM")},   // BMP
	{0, []byte("%PDF")},
	{4, []byte("ftyp")},                 // MP4
	{0, []byte{0x1A, 0x45, 0xDF, 0xA3}}, // WebM / EBML
	{0, []byte{0xEF, 0xBB, 0xBF}},       // UTF-8 BOM text
}

// printableProbeLen is how many leading bytes the plain-text fallback
// inspects
const printableProbeLen = 100

// Validate reports whether the uploaded bytes are acceptable evidence.
// Blocked signatures win even when an allowed one also matches; buffers
// matching neither list are accepted only if their prefix looks like
// plain text.
func Validate(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	for _, sig := range blockedSignatures {
		if sig.matches(data) {
			return false
		}
	}

	// WEBP requires the RIFF container header as well
	if len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")) {
		return true
	}

	for _, sig := range allowedSignatures {
		if sig.offset == 8 {
			continue // handled with its container check above
		}
		if sig.matches(data) {
			return true
		}
	}

	return looksLikeText(data)
}

// looksLikeText accepts buffers whose leading bytes are all printable
// ASCII or common whitespace
func looksLikeText(data []byte) bool {
	probe := data
	if len(probe) > printableProbeLen {
		probe = probe[:printableProbeLen]
	}
	for _, b := range probe {
		if b >= 0x20 && b < 0x7F {
			continue
		}
		switch b {
		case '\t', '\n', '\r':
			continue
		}
		return false
	}
	return true
}
