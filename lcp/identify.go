package lcp

import (
	"encoding/binary"
	"path/filepath"
	"strings"

	"github.com/robert-malhotra/go-georaster/internal/vfs"
)

// IdentifyBytes is the number of leading bytes Identify needs.
const IdentifyBytes = 50

// Extension is the file extension of landscape files, without the dot.
const Extension = "lcp"

// Identify reports whether head, the first bytes of a file called name,
// looks like a landscape file. A trailing .gz or .zst on name is ignored.
func Identify(head []byte, name string) bool {
	if len(head) < IdentifyBytes {
		return false
	}
	crown := int32(binary.LittleEndian.Uint32(head[offCrownFlag:]))
	ground := int32(binary.LittleEndian.Uint32(head[offGroundFlag:]))
	lat := int32(binary.LittleEndian.Uint32(head[offLatitude:]))
	if !validFlag(crown) || !validFlag(ground) || lat < -90 || lat > 90 {
		return false
	}
	ext := strings.TrimPrefix(filepath.Ext(vfs.StripCompressionExt(name)), ".")
	return strings.EqualFold(ext, Extension)
}
