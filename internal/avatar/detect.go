package avatar

import (
	"bytes"
	"encoding/binary"

	"github.com/h2non/filetype"
)

// Kind is an image format recognized from its file signature.
type Kind string

const (
	Unknown Kind = ""
	PNG     Kind = "png"
	JPEG    Kind = "jpeg"
	GIF     Kind = "gif"
	WebP    Kind = "webp"
	BMP     Kind = "bmp"
	TIFF    Kind = "tiff"
)

// Ext returns the file extension for the kind, without the dot.
func (k Kind) Ext() string {
	if k == JPEG {
		return "jpg"
	}
	return string(k)
}

var kinds = map[string]Kind{
	"png":  PNG,
	"jpg":  JPEG,
	"gif":  GIF,
	"webp": WebP,
	"bmp":  BMP,
	"tif":  TIFF,
}

// Detect classifies image bytes by their leading signature. The URL or file
// name the bytes came from plays no part. Image types outside Kind are
// Unknown.
func Detect(b []byte) Kind {
	t, err := filetype.Image(b)
	if err != nil {
		return Unknown
	}
	kind := kinds[t.Extension]
	switch kind {
	case WebP:
		if !bytes.HasPrefix(b, []byte("RIFF")) {
			return Unknown
		}
	case BMP:
		if !validDIBHeader(b) {
			return Unknown
		}
	}
	return kind
}

// validDIBHeader checks the info header size that follows the 14-byte BMP
// file header. "BM" alone also starts plenty of text.
func validDIBHeader(b []byte) bool {
	if len(b) < 18 {
		return false
	}
	switch binary.LittleEndian.Uint32(b[14:18]) {
	case 12, 16, 40, 52, 56, 64, 108, 124:
		return true
	}
	return false
}
