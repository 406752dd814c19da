package sqlite

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	headerSize     = 100
	magicString    = "SQLite format 3\x00"
	minPageSize    = 512
	maxPageSize    = 65536
	pageSizeOneMul = 65536 // a page-size field of 1 means 64KiB
)

// Header is the 100-byte file header. The decoder uses PageSize and
// TextEncoding; the other fields are decoded but not otherwise used.
type Header struct {
	Magic                  [16]byte
	PageSize               uint16
	FileFormatWriteVersion uint8
	FileFormatReadVersion  uint8
	ReservedSpace          uint8
	MaxEmbeddedPayload     uint8
	MinEmbeddedPayload     uint8
	LeafPayloadFraction    uint8
	FileChangeCounter      uint32
	DatabaseSizePages      uint32
	FirstFreelistPage      uint32
	FreelistPageCount      uint32
	SchemaCookie           uint32
	SchemaFormat           uint32
	DefaultPageCacheSize   uint32
	LargestRootBTreePage   uint32
	TextEncoding           uint32
	UserVersion            uint32
	IncrementalVacuumMode  uint32
	ApplicationID          uint32
	_                      [20]byte // reserved for expansion
	VersionValidFor        uint32
	SQLiteVersionNumber    uint32
}

// ParseHeader decodes the fixed 100-byte file header.
func ParseHeader(buf []byte) (*Header, error) {
	if len(buf) < headerSize {
		return nil, wrapErr("parse_header", ErrShortRead, map[string]any{"have": len(buf), "need": headerSize})
	}

	var h Header
	if err := binary.Read(bytes.NewReader(buf[:headerSize]), binary.BigEndian, &h); err != nil {
		return nil, wrapErr("parse_header", err, nil)
	}

	if !bytes.Equal(h.Magic[:], []byte(magicString)) {
		return nil, wrapErr("parse_header", ErrInvalidMagic, map[string]any{"got": fmt.Sprintf("%q", h.Magic[:])})
	}

	size := h.ActualPageSize()
	if size < minPageSize || size > maxPageSize || size&(size-1) != 0 {
		return nil, wrapErr("parse_header", ErrInvalidPageSize, map[string]any{"page_size": size})
	}

	return &h, nil
}

// ActualPageSize resolves the on-disk page-size field, where a stored
// value of 1 denotes the 65536-byte page size that doesn't fit in a u16.
func (h *Header) ActualPageSize() int {
	if h.PageSize == 1 {
		return pageSizeOneMul
	}
	return int(h.PageSize)
}

// UsesUTF8 reports whether the database's declared text encoding is
// UTF-8 (encoding value 1); this decoder supports no other encoding.
func (h *Header) UsesUTF8() bool {
	return h.TextEncoding == 1
}
