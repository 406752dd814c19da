package sqlite

import "encoding/binary"

// PageType identifies one of the four B-tree node kinds a page can be.
type PageType uint8

const (
	PageInteriorIndex PageType = 2
	PageInteriorTable PageType = 5
	PageLeafIndex     PageType = 10
	PageLeafTable     PageType = 13
)

func (t PageType) IsLeaf() bool {
	return t == PageLeafIndex || t == PageLeafTable
}

func (t PageType) IsTable() bool {
	return t == PageInteriorTable || t == PageLeafTable
}

func (t PageType) IsIndex() bool {
	return t == PageInteriorIndex || t == PageLeafIndex
}

func (t PageType) valid() bool {
	switch t {
	case PageInteriorIndex, PageInteriorTable, PageLeafIndex, PageLeafTable:
		return true
	default:
		return false
	}
}

// PageHeader is the 8- or 12-byte B-tree page header (12 bytes only for
// interior pages, which carry a right-most child pointer).
type PageHeader struct {
	Type              PageType
	FirstFreeblock    uint16
	CellCount         uint16
	CellContentStart  uint16
	FragmentedBytes   uint8
	RightmostChild    uint32 // only meaningful when !Type.IsLeaf()
}

func (h *PageHeader) size() int {
	if h.Type.IsLeaf() {
		return 8
	}
	return 12
}

// CellKind tags which of the four cell shapes a decoded Cell holds.
type CellKind uint8

const (
	CellLeafTable CellKind = iota
	CellInteriorTable
	CellLeafIndex
	CellInteriorIndex
)

// Cell is the tagged union of the four cell layouts spec.md §3
// describes. Exactly the fields relevant to Kind are populated.
type Cell struct {
	Kind CellKind

	// LeafTable / InteriorTable
	Rowid int64

	// InteriorTable / InteriorIndex
	LeftChild uint32

	// LeafTable / LeafIndex / InteriorIndex
	Record *Record

	Overflow bool
}

// IndexRowid returns the rowid carried as the last column of an index
// record (leaf or interior index cells store it there).
func (c *Cell) IndexRowid() (int64, error) {
	if c.Record == nil || len(c.Record.Values) == 0 {
		return 0, wrapErr("index_rowid", ErrMalformedRecord, nil)
	}
	last := c.Record.Values[len(c.Record.Values)-1]
	if last.Kind != KindInteger {
		return 0, wrapErr("index_rowid", ErrMalformedRecord, map[string]any{"kind": last.Kind})
	}
	return last.Int, nil
}

// Page is a fully decoded page: its header and its cells, in
// cell-pointer order.
type Page struct {
	Header *PageHeader
	Cells  []Cell
}

// DecodePage decodes a raw page buffer. isPage1 must be true only for
// page 1, where the page header is offset by the 100-byte file header.
// Under ValidationStrict, every cell pointer is additionally checked to
// fall inside the cell-content area per spec.md §8 property 3 — basic
// validation only requires it to land inside the page buffer at all.
func DecodePage(buf []byte, isPage1 bool, validation ValidationLevel) (*Page, error) {
	base := 0
	if isPage1 {
		base = headerSize
	}
	if base+8 > len(buf) {
		return nil, wrapErr("decode_page", ErrShortRead, map[string]any{"len": len(buf)})
	}

	h, err := decodePageHeader(buf[base:])
	if err != nil {
		return nil, err
	}

	cellPtrStart := base + h.size()
	neededForPointers := cellPtrStart + 2*int(h.CellCount)
	if neededForPointers > len(buf) {
		return nil, wrapErr("decode_page", ErrMalformedRecord, map[string]any{
			"cell_count": h.CellCount, "page_len": len(buf),
		})
	}

	cells := make([]Cell, h.CellCount)
	for i := 0; i < int(h.CellCount); i++ {
		ptrOffset := cellPtrStart + 2*i
		cellOffset := int(binary.BigEndian.Uint16(buf[ptrOffset : ptrOffset+2]))
		if cellOffset < 0 || cellOffset >= len(buf) {
			return nil, wrapErr("decode_page", ErrInvalidCellPointer, map[string]any{
				"cell_index": i, "offset": cellOffset, "page_len": len(buf),
			})
		}
		if validation == ValidationStrict && (cellOffset < neededForPointers || cellOffset >= len(buf)) {
			return nil, wrapErr("decode_page", ErrPageHeaderInconsistent, map[string]any{
				"cell_index": i, "offset": cellOffset, "cell_content_area_start": neededForPointers, "page_len": len(buf),
			})
		}
		cell, err := decodeCell(buf, cellOffset, h.Type)
		if err != nil {
			return nil, wrapErr("decode_cell", err, map[string]any{"cell_index": i, "offset": cellOffset})
		}
		cells[i] = *cell
	}

	return &Page{Header: h, Cells: cells}, nil
}

func decodePageHeader(buf []byte) (*PageHeader, error) {
	t := PageType(buf[0])
	if !t.valid() {
		return nil, wrapErr("decode_page_header", ErrInvalidPageType, map[string]any{"type_byte": buf[0]})
	}

	h := &PageHeader{
		Type:             t,
		FirstFreeblock:   binary.BigEndian.Uint16(buf[1:3]),
		CellCount:        binary.BigEndian.Uint16(buf[3:5]),
		CellContentStart: binary.BigEndian.Uint16(buf[5:7]),
		FragmentedBytes:  buf[7],
	}
	if !t.IsLeaf() {
		if len(buf) < 12 {
			return nil, wrapErr("decode_page_header", ErrShortRead, nil)
		}
		h.RightmostChild = binary.BigEndian.Uint32(buf[8:12])
	}
	return h, nil
}

// decodeCell decodes a single cell at the given page-relative offset,
// per the four layouts in spec.md §3. Overflow (payload larger than the
// embedded threshold) is detected, not followed — see spec.md §1.
func decodeCell(buf []byte, offset int, pageType PageType) (*Cell, error) {
	switch pageType {
	case PageLeafTable:
		payloadSize, n, err := ReadVarint(buf, offset)
		if err != nil {
			return nil, err
		}
		offset += n
		rowid, n, err := ReadVarint(buf, offset)
		if err != nil {
			return nil, err
		}
		offset += n
		payload, overflow, err := readPayload(buf, offset, int(payloadSize))
		if err != nil {
			return nil, err
		}
		record, err := DecodeRecord(payload)
		if err != nil {
			return nil, err
		}
		return &Cell{Kind: CellLeafTable, Rowid: rowid, Record: record, Overflow: overflow}, nil

	case PageInteriorTable:
		if offset+4 > len(buf) {
			return nil, wrapErr("decode_interior_table_cell", ErrShortRead, nil)
		}
		leftChild := binary.BigEndian.Uint32(buf[offset : offset+4])
		offset += 4
		rowid, _, err := ReadVarint(buf, offset)
		if err != nil {
			return nil, err
		}
		return &Cell{Kind: CellInteriorTable, LeftChild: leftChild, Rowid: rowid}, nil

	case PageLeafIndex:
		payloadSize, n, err := ReadVarint(buf, offset)
		if err != nil {
			return nil, err
		}
		offset += n
		payload, overflow, err := readPayload(buf, offset, int(payloadSize))
		if err != nil {
			return nil, err
		}
		record, err := DecodeRecord(payload)
		if err != nil {
			return nil, err
		}
		return &Cell{Kind: CellLeafIndex, Record: record, Overflow: overflow}, nil

	case PageInteriorIndex:
		if offset+4 > len(buf) {
			return nil, wrapErr("decode_interior_index_cell", ErrShortRead, nil)
		}
		leftChild := binary.BigEndian.Uint32(buf[offset : offset+4])
		offset += 4
		payloadSize, n, err := ReadVarint(buf, offset)
		if err != nil {
			return nil, err
		}
		offset += n
		payload, overflow, err := readPayload(buf, offset, int(payloadSize))
		if err != nil {
			return nil, err
		}
		record, err := DecodeRecord(payload)
		if err != nil {
			return nil, err
		}
		return &Cell{Kind: CellInteriorIndex, LeftChild: leftChild, Record: record, Overflow: overflow}, nil

	default:
		return nil, wrapErr("decode_cell", ErrInvalidPageType, map[string]any{"page_type": pageType})
	}
}

// readPayload slices out a cell's payload, reporting overflow=true (and
// no data read past the page) if it would extend past the page buffer —
// this is the documented "overflow detected, not followed" limitation.
func readPayload(buf []byte, offset, size int) (payload []byte, overflow bool, err error) {
	if offset+size > len(buf) {
		return nil, true, ErrOverflowUnsupported
	}
	return buf[offset : offset+size], false, nil
}
