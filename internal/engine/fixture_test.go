package engine

import (
	"encoding/binary"
	"os"
	"testing"

	"github.com/nsaritzky-labs/sqlitereader/internal/sqlite"
)

// fixture_test.go hand-builds a small SQLite file for the engine's
// integration tests, the same way internal/sqlite's own test fixtures
// do, but through sqlite.Value's public Kind/Int/Str/Blob fields only —
// this package has no access to the decoder's internal serial-type
// helpers.

func encodeVarintE(v uint64) []byte {
	if v < 1<<56 {
		var groups []byte
		x := v
		for {
			groups = append([]byte{byte(x & 0x7f)}, groups...)
			x >>= 7
			if x == 0 {
				break
			}
		}
		buf := make([]byte, len(groups))
		for i, g := range groups {
			if i != len(groups)-1 {
				buf[i] = g | 0x80
			} else {
				buf[i] = g
			}
		}
		return buf
	}
	buf := make([]byte, 9)
	buf[8] = byte(v & 0xff)
	x := v >> 8
	for i := 7; i >= 0; i-- {
		buf[i] = byte(x&0x7f) | 0x80
		x >>= 7
	}
	return buf
}

func encodeRecordE(values ...sqlite.Value) []byte {
	serialTypes := make([]int64, len(values))
	bodies := make([][]byte, len(values))
	for i, v := range values {
		switch v.Kind {
		case sqlite.KindNull:
			serialTypes[i] = 0
		case sqlite.KindInteger:
			serialTypes[i] = 6
			b := make([]byte, 8)
			binary.BigEndian.PutUint64(b, uint64(v.Int))
			bodies[i] = b
		case sqlite.KindText:
			serialTypes[i] = 13 + 2*int64(len(v.Str))
			bodies[i] = []byte(v.Str)
		case sqlite.KindBlob:
			serialTypes[i] = 12 + 2*int64(len(v.Blob))
			bodies[i] = v.Blob
		}
	}

	var header []byte
	for _, st := range serialTypes {
		header = append(header, encodeVarintE(uint64(st))...)
	}
	headerSize := 1 + len(header)
	if headerSize >= 128 {
		panic("fixture record header too large for single-byte varint helper")
	}

	payload := make([]byte, 0, headerSize+len(header))
	payload = append(payload, byte(headerSize))
	payload = append(payload, header...)
	for _, b := range bodies {
		payload = append(payload, b...)
	}
	return payload
}

func encodeLeafTableCellE(rowid int64, payload []byte) []byte {
	var cell []byte
	cell = append(cell, encodeVarintE(uint64(len(payload)))...)
	cell = append(cell, encodeVarintE(uint64(rowid))...)
	cell = append(cell, payload...)
	return cell
}

func encodeLeafIndexCellE(payload []byte) []byte {
	var cell []byte
	cell = append(cell, encodeVarintE(uint64(len(payload)))...)
	cell = append(cell, payload...)
	return cell
}

// buildPageE lays out a leaf page's header, forward cell-pointer array,
// and back-to-front cell content within a pageSize buffer. base is 100
// for page 1 (whose first 100 bytes are the file header the caller
// writes separately) and 0 for every other page.
func buildPageE(pageSize int, pageType byte, cells [][]byte, base int) []byte {
	buf := make([]byte, pageSize)
	buf[base] = pageType

	const headerLen = 8 // every fixture page here is a leaf
	binary.BigEndian.PutUint16(buf[base+3:base+5], uint16(len(cells)))

	cursor := pageSize
	for i, cell := range cells {
		cursor -= len(cell)
		copy(buf[cursor:], cell)
		ptrOffset := base + headerLen + 2*i
		binary.BigEndian.PutUint16(buf[ptrOffset:ptrOffset+2], uint16(cursor))
	}
	binary.BigEndian.PutUint16(buf[base+5:base+7], uint16(cursor))
	return buf
}

const (
	pageTypeLeafTable = 13
	pageTypeLeafIndex = 10
)

// buildApplesFixture writes a temp database with an "apples" table
// (four rows) and an index on its color column, returning the path.
func buildApplesFixture(t *testing.T) string {
	t.Helper()
	const pageSize = 512

	createTable := "CREATE TABLE apples(id INTEGER PRIMARY KEY, name TEXT, color TEXT)"
	createIndex := "CREATE INDEX idx_apples_color ON apples(color)"

	schemaCells := [][]byte{
		encodeLeafTableCellE(1, encodeRecordE(
			sqlite.Text("table"), sqlite.Text("apples"), sqlite.Text("apples"), sqlite.Integer(2), sqlite.Text(createTable),
		)),
		encodeLeafTableCellE(2, encodeRecordE(
			sqlite.Text("index"), sqlite.Text("idx_apples_color"), sqlite.Text("apples"), sqlite.Integer(3), sqlite.Text(createIndex),
		)),
	}
	page1 := buildPageE(pageSize, pageTypeLeafTable, schemaCells, 100)

	tableCells := [][]byte{
		encodeLeafTableCellE(1, encodeRecordE(sqlite.Null(), sqlite.Text("Granny Smith"), sqlite.Text("Light Green"))),
		encodeLeafTableCellE(2, encodeRecordE(sqlite.Null(), sqlite.Text("Fuji"), sqlite.Text("Red"))),
		encodeLeafTableCellE(3, encodeRecordE(sqlite.Null(), sqlite.Text("Honeycrisp"), sqlite.Text("Blush Red"))),
		encodeLeafTableCellE(4, encodeRecordE(sqlite.Null(), sqlite.Text("Golden Delicious"), sqlite.Text("Yellow"))),
	}
	page2 := buildPageE(pageSize, pageTypeLeafTable, tableCells, 0)

	indexCells := [][]byte{
		encodeLeafIndexCellE(encodeRecordE(sqlite.Text("Blush Red"), sqlite.Integer(3))),
		encodeLeafIndexCellE(encodeRecordE(sqlite.Text("Light Green"), sqlite.Integer(1))),
		encodeLeafIndexCellE(encodeRecordE(sqlite.Text("Red"), sqlite.Integer(2))),
		encodeLeafIndexCellE(encodeRecordE(sqlite.Text("Yellow"), sqlite.Integer(4))),
	}
	page3 := buildPageE(pageSize, pageTypeLeafIndex, indexCells, 0)

	buf := make([]byte, pageSize*3)
	copy(buf[0:16], []byte("SQLite format 3\x00"))
	binary.BigEndian.PutUint16(buf[16:18], uint16(pageSize))
	buf[18], buf[19] = 1, 1
	buf[21], buf[22], buf[23] = 64, 32, 32
	binary.BigEndian.PutUint32(buf[28:32], 3)
	binary.BigEndian.PutUint32(buf[56:60], 1)

	copy(buf[100:pageSize], page1[100:])
	copy(buf[pageSize:2*pageSize], page2)
	copy(buf[2*pageSize:3*pageSize], page3)

	f, err := os.CreateTemp(t.TempDir(), "apples-*.db")
	if err != nil {
		t.Fatalf("create temp db: %v", err)
	}
	if _, err := f.Write(buf); err != nil {
		t.Fatalf("write temp db: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close temp db: %v", err)
	}
	return f.Name()
}
