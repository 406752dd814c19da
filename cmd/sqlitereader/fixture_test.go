package main

import (
	"encoding/binary"
	"os"
	"testing"
)

// fixture_test.go hand-builds a tiny SQLite file for the CLI's
// dispatch tests, the same byte-level approach internal/sqlite and
// internal/engine's own test fixtures use.

func encodeVarintC(v uint64) []byte {
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

func encodeRecordC(values [][]byte, serialTypes []int64) []byte {
	var header []byte
	for _, st := range serialTypes {
		header = append(header, encodeVarintC(uint64(st))...)
	}
	headerSize := 1 + len(header)
	payload := make([]byte, 0, headerSize+len(header))
	payload = append(payload, byte(headerSize))
	payload = append(payload, header...)
	for _, b := range values {
		payload = append(payload, b...)
	}
	return payload
}

func encodeLeafTableCellC(rowid int64, payload []byte) []byte {
	var cell []byte
	cell = append(cell, encodeVarintC(uint64(len(payload)))...)
	cell = append(cell, encodeVarintC(uint64(rowid))...)
	cell = append(cell, payload...)
	return cell
}

func textSerial(s string) (int64, []byte) { return 13 + 2*int64(len(s)), []byte(s) }

// buildFruitsFixture writes a temp database with one "fruits" table
// holding a single row, returning its path.
func buildFruitsFixture(t *testing.T) string {
	t.Helper()
	const pageSize = 512

	createTable := "CREATE TABLE fruits(id INTEGER PRIMARY KEY, name TEXT)"
	st0, b0 := textSerial("table")
	st1, b1 := textSerial("fruits")
	st2, b2 := textSerial("fruits")
	st4, b4 := textSerial(createTable)
	schemaPayload := encodeRecordC(
		[][]byte{b0, b1, b2, {2}, b4},
		[]int64{st0, st1, st2, 1, st4},
	)
	schemaCell := encodeLeafTableCellC(1, schemaPayload)

	page1 := make([]byte, pageSize)
	page1[100] = 13 // leaf table
	binary.BigEndian.PutUint16(page1[103:105], 1)
	cursor := pageSize - len(schemaCell)
	copy(page1[cursor:], schemaCell)
	binary.BigEndian.PutUint16(page1[105:107], uint16(cursor))
	binary.BigEndian.PutUint16(page1[108:110], uint16(cursor))

	st, b := textSerial("Apple")
	rowPayload := encodeRecordC([][]byte{nil, b}, []int64{0, st})
	rowCell := encodeLeafTableCellC(1, rowPayload)

	page2 := make([]byte, pageSize)
	page2[0] = 13
	binary.BigEndian.PutUint16(page2[3:5], 1)
	cursor2 := pageSize - len(rowCell)
	copy(page2[cursor2:], rowCell)
	binary.BigEndian.PutUint16(page2[8:10], uint16(cursor2))
	binary.BigEndian.PutUint16(page2[5:7], uint16(cursor2))

	buf := make([]byte, pageSize*2)
	copy(buf[0:16], []byte("SQLite format 3\x00"))
	binary.BigEndian.PutUint16(buf[16:18], uint16(pageSize))
	buf[18], buf[19] = 1, 1
	buf[21], buf[22], buf[23] = 64, 32, 32
	binary.BigEndian.PutUint32(buf[28:32], 2)
	binary.BigEndian.PutUint32(buf[56:60], 1)
	copy(buf[100:pageSize], page1[100:])
	copy(buf[pageSize:2*pageSize], page2)

	f, err := os.CreateTemp(t.TempDir(), "fruits-*.db")
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
