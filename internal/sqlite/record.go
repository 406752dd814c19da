package sqlite

// Record is a decoded payload: a record header of serial types followed
// by the typed values it describes, per spec.md §3/§4.B.
type Record struct {
	SerialTypes []int64
	Values      []Value
}

// DecodeRecord decodes a record (record-header varint, serial-type
// varints, then the typed value payload) from a cell's payload bytes.
func DecodeRecord(payload []byte) (*Record, error) {
	headerSize, n, err := ReadVarint(payload, 0)
	if err != nil {
		return nil, wrapErr("decode_record_header_size", err, nil)
	}

	offset := n
	end := int(headerSize)
	if end > len(payload) || end < offset {
		return nil, wrapErr("decode_record", ErrMalformedRecord, map[string]any{
			"header_size": headerSize, "payload_len": len(payload),
		})
	}

	var serialTypes []int64
	for offset < end {
		st, n, err := ReadVarint(payload, offset)
		if err != nil {
			return nil, wrapErr("decode_record_serial_type", err, map[string]any{"offset": offset})
		}
		serialTypes = append(serialTypes, st)
		offset += n
	}

	values := make([]Value, len(serialTypes))
	for i, st := range serialTypes {
		size, err := serialTypeSize(st)
		if err != nil {
			return nil, wrapErr("decode_record_value", err, map[string]any{"column": i, "serial_type": st})
		}
		if size == 0 {
			v, err := decodeSerialValue(st, nil)
			if err != nil {
				return nil, wrapErr("decode_record_value", err, map[string]any{"column": i})
			}
			values[i] = v
			continue
		}
		if offset+size > len(payload) {
			return nil, wrapErr("decode_record_value", ErrMalformedRecord, map[string]any{
				"column": i, "need": offset + size, "have": len(payload),
			})
		}
		v, err := decodeSerialValue(st, payload[offset:offset+size])
		if err != nil {
			return nil, wrapErr("decode_record_value", err, map[string]any{"column": i, "serial_type": st})
		}
		values[i] = v
		offset += size
	}

	return &Record{SerialTypes: serialTypes, Values: values}, nil
}
