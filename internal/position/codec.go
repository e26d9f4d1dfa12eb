package position

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/tidwall/gjson"
)

// decodeResult is the outcome of parsing a storage file.
type decodeResult struct {
	entries map[string][]Record
	skipped int
}

// decode parses a storage file. Both the history layout (path -> array of
// records) and the single-record layout (path -> record) are accepted.
// Entries that cannot be interpreted are counted in skipped; a document that
// is not a JSON object yields ErrCorrupt.
func decode(data []byte) (decodeResult, error) {
	res := decodeResult{entries: make(map[string][]Record)}

	if len(bytes.TrimSpace(data)) == 0 {
		return res, nil
	}
	if !gjson.ValidBytes(data) {
		return res, fmt.Errorf("%w: invalid JSON", ErrCorrupt)
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return res, fmt.Errorf("%w: top level is %s, want object", ErrCorrupt, root.Type)
	}

	root.ForEach(func(key, value gjson.Result) bool {
		path := key.String()
		if path == "" {
			res.skipped++
			return true
		}

		var recs []Record
		switch {
		case value.IsArray():
			for _, item := range value.Array() {
				if r, ok := decodeRecord(item); ok {
					recs = append(recs, r)
				} else {
					res.skipped++
				}
			}
		case value.IsObject():
			if r, ok := decodeRecord(value); ok {
				recs = append(recs, r)
			} else {
				res.skipped++
			}
		default:
			res.skipped++
		}

		if len(recs) > 0 {
			sortNewestFirst(recs)
			res.entries[path] = recs
		}
		return true
	})

	return res, nil
}

func decodeRecord(v gjson.Result) (Record, bool) {
	if !v.IsObject() {
		return Record{}, false
	}

	line := v.Get("line")
	char := v.Get("character")
	if !wholeNumber(line) || !wholeNumber(char) {
		return Record{}, false
	}

	r := Record{
		Line:      int(line.Int()),
		Character: int(char.Int()),
	}
	if ts := v.Get("timestamp"); ts.Type == gjson.Number {
		r.Timestamp = ts.Int()
	}
	return r, r.Valid()
}

// encode serializes entries with two-space indentation. Map keys are sorted
// by encoding/json, so equal stores always produce identical bytes.
func encode(entries map[string][]Record) ([]byte, error) {
	if entries == nil {
		entries = map[string][]Record{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// wholeNumber reports whether v is a non-negative integer that fits an int.
func wholeNumber(v gjson.Result) bool {
	return v.Type == gjson.Number && v.Num >= 0 && v.Num == math.Trunc(v.Num) && v.Num <= math.MaxInt32
}
