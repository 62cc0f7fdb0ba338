package twitter

import (
	"bytes"
	"fmt"

	"github.com/buger/jsonparser"
)

// envelopeKeys are probed in this order; the first key present on the
// top-level object wins.
var envelopeKeys = []string{"trends", "users", "lists", "ids", "result"}

// unwrap locates the array a collection decodes from. A bare top-level array
// is returned as is. For an enveloped page, envelope is the whole object and
// key the matched envelope key. geo/search nests its array one level deeper,
// under result.places, except for cursor envelopes.
func unwrap(body []byte, class Class) (array, envelope []byte, key string, err error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil, "", fmt.Errorf("%w: empty document", errShapeMismatch)
	}

	switch body[0] {
	case '[':
		return body, nil, "", nil
	case '{':
	default:
		return nil, nil, "", fmt.Errorf("%w: top-level value is not an array or object", errShapeMismatch)
	}

	for _, k := range envelopeKeys {
		v, typ, _, gerr := jsonparser.Get(body, k)
		if gerr != nil {
			continue
		}
		if k == "result" && class != ClassCursorCollection {
			v, typ, _, gerr = jsonparser.Get(body, "result", "places")
			if gerr != nil {
				return nil, body, k, fmt.Errorf("%w: result.places missing", errShapeMismatch)
			}
		}
		if typ != jsonparser.Array {
			return nil, body, k, fmt.Errorf("%w: %q holds %s, not an array", errShapeMismatch, k, typ)
		}
		return v, body, k, nil
	}
	return nil, nil, "", fmt.Errorf("%w: object has no collection key", errShapeMismatch)
}

// bindCursors builds the collection and, for cursor-paginated envelopes,
// attaches next_cursor and previous_cursor. Missing or non-integer cursor
// fields leave the cursor nil.
func bindCursors(items []Record, envelope []byte, class Class) *Collection {
	c := &Collection{Items: items}
	if class != ClassCursorCollection || envelope == nil {
		return c
	}
	c.NextCursor = cursorField(envelope, "next_cursor")
	c.PreviousCursor = cursorField(envelope, "previous_cursor")
	return c
}

func cursorField(envelope []byte, key string) *int64 {
	v, err := jsonparser.GetInt(envelope, key)
	if err != nil {
		return nil
	}
	return &v
}
