package twitter

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/buger/jsonparser"
)

// Decoder turns response bodies into Results. It holds no mutable state and
// is safe for concurrent use.
type Decoder struct {
	cfg DecoderConfig
}

// NewDecoder creates a decoder.
func NewDecoder(cfg DecoderConfig) *Decoder {
	cfg.defaults()
	return &Decoder{cfg: cfg}
}

var defaultDecoder = NewDecoder(DecoderConfig{})

func (d *Decoder) logger() *slog.Logger {
	if d.cfg.Logger != nil {
		return d.cfg.Logger
	}
	return slog.Default()
}

// Decode decodes body as shape with the default decoder.
func Decode(body []byte, shape Shape) (Result, error) {
	return defaultDecoder.Decode(body, shape)
}

// Decode decodes body as shape. The error is non-nil only when shape itself
// is invalid. Payload problems never fail the call:
//
//   - a blank body yields Empty;
//   - a body that is not JSON yields a placeholder *Degraded carrying the
//     body, inside a *Collection for collection shapes or a *Single otherwise;
//   - JSON of the wrong shape yields a *Single holding a *Degraded with the
//     best-effort record and any error payload found in it.
func (d *Decoder) Decode(body []byte, shape Shape) (Result, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Empty{}, nil
	}

	class := Classify(shape)
	switch class {
	case ClassBytes:
		return RawBytes(bytes.Clone(body)), nil
	case ClassError:
		if rec := ExtractError(trimmed); rec != nil {
			return rec, nil
		}
		return Empty{}, nil
	case ClassArtifact:
		return &Artifact{Event: d.ResolveArtifact(body)}, nil
	}

	if !jsonTwitter.Valid(trimmed) {
		return d.parseFailure(body, shape, class), nil
	}

	doc := trimmed
	if shape.Irregular != IrregularNone {
		first, ok, err := firstArrayElement(trimmed)
		if err != nil {
			return d.mismatch(trimmed, shape, err), nil
		}
		if !ok {
			if class == ClassSingle {
				return Empty{}, nil
			}
			return &Collection{Items: []Record{}}, nil
		}
		doc = first
	}

	if class == ClassSingle {
		rec, err := d.decodeElem(doc, shape.Elem)
		if err != nil {
			return d.mismatch(doc, shape, err), nil
		}
		return &Single{Record: rec}, nil
	}
	return d.decodeCollection(doc, shape, class), nil
}

// decodeCollection unwraps the page array, decodes each element on its own
// and binds cursors. An element that does not decode is replaced in place by
// a mismatch placeholder.
func (d *Decoder) decodeCollection(doc []byte, shape Shape, class Class) Result {
	arr, envelope, key, err := unwrap(doc, class)
	if err != nil {
		return d.mismatch(doc, shape, err)
	}

	items := make([]Record, 0)
	_, err = jsonparser.ArrayEach(arr, func(value []byte, typ jsonparser.ValueType, offset int, _ error) {
		raw := elementSource(arr, value, typ, offset)
		var rec Record
		var derr error
		if shape.Elem == ElemID {
			rec, derr = parseID(value, typ)
		} else {
			rec, derr = d.decodeElem(raw, shape.Elem)
		}
		if derr != nil {
			items = append(items, d.degrade(CauseShapeMismatch, raw, shape, derr))
			return
		}
		if hs, ok := rec.(HasRawSource); ok {
			hs.SetRawSource(string(raw))
		}
		items = append(items, rec)
	})
	if err != nil {
		return d.mismatch(doc, shape, fmt.Errorf("%w: %w", errShapeMismatch, err))
	}

	if key != "" {
		d.logger().Debug("collection unwrapped",
			slog.String("shape", shape.String()),
			slog.String("key", key),
			slog.Int("items", len(items)))
	}
	return bindCursors(items, envelope, class)
}

// elementSource returns the verbatim JSON text of an array element.
// jsonparser hands string values over without their quotes and reports
// offset as the element's end minus the unquoted length.
func elementSource(arr, value []byte, typ jsonparser.ValueType, offset int) []byte {
	if typ != jsonparser.String {
		return value
	}
	end := offset + len(value)
	start := end - len(value) - 2
	if start < 0 || end > len(arr) || arr[start] != '"' || arr[end-1] != '"' {
		return value
	}
	return arr[start:end]
}

// decodeElem decodes one JSON value as elem.
func (d *Decoder) decodeElem(doc []byte, elem Elem) (Record, error) {
	if elem == ElemID {
		v, typ, _, err := jsonparser.Get(doc)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errShapeMismatch, err)
		}
		return parseID(v, typ)
	}
	if len(doc) == 0 || doc[0] != '{' {
		return nil, fmt.Errorf("%w: %s needs an object", errShapeMismatch, elem)
	}

	switch elem {
	case ElemStatus:
		s, err := decodeAs[Status](doc)
		if err != nil {
			return nil, err
		}
		d.postProcess(s)
		return s, nil
	case ElemUser:
		u, err := decodeAs[User](doc)
		if err != nil {
			return nil, err
		}
		d.postProcess(u.Status)
		return u, nil
	case ElemDirectMessage:
		return decodeRecord[DirectMessage](doc)
	case ElemList:
		return decodeRecord[List](doc)
	case ElemTrend:
		return decodeRecord[Trend](doc)
	case ElemTrendLocation:
		return decodeRecord[TrendLocation](doc)
	case ElemLocalTrends:
		return decodeRecord[LocalTrends](doc)
	case ElemPlace:
		return decodeRecord[Place](doc)
	case ElemRelationship:
		return decodeRecord[Relationship](doc)
	case ElemSavedSearch:
		return decodeRecord[SavedSearch](doc)
	case ElemNone, ElemID:
	}
	return nil, fmt.Errorf("%w: cannot decode %s", ErrInvalidShape, elem)
}

// decodeAs decodes an object into a new T. The record captures its own raw
// source while decoding.
func decodeAs[T any, P interface {
	*T
	Record
}](doc []byte) (P, error) {
	p := P(new(T))
	if err := jsonTwitter.Unmarshal(doc, p); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errShapeMismatch, p.Elem(), err)
	}
	return p, nil
}

func decodeRecord[T any, P interface {
	*T
	Record
}](doc []byte) (Record, error) {
	p, err := decodeAs[T, P](doc)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// parseID accepts a JSON number or a numeric string.
func parseID(v []byte, typ jsonparser.ValueType) (Record, error) {
	switch typ {
	case jsonparser.Number, jsonparser.String:
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: id %q: %w", errShapeMismatch, v, err)
		}
		return ID(n), nil
	}
	return nil, fmt.Errorf("%w: id is %s", errShapeMismatch, typ)
}

// postProcess runs on every decoded status, nested ones included.
func (d *Decoder) postProcess(s *Status) {
	if s == nil {
		return
	}
	if s.Entities == nil && !d.cfg.DisableInlineEntities {
		s.Entities = inlineEntities(s.DisplayText())
	}
	ReconcileMedia(s)
	d.postProcess(s.RetweetedStatus)
	d.postProcess(s.QuotedStatus)
	if s.User != nil {
		d.postProcess(s.User.Status)
	}
}

// firstArrayElement returns the first element of a top-level array. An
// object is taken as already unwrapped.
func firstArrayElement(doc []byte) (first []byte, ok bool, err error) {
	switch doc[0] {
	case '{':
		return doc, true, nil
	case '[':
	default:
		return nil, false, fmt.Errorf("%w: expected an array of objects", errShapeMismatch)
	}
	_, err = jsonparser.ArrayEach(doc, func(value []byte, typ jsonparser.ValueType, _ int, _ error) {
		if !ok {
			first, ok = value, true
		}
	})
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", errShapeMismatch, err)
	}
	return first, ok, nil
}

// parseFailure wraps a non-JSON body in a single placeholder so that page
// loops see one item instead of nothing.
func (d *Decoder) parseFailure(body []byte, shape Shape, class Class) Result {
	deg := d.degrade(CauseParseFailure, body, shape, ErrMalformedJSON)
	if class == ClassSingle {
		return &Single{Record: deg}
	}
	return &Collection{Items: []Record{deg}}
}

// mismatch decodes doc as one opaque record of the requested element.
func (d *Decoder) mismatch(doc []byte, shape Shape, cause error) Result {
	deg := d.degrade(CauseShapeMismatch, doc, shape, cause)
	if shape.Elem != ElemID {
		if rec, err := d.decodeElem(doc, shape.Elem); err == nil {
			deg.Record = rec
		}
	}
	return &Single{Record: deg}
}

func (d *Decoder) degrade(cause Cause, doc []byte, shape Shape, err error) *Degraded {
	deg := &Degraded{
		Cause:     cause,
		Requested: shape.Elem,
		Err:       err,
		TraceID:   d.cfg.NewTraceID(),
	}
	deg.SetRawSource(string(doc))
	if cause == CauseShapeMismatch {
		deg.Error = ExtractError(doc)
	}
	d.logger().Warn("degraded record",
		slog.String("cause", cause.String()),
		slog.String("shape", shape.String()),
		slog.String("trace_id", deg.TraceID),
		slog.Any("error", err),
		slog.String("body", truncateBytes(doc, d.cfg.LogBodyLimit)))
	return deg
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
