package twitter

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidShape is returned by Decode when the requested shape names an
// unknown kind or element.
var ErrInvalidShape = errors.New("invalid shape")

// Kind is the structure a caller expects back.
type Kind int

const (
	KindSingle Kind = iota
	KindCollection
	KindCursorCollection
	KindError
	KindBytes
	KindArtifact
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindCollection:
		return "collection"
	case KindCursorCollection:
		return "cursor_collection"
	case KindError:
		return "error"
	case KindBytes:
		return "bytes"
	case KindArtifact:
		return "artifact"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Elem is the record type a single or collection shape decodes into.
type Elem int

const (
	ElemNone Elem = iota
	ElemStatus
	ElemUser
	ElemDirectMessage
	ElemList
	ElemTrend
	ElemTrendLocation
	ElemLocalTrends
	ElemPlace
	ElemRelationship
	ElemSavedSearch
	ElemID
)

var elemNames = [...]string{
	ElemNone:          "none",
	ElemStatus:        "status",
	ElemUser:          "user",
	ElemDirectMessage: "direct_message",
	ElemList:          "list",
	ElemTrend:         "trend",
	ElemTrendLocation: "trend_location",
	ElemLocalTrends:   "local_trends",
	ElemPlace:         "place",
	ElemRelationship:  "relationship",
	ElemSavedSearch:   "saved_search",
	ElemID:            "id",
}

func (e Elem) String() string {
	if e >= 0 && int(e) < len(elemNames) {
		return elemNames[e]
	}
	return fmt.Sprintf("Elem(%d)", int(e))
}

func (e Elem) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

func (e Elem) valid() bool { return e > ElemNone && e <= ElemID }

// cursorCapable lists elements whose endpoints wrap pages in a cursor envelope.
func (e Elem) cursorCapable() bool {
	switch e {
	case ElemID, ElemUser, ElemList:
		return true
	}
	return false
}

// Irregular marks the two payloads that need a shape-specific unwrap.
type Irregular int

const (
	IrregularNone Irregular = iota
	// IrregularTrendsInArray is trends/place: [{"trends":[...],"as_of":...}].
	IrregularTrendsInArray
	// IrregularArrayWrapped is a single object delivered as a one-element array.
	IrregularArrayWrapped
)

// Shape is the caller-declared description of what a body should decode into.
type Shape struct {
	Kind      Kind
	Elem      Elem
	Irregular Irregular
}

func SingleOf(e Elem) Shape     { return Shape{Kind: KindSingle, Elem: e} }
func CollectionOf(e Elem) Shape { return Shape{Kind: KindCollection, Elem: e} }
func CursoredOf(e Elem) Shape   { return Shape{Kind: KindCursorCollection, Elem: e} }
func ErrorShape() Shape         { return Shape{Kind: KindError} }
func BytesShape() Shape         { return Shape{Kind: KindBytes} }
func ArtifactShape() Shape      { return Shape{Kind: KindArtifact} }

// TrendsShape is the trends/place response: trends of the first array element.
func TrendsShape() Shape {
	return Shape{Kind: KindCollection, Elem: ElemTrend, Irregular: IrregularTrendsInArray}
}

// LocalTrendsShape is the trends/place response decoded whole.
func LocalTrendsShape() Shape {
	return Shape{Kind: KindSingle, Elem: ElemLocalTrends, Irregular: IrregularArrayWrapped}
}

// Validate reports whether the shape can be decoded.
func (s Shape) Validate() error {
	switch s.Kind {
	case KindSingle, KindCollection, KindCursorCollection:
		if !s.Elem.valid() {
			return fmt.Errorf("%w: %s of %s", ErrInvalidShape, s.Kind, s.Elem)
		}
	case KindError, KindBytes, KindArtifact:
		if s.Irregular != IrregularNone {
			return fmt.Errorf("%w: %s cannot be irregular", ErrInvalidShape, s.Kind)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidShape, s.Kind)
	}

	switch s.Irregular {
	case IrregularNone:
	case IrregularTrendsInArray:
		if s.Kind != KindCollection || s.Elem != ElemTrend {
			return fmt.Errorf("%w: trends-in-array needs a trend collection", ErrInvalidShape)
		}
	case IrregularArrayWrapped:
		if s.Kind != KindSingle {
			return fmt.Errorf("%w: array-wrapped needs a single target", ErrInvalidShape)
		}
	default:
		return fmt.Errorf("%w: irregular %d", ErrInvalidShape, s.Irregular)
	}
	return nil
}

var namedShapes = []struct {
	name  string
	shape Shape
}{
	{"status", SingleOf(ElemStatus)},
	{"statuses", CollectionOf(ElemStatus)},
	{"user", SingleOf(ElemUser)},
	{"users", CollectionOf(ElemUser)},
	{"users_cursored", CursoredOf(ElemUser)},
	{"direct_message", SingleOf(ElemDirectMessage)},
	{"direct_messages", CollectionOf(ElemDirectMessage)},
	{"list", SingleOf(ElemList)},
	{"lists", CollectionOf(ElemList)},
	{"lists_cursored", CursoredOf(ElemList)},
	{"ids", CursoredOf(ElemID)},
	{"trends", TrendsShape()},
	{"local_trends", LocalTrendsShape()},
	{"trend_locations", CollectionOf(ElemTrendLocation)},
	{"place", SingleOf(ElemPlace)},
	{"places", CollectionOf(ElemPlace)},
	{"relationship", SingleOf(ElemRelationship)},
	{"saved_search", SingleOf(ElemSavedSearch)},
	{"saved_searches", CollectionOf(ElemSavedSearch)},
	{"error", ErrorShape()},
	{"bytes", BytesShape()},
	{"artifact", ArtifactShape()},
}

// ParseShape looks up a shape by name, e.g. "statuses" or "ids".
func ParseShape(name string) (Shape, error) {
	for _, n := range namedShapes {
		if strings.EqualFold(n.name, name) {
			return n.shape, nil
		}
	}
	return Shape{}, fmt.Errorf("%w: unknown name %q", ErrInvalidShape, name)
}

// ShapeNames returns the names ParseShape accepts.
func ShapeNames() []string {
	names := make([]string, len(namedShapes))
	for i, n := range namedShapes {
		names[i] = n.name
	}
	return names
}

func (s Shape) String() string {
	for _, n := range namedShapes {
		if n.shape == s {
			return n.name
		}
	}
	return fmt.Sprintf("%s<%s>", s.Kind, s.Elem)
}

// Class is the decode strategy chosen for a shape.
type Class int

const (
	ClassSingle Class = iota
	ClassCollection
	ClassCursorCollection
	ClassError
	ClassArtifact
	ClassBytes
)

func (c Class) String() string {
	switch c {
	case ClassSingle:
		return "single"
	case ClassCollection:
		return "collection"
	case ClassCursorCollection:
		return "cursor_collection"
	case ClassError:
		return "error"
	case ClassArtifact:
		return "artifact"
	case ClassBytes:
		return "bytes"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// Classify picks the decode strategy for a shape. Only the caller's shape is
// consulted: errors are never sniffed from success payloads and stream
// artifacts are never inferred from content.
func Classify(shape Shape) Class {
	switch shape.Kind {
	case KindBytes:
		return ClassBytes
	case KindError:
		return ClassError
	case KindArtifact:
		return ClassArtifact
	case KindCursorCollection:
		if shape.Elem.cursorCapable() {
			return ClassCursorCollection
		}
		return ClassCollection
	case KindCollection:
		return ClassCollection
	}
	return ClassSingle
}
