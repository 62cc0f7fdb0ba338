package twitter

import (
	"strconv"
	"time"
	"unsafe"

	jsoniter "github.com/json-iterator/go"
	"github.com/modern-go/reflect2"

	"github.com/anatolykoptev/go-twitter-decode/twdate"
)

// jsonTwitter maps payloads onto records. time.Time fields accept any known
// Twitter date format or epoch milliseconds, and are written back in the
// created_at format.
var jsonTwitter jsoniter.API

func init() {
	jsonTwitter = jsoniter.Config{
		EscapeHTML:             false,
		SortMapKeys:            true,
		ValidateJsonRawMessage: true,
	}.Froze()

	jsonTwitter.RegisterExtension(new(jsoniterExtension))
}

// MarshalIndent encodes v the same way records are decoded.
func MarshalIndent(v any) ([]byte, error) {
	return jsonTwitter.MarshalIndent(v, "", "  ")
}

type jsoniterExtension struct {
	jsoniter.DummyExtension
}

var reflectTypeTime = reflect2.TypeOfPtr((*time.Time)(nil)).Elem()

func (ext jsoniterExtension) CreateEncoder(typ reflect2.Type) jsoniter.ValEncoder {
	if typ == reflectTypeTime {
		return new(jsoniterTimeEncDec)
	}
	return nil
}

func (ext jsoniterExtension) CreateDecoder(typ reflect2.Type) jsoniter.ValDecoder {
	if typ == reflectTypeTime {
		return new(jsoniterTimeEncDec)
	}
	return nil
}

type jsoniterTimeEncDec struct{}

// Decode leaves the zero time for values that match no known format.
func (jsoniterTimeEncDec) Decode(ptr unsafe.Pointer, iter *jsoniter.Iterator) {
	t := (*time.Time)(ptr)
	switch iter.WhatIsNext() {
	case jsoniter.NilValue:
		iter.ReadNil()
	case jsoniter.NumberValue:
		*t = time.UnixMilli(iter.ReadInt64()).UTC()
	case jsoniter.StringValue:
		s := iter.ReadString()
		if parsed, ok := twdate.ToInstant(s); ok {
			*t = parsed
		} else if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			*t = time.UnixMilli(ms).UTC()
		}
	default:
		iter.Skip()
	}
}

func (jsoniterTimeEncDec) IsEmpty(ptr unsafe.Pointer) bool {
	return (*time.Time)(ptr).IsZero()
}

func (jsoniterTimeEncDec) Encode(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	t := *(*time.Time)(ptr)
	if t.IsZero() {
		stream.WriteNil()
		return
	}
	stream.WriteString(twdate.ToText(t, twdate.CreatedAt))
}
