package twitter

import "fmt"

// Result is the outcome of one Decode call. It is one of Empty, *Single,
// *Collection, *ErrorRecord, *Artifact or RawBytes.
type Result interface {
	result()
}

// Empty is returned for blank bodies, error shapes that carried no error, and
// 5xx responses.
type Empty struct{}

// Single holds one decoded record.
type Single struct {
	Record Record `json:"record" yaml:"record"`
}

// Collection is an ordered page of records. Cursors are set only for
// cursor-paginated endpoints whose envelope carried them.
type Collection struct {
	Items          []Record `json:"items" yaml:"items"`
	NextCursor     *int64   `json:"next_cursor,omitempty" yaml:"next_cursor,omitempty"`
	PreviousCursor *int64   `json:"previous_cursor,omitempty" yaml:"previous_cursor,omitempty"`
}

// Artifact holds one classified stream event.
type Artifact struct {
	Event StreamEvent `json:"event" yaml:"event"`
}

// RawBytes is the body as received, for shapes that ask for bytes.
type RawBytes []byte

func (Empty) result()        {}
func (*Single) result()      {}
func (*Collection) result()  {}
func (*ErrorRecord) result() {}
func (*Artifact) result()    {}
func (RawBytes) result()     {}

// Degraded returns the placeholder items of the page, in order.
func (c *Collection) Degraded() []*Degraded {
	var out []*Degraded
	for _, it := range c.Items {
		if d, ok := it.(*Degraded); ok {
			out = append(out, d)
		}
	}
	return out
}

// Items returns the collection items of type T, skipping anything else.
func Items[T Record](c *Collection) []T {
	if c == nil {
		return nil
	}
	out := make([]T, 0, len(c.Items))
	for _, it := range c.Items {
		if v, ok := it.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// Cause says why a record was degraded.
type Cause int

const (
	// CauseParseFailure means the body was not JSON at all.
	CauseParseFailure Cause = iota + 1
	// CauseShapeMismatch means the body was JSON of the wrong shape.
	CauseShapeMismatch
)

func (c Cause) String() string {
	switch c {
	case CauseParseFailure:
		return "parse_failure"
	case CauseShapeMismatch:
		return "shape_mismatch"
	}
	return fmt.Sprintf("Cause(%d)", int(c))
}

func (c Cause) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// Degraded stands in for a record that could not be decoded as requested. Its
// raw source is the offending text.
type Degraded struct {
	Raw `json:"-" yaml:"-"`

	Cause     Cause        `json:"cause" yaml:"cause"`
	Requested Elem         `json:"requested" yaml:"requested"`
	Record    Record       `json:"record,omitempty" yaml:"record,omitempty"`
	Error     *ErrorRecord `json:"error,omitempty" yaml:"error,omitempty"`
	Err       error        `json:"-" yaml:"-"`
	TraceID   string       `json:"trace_id" yaml:"trace_id"`
}

// Elem reports the element type that was requested.
func (d *Degraded) Elem() Elem { return d.Requested }

func (d *Degraded) String() string {
	return fmt.Sprintf("degraded %s (%s, trace %s)", d.Requested, d.Cause, d.TraceID)
}
