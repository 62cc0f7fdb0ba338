package twitter

import (
	"bytes"
	"log/slog"
	"strconv"
	"time"

	"github.com/buger/jsonparser"
)

// DefaultStreamEndSentinel is the line a stream sends in place of JSON when
// it is done.
const DefaultStreamEndSentinel = "END STREAMING"

// StreamEvent is one classified stream artifact. It is one of *FriendsList,
// *StatusDeleted, *DirectMessageDeleted, *UserEvent, *NewStatus,
// *NewDirectMessage, *Unknown or StreamEnd.
type StreamEvent interface {
	streamEvent()
}

// FriendsList is the friend id preamble of a user stream.
type FriendsList struct {
	IDs []int64 `json:"friends" yaml:"friends"`
}

// StatusDeleted is a status deletion notice.
type StatusDeleted struct {
	StatusID int64 `json:"status_id" yaml:"status_id"`
	UserID   int64 `json:"user_id" yaml:"user_id"`
}

// DirectMessageDeleted is a direct message deletion notice.
type DirectMessageDeleted struct {
	DirectMessageID int64 `json:"direct_message_id" yaml:"direct_message_id"`
	UserID          int64 `json:"user_id" yaml:"user_id"`
}

// UserEvent is a favorite, list_member_added and the like. TargetObject is a
// *Status, *DirectMessage or *List depending on the keys of target_object.
type UserEvent struct {
	Raw `json:"-" yaml:"-"`

	Event        string    `json:"event" yaml:"event"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	Source       *User     `json:"source" yaml:"source"`
	Target       *User     `json:"target" yaml:"target"`
	TargetObject Record    `json:"target_object,omitempty" yaml:"target_object,omitempty"`
}

// NewStatus is a status delivered on the stream.
type NewStatus struct {
	Status *Status `json:"status" yaml:"status"`
}

// NewDirectMessage is a direct message delivered on the stream.
type NewDirectMessage struct {
	DirectMessage *DirectMessage `json:"direct_message" yaml:"direct_message"`
}

// Unknown is an artifact matching no known key set. Its raw source is the
// artifact text, untouched.
type Unknown struct {
	Raw `json:"-" yaml:"-"`
}

// StreamEnd marks the end-of-stream sentinel.
type StreamEnd struct{}

func (*FriendsList) streamEvent()          {}
func (*StatusDeleted) streamEvent()        {}
func (*DirectMessageDeleted) streamEvent() {}
func (*UserEvent) streamEvent()            {}
func (*NewStatus) streamEvent()            {}
func (*NewDirectMessage) streamEvent()     {}
func (*Unknown) streamEvent()              {}
func (StreamEnd) streamEvent()             {}

// Text returns the raw artifact.
func (u *Unknown) Text() string { return u.RawSource() }

// ResolveArtifact classifies one stream artifact with the default decoder.
func ResolveArtifact(body []byte) StreamEvent {
	return defaultDecoder.ResolveArtifact(body)
}

// ResolveArtifact classifies one stream artifact by the keys it carries. The
// first matching rule wins:
//
//	friends                -> *FriendsList
//	delete.status          -> *StatusDeleted
//	delete.direct_message  -> *DirectMessageDeleted
//	target_object          -> *UserEvent
//	user                   -> *NewStatus
//	direct_message         -> *NewDirectMessage
//
// Anything else, including malformed JSON, is *Unknown.
func (d *Decoder) ResolveArtifact(body []byte) StreamEvent {
	trimmed := bytes.TrimSpace(body)
	if string(trimmed) == d.cfg.StreamEndSentinel {
		return StreamEnd{}
	}
	if len(trimmed) == 0 || trimmed[0] != '{' || !jsonTwitter.Valid(trimmed) {
		return d.unknownArtifact(body, "not a JSON object")
	}

	switch {
	case has(trimmed, "friends"):
		return &FriendsList{IDs: int64Array(trimmed, "friends")}

	case has(trimmed, "delete", "status"):
		return &StatusDeleted{
			StatusID: idField(trimmed, "delete", "status"),
			UserID:   idField(trimmed, "delete", "status", "user_id"),
		}

	case has(trimmed, "delete", "direct_message"):
		return &DirectMessageDeleted{
			DirectMessageID: idField(trimmed, "delete", "direct_message"),
			UserID:          idField(trimmed, "delete", "direct_message", "user_id"),
		}

	case has(trimmed, "target_object"):
		ev, err := d.userEvent(trimmed)
		if err != nil {
			return d.unknownArtifact(body, err.Error())
		}
		return ev

	case has(trimmed, "user"):
		s, err := decodeAs[Status](trimmed)
		if err != nil {
			return d.unknownArtifact(body, err.Error())
		}
		d.postProcess(s)
		return &NewStatus{Status: s}

	case has(trimmed, "direct_message"):
		v, _, _, _ := jsonparser.Get(trimmed, "direct_message")
		m, err := decodeAs[DirectMessage](v)
		if err != nil {
			return d.unknownArtifact(body, err.Error())
		}
		return &NewDirectMessage{DirectMessage: m}
	}
	return d.unknownArtifact(body, "")
}

func (d *Decoder) userEvent(body []byte) (*UserEvent, error) {
	var env struct {
		Event     string    `json:"event"`
		CreatedAt time.Time `json:"created_at"`
		Source    *User     `json:"source"`
		Target    *User     `json:"target"`
	}
	if err := jsonTwitter.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	ev := &UserEvent{
		Event:     env.Event,
		CreatedAt: env.CreatedAt,
		Source:    env.Source,
		Target:    env.Target,
	}
	ev.SetRawSource(string(body))

	obj, typ, _, err := jsonparser.Get(body, "target_object")
	if err != nil || typ != jsonparser.Object {
		return ev, nil
	}
	switch {
	case has(obj, "recipient_screen_name"):
		ev.TargetObject, err = decodeAs[DirectMessage](obj)
	case has(obj, "slug"):
		ev.TargetObject, err = decodeAs[List](obj)
	default:
		var s *Status
		s, err = decodeAs[Status](obj)
		if err == nil {
			d.postProcess(s)
			ev.TargetObject = s
		}
	}
	if err != nil {
		return nil, err
	}
	return ev, nil
}

func (d *Decoder) unknownArtifact(body []byte, reason string) *Unknown {
	if reason != "" {
		d.logger().Debug("stream artifact not decoded",
			slog.String("reason", reason),
			slog.String("body", truncateBytes(body, d.cfg.LogBodyLimit)))
	}
	u := &Unknown{}
	u.SetRawSource(string(body))
	return u
}

// has reports whether the key path exists in the object.
func has(obj []byte, path ...string) bool {
	_, _, _, err := jsonparser.Get(obj, path...)
	return err == nil
}

// idField reads path+"id", falling back to path+"id_str". A path ending in
// "user_id" is read as is, with the same _str fallback.
func idField(obj []byte, path ...string) int64 {
	last := path[len(path)-1]
	var p []string
	if last == "user_id" {
		p = path
	} else {
		p = append(append([]string(nil), path...), "id")
	}
	if v, err := jsonparser.GetInt(obj, p...); err == nil {
		return v
	}
	strPath := append(append([]string(nil), p[:len(p)-1]...), p[len(p)-1]+"_str")
	if s, err := jsonparser.GetString(obj, strPath...); err == nil {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return v
		}
	}
	return 0
}

func int64Array(obj []byte, key string) []int64 {
	var out []int64
	_, _ = jsonparser.ArrayEach(obj, func(value []byte, typ jsonparser.ValueType, _ int, _ error) {
		if typ != jsonparser.Number {
			return
		}
		if v, err := jsonparser.ParseInt(value); err == nil {
			out = append(out, v)
		}
	}, key)
	return out
}
