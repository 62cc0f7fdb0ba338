package main

import (
	"fmt"

	twitter "github.com/anatolykoptev/go-twitter-decode"
)

// view is the printed form of a result or event. Raw sources are not part of
// the records' encoding, so degraded and unknown inputs are surfaced here.
type view struct {
	Kind     string         `json:"kind" yaml:"kind"`
	Value    any            `json:"value,omitempty" yaml:"value,omitempty"`
	Degraded []degradedView `json:"degraded,omitempty" yaml:"degraded,omitempty"`
	Raw      string         `json:"raw,omitempty" yaml:"raw,omitempty"`
}

type degradedView struct {
	Index   int    `json:"index" yaml:"index"`
	TraceID string `json:"trace_id" yaml:"trace_id"`
	Cause   string `json:"cause" yaml:"cause"`
	Raw     string `json:"raw" yaml:"raw"`
}

func resultView(res twitter.Result) view {
	switch r := res.(type) {
	case twitter.Empty:
		return view{Kind: "empty"}
	case *twitter.Single:
		v := view{Kind: "single", Value: r.Record}
		if d, ok := r.Record.(*twitter.Degraded); ok {
			v.Degraded = []degradedView{degradedEntry(0, d)}
		}
		return v
	case *twitter.Collection:
		v := view{Kind: "collection", Value: r}
		for i, it := range r.Items {
			if d, ok := it.(*twitter.Degraded); ok {
				v.Degraded = append(v.Degraded, degradedEntry(i, d))
			}
		}
		return v
	case *twitter.ErrorRecord:
		return view{Kind: "error", Value: r}
	case *twitter.Artifact:
		return eventView(r.Event)
	case twitter.RawBytes:
		return view{Kind: "bytes", Raw: string(r)}
	}
	return view{Kind: fmt.Sprintf("%T", res)}
}

func eventView(ev twitter.StreamEvent) view {
	switch e := ev.(type) {
	case *twitter.FriendsList:
		return view{Kind: "friends", Value: e}
	case *twitter.StatusDeleted:
		return view{Kind: "status_deleted", Value: e}
	case *twitter.DirectMessageDeleted:
		return view{Kind: "direct_message_deleted", Value: e}
	case *twitter.UserEvent:
		return view{Kind: "event", Value: e}
	case *twitter.NewStatus:
		return view{Kind: "status", Value: e.Status}
	case *twitter.NewDirectMessage:
		return view{Kind: "direct_message", Value: e.DirectMessage}
	case *twitter.Unknown:
		return view{Kind: "unknown", Raw: e.Text()}
	case twitter.StreamEnd:
		return view{Kind: "end"}
	}
	return view{Kind: fmt.Sprintf("%T", ev)}
}

func degradedEntry(i int, d *twitter.Degraded) degradedView {
	return degradedView{Index: i, TraceID: d.TraceID, Cause: d.Cause.String(), Raw: d.RawSource()}
}
