package twitter

import (
	"sort"

	"github.com/anatolykoptev/go-twitter-decode/twtext"
)

// Entities are the structured annotations of a status or direct message.
type Entities struct {
	Mentions []*Mention `json:"user_mentions,omitempty" yaml:"user_mentions,omitempty"`
	Hashtags []*HashTag `json:"hashtags,omitempty" yaml:"hashtags,omitempty"`
	URLs     []*URL     `json:"urls,omitempty" yaml:"urls,omitempty"`
	Media    []*Media   `json:"media,omitempty" yaml:"media,omitempty"`
}

// Mention is an @screen_name annotation.
type Mention struct {
	Raw `json:"-" yaml:"-"`

	Offsets    [2]int `json:"indices" yaml:"indices"`
	ID         int64  `json:"id,omitempty" yaml:"id,omitempty"`
	IDStr      string `json:"id_str,omitempty" yaml:"id_str,omitempty"`
	ScreenName string `json:"screen_name" yaml:"screen_name"`
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
}

func (m *Mention) Indices() (start, end int) { return m.Offsets[0], m.Offsets[1] }

func (m *Mention) UnmarshalJSON(data []byte) error {
	type plain Mention
	if err := jsonTwitter.Unmarshal(data, (*plain)(m)); err != nil {
		return err
	}
	m.SetRawSource(string(data))
	return nil
}

// HashTag is a #hashtag annotation. Text excludes the sigil.
type HashTag struct {
	Raw `json:"-" yaml:"-"`

	Offsets [2]int `json:"indices" yaml:"indices"`
	Text    string `json:"text" yaml:"text"`
}

func (h *HashTag) Indices() (start, end int) { return h.Offsets[0], h.Offsets[1] }

func (h *HashTag) UnmarshalJSON(data []byte) error {
	type plain HashTag
	if err := jsonTwitter.Unmarshal(data, (*plain)(h)); err != nil {
		return err
	}
	h.SetRawSource(string(data))
	return nil
}

// URL is a link annotation.
type URL struct {
	Raw `json:"-" yaml:"-"`

	Offsets     [2]int `json:"indices" yaml:"indices"`
	URL         string `json:"url" yaml:"url"`
	ExpandedURL string `json:"expanded_url,omitempty" yaml:"expanded_url,omitempty"`
	DisplayURL  string `json:"display_url,omitempty" yaml:"display_url,omitempty"`
}

func (u *URL) Indices() (start, end int) { return u.Offsets[0], u.Offsets[1] }

func (u *URL) UnmarshalJSON(data []byte) error {
	type plain URL
	if err := jsonTwitter.Unmarshal(data, (*plain)(u)); err != nil {
		return err
	}
	u.SetRawSource(string(data))
	return nil
}

// MediaSize is one rendition size of a media entity.
type MediaSize struct {
	W      int    `json:"w" yaml:"w"`
	H      int    `json:"h" yaml:"h"`
	Resize string `json:"resize" yaml:"resize"`
}

// VideoVariant is one encoding of a video or animated GIF.
type VideoVariant struct {
	Bitrate     int    `json:"bitrate,omitempty" yaml:"bitrate,omitempty"`
	ContentType string `json:"content_type" yaml:"content_type"`
	URL         string `json:"url" yaml:"url"`
}

// VideoInfo is attached to video and animated_gif media.
type VideoInfo struct {
	AspectRatio    [2]int         `json:"aspect_ratio" yaml:"aspect_ratio"`
	DurationMillis int            `json:"duration_millis,omitempty" yaml:"duration_millis,omitempty"`
	Variants       []VideoVariant `json:"variants" yaml:"variants"`
}

// Media is a photo, video or animated_gif annotation.
type Media struct {
	Raw `json:"-" yaml:"-"`

	Offsets       [2]int               `json:"indices" yaml:"indices"`
	ID            int64                `json:"id" yaml:"id"`
	IDStr         string               `json:"id_str" yaml:"id_str"`
	Type          string               `json:"type" yaml:"type"`
	MediaURL      string               `json:"media_url" yaml:"media_url"`
	MediaURLHTTPS string               `json:"media_url_https" yaml:"media_url_https"`
	URL           string               `json:"url" yaml:"url"`
	DisplayURL    string               `json:"display_url" yaml:"display_url"`
	ExpandedURL   string               `json:"expanded_url" yaml:"expanded_url"`
	Sizes         map[string]MediaSize `json:"sizes,omitempty" yaml:"sizes,omitempty"`
	VideoInfo     *VideoInfo           `json:"video_info,omitempty" yaml:"video_info,omitempty"`
}

func (m *Media) Indices() (start, end int) { return m.Offsets[0], m.Offsets[1] }

func (m *Media) UnmarshalJSON(data []byte) error {
	type plain Media
	if err := jsonTwitter.Unmarshal(data, (*plain)(m)); err != nil {
		return err
	}
	m.SetRawSource(string(data))
	return nil
}

// Coalesced returns every entity sorted by start offset. Entities sharing a
// start keep their mentions, hashtags, urls, media order.
func (e *Entities) Coalesced() []HasIndices {
	if e == nil {
		return nil
	}
	out := make([]HasIndices, 0, len(e.Mentions)+len(e.Hashtags)+len(e.URLs)+len(e.Media))
	for _, m := range e.Mentions {
		out = append(out, m)
	}
	for _, h := range e.Hashtags {
		out = append(out, h)
	}
	for _, u := range e.URLs {
		out = append(out, u)
	}
	for _, m := range e.Media {
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := out[i].Indices()
		b, _ := out[j].Indices()
		return a < b
	})
	return out
}

// ReconcileMedia copies extended photo entities into the primary media list
// unless one with the same start offset and media_url is already there. It
// never removes entities and is idempotent. The status is modified in place.
func ReconcileMedia(s *Status) *Status {
	if s == nil || s.ExtendedEntities == nil {
		return s
	}
	for _, ext := range s.ExtendedEntities.Media {
		if ext == nil || ext.Type != "photo" {
			continue
		}
		start, end := ext.Indices()
		if start == 0 && end == 0 {
			if a, b, ok := twtext.Locate(s.DisplayText(), ext.URL); ok {
				start, end = a, b
			}
		}
		if s.Entities == nil {
			s.Entities = &Entities{}
		}
		if hasMedia(s.Entities.Media, start, ext.MediaURL) {
			continue
		}
		cp := *ext
		cp.Offsets = [2]int{start, end}
		s.Entities.Media = append(s.Entities.Media, &cp)
	}
	return s
}

func hasMedia(list []*Media, start int, mediaURL string) bool {
	for _, m := range list {
		if m != nil && m.Offsets[0] == start && m.MediaURL == mediaURL {
			return true
		}
	}
	return false
}

// inlineEntities parses mentions, hashtags and urls out of text for payloads
// that omit the entities object.
func inlineEntities(text string) *Entities {
	found := twtext.Extract(text)
	if len(found) == 0 {
		return nil
	}
	e := &Entities{}
	for _, f := range found {
		offsets := [2]int{f.Start, f.End}
		switch f.Kind {
		case twtext.KindMention:
			e.Mentions = append(e.Mentions, &Mention{Offsets: offsets, ScreenName: f.Value})
		case twtext.KindHashtag:
			e.Hashtags = append(e.Hashtags, &HashTag{Offsets: offsets, Text: f.Value})
		case twtext.KindURL:
			e.URLs = append(e.URLs, &URL{Offsets: offsets, URL: f.Value, ExpandedURL: f.Value})
		}
	}
	return e
}
