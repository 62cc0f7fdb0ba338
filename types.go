package twitter

import "time"

// Record is a value the decoder produces for a single target or a collection element.
type Record interface {
	Elem() Elem
}

// HasRawSource is implemented by records that keep the JSON fragment they were decoded from.
type HasRawSource interface {
	RawSource() string
	SetRawSource(string)
}

// HasIndices is implemented by entities anchored to a [start, end) range of their owning text.
type HasIndices interface {
	Indices() (start, end int)
}

// Raw holds the verbatim JSON fragment of a record. Embed it to get HasRawSource.
type Raw struct {
	src string
}

// RawSource returns the original JSON fragment.
func (r *Raw) RawSource() string { return r.src }

// SetRawSource replaces the stored fragment.
func (r *Raw) SetRawSource(s string) { r.src = s }

// ID is a bare numeric identifier, as returned by the ids endpoints.
type ID int64

func (ID) Elem() Elem { return ElemID }

// Status is a tweet.
type Status struct {
	Raw `json:"-" yaml:"-"`

	ID                  int64     `json:"id" yaml:"id"`
	IDStr               string    `json:"id_str" yaml:"id_str"`
	CreatedAt           time.Time `json:"created_at" yaml:"created_at"`
	Text                string    `json:"text" yaml:"text"`
	FullText            string    `json:"full_text,omitempty" yaml:"full_text,omitempty"`
	Source              string    `json:"source" yaml:"source"`
	Truncated           bool      `json:"truncated" yaml:"truncated"`
	InReplyToStatusID   int64     `json:"in_reply_to_status_id,omitempty" yaml:"in_reply_to_status_id,omitempty"`
	InReplyToUserID     int64     `json:"in_reply_to_user_id,omitempty" yaml:"in_reply_to_user_id,omitempty"`
	InReplyToScreenName string    `json:"in_reply_to_screen_name,omitempty" yaml:"in_reply_to_screen_name,omitempty"`
	User                *User     `json:"user,omitempty" yaml:"user,omitempty"`
	Place               *Place    `json:"place,omitempty" yaml:"place,omitempty"`
	QuotedStatusID      int64     `json:"quoted_status_id,omitempty" yaml:"quoted_status_id,omitempty"`
	IsQuoteStatus       bool      `json:"is_quote_status" yaml:"is_quote_status"`
	QuotedStatus        *Status   `json:"quoted_status,omitempty" yaml:"quoted_status,omitempty"`
	RetweetedStatus     *Status   `json:"retweeted_status,omitempty" yaml:"retweeted_status,omitempty"`
	RetweetCount        int       `json:"retweet_count" yaml:"retweet_count"`
	FavoriteCount       int       `json:"favorite_count" yaml:"favorite_count"`
	Favorited           bool      `json:"favorited" yaml:"favorited"`
	Retweeted           bool      `json:"retweeted" yaml:"retweeted"`
	PossiblySensitive   bool      `json:"possibly_sensitive,omitempty" yaml:"possibly_sensitive,omitempty"`
	Lang                string    `json:"lang,omitempty" yaml:"lang,omitempty"`
	Entities            *Entities `json:"entities,omitempty" yaml:"entities,omitempty"`
	ExtendedEntities    *Entities `json:"extended_entities,omitempty" yaml:"extended_entities,omitempty"`
	WithheldInCountries []string  `json:"withheld_in_countries,omitempty" yaml:"withheld_in_countries,omitempty"`
	DisplayTextRange    []int     `json:"display_text_range,omitempty" yaml:"display_text_range,omitempty"`
}

func (*Status) Elem() Elem { return ElemStatus }

// DisplayText returns full_text for extended-mode payloads, text otherwise.
func (s *Status) DisplayText() string {
	if s.FullText != "" {
		return s.FullText
	}
	return s.Text
}

func (s *Status) UnmarshalJSON(data []byte) error {
	type plain Status
	if err := jsonTwitter.Unmarshal(data, (*plain)(s)); err != nil {
		return err
	}
	s.SetRawSource(string(data))
	return nil
}

// User is an account profile.
type User struct {
	Raw `json:"-" yaml:"-"`

	ID                   int64     `json:"id" yaml:"id"`
	IDStr                string    `json:"id_str" yaml:"id_str"`
	Name                 string    `json:"name" yaml:"name"`
	ScreenName           string    `json:"screen_name" yaml:"screen_name"`
	Location             string    `json:"location,omitempty" yaml:"location,omitempty"`
	Description          string    `json:"description,omitempty" yaml:"description,omitempty"`
	URL                  string    `json:"url,omitempty" yaml:"url,omitempty"`
	Protected            bool      `json:"protected" yaml:"protected"`
	Verified             bool      `json:"verified" yaml:"verified"`
	FollowersCount       int       `json:"followers_count" yaml:"followers_count"`
	FriendsCount         int       `json:"friends_count" yaml:"friends_count"`
	ListedCount          int       `json:"listed_count" yaml:"listed_count"`
	FavouritesCount      int       `json:"favourites_count" yaml:"favourites_count"`
	StatusesCount        int       `json:"statuses_count" yaml:"statuses_count"`
	CreatedAt            time.Time `json:"created_at" yaml:"created_at"`
	ProfileImageURLHTTPS string    `json:"profile_image_url_https,omitempty" yaml:"profile_image_url_https,omitempty"`
	DefaultProfileImage  bool      `json:"default_profile_image" yaml:"default_profile_image"`
	Following            bool      `json:"following,omitempty" yaml:"following,omitempty"`
	Status               *Status   `json:"status,omitempty" yaml:"status,omitempty"`
}

func (*User) Elem() Elem { return ElemUser }

func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	if err := jsonTwitter.Unmarshal(data, (*plain)(u)); err != nil {
		return err
	}
	u.SetRawSource(string(data))
	return nil
}

// DirectMessage is a legacy (v1.1 REST and user stream) direct message.
type DirectMessage struct {
	Raw `json:"-" yaml:"-"`

	ID                  int64     `json:"id" yaml:"id"`
	IDStr               string    `json:"id_str" yaml:"id_str"`
	Text                string    `json:"text" yaml:"text"`
	CreatedAt           time.Time `json:"created_at" yaml:"created_at"`
	SenderID            int64     `json:"sender_id" yaml:"sender_id"`
	SenderScreenName    string    `json:"sender_screen_name" yaml:"sender_screen_name"`
	Sender              *User     `json:"sender,omitempty" yaml:"sender,omitempty"`
	RecipientID         int64     `json:"recipient_id" yaml:"recipient_id"`
	RecipientScreenName string    `json:"recipient_screen_name" yaml:"recipient_screen_name"`
	Recipient           *User     `json:"recipient,omitempty" yaml:"recipient,omitempty"`
	Entities            *Entities `json:"entities,omitempty" yaml:"entities,omitempty"`
}

func (*DirectMessage) Elem() Elem { return ElemDirectMessage }

func (m *DirectMessage) UnmarshalJSON(data []byte) error {
	type plain DirectMessage
	if err := jsonTwitter.Unmarshal(data, (*plain)(m)); err != nil {
		return err
	}
	m.SetRawSource(string(data))
	return nil
}

// List is a user-curated list.
type List struct {
	Raw `json:"-" yaml:"-"`

	ID              int64     `json:"id" yaml:"id"`
	IDStr           string    `json:"id_str" yaml:"id_str"`
	Name            string    `json:"name" yaml:"name"`
	FullName        string    `json:"full_name" yaml:"full_name"`
	Slug            string    `json:"slug" yaml:"slug"`
	Description     string    `json:"description,omitempty" yaml:"description,omitempty"`
	Mode            string    `json:"mode" yaml:"mode"`
	URI             string    `json:"uri" yaml:"uri"`
	MemberCount     int       `json:"member_count" yaml:"member_count"`
	SubscriberCount int       `json:"subscriber_count" yaml:"subscriber_count"`
	Following       bool      `json:"following" yaml:"following"`
	CreatedAt       time.Time `json:"created_at" yaml:"created_at"`
	User            *User     `json:"user,omitempty" yaml:"user,omitempty"`
}

func (*List) Elem() Elem { return ElemList }

func (l *List) UnmarshalJSON(data []byte) error {
	type plain List
	if err := jsonTwitter.Unmarshal(data, (*plain)(l)); err != nil {
		return err
	}
	l.SetRawSource(string(data))
	return nil
}

// Trend is one trending topic.
type Trend struct {
	Raw `json:"-" yaml:"-"`

	Name        string `json:"name" yaml:"name"`
	URL         string `json:"url" yaml:"url"`
	Query       string `json:"query" yaml:"query"`
	TweetVolume *int   `json:"tweet_volume,omitempty" yaml:"tweet_volume,omitempty"`
}

func (*Trend) Elem() Elem { return ElemTrend }

func (t *Trend) UnmarshalJSON(data []byte) error {
	type plain Trend
	if err := jsonTwitter.Unmarshal(data, (*plain)(t)); err != nil {
		return err
	}
	t.SetRawSource(string(data))
	return nil
}

// PlaceType is the WOEID place classification.
type PlaceType struct {
	Code int    `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// TrendLocation is a location trends are available for.
type TrendLocation struct {
	Raw `json:"-" yaml:"-"`

	Name        string    `json:"name" yaml:"name"`
	Woeid       int64     `json:"woeid" yaml:"woeid"`
	Country     string    `json:"country" yaml:"country"`
	CountryCode string    `json:"countryCode" yaml:"countryCode"`
	ParentID    int64     `json:"parentid" yaml:"parentid"`
	URL         string    `json:"url" yaml:"url"`
	PlaceType   PlaceType `json:"placeType" yaml:"placeType"`
}

func (*TrendLocation) Elem() Elem { return ElemTrendLocation }

func (l *TrendLocation) UnmarshalJSON(data []byte) error {
	type plain TrendLocation
	if err := jsonTwitter.Unmarshal(data, (*plain)(l)); err != nil {
		return err
	}
	l.SetRawSource(string(data))
	return nil
}

// LocalTrends is the trends/place payload for one location.
type LocalTrends struct {
	Raw `json:"-" yaml:"-"`

	AsOf      time.Time        `json:"as_of" yaml:"as_of"`
	CreatedAt time.Time        `json:"created_at" yaml:"created_at"`
	Locations []*TrendLocation `json:"locations" yaml:"locations"`
	Trends    []*Trend         `json:"trends" yaml:"trends"`
}

func (*LocalTrends) Elem() Elem { return ElemLocalTrends }

func (l *LocalTrends) UnmarshalJSON(data []byte) error {
	type plain LocalTrends
	if err := jsonTwitter.Unmarshal(data, (*plain)(l)); err != nil {
		return err
	}
	l.SetRawSource(string(data))
	return nil
}

// BoundingBox is a GeoJSON polygon.
type BoundingBox struct {
	Type        string         `json:"type" yaml:"type"`
	Coordinates [][][2]float64 `json:"coordinates" yaml:"coordinates"`
}

// Place is a geo place.
type Place struct {
	Raw `json:"-" yaml:"-"`

	ID              string       `json:"id" yaml:"id"`
	URL             string       `json:"url" yaml:"url"`
	PlaceType       string       `json:"place_type" yaml:"place_type"`
	Name            string       `json:"name" yaml:"name"`
	FullName        string       `json:"full_name" yaml:"full_name"`
	CountryCode     string       `json:"country_code" yaml:"country_code"`
	Country         string       `json:"country" yaml:"country"`
	ContainedWithin []*Place     `json:"contained_within,omitempty" yaml:"contained_within,omitempty"`
	BoundingBox     *BoundingBox `json:"bounding_box,omitempty" yaml:"bounding_box,omitempty"`
}

func (*Place) Elem() Elem { return ElemPlace }

func (p *Place) UnmarshalJSON(data []byte) error {
	type plain Place
	if err := jsonTwitter.Unmarshal(data, (*plain)(p)); err != nil {
		return err
	}
	p.SetRawSource(string(data))
	return nil
}

// RelationshipSide is one end of a friendship.
type RelationshipSide struct {
	ID                   int64  `json:"id" yaml:"id"`
	IDStr                string `json:"id_str" yaml:"id_str"`
	ScreenName           string `json:"screen_name" yaml:"screen_name"`
	Following            bool   `json:"following" yaml:"following"`
	FollowedBy           bool   `json:"followed_by" yaml:"followed_by"`
	Blocking             bool   `json:"blocking,omitempty" yaml:"blocking,omitempty"`
	Muting               bool   `json:"muting,omitempty" yaml:"muting,omitempty"`
	CanDM                bool   `json:"can_dm,omitempty" yaml:"can_dm,omitempty"`
	NotificationsEnabled *bool  `json:"notifications_enabled,omitempty" yaml:"notifications_enabled,omitempty"`
}

// Relationship is the friendships/show payload. The upstream wraps it in a
// "relationship" object; both wrapped and bare forms decode.
type Relationship struct {
	Raw `json:"-" yaml:"-"`

	Source RelationshipSide `json:"source" yaml:"source"`
	Target RelationshipSide `json:"target" yaml:"target"`
}

func (*Relationship) Elem() Elem { return ElemRelationship }

func (r *Relationship) UnmarshalJSON(data []byte) error {
	type plain Relationship
	var wrapped struct {
		Relationship *plain `json:"relationship" yaml:"relationship"`
	}
	if err := jsonTwitter.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	if wrapped.Relationship != nil {
		*r = Relationship(*wrapped.Relationship)
	} else if err := jsonTwitter.Unmarshal(data, (*plain)(r)); err != nil {
		return err
	}
	r.SetRawSource(string(data))
	return nil
}

// SavedSearch is a stored search query.
type SavedSearch struct {
	Raw `json:"-" yaml:"-"`

	ID        int64     `json:"id" yaml:"id"`
	IDStr     string    `json:"id_str" yaml:"id_str"`
	Name      string    `json:"name" yaml:"name"`
	Query     string    `json:"query" yaml:"query"`
	Position  *int      `json:"position,omitempty" yaml:"position,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

func (*SavedSearch) Elem() Elem { return ElemSavedSearch }

func (s *SavedSearch) UnmarshalJSON(data []byte) error {
	type plain SavedSearch
	if err := jsonTwitter.Unmarshal(data, (*plain)(s)); err != nil {
		return err
	}
	s.SetRawSource(string(data))
	return nil
}
