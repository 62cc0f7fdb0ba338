package twitter

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/google/go-querystring/query"
)

const (
	twitterAPIURL = "https://api.twitter.com"
	restBase      = twitterAPIURL + "/1.1"
)

// bearerTokens is the list of known Twitter web-app bearer tokens.
var bearerTokens = []string{
	"AAAAAAAAAAAAAAAAAAAAANRILgAAAAAAnNwIzUejRCOuH5E6I8xnZz4puTs%3D1Zv7ttfk8LF81IUq16cHjhLTvJu4FA33AGWWjCpTnA",
	"AAAAAAAAAAAAAAAAAAAAAFQODgEAAAAAVHTp76lzh3rFzcHbmHVvQxYYpTw%3DckAlMINMjmCwxUcaXbAN4XqJVdgMJaHqNOFgPMK0zN1qLqLQCF",
}

// BearerToken is the active bearer token (first in list).
var BearerToken = bearerTokens[0]

// Endpoint is a v1.1 REST operation: its path under the API root, the shape
// its response decodes into, and whether it needs a logged-in account.
type Endpoint struct {
	Path  string
	Shape Shape
	Auth  bool
}

// URL returns the endpoint URL under base with opts encoded as the query.
func (e Endpoint) URL(base string, opts any) (string, error) {
	return addOptions(strings.TrimSuffix(base, "/")+"/"+e.Path, opts)
}

// EndpointURL returns the default-host URL for a named operation, or an error if unknown.
func EndpointURL(operation string, opts any) (string, error) {
	ep, ok := Endpoints[operation]
	if !ok {
		return "", fmt.Errorf("unknown operation: %s", operation)
	}
	return ep.URL(restBase, opts)
}

// Endpoints maps operation names to their REST path and response shape.
var Endpoints = map[string]Endpoint{
	"StatusShow":         {Path: "statuses/show.json", Shape: SingleOf(ElemStatus)},
	"StatusLookup":       {Path: "statuses/lookup.json", Shape: CollectionOf(ElemStatus)},
	"UserTimeline":       {Path: "statuses/user_timeline.json", Shape: CollectionOf(ElemStatus)},
	"HomeTimeline":       {Path: "statuses/home_timeline.json", Shape: CollectionOf(ElemStatus), Auth: true},
	"MentionsTimeline":   {Path: "statuses/mentions_timeline.json", Shape: CollectionOf(ElemStatus), Auth: true},
	"Retweets":           {Path: "statuses/retweets.json", Shape: CollectionOf(ElemStatus)},
	"Retweeters":         {Path: "statuses/retweeters/ids.json", Shape: CursoredOf(ElemID), Auth: true},
	"UserShow":           {Path: "users/show.json", Shape: SingleOf(ElemUser)},
	"UserLookup":         {Path: "users/lookup.json", Shape: CollectionOf(ElemUser)},
	"UserSearch":         {Path: "users/search.json", Shape: CollectionOf(ElemUser), Auth: true},
	"FollowerIDs":        {Path: "followers/ids.json", Shape: CursoredOf(ElemID), Auth: true},
	"FriendIDs":          {Path: "friends/ids.json", Shape: CursoredOf(ElemID), Auth: true},
	"Followers":          {Path: "followers/list.json", Shape: CursoredOf(ElemUser), Auth: true},
	"Following":          {Path: "friends/list.json", Shape: CursoredOf(ElemUser), Auth: true},
	"ListsList":          {Path: "lists/list.json", Shape: CollectionOf(ElemList)},
	"ListsOwnerships":    {Path: "lists/ownerships.json", Shape: CursoredOf(ElemList)},
	"ListStatuses":       {Path: "lists/statuses.json", Shape: CollectionOf(ElemStatus)},
	"ListMembers":        {Path: "lists/members.json", Shape: CursoredOf(ElemUser)},
	"TrendsPlace":        {Path: "trends/place.json", Shape: TrendsShape()},
	"LocalTrends":        {Path: "trends/place.json", Shape: LocalTrendsShape()},
	"TrendsAvailable":    {Path: "trends/available.json", Shape: CollectionOf(ElemTrendLocation)},
	"TrendsClosest":      {Path: "trends/closest.json", Shape: CollectionOf(ElemTrendLocation)},
	"GeoSearch":          {Path: "geo/search.json", Shape: CollectionOf(ElemPlace)},
	"GeoID":              {Path: "geo/id.json", Shape: SingleOf(ElemPlace)},
	"FriendshipShow":     {Path: "friendships/show.json", Shape: SingleOf(ElemRelationship), Auth: true},
	"SavedSearches":      {Path: "saved_searches/list.json", Shape: CollectionOf(ElemSavedSearch), Auth: true},
	"DirectMessages":     {Path: "direct_messages.json", Shape: CollectionOf(ElemDirectMessage), Auth: true},
	"DirectMessagesSent": {Path: "direct_messages/sent.json", Shape: CollectionOf(ElemDirectMessage), Auth: true},
	"RateLimitStatus":    {Path: "application/rate_limit_status.json", Shape: BytesShape()},
}

// addOptions encodes opts onto the query of s. opts is a url.Values or a
// struct with url tags.
func addOptions(s string, opts any) (string, error) {
	v := reflect.ValueOf(opts)
	if opts == nil || v.Kind() == reflect.Ptr && v.IsNil() {
		return s, nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return s, fmt.Errorf("parse url %q: %w", s, err)
	}

	qs, ok := opts.(url.Values)
	if !ok {
		if qs, err = query.Values(opts); err != nil {
			return s, fmt.Errorf("encode options: %w", err)
		}
	}
	q := u.Query()
	for k, vals := range qs {
		for _, val := range vals {
			q.Add(k, val)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
