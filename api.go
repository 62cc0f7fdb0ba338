package twitter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrEmptyResponse is returned by the typed wrappers when the response
// decoded to Empty (blank body or a 5xx).
var ErrEmptyResponse = errors.New("empty response")

// StatusOptions selects one status.
type StatusOptions struct {
	ID              int64  `url:"id"`
	TrimUser        bool   `url:"trim_user,omitempty"`
	IncludeEntities *bool  `url:"include_entities,omitempty"`
	TweetMode       string `url:"tweet_mode,omitempty"`
}

// LookupOptions selects up to 100 statuses or users at once.
type LookupOptions struct {
	ID         []int64  `url:"id,comma,omitempty"`
	UserID     []int64  `url:"user_id,comma,omitempty"`
	ScreenName []string `url:"screen_name,comma,omitempty"`
	TweetMode  string   `url:"tweet_mode,omitempty"`
}

// TimelineOptions pages through a status timeline by id.
type TimelineOptions struct {
	UserID         int64  `url:"user_id,omitempty"`
	ScreenName     string `url:"screen_name,omitempty"`
	Count          int    `url:"count,omitempty"`
	SinceID        int64  `url:"since_id,omitempty"`
	MaxID          int64  `url:"max_id,omitempty"`
	TrimUser       bool   `url:"trim_user,omitempty"`
	ExcludeReplies bool   `url:"exclude_replies,omitempty"`
	IncludeRTs     *bool  `url:"include_rts,omitempty"`
	TweetMode      string `url:"tweet_mode,omitempty"`
}

// CursorOptions pages through a cursor-paginated listing.
type CursorOptions struct {
	UserID     int64  `url:"user_id,omitempty"`
	ScreenName string `url:"screen_name,omitempty"`
	ListID     int64  `url:"list_id,omitempty"`
	Slug       string `url:"slug,omitempty"`
	OwnerName  string `url:"owner_screen_name,omitempty"`
	Cursor     int64  `url:"cursor,omitempty"`
	Count      int    `url:"count,omitempty"`
}

// TrendsOptions selects a WOEID.
type TrendsOptions struct {
	ID      int64  `url:"id"`
	Exclude string `url:"exclude,omitempty"`
}

// ClosestOptions locates trend locations near a point.
type ClosestOptions struct {
	Lat  float64 `url:"lat"`
	Long float64 `url:"long"`
}

// GeoSearchOptions searches places.
type GeoSearchOptions struct {
	Query       string   `url:"query,omitempty"`
	Lat         *float64 `url:"lat,omitempty"`
	Long        *float64 `url:"long,omitempty"`
	IP          string   `url:"ip,omitempty"`
	Granularity string   `url:"granularity,omitempty"`
	MaxResults  int      `url:"max_results,omitempty"`
}

// FriendshipOptions names the two ends of a relationship.
type FriendshipOptions struct {
	SourceID         int64  `url:"source_id,omitempty"`
	SourceScreenName string `url:"source_screen_name,omitempty"`
	TargetID         int64  `url:"target_id,omitempty"`
	TargetScreenName string `url:"target_screen_name,omitempty"`
}

// GetStatus fetches one status in extended mode.
func (c *Client) GetStatus(ctx context.Context, id int64) (*Status, error) {
	return single[*Status](c.Fetch(ctx, "StatusShow", &StatusOptions{ID: id, TweetMode: "extended"}))
}

// LookupStatuses fetches statuses by id.
func (c *Client) LookupStatuses(ctx context.Context, ids []int64) ([]*Status, error) {
	items, _, err := collection[*Status](c.Fetch(ctx, "StatusLookup", &LookupOptions{ID: ids, TweetMode: "extended"}))
	return items, err
}

// GetUserTimeline fetches one page of a user's statuses.
func (c *Client) GetUserTimeline(ctx context.Context, opts TimelineOptions) ([]*Status, error) {
	items, _, err := collection[*Status](c.Fetch(ctx, "UserTimeline", &opts))
	return items, err
}

// GetHomeTimeline fetches one page of the account's home timeline.
func (c *Client) GetHomeTimeline(ctx context.Context, opts TimelineOptions) ([]*Status, error) {
	items, _, err := collection[*Status](c.Fetch(ctx, "HomeTimeline", &opts))
	return items, err
}

// GetUser fetches a user by screen name.
func (c *Client) GetUser(ctx context.Context, screenName string) (*User, error) {
	return single[*User](c.Fetch(ctx, "UserShow", &LookupOptions{ScreenName: []string{screenName}}))
}

// LookupUsers fetches users by id.
func (c *Client) LookupUsers(ctx context.Context, ids []int64) ([]*User, error) {
	items, _, err := collection[*User](c.Fetch(ctx, "UserLookup", &LookupOptions{UserID: ids}))
	return items, err
}

// GetFollowerIDs fetches follower ids (paginated).
func (c *Client) GetFollowerIDs(ctx context.Context, opts CursorOptions, maxCount int) ([]ID, error) {
	return fetchCursored[ID](ctx, c, "FollowerIDs", opts, maxCount)
}

// GetFriendIDs fetches ids the user follows (paginated).
func (c *Client) GetFriendIDs(ctx context.Context, opts CursorOptions, maxCount int) ([]ID, error) {
	return fetchCursored[ID](ctx, c, "FriendIDs", opts, maxCount)
}

// GetFollowers fetches followers for a user (paginated).
func (c *Client) GetFollowers(ctx context.Context, opts CursorOptions, maxCount int) ([]*User, error) {
	return fetchCursored[*User](ctx, c, "Followers", opts, maxCount)
}

// GetFollowing fetches accounts a user follows (paginated).
func (c *Client) GetFollowing(ctx context.Context, opts CursorOptions, maxCount int) ([]*User, error) {
	return fetchCursored[*User](ctx, c, "Following", opts, maxCount)
}

// GetListMembers fetches the members of a list (paginated).
func (c *Client) GetListMembers(ctx context.Context, opts CursorOptions, maxCount int) ([]*User, error) {
	return fetchCursored[*User](ctx, c, "ListMembers", opts, maxCount)
}

// GetOwnedLists fetches the lists a user owns (paginated).
func (c *Client) GetOwnedLists(ctx context.Context, opts CursorOptions, maxCount int) ([]*List, error) {
	return fetchCursored[*List](ctx, c, "ListsOwnerships", opts, maxCount)
}

// GetTrendsPlace fetches the trends of a WOEID.
func (c *Client) GetTrendsPlace(ctx context.Context, woeid int64) ([]*Trend, error) {
	items, _, err := collection[*Trend](c.Fetch(ctx, "TrendsPlace", &TrendsOptions{ID: woeid}))
	return items, err
}

// GetLocalTrends fetches the trends of a WOEID with their as_of and locations.
func (c *Client) GetLocalTrends(ctx context.Context, woeid int64) (*LocalTrends, error) {
	return single[*LocalTrends](c.Fetch(ctx, "LocalTrends", &TrendsOptions{ID: woeid}))
}

// GetTrendLocations fetches every location trends are available for.
func (c *Client) GetTrendLocations(ctx context.Context) ([]*TrendLocation, error) {
	items, _, err := collection[*TrendLocation](c.Fetch(ctx, "TrendsAvailable", nil))
	return items, err
}

// GetClosestTrendLocations fetches the trend locations closest to a point.
func (c *Client) GetClosestTrendLocations(ctx context.Context, opts ClosestOptions) ([]*TrendLocation, error) {
	items, _, err := collection[*TrendLocation](c.Fetch(ctx, "TrendsClosest", &opts))
	return items, err
}

// SearchPlaces runs a geo search.
func (c *Client) SearchPlaces(ctx context.Context, opts GeoSearchOptions) ([]*Place, error) {
	items, _, err := collection[*Place](c.Fetch(ctx, "GeoSearch", &opts))
	return items, err
}

// GetRelationship fetches the relationship between two users.
func (c *Client) GetRelationship(ctx context.Context, opts FriendshipOptions) (*Relationship, error) {
	return single[*Relationship](c.Fetch(ctx, "FriendshipShow", &opts))
}

// GetSavedSearches fetches the account's saved searches.
func (c *Client) GetSavedSearches(ctx context.Context) ([]*SavedSearch, error) {
	items, _, err := collection[*SavedSearch](c.Fetch(ctx, "SavedSearches", nil))
	return items, err
}

// GetDirectMessages fetches received direct messages.
func (c *Client) GetDirectMessages(ctx context.Context, opts TimelineOptions) ([]*DirectMessage, error) {
	items, _, err := collection[*DirectMessage](c.Fetch(ctx, "DirectMessages", &opts))
	return items, err
}

// fetchCursored walks a cursor-paginated listing until maxCount items or the
// last page. Placeholder items are logged and skipped.
func fetchCursored[T Record](ctx context.Context, c *Client, operation string, opts CursorOptions, maxCount int) ([]T, error) {
	var out []T
	opts.Cursor = -1

	for {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}

		items, page, err := collection[T](c.Fetch(ctx, operation, &opts))
		if err != nil {
			return out, fmt.Errorf("%s: %w", operation, err)
		}
		for _, d := range page.Degraded() {
			slog.Warn("skipping degraded item",
				slog.String("operation", operation),
				slog.String("cause", d.Cause.String()),
				slog.String("trace_id", d.TraceID))
		}
		out = append(out, items...)

		if maxCount > 0 && len(out) >= maxCount {
			return out[:maxCount], nil
		}
		if page.NextCursor == nil || *page.NextCursor == 0 || len(page.Items) == 0 {
			break
		}
		opts.Cursor = *page.NextCursor
	}
	return out, nil
}

// single unpacks a single-record result.
func single[T Record](res Result, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	switch r := res.(type) {
	case *Single:
		if v, ok := r.Record.(T); ok {
			return v, nil
		}
		if d, ok := r.Record.(*Degraded); ok {
			return zero, degradedErr(d)
		}
	case *ErrorRecord:
		return zero, r
	case Empty:
		return zero, ErrEmptyResponse
	}
	return zero, fmt.Errorf("unexpected result %T", res)
}

// collection unpacks a collection result. A page that degraded into a single
// placeholder is an error.
func collection[T Record](res Result, err error) ([]T, *Collection, error) {
	if err != nil {
		return nil, nil, err
	}
	switch r := res.(type) {
	case *Collection:
		return Items[T](r), r, nil
	case *Single:
		if d, ok := r.Record.(*Degraded); ok {
			return nil, nil, degradedErr(d)
		}
	case *ErrorRecord:
		return nil, nil, r
	case Empty:
		return nil, nil, ErrEmptyResponse
	}
	return nil, nil, fmt.Errorf("unexpected result %T", res)
}

func degradedErr(d *Degraded) error {
	if d.Error != nil {
		return d.Error
	}
	return fmt.Errorf("%s (trace %s): %w", d.Cause, d.TraceID, d.Err)
}
