package twitter

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddOptions(t *testing.T) {
	yes := true
	tests := []struct {
		name string
		base string
		opts any
		want string
	}{
		{"nil", "https://x/a.json", nil, "https://x/a.json"},
		{"nil pointer", "https://x/a.json", (*TimelineOptions)(nil), "https://x/a.json"},
		{"struct", "https://x/a.json", &TimelineOptions{ScreenName: "jack", Count: 20, IncludeRTs: &yes}, "https://x/a.json?count=20&include_rts=true&screen_name=jack"},
		{"comma list", "https://x/a.json", LookupOptions{ID: []int64{1, 2, 3}}, "https://x/a.json?id=1%2C2%2C3"},
		{"keeps existing query", "https://x/a.json?tweet_mode=extended", &StatusOptions{ID: 7}, "https://x/a.json?id=7&tweet_mode=extended"},
		{"url values", "https://x/a.json", url.Values{"q": {"a b"}}, "https://x/a.json?q=a+b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := addOptions(tt.base, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := addOptions("https://x/a.json", 42)
	assert.Error(t, err)
}

func TestEndpointURL(t *testing.T) {
	got, err := EndpointURL("FollowerIDs", &CursorOptions{ScreenName: "jack", Cursor: -1})
	require.NoError(t, err)
	assert.Equal(t, "https://api.twitter.com/1.1/followers/ids.json?cursor=-1&screen_name=jack", got)

	_, err = EndpointURL("Nope", nil)
	assert.ErrorContains(t, err, "unknown operation")
}

func TestEndpointsShapes(t *testing.T) {
	for name, ep := range Endpoints {
		assert.NoError(t, ep.Shape.Validate(), name)
		assert.NotEmpty(t, ep.Path, name)
	}
	assert.Equal(t, ClassCursorCollection, Classify(Endpoints["FollowerIDs"].Shape))
	assert.True(t, requiresAuth("HomeTimeline"))
	assert.False(t, requiresAuth("UserShow"))
}
