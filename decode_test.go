package twitter

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newTestDecoder(cfg DecoderConfig) *Decoder {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.NewTraceID == nil {
		cfg.NewTraceID = func() string { return "trace-1" }
	}
	return NewDecoder(cfg)
}

func int64p(v int64) *int64 { return &v }

func TestDecodeCursorCollection(t *testing.T) {
	d := newTestDecoder(DecoderConfig{})
	res, err := d.Decode([]byte(`{"ids":[1,2,3],"next_cursor":10,"previous_cursor":0}`), CursoredOf(ElemID))
	require.NoError(t, err)

	c, ok := res.(*Collection)
	require.True(t, ok, "got %T", res)
	assert.Equal(t, []ID{1, 2, 3}, Items[ID](c))
	assert.Equal(t, int64p(10), c.NextCursor)
	assert.Equal(t, int64p(0), c.PreviousCursor)
}

func TestDecodeCollectionEnvelopes(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		shape     Shape
		wantLen   int
		wantNext  *int64
		wantPrev  *int64
		wantFirst string
	}{
		{
			name:      "bare array",
			body:      `[{"id":1,"text":"a"},{"id":2,"text":"b"}]`,
			shape:     CollectionOf(ElemStatus),
			wantLen:   2,
			wantFirst: `{"id":1,"text":"a"}`,
		},
		{
			name:      "users envelope with cursors",
			body:      `{"users":[{"id":1,"screen_name":"a"}],"next_cursor":0,"previous_cursor":-1}`,
			shape:     CursoredOf(ElemUser),
			wantLen:   1,
			wantNext:  int64p(0),
			wantPrev:  int64p(-1),
			wantFirst: `{"id":1,"screen_name":"a"}`,
		},
		{
			name:      "plain collection ignores cursors",
			body:      `{"users":[{"id":1}],"next_cursor":3}`,
			shape:     CollectionOf(ElemUser),
			wantLen:   1,
			wantFirst: `{"id":1}`,
		},
		{
			name:      "users wins over ids",
			body:      `{"ids":[9],"users":[{"id":1},{"id":2}]}`,
			shape:     CursoredOf(ElemUser),
			wantLen:   2,
			wantFirst: `{"id":1}`,
		},
		{
			name:      "lists envelope",
			body:      `{"lists":[{"id":7,"slug":"go"}],"next_cursor":55,"previous_cursor":0}`,
			shape:     CursoredOf(ElemList),
			wantLen:   1,
			wantNext:  int64p(55),
			wantPrev:  int64p(0),
			wantFirst: `{"id":7,"slug":"go"}`,
		},
		{
			name:      "geo search nests places",
			body:      `{"query":{},"result":{"places":[{"id":"5a110d312052166f","name":"San Francisco"}]}}`,
			shape:     CollectionOf(ElemPlace),
			wantLen:   1,
			wantFirst: `{"id":"5a110d312052166f","name":"San Francisco"}`,
		},
		{
			name:      "users wins over result",
			body:      `{"result":{"places":[{"id":"p"}]},"users":[{"id":1}]}`,
			shape:     CollectionOf(ElemUser),
			wantLen:   1,
			wantFirst: `{"id":1}`,
		},
		{
			name:      "cursor result is not nested",
			body:      `{"result":[{"id":1}],"next_cursor":2}`,
			shape:     CursoredOf(ElemUser),
			wantLen:   1,
			wantNext:  int64p(2),
			wantFirst: `{"id":1}`,
		},
		{
			name:    "cursor without next",
			body:    `{"ids":[4]}`,
			shape:   CursoredOf(ElemID),
			wantLen: 1,
		},
	}

	d := newTestDecoder(DecoderConfig{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := d.Decode([]byte(tt.body), tt.shape)
			require.NoError(t, err)
			c, ok := res.(*Collection)
			require.True(t, ok, "got %T", res)
			require.Len(t, c.Items, tt.wantLen)
			assert.Empty(t, c.Degraded())
			assert.Equal(t, tt.wantNext, c.NextCursor)
			assert.Equal(t, tt.wantPrev, c.PreviousCursor)
			if tt.wantFirst != "" {
				hs, ok := c.Items[0].(HasRawSource)
				require.True(t, ok)
				assert.Equal(t, tt.wantFirst, hs.RawSource())
			}
		})
	}
}

func TestDecodeParseFailure(t *testing.T) {
	d := newTestDecoder(DecoderConfig{})
	body := "<html><body>Twitter is over capacity.</body></html>\n"

	t.Run("collection", func(t *testing.T) {
		res, err := d.Decode([]byte(body), CollectionOf(ElemStatus))
		require.NoError(t, err)
		c, ok := res.(*Collection)
		require.True(t, ok, "got %T", res)
		require.Len(t, c.Items, 1)

		deg, ok := c.Items[0].(*Degraded)
		require.True(t, ok)
		assert.Equal(t, CauseParseFailure, deg.Cause)
		assert.Equal(t, ElemStatus, deg.Elem())
		assert.Equal(t, body, deg.RawSource())
		assert.Equal(t, "trace-1", deg.TraceID)
		assert.ErrorIs(t, deg.Err, ErrMalformedJSON)
		assert.Nil(t, deg.Error)
	})

	t.Run("single", func(t *testing.T) {
		res, err := d.Decode([]byte(`{"id":1,`), SingleOf(ElemUser))
		require.NoError(t, err)
		s, ok := res.(*Single)
		require.True(t, ok, "got %T", res)
		deg, ok := s.Record.(*Degraded)
		require.True(t, ok)
		assert.Equal(t, CauseParseFailure, deg.Cause)
		assert.Equal(t, `{"id":1,`, deg.RawSource())
	})

	t.Run("cursor collection", func(t *testing.T) {
		res, err := d.Decode([]byte("Rate limit exceeded"), CursoredOf(ElemID))
		require.NoError(t, err)
		c, ok := res.(*Collection)
		require.True(t, ok, "got %T", res)
		require.Len(t, c.Degraded(), 1)
		assert.Nil(t, c.NextCursor)
	})
}

func TestDecodeShapeMismatch(t *testing.T) {
	d := newTestDecoder(DecoderConfig{})

	t.Run("error payload for a collection", func(t *testing.T) {
		body := `{"errors":[{"message":"Bad Authentication data.","code":215}]}`
		res, err := d.Decode([]byte(body), CollectionOf(ElemStatus))
		require.NoError(t, err)
		s, ok := res.(*Single)
		require.True(t, ok, "got %T", res)
		deg, ok := s.Record.(*Degraded)
		require.True(t, ok)
		assert.Equal(t, CauseShapeMismatch, deg.Cause)
		assert.Equal(t, body, deg.RawSource())
		require.NotNil(t, deg.Error)
		assert.Equal(t, 215, deg.Error.Code)
		assert.Equal(t, "Bad Authentication data.", deg.Error.Message)
		assert.IsType(t, &Status{}, deg.Record)
	})

	t.Run("array for a single", func(t *testing.T) {
		res, err := d.Decode([]byte(`[1,2]`), SingleOf(ElemStatus))
		require.NoError(t, err)
		deg, ok := res.(*Single).Record.(*Degraded)
		require.True(t, ok)
		assert.Nil(t, deg.Record)
		assert.Nil(t, deg.Error)
		assert.True(t, errors.Is(deg.Err, errShapeMismatch))
	})

	t.Run("envelope key holding an object", func(t *testing.T) {
		res, err := d.Decode([]byte(`{"users":{"id":1}}`), CollectionOf(ElemUser))
		require.NoError(t, err)
		_, ok := res.(*Single).Record.(*Degraded)
		assert.True(t, ok)
	})

	t.Run("bad element degrades in place", func(t *testing.T) {
		res, err := d.Decode([]byte(`[{"id":1},2,{"id":3}]`), CollectionOf(ElemStatus))
		require.NoError(t, err)
		c := res.(*Collection)
		require.Len(t, c.Items, 3)
		assert.Equal(t, int64(1), c.Items[0].(*Status).ID)
		deg, ok := c.Items[1].(*Degraded)
		require.True(t, ok)
		assert.Equal(t, CauseShapeMismatch, deg.Cause)
		assert.Equal(t, "2", deg.RawSource())
		assert.Equal(t, int64(3), c.Items[2].(*Status).ID)
		assert.Len(t, Items[*Status](c), 2)
	})

	t.Run("string ids", func(t *testing.T) {
		res, err := d.Decode([]byte(`{"ids":["12","x"]}`), CursoredOf(ElemID))
		require.NoError(t, err)
		c := res.(*Collection)
		require.Len(t, c.Items, 2)
		assert.Equal(t, ID(12), c.Items[0])
		deg, ok := c.Items[1].(*Degraded)
		require.True(t, ok)
		assert.Equal(t, `"x"`, deg.RawSource())
	})

	t.Run("string among objects keeps its quotes", func(t *testing.T) {
		res, err := d.Decode([]byte(`{"ids":[ "x" ,{"a":1}]}`), CursoredOf(ElemID))
		require.NoError(t, err)
		c := res.(*Collection)
		require.Len(t, c.Items, 2)
		raws := make([]string, 0, 2)
		for _, it := range c.Items {
			deg, ok := it.(*Degraded)
			require.True(t, ok)
			raws = append(raws, deg.RawSource())
		}
		assert.Equal(t, []string{`"x"`, `{"a":1}`}, raws)
	})
}

func TestDecodeRawSourceRetention(t *testing.T) {
	d := newTestDecoder(DecoderConfig{})
	user := `{"id":2,"screen_name":"bob","created_at":"Wed Aug 27 13:08:45 +0000 2008"}`
	quoted := `{"id":3,"text":"quoted"}`
	body := `{"id":1,"text":"hi","user":` + user + `,"quoted_status":` + quoted + `}`

	res, err := d.Decode([]byte(body), SingleOf(ElemStatus))
	require.NoError(t, err)
	s, err := single[*Status](res, nil)
	require.NoError(t, err)

	assert.Equal(t, body, s.RawSource())
	require.NotNil(t, s.User)
	assert.Equal(t, user, s.User.RawSource())
	assert.Equal(t, 2008, s.User.CreatedAt.Year())
	require.NotNil(t, s.QuotedStatus)
	assert.Equal(t, quoted, s.QuotedStatus.RawSource())
}

func TestDecodeTrends(t *testing.T) {
	body := `[{"trends":[{"name":"#GiftAGolfer","url":"http://twitter.com/search/?q=%23GiftAGolfer","query":"%23GiftAGolfer","tweet_volume":null},` +
		`{"name":"#golf","url":"u","query":"q","tweet_volume":1200}],` +
		`"as_of":"2012-08-24T23:25:43Z","created_at":"2012-08-24T23:24:14Z",` +
		`"locations":[{"name":"Worldwide","woeid":1}]}]`
	d := newTestDecoder(DecoderConfig{})

	t.Run("trends", func(t *testing.T) {
		res, err := d.Decode([]byte(body), TrendsShape())
		require.NoError(t, err)
		trends := Items[*Trend](res.(*Collection))
		require.Len(t, trends, 2)
		assert.Equal(t, "#GiftAGolfer", trends[0].Name)
		assert.Nil(t, trends[0].TweetVolume)
		require.NotNil(t, trends[1].TweetVolume)
		assert.Equal(t, 1200, *trends[1].TweetVolume)
	})

	t.Run("local trends", func(t *testing.T) {
		res, err := d.Decode([]byte(body), LocalTrendsShape())
		require.NoError(t, err)
		lt, err := single[*LocalTrends](res, nil)
		require.NoError(t, err)
		assert.Len(t, lt.Trends, 2)
		require.Len(t, lt.Locations, 1)
		assert.Equal(t, int64(1), lt.Locations[0].Woeid)
		assert.Equal(t, 25, lt.AsOf.Minute())
	})

	t.Run("empty array", func(t *testing.T) {
		res, err := d.Decode([]byte(`[]`), LocalTrendsShape())
		require.NoError(t, err)
		assert.Equal(t, Empty{}, res)

		res, err = d.Decode([]byte(`[]`), TrendsShape())
		require.NoError(t, err)
		assert.Empty(t, res.(*Collection).Items)
	})

	t.Run("object accepted", func(t *testing.T) {
		res, err := d.Decode([]byte(`{"trends":[{"name":"x"}]}`), TrendsShape())
		require.NoError(t, err)
		assert.Len(t, res.(*Collection).Items, 1)
	})
}

func TestDecodeNonDataShapes(t *testing.T) {
	d := newTestDecoder(DecoderConfig{})

	t.Run("bytes", func(t *testing.T) {
		body := []byte(" {\"resources\":{}}\n")
		res, err := d.Decode(body, BytesShape())
		require.NoError(t, err)
		assert.Equal(t, RawBytes(body), res)
	})

	t.Run("blank", func(t *testing.T) {
		for _, shape := range []Shape{SingleOf(ElemStatus), CollectionOf(ElemUser), ErrorShape(), BytesShape()} {
			res, err := d.Decode([]byte(" \r\n\t"), shape)
			require.NoError(t, err)
			assert.Equal(t, Empty{}, res, shape.String())
		}
	})

	t.Run("error", func(t *testing.T) {
		res, err := d.Decode([]byte(`{"error":"Not authorized."}`), ErrorShape())
		require.NoError(t, err)
		rec, ok := res.(*ErrorRecord)
		require.True(t, ok, "got %T", res)
		assert.Equal(t, DefaultErrorCode, rec.Code)

		res, err = d.Decode([]byte(`{"id":1}`), ErrorShape())
		require.NoError(t, err)
		assert.Equal(t, Empty{}, res)
	})

	t.Run("artifact", func(t *testing.T) {
		res, err := d.Decode([]byte(`{"delete":{"status":{"id":5,"user_id":6}}}`), ArtifactShape())
		require.NoError(t, err)
		a, ok := res.(*Artifact)
		require.True(t, ok, "got %T", res)
		assert.Equal(t, &StatusDeleted{StatusID: 5, UserID: 6}, a.Event)
	})

	t.Run("invalid shape", func(t *testing.T) {
		for _, shape := range []Shape{
			{Kind: KindSingle},
			{Kind: KindBytes, Irregular: IrregularArrayWrapped},
			{Kind: KindCollection, Elem: ElemUser, Irregular: IrregularTrendsInArray},
			{Kind: Kind(42), Elem: ElemUser},
		} {
			_, err := d.Decode([]byte(`{}`), shape)
			assert.ErrorIs(t, err, ErrInvalidShape, shape.String())
		}
	})
}

func TestDecodeRelationship(t *testing.T) {
	d := newTestDecoder(DecoderConfig{})
	for _, body := range []string{
		`{"relationship":{"source":{"id":1,"following":true},"target":{"id":2,"followed_by":true}}}`,
		`{"source":{"id":1,"following":true},"target":{"id":2,"followed_by":true}}`,
	} {
		res, err := d.Decode([]byte(body), SingleOf(ElemRelationship))
		require.NoError(t, err)
		r, err := single[*Relationship](res, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), r.Source.ID)
		assert.True(t, r.Source.Following)
		assert.True(t, r.Target.FollowedBy)
		assert.Equal(t, body, r.RawSource())
	}
}

func TestDecodeInlineEntities(t *testing.T) {
	body := `{"id":1,"text":"hey @bob see #go https://example.com/x"}`

	res, err := newTestDecoder(DecoderConfig{}).Decode([]byte(body), SingleOf(ElemStatus))
	require.NoError(t, err)
	s := res.(*Single).Record.(*Status)
	require.NotNil(t, s.Entities)

	want := &Entities{
		Mentions: []*Mention{{Offsets: [2]int{4, 8}, ScreenName: "bob"}},
		Hashtags: []*HashTag{{Offsets: [2]int{13, 16}, Text: "go"}},
		URLs:     []*URL{{Offsets: [2]int{17, 38}, URL: "https://example.com/x", ExpandedURL: "https://example.com/x"}},
	}
	if diff := cmp.Diff(want, s.Entities, cmp.AllowUnexported(Raw{})); diff != "" {
		t.Fatalf("inline entities mismatch (-want +got):\n%s", diff)
	}

	res, err = newTestDecoder(DecoderConfig{DisableInlineEntities: true}).Decode([]byte(body), SingleOf(ElemStatus))
	require.NoError(t, err)
	assert.Nil(t, res.(*Single).Record.(*Status).Entities)

	res, err = newTestDecoder(DecoderConfig{}).Decode([]byte(`{"id":1,"text":"#go","entities":{"hashtags":[]}}`), SingleOf(ElemStatus))
	require.NoError(t, err)
	assert.Empty(t, res.(*Single).Record.(*Status).Entities.Hashtags)
}

func TestDecodeConcurrent(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	d := newTestDecoder(DecoderConfig{})
	bodies := []string{
		`{"ids":[1,2,3],"next_cursor":10,"previous_cursor":0}`,
		`[{"id":1,"text":"@a #b"}]`,
		`<html>`,
	}
	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			body := bodies[i%len(bodies)]
			shape := CollectionOf(ElemStatus)
			if i%len(bodies) == 0 {
				shape = CursoredOf(ElemID)
			}
			res, err := d.Decode([]byte(body), shape)
			assert.NoError(t, err)
			assert.IsType(t, &Collection{}, res)
		}()
	}
	wg.Wait()
}
