package twdate

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		format Format
		text   string
	}{
		{CreatedAt, "Wed Aug 27 13:08:45 +0000 2008"},
		{SearchCreatedAt, "Wed, 27 Aug 2008 13:08:45 +0000"},
		{TrendsAsOf, "2012-08-24T23:25:43Z"},
		{ISOMillis, "2012-08-24T23:25:43.123Z"},
		{TrendsDateTime, "2012-08-24 23:25:43"},
		{TrendsHour, "2012-08-24 23:25"},
		{DateOnly, "2012-08-24"},
	}

	require.Len(t, tests, len(Formats()), "every known format needs a sample")

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			c := NewCodec()
			instant, ok := c.ToInstant(tt.text)
			require.True(t, ok, "ToInstant(%q)", tt.text)
			assert.Equal(t, tt.text, c.ToText(instant, tt.format))
		})
	}
}

func TestToInstant_OffsetNormalizedToUTC(t *testing.T) {
	instant, ok := ToInstant("Wed Aug 27 13:08:45 -0500 2008")
	require.True(t, ok)
	assert.Equal(t, time.Date(2008, 8, 27, 18, 8, 45, 0, time.UTC), instant)
	assert.Equal(t, "Wed Aug 27 18:08:45 +0000 2008", ToText(instant, CreatedAt))
}

func TestToInstant_NoMatch(t *testing.T) {
	for _, s := range []string{"", "   ", "yesterday", "2012/08/24", "<html>"} {
		_, ok := ToInstant(s)
		assert.False(t, ok, "ToInstant(%q)", s)
	}
}

func TestToText_UnknownFormat(t *testing.T) {
	assert.Equal(t, "", ToText(time.Now(), Format(42)))
	assert.Equal(t, "Format(42)", Format(42).String())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("TRENDS_AS_OF")
	require.NoError(t, err)
	assert.Equal(t, TrendsAsOf, f)

	_, err = ParseFormat("rfc822")
	assert.Error(t, err)
}

func TestTable_BuiltOnceUnderConcurrency(t *testing.T) {
	var loads atomic.Int32
	c := &Codec{loader: func() map[Format]string {
		loads.Add(1)
		return builtinLayouts()
	}}

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := c.ToInstant("2012-08-24")
			assert.True(t, ok)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())
}
