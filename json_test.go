package twitter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONTime(t *testing.T) {
	want := time.Date(2008, 8, 27, 13, 8, 45, 0, time.UTC)
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"created_at", `"Wed Aug 27 13:08:45 +0000 2008"`, want},
		{"search created_at", `"Wed, 27 Aug 2008 13:08:45 +0000"`, want},
		{"as_of", `"2008-08-27T13:08:45Z"`, want},
		{"epoch millis", `1219842525000`, want},
		{"epoch millis string", `"1219842525000"`, want},
		{"null", `null`, time.Time{}},
		{"garbage", `"yesterday"`, time.Time{}},
		{"object", `{"a":1}`, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v struct {
				At time.Time `json:"at"`
				N  int       `json:"n"`
			}
			require.NoError(t, jsonTwitter.Unmarshal([]byte(`{"at":`+tt.in+`,"n":1}`), &v))
			assert.True(t, tt.want.Equal(v.At), "got %v", v.At)
			assert.Equal(t, 1, v.N)
		})
	}
}

func TestJSONTimeEncode(t *testing.T) {
	v := struct {
		At   time.Time `json:"at"`
		Zero time.Time `json:"zero"`
	}{At: time.Date(2008, 8, 27, 13, 8, 45, 0, time.UTC)}

	data, err := jsonTwitter.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"Wed Aug 27 13:08:45 +0000 2008","zero":null}`, string(data))
}

func TestMarshalIndentRecord(t *testing.T) {
	s := &Status{ID: 1, Text: "hi"}
	s.SetRawSource(`{"id":1}`)

	data, err := MarshalIndent(s)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "src")
	assert.Contains(t, string(data), `"text": "hi"`)
}
