package twitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeValidate(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		ok    bool
	}{
		{"single status", SingleOf(ElemStatus), true},
		{"cursored ids", CursoredOf(ElemID), true},
		{"cursored statuses", CursoredOf(ElemStatus), true},
		{"trends", TrendsShape(), true},
		{"local trends", LocalTrendsShape(), true},
		{"error", ErrorShape(), true},
		{"bytes", BytesShape(), true},
		{"artifact", ArtifactShape(), true},
		{"single without elem", Shape{Kind: KindSingle}, false},
		{"elem out of range", Shape{Kind: KindCollection, Elem: Elem(99)}, false},
		{"unknown kind", Shape{Kind: Kind(99), Elem: ElemUser}, false},
		{"irregular error", Shape{Kind: KindError, Irregular: IrregularTrendsInArray}, false},
		{"trends in array of users", Shape{Kind: KindCollection, Elem: ElemUser, Irregular: IrregularTrendsInArray}, false},
		{"array wrapped collection", Shape{Kind: KindCollection, Elem: ElemLocalTrends, Irregular: IrregularArrayWrapped}, false},
		{"unknown irregular", Shape{Kind: KindSingle, Elem: ElemUser, Irregular: Irregular(9)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.shape.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidShape)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		shape Shape
		want  Class
	}{
		{SingleOf(ElemUser), ClassSingle},
		{LocalTrendsShape(), ClassSingle},
		{CollectionOf(ElemStatus), ClassCollection},
		{TrendsShape(), ClassCollection},
		{CursoredOf(ElemID), ClassCursorCollection},
		{CursoredOf(ElemUser), ClassCursorCollection},
		{CursoredOf(ElemList), ClassCursorCollection},
		{CursoredOf(ElemStatus), ClassCollection},
		{ErrorShape(), ClassError},
		{BytesShape(), ClassBytes},
		{ArtifactShape(), ClassArtifact},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.shape), tt.shape.String())
	}
}

func TestParseShape(t *testing.T) {
	for _, name := range ShapeNames() {
		s, err := ParseShape(name)
		require.NoError(t, err, name)
		require.NoError(t, s.Validate(), name)
		assert.Equal(t, name, s.String())
	}

	s, err := ParseShape("USERS_CURSORED")
	require.NoError(t, err)
	assert.Equal(t, CursoredOf(ElemUser), s)

	_, err = ParseShape("tweets")
	assert.ErrorIs(t, err, ErrInvalidShape)

	assert.Equal(t, "cursor_collection<status>", CursoredOf(ElemStatus).String())
}
