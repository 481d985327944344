package domain

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRectangle_Contains(t *testing.T) {
	r := Rectangle{Left: 10, Top: 10, Width: 50, Height: 50}

	tests := []struct {
		name string
		p    image.Point
		want bool
	}{
		{"inside", image.Pt(30, 30), true},
		{"far outside", image.Pt(100, 100), false},
		{"top-left corner", image.Pt(10, 10), true},
		{"right edge exclusive", image.Pt(60, 30), false},
		{"bottom edge exclusive", image.Pt(30, 60), false},
		{"last pixel", image.Pt(59, 59), true},
		{"left of box", image.Pt(9, 30), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Contains(tt.p))
		})
	}
}

func TestRectangle_Bounds(t *testing.T) {
	r := Rectangle{Left: 5, Top: 7, Width: 20, Height: 30}
	assert.Equal(t, image.Rect(5, 7, 25, 37), r.Bounds())
}

func TestRectangle_Scale(t *testing.T) {
	r := Rectangle{Left: 10, Top: 21, Width: 50, Height: 33}

	assert.Equal(t, Rectangle{Left: 20, Top: 42, Width: 100, Height: 66}, r.Scale(2))
	assert.Equal(t, Rectangle{Left: 5, Top: 11, Width: 25, Height: 17}, r.Scale(0.5))
	assert.Equal(t, r, r.Scale(1))
}

func TestFaceSet_RecordsIsCopy(t *testing.T) {
	set := &FaceSet{Faces: []FaceRecord{{ID: "a"}, {ID: "b"}}}

	recs := set.Records()
	require.Len(t, recs, 2)
	recs[0].ID = "changed"

	assert.Equal(t, "a", set.Faces[0].ID)
}

func TestFaceSet_NilSafe(t *testing.T) {
	var set *FaceSet
	assert.Empty(t, set.Records())
	assert.NotNil(t, set.Records())
	assert.Equal(t, 0, set.Len())
}

func TestEmotionScores_RowsOrder(t *testing.T) {
	e := EmotionScores{
		Anger: 0.1, Contempt: 0.2, Disgust: 0.3, Fear: 0.4,
		Happiness: 0.5, Neutral: 0.6, Sadness: 0.7, Surprise: 0.8,
	}

	rows := e.Rows()
	require.Len(t, rows, 8)

	wantNames := []string{"anger", "contempt", "disgust", "fear", "happiness", "neutral", "sadness", "surprise"}
	for i, row := range rows {
		assert.Equal(t, wantNames[i], row.Name)
		assert.InDelta(t, float64(i+1)/10, row.Value, 1e-9)
	}
}

func TestEmotionScores_Dominant(t *testing.T) {
	tests := []struct {
		name string
		e    EmotionScores
		want string
	}{
		{"happiness wins", EmotionScores{Happiness: 0.9, Neutral: 0.1}, "happiness"},
		{"surprise wins", EmotionScores{Surprise: 0.6, Fear: 0.4}, "surprise"},
		{"all zero picks first", EmotionScores{}, "anger"},
		{"tie picks earlier field", EmotionScores{Disgust: 0.5, Sadness: 0.5}, "disgust"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.e.Dominant())
		})
	}
}
