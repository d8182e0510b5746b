package paper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDimensions(t *testing.T) {
	tests := []struct {
		format Format
		orient Orientation
		want   Size
	}{
		{A4, Portrait, Size{210, 297}},
		{Letter, Portrait, Size{216, 279}},
		{Legal, Portrait, Size{216, 356}},
		{A4, Landscape, Size{297, 210}},
		{Legal, Landscape, Size{356, 216}},
		{"bogus", Portrait, Size{210, 297}},
	}
	for _, tt := range tests {
		t.Run(string(tt.format)+"-"+string(tt.orient), func(t *testing.T) {
			assert.Equal(t, tt.want, Dimensions(tt.format, tt.orient))
		})
	}
}

func TestPixelWidth(t *testing.T) {
	assert.Equal(t, 794, PixelWidth(A4, Portrait))
	assert.Equal(t, 816, PixelWidth(Letter, Portrait))
	assert.Equal(t, 1123, PixelHeight(A4, Portrait))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, A4, f)

	f, err = ParseFormat(" Letter ")
	require.NoError(t, err)
	assert.Equal(t, Letter, f)

	_, err = ParseFormat("a3")
	assert.Error(t, err)
}

func TestParseOrientation(t *testing.T) {
	o, err := ParseOrientation("LANDSCAPE")
	require.NoError(t, err)
	assert.Equal(t, Landscape, o)

	_, err = ParseOrientation("diagonal")
	assert.Error(t, err)
}

func TestInches(t *testing.T) {
	w, h := Dimensions(A4, Portrait).Inches()
	assert.InDelta(t, 8.27, w, 0.01)
	assert.InDelta(t, 11.69, h, 0.01)
}
