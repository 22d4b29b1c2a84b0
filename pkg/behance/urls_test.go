package behance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeValidURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"relative gallery", "/gallery/123/My-Project", "https://www.behance.net/gallery/123/My-Project"},
		{"relative without slash", "gallery/9/x", "https://www.behance.net/gallery/9/x"},
		{"absolute with query", "https://www.behance.net/gallery/123/My-Project?tracking=1&b=2", "https://www.behance.net/gallery/123/My-Project"},
		{"already canonical", "https://www.behance.net/janedoe/moodboards", "https://www.behance.net/janedoe/moodboards"},
		{"relative with query", "/gallery/5/y?x=1", "https://www.behance.net/gallery/5/y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MakeValidURL(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, MakeValidURL(got), "must be idempotent")
		})
	}
}

func TestFormatForDisplay(t *testing.T) {
	assert.Equal(t, "https://x", FormatForDisplay("https://x", 20))
	assert.Equal(t, "gallery/123/My-Project", FormatForDisplay("https://www.behance.net/gallery/123/My-Project?a=b", 60))
	assert.Equal(t, "gallery/123/...", FormatForDisplay("https://www.behance.net/gallery/123/My-Project", 15))

	long := "https://www.behance.net/gallery/123/abcdefghij"
	assert.Len(t, FormatForDisplay(long, 10), 10)
}

func TestExtractID(t *testing.T) {
	id, err := ExtractID("https://www.behance.net/gallery/123456/Some-Title")
	require.NoError(t, err)
	assert.Equal(t, "123456", id)

	_, err = ExtractID("https://www.behance.net/gallery")
	assert.ErrorIs(t, err, ErrMalformedURL)

	_, err = ExtractID("https://www.behance.net/gallery//x")
	assert.ErrorIs(t, err, ErrMalformedURL)
}

func TestURLPredicates(t *testing.T) {
	assert.True(t, IsGalleryURL("https://www.behance.net/gallery/1/a"))
	assert.False(t, IsGalleryURL("https://www.behance.net/janedoe"))
	assert.True(t, IsMoodboardURL("https://www.behance.net/moodboard/77/Inspo"))
	assert.False(t, IsMoodboardURL("https://www.behance.net/janedoe/moodboards"))
	assert.True(t, IsSiteURL("https://mir-s3-cdn-cf.Behance.net/a.jpg"))
}
