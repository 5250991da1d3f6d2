package multipart

import (
	"mime"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_FieldsAndFile(t *testing.T) {
	t.Parallel()

	body, contentType, err := New().
		AddBytes("file", "audio.wav", []byte("fake-audio-bytes")).
		AddField("model", "whisper-1").
		AddField("language", "en").
		Finish()
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)

	req, err := http.NewRequest(http.MethodPost, "http://example.invalid", strings.NewReader(string(body)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)

	mr, err := req.MultipartReader()
	require.NoError(t, err)

	seen := map[string]string{}
	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}
		buf := make([]byte, 64)
		n, _ := part.Read(buf)
		seen[part.FormName()] = string(buf[:n])
	}

	assert.Equal(t, "fake-audio-bytes", seen["file"])
	assert.Equal(t, "whisper-1", seen["model"])
	assert.Equal(t, "en", seen["language"])
	assert.NotEmpty(t, params["boundary"])
}

func TestExtensionForMimeType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "mp3", ExtensionForMimeType("audio/mpeg"))
	assert.Equal(t, "wav", ExtensionForMimeType("audio/wav"))
	assert.Equal(t, "bin", ExtensionForMimeType("application/octet-stream"))
}
