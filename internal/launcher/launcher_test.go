package launcher

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_EmbedsRedirectAndLink(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "https://prolens.example.com/app?src=launcher"))

	out := buf.String()
	assert.Contains(t, out, `http-equiv="refresh"`)
	assert.Contains(t, out, `url=https://prolens.example.com/app?src=launcher`)
	assert.Contains(t, out, `<a href="https://prolens.example.com/app?src=launcher">`)
}

func TestWrite_EscapesMarkup(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, `https://x.example.com/"><script>alert(1)</script>`))
	assert.NotContains(t, buf.String(), "<script>")
}

func TestWrite_RejectsNonHTTP(t *testing.T) {
	for _, target := range []string{"", "javascript:alert(1)", "/relative", "ftp://host/x"} {
		var buf bytes.Buffer
		require.ErrorIs(t, Write(&buf, target), ErrBadURL, target)
		assert.Zero(t, buf.Len())
	}
}
