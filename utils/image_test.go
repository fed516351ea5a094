package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 0, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// fileHeaderFor builds a real multipart.FileHeader via an httptest request.
func fileHeaderFor(t *testing.T, name string, contents []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = part.Write(contents)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("PUT", "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	_, fh, err := req.FormFile("image")
	require.NoError(t, err)
	return fh
}

func TestImageValidator_AcceptsImage(t *testing.T) {
	t.Parallel()

	v := NewImageValidator(2 << 20)
	src := testPNG(t, 64, 64)

	data, err := v.ValidateAndRead(fileHeaderFor(t, "a.png", src))
	require.NoError(t, err)
	require.Equal(t, src, data)
}

func TestImageValidator_RejectsNonImage(t *testing.T) {
	t.Parallel()

	v := NewImageValidator(2 << 20)
	_, err := v.ValidateAndRead(fileHeaderFor(t, "a.txt", []byte("plain text payload")))
	require.Error(t, err)
}

func TestImageValidator_RejectsOversize(t *testing.T) {
	t.Parallel()

	v := NewImageValidator(16)
	_, err := v.ValidateAndRead(fileHeaderFor(t, "a.png", testPNG(t, 64, 64)))
	require.Error(t, err)
	require.Contains(t, err.Error(), "file too large")
}

func TestResizeProfileImage(t *testing.T) {
	t.Parallel()

	out, err := ResizeProfileImage(testPNG(t, 512, 300))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	bounds := img.Bounds()
	require.Equal(t, 250, bounds.Dx())
	require.Equal(t, 250, bounds.Dy())
}

func TestResizeProfileImage_BadData(t *testing.T) {
	t.Parallel()

	_, err := ResizeProfileImage([]byte("garbage"))
	require.Error(t, err)
}
