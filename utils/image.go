package utils

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	profileImgSize    = 250
	profileImgQuality = 90
)

// ImageValidator checks uploaded files by size and by sniffed content type,
// not by filename: only files whose first bytes look like an image pass.
type ImageValidator struct {
	maxSize int64
}

func NewImageValidator(maxSize int64) *ImageValidator {
	return &ImageValidator{maxSize: maxSize}
}

// ValidateAndRead checks the file and returns its full contents.
func (v *ImageValidator) ValidateAndRead(fileHeader *multipart.FileHeader) ([]byte, error) {
	if fileHeader.Size > v.maxSize {
		return nil, fmt.Errorf("file too large (max %d MB)", v.maxSize>>20)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file")
	}

	sniff := data
	if len(sniff) > 512 {
		sniff = sniff[:512]
	}
	detected := strings.ToLower(http.DetectContentType(sniff))
	if !strings.HasPrefix(detected, "image/") {
		return nil, fmt.Errorf("unsupported file format")
	}

	return data, nil
}

// ResizeProfileImage normalizes an uploaded picture to a 250x250 JPEG.
func ResizeProfileImage(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	resized := imaging.Fill(img, profileImgSize, profileImgSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(profileImgQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
