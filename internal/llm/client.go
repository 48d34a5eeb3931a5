package llm

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// encodedImage is a page image ready to embed in a request.
type encodedImage struct {
	MediaType string
	Data      string
}

// DataURL returns the image as a data: URL.
func (e encodedImage) DataURL() string {
	return "data:" + e.MediaType + ";base64," + e.Data
}

// readImage loads the image at path and infers its media type from the
// extension; anything unrecognised is sent as PNG.
func readImage(path string) (mediaType string, data []byte, err error) {
	data, err = os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read image: %w", err)
	}

	mediaType = "image/png"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		mediaType = "image/jpeg"
	case ".webp":
		mediaType = "image/webp"
	}
	return mediaType, data, nil
}

// encodeImage reads and base64-encodes the image at path.
func encodeImage(path string) (encodedImage, error) {
	mediaType, data, err := readImage(path)
	if err != nil {
		return encodedImage{}, err
	}
	return encodedImage{
		MediaType: mediaType,
		Data:      base64.StdEncoding.EncodeToString(data),
	}, nil
}

// secretError carries an error whose message had a credential removed.
// Unwrap keeps the original so IsTransient still sees its type.
type secretError struct {
	err error
	msg string
}

func (e *secretError) Error() string { return e.msg }
func (e *secretError) Unwrap() error { return e.err }

// scrubSecret removes secret from err's message. Provider errors end up in
// page placeholders, documents, the cache and logs.
func scrubSecret(err error, secret string) error {
	if err == nil || secret == "" {
		return err
	}
	msg := err.Error()
	if !strings.Contains(msg, secret) {
		return err
	}
	return &secretError{err: err, msg: strings.ReplaceAll(msg, secret, "[REDACTED]")}
}
