// Package multipart provides a reusable multipart/form-data builder,
// generalized from the ad hoc mime/multipart.Writer usage scattered
// across individual transcription providers (each one rebuilt the same
// CreateFormFile/WriteField/Close sequence for its own field set).
package multipart

import (
	"bytes"
	"fmt"
	"mime/multipart"
)

// Builder accumulates form fields and file parts, then produces a single
// request body and its matching Content-Type header value.
type Builder struct {
	buf    bytes.Buffer
	writer *multipart.Writer
	err    error
}

// New returns a ready-to-use Builder.
func New() *Builder {
	b := &Builder{}
	b.writer = multipart.NewWriter(&b.buf)
	return b
}

// AddField writes a plain form field. Errors are deferred until Finish.
func (b *Builder) AddField(name, value string) *Builder {
	if b.err != nil {
		return b
	}
	b.err = b.writer.WriteField(name, value)
	return b
}

// AddBytes writes a file part with the given field name, filename, and
// content. Errors are deferred until Finish.
func (b *Builder) AddBytes(fieldName, filename string, content []byte) *Builder {
	if b.err != nil {
		return b
	}
	part, err := b.writer.CreateFormFile(fieldName, filename)
	if err != nil {
		b.err = fmt.Errorf("multipart: create form file %q: %w", filename, err)
		return b
	}
	if _, err := part.Write(content); err != nil {
		b.err = fmt.Errorf("multipart: write form file %q: %w", filename, err)
	}
	return b
}

// Finish closes the writer and returns the assembled body bytes plus the
// Content-Type header value (including the boundary parameter).
func (b *Builder) Finish() ([]byte, string, error) {
	if b.err != nil {
		return nil, "", b.err
	}
	if err := b.writer.Close(); err != nil {
		return nil, "", fmt.Errorf("multipart: close writer: %w", err)
	}
	return b.buf.Bytes(), b.writer.FormDataContentType(), nil
}

// ExtensionForMimeType maps an audio/video MIME type to the filename
// extension providers expect in the multipart file part name.
func ExtensionForMimeType(mimeType string) string {
	switch mimeType {
	case "audio/mpeg", "audio/mp3":
		return "mp3"
	case "audio/wav", "audio/x-wav":
		return "wav"
	case "audio/webm":
		return "webm"
	case "audio/mp4", "audio/m4a":
		return "m4a"
	case "audio/flac":
		return "flac"
	case "audio/ogg":
		return "ogg"
	case "video/mp4":
		return "mp4"
	case "video/webm":
		return "webm"
	case "video/quicktime":
		return "mov"
	default:
		return "bin"
	}
}
