package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/AnTengye/qualitytrack/model"
	"github.com/AnTengye/qualitytrack/pkg/logger"
)

// PreviewErrorMessage is shown on the image field when a file cannot be read
const PreviewErrorMessage = "Could not load preview."

var (
	ErrAttachmentEmpty    = errors.New("attachment is empty")
	ErrAttachmentTooLarge = errors.New("attachment is too large")
)

// AttachmentReader loads a locally selected file into memory for preview.
// Nothing is written anywhere.
type AttachmentReader struct {
	maxBytes int64
}

func NewAttachmentReader(maxBytes int64) *AttachmentReader {
	return &AttachmentReader{maxBytes: maxBytes}
}

// Read consumes r and returns the attachment. The image type is only a
// hint: a non-image file is accepted and logged.
func (a *AttachmentReader) Read(ctx context.Context, r io.Reader, filename, contentType string) (*model.Attachment, error) {
	limit := a.maxBytes
	if limit <= 0 {
		limit = 10 << 20
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrAttachmentEmpty
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrAttachmentTooLarge, limit)
	}

	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	// Drop parameters such as "; charset=utf-8"
	contentType = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])

	att := &model.Attachment{
		Filename:    filepath.Base(filename),
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
	}
	if !att.IsImage() {
		logger.Warn(ctx, "attachment is not an image", "filename", att.Filename, "content_type", contentType)
	}
	return att, nil
}
