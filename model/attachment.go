package model

import (
	"encoding/base64"
	"strings"
)

// Attachment is an image held in memory for preview. The bytes never leave
// the process; JSON carries only the metadata.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	Data        []byte `json:"-"`
}

// IsImage reports whether the content type is an image/* type
func (a *Attachment) IsImage() bool {
	return strings.HasPrefix(a.ContentType, "image/")
}

// DataURI renders the attachment as a data: URI suitable for an <img> src
func (a *Attachment) DataURI() string {
	return "data:" + a.ContentType + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
}
