package documents

import "time"

// Document is an uploaded legal document owned by a caller.
type Document struct {
	ID            string
	UserID        string
	FileName      string
	MimeType      string
	SizeBytes     int64
	StorageKey    string
	TextKey       string
	TextChars     int
	UpstreamDocID string
	CreatedAt     time.Time
}

// Ingested reports whether the analysis service accepted the document.
func (d Document) Ingested() bool {
	return d.UpstreamDocID != ""
}
