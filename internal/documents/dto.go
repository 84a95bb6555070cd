package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	DocumentID    string    `json:"documentId"`
	FileName      string    `json:"fileName"`
	MimeType      string    `json:"mimeType"`
	SizeBytes     int64     `json:"sizeBytes"`
	TextChars     int       `json:"textChars"`
	UpstreamDocID string    `json:"upstreamDocId,omitempty"`
	UploadedAt    time.Time `json:"uploadedAt"`
}

// UploadResponse is returned by POST /documents.
type UploadResponse struct {
	Document DocumentResponse `json:"document"`
	Notice   string           `json:"notice,omitempty"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		DocumentID:    doc.ID,
		FileName:      doc.FileName,
		MimeType:      doc.MimeType,
		SizeBytes:     doc.SizeBytes,
		TextChars:     doc.TextChars,
		UpstreamDocID: doc.UpstreamDocID,
		UploadedAt:    doc.CreatedAt,
	}
}
