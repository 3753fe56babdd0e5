package types

// FileMetadata contains information about the file being transferred
type FileMetadata struct {
	Name     string `json:"name"`     // Original filename
	Size     int64  `json:"size"`     // File size in bytes
	MimeType string `json:"mimeType"` // MIME type of the file
	Checksum string `json:"checksum"` // SHA-256 checksum
}

// ProgressUpdate represents the state of a receive session after one scan
type ProgressUpdate struct {
	Received  int  // Distinct blocks received so far
	Total     int  // Blocks in the transfer
	Index     int  // Block carried by the latest scan
	Restarted bool // The sender changed content and the session started over
}
