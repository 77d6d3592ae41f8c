package models

// PreviewDescriptor carries everything needed to render one result card
type PreviewDescriptor struct {
	Path string     `json:"path"`
	Type FileType   `json:"type"`
	Tags []TagEntry `json:"tags"`

	// Image records
	ColorName string `json:"color,omitempty"`
	ColorHex  string `json:"color_hex,omitempty"`

	// Model records: either a thumbnail path or the generic placeholder
	Thumbnail   string `json:"thumbnail,omitempty"`
	Placeholder bool   `json:"placeholder,omitempty"`

	// Text records. Body holds BodyPending until the fetch completes.
	Body        string `json:"body,omitempty"`
	BodyPending bool   `json:"body_pending,omitempty"`

	Dimensions   string `json:"dimensions,omitempty"`
	FileSize     int64  `json:"file_size,omitempty"`
	LastAnalyzed string `json:"last_analyzed,omitempty"`
}
