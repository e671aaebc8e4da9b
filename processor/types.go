package processor

// Chunk is a bounded slice of source content with an identifying index.
// ChunkID values are contiguous from 0 and ordering follows the document.
type Chunk struct {
	ChunkID  int            `json:"chunk_id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// Result is the outcome of processing one document.
//
// Exactly one of the two shapes holds: Success=true with MarkdownContent
// populated, or Success=false with Error set.
type Result struct {
	Success         bool           `json:"success"`
	MarkdownContent string         `json:"markdown_content"`
	Metadata        map[string]any `json:"metadata"`

	// Chunks is nil in markdown mode (serialized as null) and a slice in
	// chunks mode, empty when nothing survives trimming.
	Chunks []Chunk `json:"chunks"`

	Error string `json:"error,omitempty"`
}

// failure builds an error Result. Metadata is empty by contract, never nil.
func failure(err error) *Result {
	return &Result{
		Success:  false,
		Metadata: map[string]any{},
		Error:    err.Error(),
	}
}
