package history

import "time"

type SplitJobOutput struct {
	ID           string    `json:"id"`
	Layout       string    `json:"layout"`
	FileName     string    `json:"file_name"`
	TotalRows    int       `json:"total_rows"`
	Chunks       int       `json:"chunks"`
	RowsPerChunk int       `json:"rows_per_chunk"`
	Grouped      bool      `json:"grouped"`
	UserEmail    string    `json:"user_email,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type ListInput struct {
	Limit int `query:"limit"`
}
