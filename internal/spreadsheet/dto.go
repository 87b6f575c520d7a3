package spreadsheet

type ValidateInput struct {
	Path     string
	FileName string
	Layout   string
}

type ValidateOutput struct {
	Valid bool `json:"valid"`
}

type SplitInput struct {
	Path      string
	FileName  string
	Layout    string
	UserEmail string
}

type SplitResult struct {
	Archive      []byte
	FileName     string
	TotalRows    int
	Chunks       int
	RowsPerChunk int
	Grouped      bool
}

type LayoutOutput struct {
	Name     string   `json:"name"`
	Columns  []string `json:"columns"`
	Grouping bool     `json:"grouping"`
}
