package shared

// ListFilters carries common listing parameters.
type ListFilters struct {
	Page   int
	Limit  int
	Search string
}

// Normalize applies defaults for page and limit.
func (f *ListFilters) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
}

// Offset returns the SQL offset.
func (f ListFilters) Offset() int {
	return (f.Page - 1) * f.Limit
}
