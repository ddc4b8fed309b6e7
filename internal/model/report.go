package model

// Report is a rendered wiki-markup table ready for persistence. Path is the
// archive location relative to the archive root; the core never touches the
// filesystem itself.
type Report struct {
	Year  int    `json:"year"`
	Month int    `json:"month,omitempty"` // 0 for a yearly report
	Title string `json:"title"`
	Path  string `json:"path"`
	Body  string `json:"-"`
	Rows  int    `json:"rows"`
}
