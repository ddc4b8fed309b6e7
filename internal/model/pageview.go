package model

// ArticleView is one article's view count for a period. Article keeps the raw
// wiki identifier with underscores; display formatting happens at render time.
type ArticleView struct {
	Article string `json:"article"`
	Views   int64  `json:"views"`
}

// MonthlyRanking is the fetch result for a single month, sorted by views
// descending.
type MonthlyRanking struct {
	Year     int           `json:"year"`
	Month    int           `json:"month"`
	Articles []ArticleView `json:"articles"`
}
