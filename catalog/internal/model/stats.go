package model

type YearBook struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
}

type PagesBook struct {
	Title string `json:"title"`
	Pages int    `json:"pages"`
}

type BookStats struct {
	TotalBooks   int        `json:"totalBooks"`
	FirstBook    *YearBook  `json:"firstBook"`
	LatestBook   *YearBook  `json:"latestBook"`
	AveragePages int        `json:"averagePages"`
	Genres       []string   `json:"genres"`
	LongestBook  *PagesBook `json:"longestBook"`
	ShortestBook *PagesBook `json:"shortestBook"`
}

type AuthorStats struct {
	AuthorID   string `json:"authorId"`
	AuthorName string `json:"authorName"`
	BookStats  `json:",inline"`
}
