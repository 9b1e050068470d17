package domain

// BlogPost is a static article shown on the blog page.
type BlogPost struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt"`
	Author   string `json:"author"`
	Date     string `json:"date"`
	ReadTime string `json:"readTime"`
	Category string `json:"category"`
	Image    string `json:"image"`
}

// AllCategories is the pseudo-category that disables filtering.
const AllCategories = "All"
