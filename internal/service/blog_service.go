package service

import (
	"context"

	"github.com/boddenberg/loanhub/internal/domain"

	"go.opentelemetry.io/otel"
)

var blogTracer = otel.Tracer("service/blog")

// BlogService serves the static article list.
type BlogService struct {
	posts      []domain.BlogPost
	categories []string
}

// NewBlogService creates a blog service over posts. Categories keep the
// order in which they first appear, after "All".
func NewBlogService(posts []domain.BlogPost) *BlogService {
	categories := []string{domain.AllCategories}
	seen := map[string]bool{domain.AllCategories: true}
	for _, p := range posts {
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	return &BlogService{posts: posts, categories: categories}
}

// Posts returns the posts in category; "" or "All" returns every post.
func (s *BlogService) Posts(ctx context.Context, category string) []domain.BlogPost {
	_, span := blogTracer.Start(ctx, "BlogService.Posts")
	defer span.End()

	out := make([]domain.BlogPost, 0, len(s.posts))
	for _, p := range s.posts {
		if category == "" || category == domain.AllCategories || p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Categories lists the filterable categories, starting with "All".
func (s *BlogService) Categories() []string {
	return append([]string(nil), s.categories...)
}

// DefaultPosts returns the built-in articles.
func DefaultPosts() []domain.BlogPost {
	const img = "?auto=compress&cs=tinysrgb&w=600&h=400&dpr=1"
	return []domain.BlogPost{
		{
			ID:       1,
			Title:    "Complete Guide to Personal Loans in 2025",
			Excerpt:  "Everything you need to know about personal loans, eligibility criteria, interest rates, and how to get the best deals.",
			Author:   "Rahul Sharma",
			Date:     "2025-01-15",
			ReadTime: "8 min read",
			Category: "Personal Finance",
			Image:    "https://images.pexels.com/photos/3483098/pexels-photo-3483098.jpeg" + img,
		},
		{
			ID:       2,
			Title:    "Home Loan Interest Rates: Trends and Predictions",
			Excerpt:  "Analyze current home loan interest rates and understand market trends to make informed borrowing decisions.",
			Author:   "Priya Patel",
			Date:     "2025-01-12",
			ReadTime: "6 min read",
			Category: "Home Loans",
			Image:    "https://images.pexels.com/photos/186461/pexels-photo-186461.jpeg" + img,
		},
		{
			ID:       3,
			Title:    "Credit Score Improvement: 10 Proven Strategies",
			Excerpt:  "Learn practical tips to improve your credit score quickly and maintain a healthy credit profile.",
			Author:   "Amit Kumar",
			Date:     "2025-01-10",
			ReadTime: "10 min read",
			Category: "Credit Score",
			Image:    "https://images.pexels.com/photos/259027/pexels-photo-259027.jpeg" + img,
		},
		{
			ID:       4,
			Title:    "Best Credit Cards for Different Lifestyles",
			Excerpt:  "Compare credit cards based on your spending patterns, lifestyle, and financial goals.",
			Author:   "Sneha Gupta",
			Date:     "2025-01-08",
			ReadTime: "7 min read",
			Category: "Credit Cards",
			Image:    "https://images.pexels.com/photos/50987/money-card-business-credit-card-50987.jpeg" + img,
		},
		{
			ID:       5,
			Title:    "EMI vs Lump Sum: Which Repayment Option is Better?",
			Excerpt:  "Understand the pros and cons of EMI and lump sum repayment options to choose the best strategy.",
			Author:   "Vikash Singh",
			Date:     "2025-01-05",
			ReadTime: "5 min read",
			Category: "Financial Planning",
			Image:    "https://images.pexels.com/photos/164527/pexels-photo-164527.jpeg" + img,
		},
		{
			ID:       6,
			Title:    "Business Loan Application: Documents and Process",
			Excerpt:  "Step-by-step guide to apply for business loans, required documents, and tips for faster approval.",
			Author:   "Deepak Mehta",
			Date:     "2025-01-03",
			ReadTime: "9 min read",
			Category: "Business Loans",
			Image:    "https://images.pexels.com/photos/3184292/pexels-photo-3184292.jpeg" + img,
		},
	}
}
