package feed

import "time"

type Author struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

type Image struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	URL       string    `json:"url"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

type Item struct {
	ID           string    `json:"id"`
	Author       Author    `json:"author"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Content      string    `json:"content"`
	IsPublic     bool      `json:"is_public"`
	ViewCount    int       `json:"view_count"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	Images       []Image   `json:"images,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Page carries one feed window. NextBefore is the cursor for the next page,
// empty when the window was not full.
type Page struct {
	Items      []Item `json:"items"`
	NextBefore string `json:"next_before,omitempty"`
}
