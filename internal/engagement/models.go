package engagement

import "time"

// Viewer is the caller identity for operations that accept anonymous
// callers. Both branches are explicit so de-duplication logic cannot
// quietly treat an empty id as a real viewer.
type Viewer struct {
	ID            string
	Authenticated bool
}

func AnonymousViewer() Viewer {
	return Viewer{}
}

func AuthenticatedViewer(id string) Viewer {
	return Viewer{ID: id, Authenticated: true}
}

type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type LikeState struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

type ViewState struct {
	ViewCount int `json:"view_count"`
}

// Event is broadcast on a post's stream channel after a like or comment
// mutation succeeds.
type Event struct {
	Type      string    `json:"type"`
	PostID    string    `json:"post_id"`
	ActorID   string    `json:"actor_id"`
	CommentID string    `json:"comment_id,omitempty"`
	LikeCount int       `json:"like_count,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
