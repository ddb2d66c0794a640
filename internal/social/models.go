package social

// UserSummary is the identity-expanded shape used in follower listings.
type UserSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

type FollowState struct {
	Following      bool `json:"following"`
	FollowersCount int  `json:"followers_count"`
}

type FollowList struct {
	Users       []UserSummary `json:"users"`
	Count       int           `json:"count"`
	IsFollowing bool          `json:"is_following"`
}
