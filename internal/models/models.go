package models

import "time"

// Post - пост пользователя. Лайки и ответы принадлежат посту и
// удаляются вместе с ним.
type Post struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Text      string    `json:"text,omitempty"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	LikedBy   []string  `json:"likedBy"`
	Replies   []Reply   `json:"replies"`
}

// LikeCount - количество лайков; источником истины является LikedBy.
func (p *Post) LikeCount() int {
	return len(p.LikedBy)
}

type Reply struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// LikeResult - результат переключения лайка.
type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

// FeedPage - страница ленты.
type FeedPage struct {
	Posts    []*Post `json:"posts"`
	Page     int     `json:"page"`
	PageSize int     `json:"pageSize"`
}
