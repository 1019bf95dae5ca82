package model

// Post is a piece of content owned by a single user.
//
// AuthorUsername is a snapshot of the author's username taken when the post
// was created. It is never rewritten afterwards.
type Post struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	AuthorID       int64  `json:"authorId"`
	AuthorUsername string `json:"authorUsername"`
}

// OwnedBy reports whether the post belongs to the given user id.
func (p Post) OwnedBy(userID int64) bool {
	return p.AuthorID == userID
}
