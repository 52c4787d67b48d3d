package entity

type AdminStats struct {
	Users              int64   `json:"users"`
	Courses            int64   `json:"courses"`
	ForumPosts         int64   `json:"forumPosts"`
	SuccessfulPayments int64   `json:"successfulPayments"`
	Purchases          int64   `json:"purchases"`
	Revenue            float64 `json:"revenue"`
}
