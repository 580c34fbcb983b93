package transfer

import "github.com/maheshrc27/social-api/internal/models"

type ProfileUpdate struct {
	Firstname string `form:"firstname"`
	Lastname  string `form:"lastname"`
	Bio       string `form:"bio"`
}

type Profile struct {
	Account        *models.Account        `json:"user"`
	PostCount      int                    `json:"postCount"`
	FollowerCount  int                    `json:"followerCount"`
	FollowingCount int                    `json:"followingCount"`
	Posts          []*models.EnrichedPost `json:"posts"`
}
