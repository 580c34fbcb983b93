package transfer

import "github.com/maheshrc27/social-api/internal/models"

type Registration struct {
	Username  string `form:"username"`
	Email     string `form:"email"`
	Password  string `form:"password"`
	Firstname string `form:"firstname"`
	Lastname  string `form:"lastname"`
	Bio       string `form:"bio"`
	Role      string `form:"role"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type RefreshRequest struct {
	Token string `json:"token" form:"token"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type LoginResponse struct {
	Account *models.Account `json:"account"`
	TokenPair
}
