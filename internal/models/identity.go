package models

// Identity is the authenticated caller resolved from an access token.
// The zero value is the anonymous viewer.
type Identity struct {
	AccountID int64  `json:"account_id"`
	Username  string `json:"username"`
	Role      Role   `json:"role"`
}

func (i Identity) Anonymous() bool {
	return i.AccountID == 0
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
