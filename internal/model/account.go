package model

import "time"

// Credentials is the fixed credential bundle attached to an account.
// The store treats it as an opaque payload and never validates contents.
type Credentials struct {
	Email             string `json:"email"`
	MicrosoftPassword string `json:"microsoftPassword"`
	EmailLogin        string `json:"emailLogin"`
	EmailPassword     string `json:"emailPassword"`
	EmailWebsite      string `json:"emailWebsite"`
}

// Account represents one managed external identity.
// A nil ParentID marks a root account; children reference their root's ID.
// JSON field names match the console frontend's storage layout.
type Account struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	Credentials Credentials `json:"credentials"`
	ParentID    *string     `json:"parentId"`
	ProxyID     *string     `json:"proxyId"`
	IsOnline    bool        `json:"isOnline"`
	LastChecked *time.Time  `json:"lastChecked"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// IsRoot reports whether the account has no parent.
func (a *Account) IsRoot() bool {
	return a.ParentID == nil
}

// AccountPatch carries a partial account update. Nil fields are left
// untouched. ParentID and ProxyID are double pointers so that "clear the
// reference" (inner nil) can be told apart from "leave it alone" (outer nil).
type AccountPatch struct {
	Username    *string
	Credentials *Credentials
	ParentID    **string
	ProxyID     **string
	IsOnline    *bool
	LastChecked *time.Time
}
