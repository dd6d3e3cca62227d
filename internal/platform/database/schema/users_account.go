package schema

import "github.com/mavun/mavun/internal/platform/constants"

// UsersAccountTable represents the 'users.account' table
type UsersAccountTable struct {
	Table        string
	ID           string
	Username     string
	Email        string
	PasswordHash string
	DisplayName  string
	Role         string
	CreatedAt    string
	UpdatedAt    string
}

// UsersAccount is the schema definition for users.account
var UsersAccount = UsersAccountTable{
	Table:        constants.SchemaUsers + ".account",
	ID:           "id",
	Username:     "username",
	Email:        "email",
	PasswordHash: "passwordhash",
	DisplayName:  "displayname",
	Role:         "role",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}

func (t UsersAccountTable) Columns() []string {
	return []string{
		t.ID,
		t.Username,
		t.Email,
		t.PasswordHash,
		t.DisplayName,
		t.Role,
		t.CreatedAt,
		t.UpdatedAt,
	}
}
