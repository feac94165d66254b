package model

import (
	"strings"
	"time"
)

// Role names as stored in the `users` table. Input is accepted in any
// case at registration but persisted in this canonical capitalized form.
const (
	RoleCitizen  = "Citizen"
	RoleOfficial = "Official"
	RoleAnalyst  = "Analyst"
)

// Account status values for users.account_status.
const (
	AccountActive    = "Active"
	AccountSuspended = "Suspended"
)

// User represents a row in the `users` table. The password hash is
// tagged `json:"-"` so it can never leak into a response, no matter
// which handler serializes the struct. Optional columns are pointers
// so that NULL survives the round trip and absent fields are omitted
// from JSON.
//
// Fields:
//  ID                  – users.user_id, primary key.
//  FullName            – users.name.
//  Username            – users.username, unique when present.
//  Email               – users.email, unique.
//  Phone               – users.phone.
//  PasswordHash        – users.password_hash (bcrypt digest, never serialized).
//  Role                – users.role (Citizen | Official | Analyst).
//  City/State/Country  – location profile fields.
//  ProfilePhoto        – public URL of the uploaded profile photo.
//  IDProofDocument     – public URL of the ID proof (officials/analysts).
//  AuthorizationLetter – public URL of the authorization letter.
//  Designation         – official-only designation.
//  OrganizationName    – official-only organization.
//  EmployeeID          – official-only employee identifier.
//  AccountStatus       – users.account_status (Active by default).
//  LastLoginDate       – set on every successful login.
type User struct {
	ID                  uint64     `json:"user_id"`
	FullName            string     `json:"name"`
	Username            *string    `json:"username,omitempty"`
	Email               string     `json:"email"`
	Phone               string     `json:"phone"`
	PasswordHash        string     `json:"-"`
	Role                string     `json:"role"`
	City                *string    `json:"city,omitempty"`
	State               *string    `json:"state,omitempty"`
	Country             *string    `json:"country,omitempty"`
	ProfilePhoto        *string    `json:"profile_photo,omitempty"`
	IDProofDocument     *string    `json:"id_proof_document,omitempty"`
	AuthorizationLetter *string    `json:"authorization_letter,omitempty"`
	Designation         *string    `json:"designation,omitempty"`
	OrganizationName    *string    `json:"organization_name,omitempty"`
	EmployeeID          *string    `json:"employee_id,omitempty"`
	AccountStatus       string     `json:"account_status"`
	LastLoginDate       *time.Time `json:"last_login_date,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// CanonicalRole maps a role supplied by a client (any case) to its
// stored capitalized form. The second return is false for unknown roles.
func CanonicalRole(input string) (string, bool) {
	for _, r := range []string{RoleCitizen, RoleOfficial, RoleAnalyst} {
		if strings.EqualFold(strings.TrimSpace(input), r) {
			return r, true
		}
	}
	return "", false
}
