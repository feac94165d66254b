package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/oceanwatch/hazard-api/internal/model"
)

const userColumns = "user_id,name,username,email,phone,password_hash,role," +
	"city,state,country,profile_photo,id_proof_document,authorization_letter," +
	"designation,organization_name,employee_id,account_status,last_login_date," +
	"created_at,updated_at"

// UserRepo persists user records in the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// profileColumns lists the JSON field names a PATCH body may carry
// that map onto mutable columns, in the order the SET clause is built.
// password_hash, role, account_status and email are deliberately
// absent: a body naming them is not an error, the fields are simply
// dropped.
var profileColumns = []string{
	"name",
	"username",
	"phone",
	"city",
	"state",
	"country",
	"profile_photo",
	"id_proof_document",
	"authorization_letter",
	"designation",
	"organization_name",
	"employee_id",
}

// EmailExists reports whether a user with exactly this email is stored.
// Matching is byte-wise: no case folding is applied anywhere, so two
// emails differing only in case are distinct identities.
func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM users WHERE email=? LIMIT 1", email).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// UsernameExists reports whether the username is already claimed.
func (r *UserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM users WHERE username=? LIMIT 1", username).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// Create inserts the user and fills in its assigned ID. Two concurrent
// registrations racing past the existence probes are resolved by the
// unique indexes: the loser gets MySQL error 1062, mapped here to the
// matching sentinel.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (name,username,email,phone,password_hash,role,
		  city,state,country,profile_photo,id_proof_document,authorization_letter,
		  designation,organization_name,employee_id,account_status)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		u.FullName, u.Username, u.Email, u.Phone, u.PasswordHash, u.Role,
		u.City, u.State, u.Country, u.ProfilePhoto, u.IDProofDocument, u.AuthorizationLetter,
		u.Designation, u.OrganizationName, u.EmployeeID, u.AccountStatus)
	if err != nil {
		if isDuplicate(err) {
			if strings.Contains(err.Error(), "username") {
				return ErrUsernameTaken
			}
			return ErrEmailTaken
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// FindByID fetches a user by primary key.
func (r *UserRepo) FindByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE user_id=? LIMIT 1", id)
	return scanUser(row)
}

// FindByIdentifier fetches a user whose email or username equals the
// given identifier. Uniqueness constraints guarantee at most one match.
func (r *UserRepo) FindByIdentifier(ctx context.Context, identifier string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? OR username=? LIMIT 1",
		identifier, identifier)
	return scanUser(row)
}

// TouchLastLogin records a successful login.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id uint64, at time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_login_date=? WHERE user_id=?", at, id)
	return err
}

// UpdateProfile applies a partial update. Only keys present in
// profileColumns are used; everything else in fields is ignored. The
// updated row is read back and returned.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, fields map[string]any) (model.User, error) {
	set := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for _, col := range profileColumns {
		if v, ok := fields[col]; ok {
			set = append(set, fmt.Sprintf("%s=?", col))
			args = append(args, v)
		}
	}
	if len(set) > 0 {
		args = append(args, id)
		_, err := r.DB.ExecContext(ctx,
			"UPDATE users SET "+strings.Join(set, ", ")+" WHERE user_id=?", args...)
		if err != nil {
			if isDuplicate(err) {
				return model.User{}, ErrUsernameTaken
			}
			return model.User{}, err
		}
	}
	return r.FindByID(ctx, id)
}

type rowScanner interface{ Scan(dest ...any) error }

func scanUser(row rowScanner) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.FullName, &u.Username, &u.Email, &u.Phone,
		&u.PasswordHash, &u.Role, &u.City, &u.State, &u.Country,
		&u.ProfilePhoto, &u.IDProofDocument, &u.AuthorizationLetter,
		&u.Designation, &u.OrganizationName, &u.EmployeeID,
		&u.AccountStatus, &u.LastLoginDate, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// isDuplicate detects MySQL's duplicate-entry error (code 1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
