package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanwatch/hazard-api/internal/model"
)

var userCols = []string{
	"user_id", "name", "username", "email", "phone", "password_hash", "role",
	"city", "state", "country", "profile_photo", "id_proof_document", "authorization_letter",
	"designation", "organization_name", "employee_id", "account_status", "last_login_date",
	"created_at", "updated_at",
}

func userRow(id uint64, email, role string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(userCols).AddRow(
		id, "Jane Doe", nil, email, "555-0100", "$2a$04$hash", role,
		"Chennai", "TN", "India", nil, nil, nil,
		nil, nil, nil, model.AccountActive, nil,
		now, now,
	)
}

func TestUserRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(7, 1))

	repo := NewUserRepo(db)
	u := model.User{
		FullName:      "Jane Doe",
		Email:         "jane@x.com",
		Phone:         "555-0100",
		PasswordHash:  "$2a$04$hash",
		Role:          model.RoleCitizen,
		AccountStatus: model.AccountActive,
	}
	require.NoError(t, repo.Create(context.Background(), &u))
	assert.Equal(t, uint64(7), u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoCreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'jane@x.com' for key 'users.email'"))

	repo := NewUserRepo(db)
	u := model.User{Email: "jane@x.com", Role: model.RoleCitizen}
	err = repo.Create(context.Background(), &u)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserRepoCreateDuplicateUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'jane' for key 'users.username'"))

	repo := NewUserRepo(db)
	u := model.User{Email: "jane@x.com", Role: model.RoleCitizen}
	err = repo.Create(context.Background(), &u)
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestUserRepoEmailExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT 1 FROM users WHERE email").
		WithArgs("jane@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery("SELECT 1 FROM users WHERE email").
		WithArgs("nobody@x.com").
		WillReturnError(sql.ErrNoRows)

	repo := NewUserRepo(db)
	taken, err := repo.EmailExists(context.Background(), "jane@x.com")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.EmailExists(context.Background(), "nobody@x.com")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestUserRepoFindByIdentifier(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Identifier is bound against both the email and username columns.
	mock.ExpectQuery("FROM users WHERE email=(.+) OR username=").
		WithArgs("jane@x.com", "jane@x.com").
		WillReturnRows(userRow(7, "jane@x.com", model.RoleCitizen))

	repo := NewUserRepo(db)
	u, err := repo.FindByIdentifier(context.Background(), "jane@x.com")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), u.ID)
	assert.Equal(t, "jane@x.com", u.Email)
	assert.Equal(t, model.RoleCitizen, u.Role)
}

func TestUserRepoFindByIdentifierNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM users WHERE email=(.+) OR username=").
		WillReturnError(sql.ErrNoRows)

	repo := NewUserRepo(db)
	_, err = repo.FindByIdentifier(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserRepoUpdateProfileWhitelist(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Only whitelisted columns make it into the SET clause; role,
	// password_hash and arbitrary keys are ignored.
	mock.ExpectExec("UPDATE users SET city=(.+) WHERE user_id=").
		WithArgs("Kochi", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM users WHERE user_id=").
		WithArgs(uint64(7)).
		WillReturnRows(userRow(7, "jane@x.com", model.RoleCitizen))

	repo := NewUserRepo(db)
	u, err := repo.UpdateProfile(context.Background(), 7, map[string]any{
		"city":          "Kochi",
		"role":          "Official",
		"password_hash": "x",
		"nonsense":      true,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleCitizen, u.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoUpdateProfileNoFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Nothing mutable in the body: no UPDATE at all, just the re-read.
	mock.ExpectQuery("FROM users WHERE user_id=").
		WithArgs(uint64(7)).
		WillReturnRows(userRow(7, "jane@x.com", model.RoleCitizen))

	repo := NewUserRepo(db)
	_, err = repo.UpdateProfile(context.Background(), 7, map[string]any{"role": "Analyst"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoTouchLastLogin(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Now().UTC()
	mock.ExpectExec("UPDATE users SET last_login_date").
		WithArgs(at, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewUserRepo(db)
	require.NoError(t, repo.TouchLastLogin(context.Background(), 7, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}
