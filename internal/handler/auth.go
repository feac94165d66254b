package handler

import (
	"context"
	"database/sql"
	"io"
	"mime/multipart"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/oceanwatch/hazard-api/internal/apperr"
	"github.com/oceanwatch/hazard-api/internal/config"
	"github.com/oceanwatch/hazard-api/internal/model"
	"github.com/oceanwatch/hazard-api/internal/repository"
	"github.com/oceanwatch/hazard-api/internal/storage"
	"github.com/oceanwatch/hazard-api/internal/utils"
)

// loginFailedMsg is deliberately identical for an unknown identifier
// and a wrong password so responses cannot be used to enumerate
// accounts.
const loginFailedMsg = "Incorrect email/username or password"

// AuthHandler bundles dependencies for registration and login.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Blobs storage.BlobStore
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo, blobs storage.BlobStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Blobs: blobs}
}

// ----- DTOs -----

type loginReq struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type authTokens struct {
	Access utils.AccessToken `json:"access"`
}

type authResp struct {
	User   model.User `json:"user"`
	Tokens authTokens `json:"tokens"`
}

// Register creates a user from a multipart form and returns it with a
// freshly issued access token. Up to three optional files (photo,
// id_proof_document, authorization_letter) are uploaded to the blob
// store before the row is persisted, so a storage failure surfaces as
// a failed registration rather than an orphaned half-filled user.
func (h *AuthHandler) Register(c echo.Context) error {
	role, ok := model.CanonicalRole(c.FormValue("role"))
	if !ok {
		return apperr.BadRequest("role must be one of citizen, official, analyst")
	}

	fullname := strings.TrimSpace(c.FormValue("fullname"))
	email := strings.TrimSpace(c.FormValue("email"))
	phone := strings.TrimSpace(c.FormValue("phone"))
	password := c.FormValue("password")
	city := strings.TrimSpace(c.FormValue("city"))
	state := strings.TrimSpace(c.FormValue("state"))
	country := strings.TrimSpace(c.FormValue("country"))

	if fullname == "" || email == "" || phone == "" || city == "" || state == "" || country == "" {
		return apperr.BadRequest("fullname, email, phone, password, city, state and country are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperr.BadRequest("email must be a valid email address")
	}
	if len(password) < 8 {
		return apperr.BadRequest("password must be at least 8 characters")
	}

	designation := strings.TrimSpace(c.FormValue("designation"))
	organization := strings.TrimSpace(c.FormValue("organizationName"))
	employeeID := strings.TrimSpace(c.FormValue("employeeId"))
	if role != model.RoleCitizen {
		if designation == "" || organization == "" || employeeID == "" {
			return apperr.BadRequest("designation, organizationName and employeeId are required for official and analyst accounts")
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	// Uniqueness probes first; the insert's unique indexes are the
	// backstop for registrations racing each other.
	if taken, err := h.Users.EmailExists(ctx, email); err != nil {
		return apperr.Internal("could not verify email availability")
	} else if taken {
		return apperr.BadRequest("Email already taken")
	}
	username := strings.TrimSpace(c.FormValue("username"))
	if username != "" {
		if taken, err := h.Users.UsernameExists(ctx, username); err != nil {
			return apperr.Internal("could not verify username availability")
		} else if taken {
			return apperr.BadRequest("Username already taken")
		}
	}

	hash, err := utils.HashPassword(password, h.Cfg.BcryptCost)
	if err != nil {
		return apperr.Internal("could not process password")
	}

	baseID := "user_" + uuid.NewString()
	photoURL, err := h.uploadIfPresent(ctx, c, "photo", baseID+"_profile_")
	if err != nil {
		return err
	}
	idProofURL, err := h.uploadIfPresent(ctx, c, "id_proof_document", baseID+"_idproof_")
	if err != nil {
		return err
	}
	authLetterURL, err := h.uploadIfPresent(ctx, c, "authorization_letter", baseID+"_authletter_")
	if err != nil {
		return err
	}

	u := model.User{
		FullName:            fullname,
		Username:            optional(username),
		Email:               email,
		Phone:               phone,
		PasswordHash:        hash,
		Role:                role,
		City:                optional(city),
		State:               optional(state),
		Country:             optional(country),
		ProfilePhoto:        photoURL,
		IDProofDocument:     idProofURL,
		AuthorizationLetter: authLetterURL,
		Designation:         optional(designation),
		OrganizationName:    optional(organization),
		EmployeeID:          optional(employeeID),
		AccountStatus:       model.AccountActive,
	}
	if err := h.Users.Create(ctx, &u); err != nil {
		switch err {
		case repository.ErrEmailTaken:
			return apperr.BadRequest("Email already taken")
		case repository.ErrUsernameTaken:
			return apperr.BadRequest("Username already taken")
		}
		return apperr.Internal("could not create user")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return apperr.Internal("could not issue access token")
	}
	return c.JSON(http.StatusCreated, authResp{User: u, Tokens: authTokens{Access: access}})
}

// Login authenticates by email or username plus password and returns
// the user with a new access token. last_login_date is touched on
// every success.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("invalid body")
	}
	req.Identifier = strings.TrimSpace(req.Identifier)
	if req.Identifier == "" || req.Password == "" {
		return apperr.BadRequest("identifier and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.FindByIdentifier(ctx, req.Identifier)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperr.Unauthorized(loginFailedMsg)
		}
		return apperr.Internal("could not look up user")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return apperr.Unauthorized(loginFailedMsg)
	}

	now := time.Now().UTC()
	if err := h.Users.TouchLastLogin(ctx, u.ID, now); err != nil {
		return apperr.Internal("could not record login")
	}
	u.LastLoginDate = &now

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return apperr.Internal("could not issue access token")
	}
	return c.JSON(http.StatusOK, authResp{User: u, Tokens: authTokens{Access: access}})
}

// uploadIfPresent uploads the named multipart file, if any, and returns
// its public URL. A missing file simply yields nil.
func (h *AuthHandler) uploadIfPresent(ctx context.Context, c echo.Context, field, prefix string) (*string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil // field absent
	}
	data, contentType, err := readUpload(fh)
	if err != nil {
		return nil, apperr.Internal("could not read uploaded file")
	}
	url, err := h.Blobs.Upload(ctx, storage.UserDocumentsBucket, prefix+fh.Filename, data, contentType)
	if err != nil {
		return nil, apperr.Internal("File upload failed")
	}
	return &url, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, string, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
