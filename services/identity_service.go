package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"reservation-system/models"
	"reservation-system/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxUsernameLength = 150
	maxPhoneLength    = 15
	minPasswordLength = 8

	msgRequired   = "This field is required."
	msgBadLogin   = "Please enter a correct username and password."
	msgBadDate    = "Enter a valid date."
	msgBadEmail   = "Enter a valid email address."
	msgTakenUser  = "A user with that username already exists."
	msgTakenEmail = "User with this Email already exists."
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

var (
	decoyOnce sync.Once
	decoyHash string
)

// decoy is a hash at the current cost, compared against when the username is unknown.
func decoy() string {
	decoyOnce.Do(func() {
		decoyHash, _ = utils.HashPassword("decoy-password")
	})
	return decoyHash
}

// Identity is the acting user of a request. The zero value is anonymous.
type Identity struct {
	UserID   uuid.UUID
	Username string
}

func (i Identity) IsAuthenticated() bool {
	return i.UserID != uuid.Nil
}

type RegisterInput struct {
	Username    string
	Email       string
	Password1   string
	Password2   string
	PhoneNumber string
	DateOfBirth string
}

type ProfileInput struct {
	Username    string
	Email       string
	PhoneNumber string
	DateOfBirth string
}

// IdentityService handles registration, login, logout and profile updates.
type IdentityService struct {
	db     *gorm.DB
	tokens TokenStore
}

func NewIdentityService(db *gorm.DB, tokens TokenStore) *IdentityService {
	return &IdentityService{db: db, tokens: tokens}
}

// Register creates an account. It never signs the new user in.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	fields := FieldErrors{}
	profile := s.validateProfile(ctx, uuid.Nil, ProfileInput{
		Username:    in.Username,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		DateOfBirth: in.DateOfBirth,
	}, fields)

	switch {
	case in.Password1 == "":
		fields["password1"] = msgRequired
	case utf8.RuneCountInString(in.Password1) < minPasswordLength:
		fields["password1"] = "This password is too short. It must contain at least 8 characters."
	}
	if in.Password2 == "" {
		fields["password2"] = msgRequired
	} else if in.Password1 != "" && in.Password1 != in.Password2 {
		fields["password2"] = "The two password fields didn't match."
	}

	if len(fields) > 0 {
		return nil, NewValidationError("invalid registration", fields)
	}

	user := &models.User{
		Username:    profile.username,
		Email:       profile.email,
		Password:    in.Password1,
		PhoneNumber: profile.phone,
		DateOfBirth: profile.dob,
		IsActive:    true,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewValidationError("invalid registration", FieldErrors{
				"username": msgTakenUser,
			})
		}
		return nil, NewInternalError("failed to create user", err)
	}
	return user, nil
}

// Authenticate checks credentials and records the login time.
func (s *IdentityService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Burn comparable time so unknown usernames are not distinguishable
			utils.CheckPasswordHash(password, decoy())
			return nil, NewAuthenticationError(msgBadLogin)
		}
		return nil, NewInternalError("database error", err)
	}

	if !utils.CheckPasswordHash(password, user.Password) || !user.IsActive {
		return nil, NewAuthenticationError(msgBadLogin)
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login", &now).Error; err != nil {
		return nil, NewInternalError("failed to record login", err)
	}
	user.LastLogin = &now
	return &user, nil
}

// Logout revokes the session token. Unknown or already revoked tokens are not an error.
func (s *IdentityService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" || s.tokens == nil {
		return nil
	}
	if err := s.tokens.Revoke(ctx, tokenID, expiresAt); err != nil {
		return NewInternalError("failed to end session", err)
	}
	return nil
}

func (s *IdentityService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "user")
	}
	return &user, nil
}

// UpdateProfile changes the caller's own account and nobody else's.
func (s *IdentityService) UpdateProfile(ctx context.Context, identity Identity, in ProfileInput) (*models.User, error) {
	if !identity.IsAuthenticated() {
		return nil, NewAuthenticationError("authentication required")
	}
	user, err := s.GetUser(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}

	fields := FieldErrors{}
	profile := s.validateProfile(ctx, user.ID, in, fields)
	if len(fields) > 0 {
		return nil, NewValidationError("invalid profile", fields)
	}

	err = s.db.WithContext(ctx).Model(user).
		Select("username", "email", "phone_number", "date_of_birth").
		Updates(&models.User{
			Username:    profile.username,
			Email:       profile.email,
			PhoneNumber: profile.phone,
			DateOfBirth: profile.dob,
		}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewValidationError("invalid profile", FieldErrors{"username": msgTakenUser})
		}
		return nil, NewInternalError("failed to update profile", err)
	}

	user.Username = profile.username
	user.Email = profile.email
	user.PhoneNumber = profile.phone
	user.DateOfBirth = profile.dob
	return user, nil
}

type cleanProfile struct {
	username string
	email    string
	phone    *string
	dob      *models.Date
}

// validateProfile checks the shared account fields. self is excluded from the
// uniqueness checks so a user may keep their own username and email.
func (s *IdentityService) validateProfile(ctx context.Context, self uuid.UUID, in ProfileInput, fields FieldErrors) cleanProfile {
	out := cleanProfile{
		username: strings.TrimSpace(in.Username),
		email:    normalizeEmail(in.Email),
	}

	switch {
	case out.username == "":
		fields["username"] = msgRequired
	case utf8.RuneCountInString(out.username) > maxUsernameLength:
		fields["username"] = "Ensure this value has at most 150 characters."
	case !usernamePattern.MatchString(out.username):
		fields["username"] = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case s.taken(ctx, "username", out.username, self):
		fields["username"] = msgTakenUser
	}

	switch {
	case out.email == "":
		fields["email"] = msgRequired
	case !utils.ValidEmail(out.email):
		fields["email"] = msgBadEmail
	case s.taken(ctx, "email", out.email, self):
		fields["email"] = msgTakenEmail
	}

	if phone := strings.TrimSpace(in.PhoneNumber); phone != "" {
		if utf8.RuneCountInString(phone) > maxPhoneLength {
			fields["phone_number"] = "Ensure this value has at most 15 characters."
		} else {
			out.phone = &phone
		}
	}

	if raw := strings.TrimSpace(in.DateOfBirth); raw != "" {
		dob, err := models.ParseDate(raw)
		if err != nil {
			fields["date_of_birth"] = msgBadDate
		} else {
			out.dob = &dob
		}
	}
	return out
}

func (s *IdentityService) taken(ctx context.Context, column, value string, self uuid.UUID) bool {
	query := s.db.WithContext(ctx).Model(&models.User{}).Where("LOWER("+column+") = LOWER(?)", value)
	if self != uuid.Nil {
		query = query.Where("id <> ?", self)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		// Let the unique index decide
		return false
	}
	return count > 0
}

// normalizeEmail lowercases the domain part and trims whitespace.
func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + strings.ToLower(email[at:])
}
