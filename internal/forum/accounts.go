package forum

import (
	"context"
	"log"
	"net/mail"
	"strings"
	"time"

	"mangrove/internal/database"
	"mangrove/internal/models"
	"mangrove/internal/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AccountService handles registration, login and profile management.
type AccountService struct {
	store database.Store
}

func NewAccountService(store database.Store) *AccountService {
	return &AccountService{store: store}
}

// Profile bundles a user with the posts and comments they authored.
type Profile struct {
	User     *models.User      `json:"user"`
	Posts    []*models.Post    `json:"posts"`
	Comments []*models.Comment `json:"comments"`
}

// ProfileUpdate carries the editable profile fields. Nil pointers mean
// "leave unchanged".
type ProfileUpdate struct {
	AboutMe         *string  `json:"aboutMe"`
	Country         *string  `json:"country"`
	ProfilePicture  *string  `json:"profilePicture"`
	SavedTags       []string `json:"savedTags"`
	CurrentPassword string   `json:"currentPassword"`
	NewPassword     string   `json:"newPassword"`
}

// Register validates the credentials, rejects duplicate usernames and
// emails, and stores the user with a bcrypt hash.
func (a *AccountService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if len(username) < 3 {
		return nil, utils.NewValidationError("Username must be at least 3 characters")
	}
	if len(password) < 8 {
		return nil, utils.NewValidationError("Password must be at least 8 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, utils.NewValidationError("Invalid email address")
	}

	if _, err := a.store.GetUserByUsername(ctx, username); err == nil {
		return nil, utils.NewAppError(utils.ErrDuplicate, "Username is already taken", nil)
	} else if !utils.IsErrorCode(err, utils.ErrNotFound) {
		return nil, err
	}
	if _, err := a.store.GetUserByEmail(ctx, email); err == nil {
		return nil, utils.NewAppError(utils.ErrDuplicate, "Email is already registered", nil)
	} else if !utils.IsErrorCode(err, utils.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.NewStoreError("hash password", err)
	}

	now := time.Now()
	user := &models.User{
		ID:              uuid.New(),
		Username:        username,
		Email:           email,
		HashedPassword:  string(hashed),
		SavedTags:       []string{},
		Posts:           make([]uuid.UUID, 0),
		Comments:        make([]uuid.UUID, 0),
		Friends:         make([]uuid.UUID, 0),
		BookmarkedPosts: make([]uuid.UUID, 0),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := a.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("Registered user %s (%s)", user.Username, user.ID)
	return user, nil
}

// Login verifies the password against the stored hash. A missing user
// and a wrong password return the same error so the response does not
// reveal which usernames exist.
func (a *AccountService) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := a.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			return nil, utils.NewAppError(utils.ErrInvalidCredentials, "Invalid username or password", nil)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, utils.NewAppError(utils.ErrInvalidCredentials, "Invalid username or password", nil)
	}

	return user, nil
}

// ProfileByUsername loads a user with their authored posts, in the
// order of the user's post list.
func (a *AccountService) ProfileByUsername(ctx context.Context, username string) (*Profile, error) {
	user, err := a.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	posts, err := a.store.GetPostsByIDs(ctx, user.Posts)
	if err != nil {
		return nil, err
	}

	// Deleted comments remain in the reference list; skip what no longer
	// resolves instead of failing the whole profile.
	comments := make([]*models.Comment, 0, len(user.Comments))
	for _, id := range user.Comments {
		comment, err := a.store.GetComment(ctx, id)
		if err != nil {
			if utils.IsErrorCode(err, utils.ErrNotFound) {
				continue
			}
			return nil, err
		}
		comments = append(comments, comment)
	}

	return &Profile{User: user, Posts: posts, Comments: comments}, nil
}

// UpdateProfile applies the editable fields. Changing the password
// additionally requires the current password to match.
func (a *AccountService) UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*models.User, error) {
	user, err := a.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.AboutMe != nil {
		user.AboutMe = *update.AboutMe
	}
	if update.Country != nil {
		user.Country = *update.Country
	}
	if update.ProfilePicture != nil {
		user.ProfilePicture = *update.ProfilePicture
	}
	if update.SavedTags != nil {
		user.SavedTags = update.SavedTags
	}

	if update.NewPassword != "" {
		if len(update.NewPassword) < 8 {
			return nil, utils.NewValidationError("Password must be at least 8 characters")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(update.CurrentPassword)); err != nil {
			return nil, utils.NewAppError(utils.ErrInvalidCredentials, "Current password is incorrect", nil)
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(update.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, utils.NewStoreError("hash password", err)
		}
		user.HashedPassword = string(hashed)
	}

	user.UpdatedAt = time.Now()
	if err := a.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
