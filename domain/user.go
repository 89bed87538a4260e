package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents the User model. Password and reset-token fields never
// leave the server.
type User struct {
	ID                   primitive.ObjectID `json:"id" bson:"_id"`
	Name                 string             `json:"name" bson:"name"`
	Email                string             `json:"email" bson:"email"`
	Photo                string             `json:"photo,omitempty" bson:"photo,omitempty"`
	Role                 string             `json:"role" bson:"role"`
	HashedPassword       string             `json:"-" bson:"password"`
	PasswordChangedAt    *time.Time         `json:"-" bson:"passwordChangedAt,omitempty"`
	PasswordResetToken   string             `json:"-" bson:"passwordResetToken,omitempty"`
	PasswordResetExpires *time.Time         `json:"-" bson:"passwordResetExpires,omitempty"`
	Active               bool               `json:"-" bson:"active"`
	CreatedAt            time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ChangedPasswordAfter reports whether the user's password was changed after
// the given token issue time.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Before(*u.PasswordChangedAt)
}

// CreateUser represents the signup request body
type CreateUser struct {
	Name            string `json:"name" validate:"required,max=64"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=64"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// LoginUser represents the login request body
type LoginUser struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// ForgotPassword represents the forgot-password request body
type ForgotPassword struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPassword represents the reset-password request body
type ResetPassword struct {
	Password        string `json:"password" validate:"required,min=8,max=64"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// UpdatePassword represents the update-my-password request body
type UpdatePassword struct {
	ExistingPassword   string `json:"existingPassword" validate:"required"`
	NewPassword        string `json:"newPassword" validate:"required,min=8,max=64"`
	NewPasswordConfirm string `json:"newPasswordConfirm" validate:"required,eqfield=NewPassword"`
}

// UpdateMe represents the update-me request body. Password fields are listed
// only so that a request carrying them fails validation with a message
// pointing at the dedicated password endpoint.
type UpdateMe struct {
	Name            *string `json:"name" validate:"omitempty,max=64"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Photo           *string `json:"photo"`
	Password        string  `json:"password" validate:"pwdforbidden"`
	PasswordConfirm string  `json:"passwordConfirm" validate:"pwdforbidden"`
}

// UserUsecase represents the User's usecases
type UserUsecase interface {
	Signup(ctx context.Context, user CreateUser) (*User, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
	Fetch(ctx context.Context) ([]*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	ForgotPassword(ctx context.Context, email, resetURL string) error
	ResetPassword(ctx context.Context, token string, reset ResetPassword) (*User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, update UpdatePassword) (*User, error)
	UpdateMe(ctx context.Context, id primitive.ObjectID, update UpdateMe) (*User, error)
	DeactivateMe(ctx context.Context, id primitive.ObjectID) error
}

// UserRepository represents the User's repository contract. Every read
// excludes deactivated users.
type UserRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*User, error)
	Fetch(ctx context.Context) ([]*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Deactivate(ctx context.Context, id primitive.ObjectID) error
}
