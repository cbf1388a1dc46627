// Package services contains the server-side business logic: one service
// per resource family, each applying validation, ownership scoping, and
// lifecycle rules on top of the repositories.
package services

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charstorm/toposphere/internal/common"
	"github.com/charstorm/toposphere/internal/server/auth"
)

// timeNow is a seam for tests that assert timestamp behavior.
var timeNow = time.Now

const maxTitleLength = 200

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func validateEmail(errs *common.ValidationError, email string) {
	if email == "" {
		errs.Add("email", "this field is required")
		return
	}
	if len(email) > 255 || !emailRegex.MatchString(email) {
		errs.Add("email", "enter a valid email address")
	}
}

func validateTitle(errs *common.ValidationError, title string) {
	if strings.TrimSpace(title) == "" {
		errs.Add("title", "this field is required")
		return
	}
	// the column limit is 200 characters, not bytes
	if utf8.RuneCountInString(title) > maxTitleLength {
		errs.Add("title", "title must be at most 200 characters")
	}
}

// RegisterInput carries the fields accepted at registration. FirstName
// and LastName are optional and default to empty.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Validate checks field presence, email syntax, and the password policy.
func (in *RegisterInput) Validate() error {
	errs := common.NewValidationError()
	validateEmail(errs, in.Email)
	if in.Password == "" {
		errs.Add("password", "this field is required")
	} else if err := auth.ValidatePassword(in.Password); err != nil {
		if ve, ok := err.(*common.ValidationError); ok {
			errs.Add("password", ve.Fields["password"])
		} else {
			return err
		}
	}
	return errs.ErrOrNil()
}

// ProfileUpdateInput carries a profile mutation. Nil pointers mean the
// field was absent from the request body.
type ProfileUpdateInput struct {
	Email     *string
	FirstName *string
	LastName  *string
}

// Validate checks the input for a full (PUT) or partial (PATCH) update.
// A full update requires email; a partial one validates only what is set.
func (in *ProfileUpdateInput) Validate(partial bool) error {
	errs := common.NewValidationError()
	if in.Email != nil {
		validateEmail(errs, *in.Email)
	} else if !partial {
		errs.Add("email", "this field is required")
	}
	return errs.ErrOrNil()
}

// ChangePasswordInput carries a password change request.
type ChangePasswordInput struct {
	OldPassword string
	NewPassword string
}

func (in *ChangePasswordInput) Validate() error {
	errs := common.NewValidationError()
	if in.OldPassword == "" {
		errs.Add("old_password", "this field is required")
	}
	if in.NewPassword == "" {
		errs.Add("new_password", "this field is required")
	} else if err := auth.ValidatePassword(in.NewPassword); err != nil {
		if ve, ok := err.(*common.ValidationError); ok {
			errs.Add("new_password", ve.Fields["password"])
		} else {
			return err
		}
	}
	return errs.ErrOrNil()
}

// NoteInput carries note fields for create and update. Nil pointers mean
// the field was absent from the request body.
type NoteInput struct {
	Title   *string
	Content *string
}

// Validate checks the input for create (partial=false), full update
// (partial=false), or partial update (partial=true). Title is mandatory
// unless the update is partial.
func (in *NoteInput) Validate(partial bool) error {
	errs := common.NewValidationError()
	if in.Title != nil {
		validateTitle(errs, *in.Title)
	} else if !partial {
		errs.Add("title", "this field is required")
	}
	return errs.ErrOrNil()
}

// TodoListInput carries todo list fields for create and update.
type TodoListInput struct {
	Title       *string
	Description *string
}

func (in *TodoListInput) Validate(partial bool) error {
	errs := common.NewValidationError()
	if in.Title != nil {
		validateTitle(errs, *in.Title)
	} else if !partial {
		errs.Add("title", "this field is required")
	}
	return errs.ErrOrNil()
}

// TodoItemInput carries todo item fields for create and update.
// CompletedAt is never accepted from clients; it is derived from
// IsCompleted transitions.
type TodoItemInput struct {
	Title       *string
	Description *string
	IsCompleted *bool
}

func (in *TodoItemInput) Validate(partial bool) error {
	errs := common.NewValidationError()
	if in.Title != nil {
		validateTitle(errs, *in.Title)
	} else if !partial {
		errs.Add("title", "this field is required")
	}
	return errs.ErrOrNil()
}
