// Package companion stores companion personas, their categories and the
// visible chat messages exchanged with them.
package companion

import (
	"errors"
	"time"
)

// Sentinel errors returned by Store implementations.
var (
	ErrNotFound  = errors.New("companion not found")
	ErrForbidden = errors.New("companion belongs to another user")
	ErrInvalid   = errors.New("invalid companion")
)

// Companion is an AI persona users can chat with.
//
// Instructions describe the persona to the model. Seed is a scripted
// opening conversation whose turns are separated by blank lines.
type Companion struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	UserName     string    `json:"userName"`
	Src          string    `json:"src"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Instructions string    `json:"instructions"`
	Seed         string    `json:"seed"`
	CategoryID   string    `json:"categoryId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Validate checks the fields required to create a companion.
func (c *Companion) Validate() error {
	switch {
	case c.UserID == "":
		return errors.Join(ErrInvalid, errors.New("user id is required"))
	case c.Name == "":
		return errors.Join(ErrInvalid, errors.New("name is required"))
	case c.Description == "":
		return errors.Join(ErrInvalid, errors.New("description is required"))
	case c.Instructions == "":
		return errors.Join(ErrInvalid, errors.New("instructions are required"))
	case c.Seed == "":
		return errors.Join(ErrInvalid, errors.New("seed is required"))
	case c.CategoryID == "":
		return errors.Join(ErrInvalid, errors.New("category is required"))
	}
	return nil
}

// Category groups companions.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Role of a visible chat message.
type Role string

const (
	RoleUser   Role = "user"
	RoleSystem Role = "system"
)

// Message is one visible chat message between a user and a companion.
type Message struct {
	ID          string    `json:"id"`
	Role        Role      `json:"role"`
	Content     string    `json:"content"`
	CompanionID string    `json:"companionId"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
}
