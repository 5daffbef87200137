package companion

import (
	"context"
)

// ListParams filters List results.
type ListParams struct {
	// CategoryID restricts results to one category.
	CategoryID string
	// Name matches companions whose name contains it, case-insensitively.
	Name string
	// Limit caps the number of results; 0 means no limit.
	Limit int
}

// Store defines the companion storage interface.
type Store interface {
	// Create stores a new companion and returns it with ID and timestamps set.
	Create(ctx context.Context, c *Companion) (*Companion, error)

	// Get returns a companion by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Companion, error)

	// List returns companions, newest first.
	List(ctx context.Context, p ListParams) ([]Companion, error)

	// Update replaces the editable fields of a companion owned by c.UserID.
	Update(ctx context.Context, c *Companion) (*Companion, error)

	// Delete removes a companion owned by userID and its messages.
	Delete(ctx context.Context, id, userID string) error

	// AddMessage appends a visible chat message to a companion.
	AddMessage(ctx context.Context, companionID, userID string, role Role, content string) (*Message, error)

	// Messages returns the messages between a user and a companion, oldest first.
	Messages(ctx context.Context, companionID, userID string) ([]Message, error)

	// Categories returns all categories by name.
	Categories(ctx context.Context) ([]Category, error)

	// CreateCategory stores a category, returning the existing one if the
	// name is already taken.
	CreateCategory(ctx context.Context, name string) (*Category, error)

	// Close releases resources.
	Close() error
}
