// Package store abstracts the document collections behind small
// domain-specific interfaces so handlers can run against MongoDB in
// production and an in-memory backend in tests.
package store

import (
	"context"
	"errors"

	"rishta/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

// BrowseFilter narrows the candidate listing. Zero values mean "no filter".
type BrowseFilter struct {
	ExcludeID     primitive.ObjectID
	Gender        string
	MinAge        int
	MaxAge        int
	Ethnicity     string
	Location      string
	Profession    string
	Education     string
	MaritalStatus string
}

// AdminFilter drives the paginated admin user listing. Admin accounts are
// always excluded from results.
type AdminFilter struct {
	Gender           string
	MinAge           int
	MaxAge           int
	ProfileCompleted *bool
	Search           string
	Page             int
	Limit            int
}

type Statistics struct {
	TotalUsers         int64 `json:"totalUsers"`
	MaleUsers          int64 `json:"maleUsers"`
	FemaleUsers        int64 `json:"femaleUsers"`
	CompletedProfiles  int64 `json:"completedProfiles"`
	IncompleteProfiles int64 `json:"incompleteProfiles"`
}

type UserStore interface {
	Insert(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Replace(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Counter updates are atomic increments keyed to connection
	// transitions and account deletion. The decrements floor at zero.
	IncrementPending(ctx context.Context, id primitive.ObjectID) error
	DecrementPending(ctx context.Context, id primitive.ObjectID) error
	IncrementMatchCount(ctx context.Context, id primitive.ObjectID) error
	DecrementMatchCount(ctx context.Context, id primitive.ObjectID) error

	Browse(ctx context.Context, f BrowseFilter) ([]models.User, error)
	List(ctx context.Context, f AdminFilter) ([]models.User, int64, error)
	Statistics(ctx context.Context) (Statistics, error)
}

type ConnectionStore interface {
	// Insert fails with ErrDuplicate when any connection already exists
	// for the unordered pair, regardless of status.
	Insert(ctx context.Context, c *models.Connection) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Connection, error)
	FindByPair(ctx context.Context, a, b primitive.ObjectID) (*models.Connection, error)

	// TransitionFromPending flips the status only while it is still
	// pending; ErrNotFound means the document was missing or already
	// processed.
	TransitionFromPending(ctx context.Context, id primitive.ObjectID, newStatus string) (*models.Connection, error)

	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Connection, error)
	ListPendingForReceiver(ctx context.Context, userID primitive.ObjectID) ([]models.Connection, error)
	ListSentBySender(ctx context.Context, userID primitive.ObjectID) ([]models.Connection, error)
	ListAcceptedForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Connection, error)
	HasAccepted(ctx context.Context, a, b primitive.ObjectID) (bool, error)
	DeleteForUser(ctx context.Context, userID primitive.ObjectID) error
}

type PendingStore interface {
	Upsert(ctx context.Context, p *models.PendingRegistration) error
	FindByEmail(ctx context.Context, email string) (*models.PendingRegistration, error)
	DeleteByEmail(ctx context.Context, email string) error
}

type CityStore interface {
	// SearchPrefix matches name or displayName case-insensitively by
	// prefix, ordered by descending population.
	SearchPrefix(ctx context.Context, q string, limit int64) ([]models.City, error)
	InsertMany(ctx context.Context, cities []models.City) error
	DeleteAll(ctx context.Context) error
}
