package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ConnectionPending  = "pending"
	ConnectionAccepted = "accepted"
	ConnectionDeclined = "declined"
)

// Connection is the request/accept/decline record between two users.
// At most one document exists per unordered user pair, in any status;
// the normalized PairKey carries a unique index to enforce that.
type Connection struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Sender    primitive.ObjectID `bson:"sender" json:"sender"`
	Receiver  primitive.ObjectID `bson:"receiver" json:"receiver"`
	Status    string             `bson:"status" json:"status"`
	PairKey   string             `bson:"pairKey" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PairKey normalizes an unordered user pair into a stable index key.
func PairKey(a, b primitive.ObjectID) string {
	ah, bh := a.Hex(), b.Hex()
	if ah < bh {
		return ah + ":" + bh
	}
	return bh + ":" + ah
}

// Other returns the counterpart of userID on this connection.
func (c *Connection) Other(userID primitive.ObjectID) primitive.ObjectID {
	if c.Sender == userID {
		return c.Receiver
	}
	return c.Sender
}

// ViewerStatus maps the stored status to the label shown to either party:
// accepted connections surface as "matched", everything else passes
// through unchanged.
func (c *Connection) ViewerStatus() string {
	if c.Status == ConnectionAccepted {
		return "matched"
	}
	return c.Status
}
