package handlers

import (
	"context"
	"net/http"
	"time"

	"rishta/geo"
	"rishta/mail"
	"rishta/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Handler carries the stores and collaborators every endpoint needs.
// Production wires the Mongo-backed stores; tests wire the in-memory
// ones.
type Handler struct {
	Users       store.UserStore
	Connections store.ConnectionStore
	Pending     store.PendingStore
	Cities      store.CityStore
	Mailer      mail.Mailer
	Geo         geo.Lookup
	JWTSecret   []byte
}

func New(users store.UserStore, connections store.ConnectionStore, pending store.PendingStore, cities store.CityStore, mailer mail.Mailer, lookup geo.Lookup, jwtSecret []byte) *Handler {
	return &Handler{
		Users:       users,
		Connections: connections,
		Pending:     pending,
		Cities:      cities,
		Mailer:      mailer,
		Geo:         lookup,
		JWTSecret:   jwtSecret,
	}
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// currentUserID reads the authenticated user id set by the JWT
// middleware. A missing or malformed id aborts with 401.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	idStr := c.GetString("userId")
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return primitive.NilObjectID, false
	}
	return id, true
}
