package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"rishta/models"
	"rishta/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ConnectionRequestBody struct {
	ReceiverID string `json:"receiverId" binding:"required"`
}

func duplicateConnectionMessage(status string) string {
	switch status {
	case models.ConnectionPending:
		return "A connection request is already pending"
	case models.ConnectionAccepted:
		return "You are already connected with this user"
	case models.ConnectionDeclined:
		return "Connection request was previously declined"
	}
	return "A connection already exists with this user"
}

// SendConnectionRequest creates a pending connection between the sender
// and the receiver. At most one connection document ever exists per
// user pair; the unique pair index backs up the lookup so concurrent
// requests cannot slip a second one in.
func (h *Handler) SendConnectionRequest(c *gin.Context) {
	senderID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ConnectionRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Receiver ID is required"})
		return
	}

	receiverID, err := primitive.ObjectIDFromHex(req.ReceiverID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid receiver ID"})
		return
	}

	if senderID == receiverID {
		c.JSON(http.StatusBadRequest, gin.H{"message": "You cannot send a request to yourself"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	sender, err := h.Users.FindByID(ctx, senderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	receiver, err := h.Users.FindByID(ctx, receiverID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	if existing, err := h.Connections.FindByPair(ctx, senderID, receiverID); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": duplicateConnectionMessage(existing.Status)})
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while sending connection request"})
		return
	}

	conn := &models.Connection{
		Sender:   senderID,
		Receiver: receiverID,
		Status:   models.ConnectionPending,
	}
	if err := h.Connections.Insert(ctx, conn); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// Lost the race to a concurrent request for the same pair.
			c.JSON(http.StatusBadRequest, gin.H{"message": duplicateConnectionMessage(models.ConnectionPending)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while sending connection request"})
		return
	}

	if err := h.Users.IncrementPending(ctx, receiverID); err != nil {
		log.Printf("[SendConnectionRequest] pending counter update for %s failed: %v", receiverID.Hex(), err)
	}

	if err := h.Mailer.SendRequestSent(sender.Email, sender.FullName(), receiver.FullName()); err != nil {
		log.Printf("[SendConnectionRequest] sent-confirmation email to %s failed: %v", sender.Email, err)
	}
	if err := h.Mailer.SendRequestReceived(receiver.Email, receiver.FullName(), sender.FullName()); err != nil {
		log.Printf("[SendConnectionRequest] received-notice email to %s failed: %v", receiver.Email, err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"message":    "Connection request sent successfully",
		"connection": conn,
	})
}

// resolvePendingTransition loads a connection and checks that the
// acting user may process it: wrong actor and already-processed are
// distinct failures, not silent no-ops.
func (h *Handler) resolvePendingTransition(c *gin.Context, actingUser primitive.ObjectID) *models.Connection {
	connID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid connection ID"})
		return nil
	}

	ctx, cancel := requestContext()
	defer cancel()

	conn, err := h.Connections.FindByID(ctx, connID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Connection request not found"})
		return nil
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while processing connection"})
		return nil
	}

	if conn.Receiver != actingUser {
		c.JSON(http.StatusForbidden, gin.H{"message": "You are not authorized to respond to this request"})
		return nil
	}
	if conn.Status != models.ConnectionPending {
		c.JSON(http.StatusBadRequest, gin.H{"message": "This request has already been processed"})
		return nil
	}
	return conn
}

// AcceptConnectionRequest transitions a pending connection to accepted,
// bumps both match counters and notifies the original sender.
func (h *Handler) AcceptConnectionRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	conn := h.resolvePendingTransition(c, userID)
	if conn == nil {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	receiver, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	sender, err := h.Users.FindByID(ctx, conn.Sender)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	updated, err := h.Connections.TransitionFromPending(ctx, conn.ID, models.ConnectionAccepted)
	if errors.Is(err, store.ErrNotFound) {
		// Processed concurrently between the check and the update.
		c.JSON(http.StatusBadRequest, gin.H{"message": "This request has already been processed"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while accepting connection"})
		return
	}

	if err := h.Users.IncrementMatchCount(ctx, conn.Sender); err != nil {
		log.Printf("[AcceptConnectionRequest] match counter update for %s failed: %v", conn.Sender.Hex(), err)
	}
	if err := h.Users.IncrementMatchCount(ctx, userID); err != nil {
		log.Printf("[AcceptConnectionRequest] match counter update for %s failed: %v", userID.Hex(), err)
	}
	if err := h.Users.DecrementPending(ctx, userID); err != nil {
		log.Printf("[AcceptConnectionRequest] pending counter update for %s failed: %v", userID.Hex(), err)
	}

	if err := h.Mailer.SendRequestAccepted(sender.Email, sender.FullName(), receiver.FullName(), receiver.PhoneNumber); err != nil {
		log.Printf("[AcceptConnectionRequest] accepted email to %s failed: %v", sender.Email, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Connection accepted successfully",
		"connection": updated,
	})
}

// DeclineConnectionRequest transitions a pending connection to
// declined. Match counters are untouched.
func (h *Handler) DeclineConnectionRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	conn := h.resolvePendingTransition(c, userID)
	if conn == nil {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	receiver, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	sender, err := h.Users.FindByID(ctx, conn.Sender)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	updated, err := h.Connections.TransitionFromPending(ctx, conn.ID, models.ConnectionDeclined)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "This request has already been processed"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while declining connection"})
		return
	}

	if err := h.Users.DecrementPending(ctx, userID); err != nil {
		log.Printf("[DeclineConnectionRequest] pending counter update for %s failed: %v", userID.Hex(), err)
	}

	if err := h.Mailer.SendRequestDeclined(sender.Email, sender.FullName(), receiver.FullName()); err != nil {
		log.Printf("[DeclineConnectionRequest] declined email to %s failed: %v", sender.Email, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Connection declined",
		"connection": updated,
	})
}

type pendingRequestItem struct {
	ID        primitive.ObjectID   `json:"id"`
	Status    string               `json:"status"`
	CreatedAt time.Time            `json:"createdAt"`
	Sender    models.PublicProfile `json:"sender"`
}

// GetPendingRequests lists incoming pending requests with the sender
// embedded. Phone numbers stay hidden until a request is accepted.
func (h *Handler) GetPendingRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	pending, err := h.Connections.ListPendingForReceiver(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while fetching requests"})
		return
	}

	items := make([]pendingRequestItem, 0, len(pending))
	for _, conn := range pending {
		sender, err := h.Users.FindByID(ctx, conn.Sender)
		if err != nil {
			continue
		}
		items = append(items, pendingRequestItem{
			ID:        conn.ID,
			Status:    conn.Status,
			CreatedAt: conn.CreatedAt,
			Sender:    sender.Public(false),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"requests": items,
		"count":    len(items),
	})
}

type sentRequestItem struct {
	ID        primitive.ObjectID   `json:"id"`
	Status    string               `json:"status"`
	CreatedAt time.Time            `json:"createdAt"`
	Receiver  models.PublicProfile `json:"receiver"`
}

// GetSentRequests lists outgoing requests in every status. The
// receiver's phone number is only embedded once a request is accepted.
func (h *Handler) GetSentRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	sent, err := h.Connections.ListSentBySender(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while fetching sent requests"})
		return
	}

	items := make([]sentRequestItem, 0, len(sent))
	for _, conn := range sent {
		receiver, err := h.Users.FindByID(ctx, conn.Receiver)
		if err != nil {
			continue
		}
		items = append(items, sentRequestItem{
			ID:        conn.ID,
			Status:    conn.Status,
			CreatedAt: conn.CreatedAt,
			Receiver:  receiver.Public(conn.Status == models.ConnectionAccepted),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"requests": items,
		"count":    len(items),
	})
}

type connectionItem struct {
	ConnectionID primitive.ObjectID   `json:"connectionId"`
	User         models.PublicProfile `json:"user"`
	ConnectedAt  time.Time            `json:"connectedAt"`
}

// GetMyConnections lists accepted matches with the other party's phone
// number included.
func (h *Handler) GetMyConnections(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	accepted, err := h.Connections.ListAcceptedForUser(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while fetching connections"})
		return
	}

	items := make([]connectionItem, 0, len(accepted))
	for _, conn := range accepted {
		other, err := h.Users.FindByID(ctx, conn.Other(userID))
		if err != nil {
			continue
		}
		items = append(items, connectionItem{
			ConnectionID: conn.ID,
			User:         other.Public(true),
			ConnectedAt:  conn.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"connections": items,
		"count":       len(items),
	})
}

type connectionStatus struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

// GetConnectionStatuses maps every counterpart the user has a
// connection with to a viewer-facing status label: accepted surfaces as
// "matched", pending and declined pass through.
func (h *Handler) GetConnectionStatuses(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	conns, err := h.Connections.ListForUser(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while fetching connection statuses"})
		return
	}

	statuses := make([]connectionStatus, 0, len(conns))
	for _, conn := range conns {
		statuses = append(statuses, connectionStatus{
			UserID: conn.Other(userID).Hex(),
			Status: conn.ViewerStatus(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"statuses": statuses,
	})
}
