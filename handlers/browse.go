package handlers

import (
	"errors"
	"net/http"
	"strings"

	"rishta/models"
	"rishta/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// matchedSet returns the ids of every user the viewer holds an accepted
// connection with. Phone numbers are only revealed to that set.
func (h *Handler) matchedSet(c *gin.Context, viewer primitive.ObjectID) (map[primitive.ObjectID]bool, bool) {
	ctx, cancel := requestContext()
	defer cancel()

	accepted, err := h.Connections.ListAcceptedForUser(ctx, viewer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while fetching profiles"})
		return nil, false
	}
	matched := make(map[primitive.ObjectID]bool, len(accepted))
	for _, conn := range accepted {
		matched[conn.Other(viewer)] = true
	}
	return matched, true
}

// loadCompletedViewer fetches the requesting user and enforces the
// profile-completion gate on browsing.
func (h *Handler) loadCompletedViewer(c *gin.Context) (*models.User, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, false
	}

	ctx, cancel := requestContext()
	defer cancel()

	viewer, err := h.Users.FindByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while fetching profiles"})
		return nil, false
	}

	if !viewer.ProfileCompleted {
		c.JSON(http.StatusForbidden, gin.H{
			"success":          false,
			"message":          "Please complete your profile before browsing other profiles",
			"profileCompleted": false,
		})
		return nil, false
	}
	return viewer, true
}

// GetProfiles lists completed opposite-gender profiles, newest first.
func (h *Handler) GetProfiles(c *gin.Context) {
	viewer, ok := h.loadCompletedViewer(c)
	if !ok {
		return
	}
	h.respondProfiles(c, viewer, store.BrowseFilter{
		ExcludeID: viewer.ID,
		Gender:    viewer.OppositeGender(),
	})
}

type BrowseFilterRequest struct {
	MinAge        int    `json:"minAge"`
	MaxAge        int    `json:"maxAge"`
	Ethnicity     string `json:"ethnicity"`
	Location      string `json:"location"`
	Profession    string `json:"profession"`
	Education     string `json:"education"`
	MaritalStatus string `json:"maritalStatus"`
}

// GetFilteredProfiles lists opposite-gender profiles narrowed by the
// submitted filter set.
func (h *Handler) GetFilteredProfiles(c *gin.Context) {
	viewer, ok := h.loadCompletedViewer(c)
	if !ok {
		return
	}

	var req BrowseFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	h.respondProfiles(c, viewer, store.BrowseFilter{
		ExcludeID:     viewer.ID,
		Gender:        viewer.OppositeGender(),
		MinAge:        req.MinAge,
		MaxAge:        req.MaxAge,
		Ethnicity:     req.Ethnicity,
		Location:      req.Location,
		Profession:    req.Profession,
		Education:     req.Education,
		MaritalStatus: req.MaritalStatus,
	})
}

func (h *Handler) respondProfiles(c *gin.Context, viewer *models.User, filter store.BrowseFilter) {
	ctx, cancel := requestContext()
	defer cancel()

	users, err := h.Users.Browse(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while fetching profiles"})
		return
	}

	matched, ok := h.matchedSet(c, viewer.ID)
	if !ok {
		return
	}

	profiles := make([]models.PublicProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Public(matched[users[i].ID]))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"profiles": profiles,
		"count":    len(profiles),
	})
}

// GetProfileByID returns a single opposite-gender profile for the
// browse page.
func (h *Handler) GetProfileByID(c *gin.Context) {
	viewer, ok := h.loadCompletedViewer(c)
	if !ok {
		return
	}

	profileID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid profile ID"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	profile, err := h.Users.FindByID(ctx, profileID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Profile not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while fetching profile"})
		return
	}

	if !strings.EqualFold(profile.Gender, viewer.OppositeGender()) {
		c.JSON(http.StatusForbidden, gin.H{"message": "You can only view profiles of the opposite gender"})
		return
	}

	hasAccepted, err := h.Connections.HasAccepted(ctx, viewer.ID, profile.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while fetching profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"profile": profile.Public(hasAccepted),
	})
}

// GetProfileWithStatus returns a profile together with an isMatched
// flag; the phone number rides along only when the viewer holds an
// accepted connection with the subject.
func (h *Handler) GetProfileWithStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	profileID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid profile ID"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	profile, err := h.Users.FindByID(ctx, profileID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while fetching profile"})
		return
	}

	isMatched, err := h.Connections.HasAccepted(ctx, userID, profileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while fetching profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"profile":   profile.Public(isMatched),
		"isMatched": isMatched,
	})
}
