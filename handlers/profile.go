package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"rishta/models"
	"rishta/store"

	"github.com/gin-gonic/gin"
)

// GetProfile returns the authenticated user's own document.
func (h *Handler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	user, err := h.Users.FindByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error fetching profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// setIfProvided applies a form value to dst unless it is empty or the
// literal string "undefined" that some form submissions send for blank
// inputs.
func setIfProvided(c *gin.Context, field string, dst *string) {
	value, exists := c.GetPostForm(field)
	if !exists {
		return
	}
	value = strings.TrimSpace(value)
	if value == "" || value == "undefined" {
		return
	}
	*dst = value
}

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

// UpdateProfile applies the submitted form fields to the user document
// and recomputes the completion flag. Array-valued fields (languages,
// customFields, tags) arrive JSON-encoded inside form fields.
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	user, err := h.Users.FindByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error updating profile"})
		return
	}

	setIfProvided(c, "ethnicity", &user.Ethnicity)
	setIfProvided(c, "height", &user.Height)
	setIfProvided(c, "birthPlace", &user.BirthPlace)
	setIfProvided(c, "currentLocation", &user.CurrentLocation)
	setIfProvided(c, "profession", &user.Profession)
	setIfProvided(c, "education", &user.Education)

	var residency string
	setIfProvided(c, "residencyStatus", &residency)
	if residency != "" {
		if !oneOf(residency, models.ResidencyStatuses) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid residency status"})
			return
		}
		user.ResidencyStatus = residency
	}

	var marital string
	setIfProvided(c, "maritalStatus", &marital)
	if marital != "" {
		if !oneOf(marital, models.MaritalStatuses) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid marital status"})
			return
		}
		user.MaritalStatus = marital
	}

	if phone, exists := c.GetPostForm("phoneNumber"); exists && phone != "undefined" {
		user.PhoneNumber = strings.TrimSpace(phone)
	}

	if raw, exists := c.GetPostForm("languages"); exists && raw != "" {
		var langs []string
		if err := json.Unmarshal([]byte(raw), &langs); err != nil {
			log.Printf("[UpdateProfile] bad languages payload: %v", err)
		} else {
			cleaned := make([]string, 0, len(langs))
			for _, lang := range langs {
				if strings.TrimSpace(lang) != "" {
					cleaned = append(cleaned, lang)
				}
			}
			user.Languages = cleaned
		}
	}

	if raw, exists := c.GetPostForm("customFields"); exists && raw != "" {
		var fields map[string]string
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			log.Printf("[UpdateProfile] bad customFields payload: %v", err)
		} else {
			if len(fields) > models.MaxCustomFields {
				c.JSON(http.StatusBadRequest, gin.H{
					"message": fmt.Sprintf("At most %d custom fields allowed", models.MaxCustomFields),
				})
				return
			}
			for k, v := range fields {
				if len(k) > models.MaxCustomFieldKey || len(v) > models.MaxCustomFieldValue {
					c.JSON(http.StatusBadRequest, gin.H{
						"message": fmt.Sprintf("Custom field keys are limited to %d characters and values to %d",
							models.MaxCustomFieldKey, models.MaxCustomFieldValue),
					})
					return
				}
			}
			user.CustomFields = fields
		}
	}

	if raw, exists := c.GetPostForm("tags"); exists && raw != "" {
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			log.Printf("[UpdateProfile] bad tags payload: %v", err)
		} else {
			cleaned := make([]string, 0, len(tags))
			for _, tag := range tags {
				tag = strings.TrimSpace(tag)
				if tag == "" {
					continue
				}
				if len(tag) > models.MaxTagLength {
					tag = tag[:models.MaxTagLength]
				}
				cleaned = append(cleaned, tag)
				if len(cleaned) == models.MaxTags {
					break
				}
			}
			user.Tags = cleaned
		}
	}

	user.ProfileCompleted = user.ComputeProfileCompleted()

	if err := h.Users.Replace(ctx, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error updating profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// DeleteAccount removes the user document, settles the counterparties'
// counters and cascade-removes every connection the user participates
// in.
func (h *Handler) DeleteAccount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	conns, err := h.Connections.ListForUser(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error deleting account"})
		return
	}

	if err := h.Users.Delete(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error deleting account"})
		return
	}

	// Counters on the surviving party track documents that are about to
	// disappear: an undelivered pending request no longer sits in the
	// receiver's inbox, and an accepted match no longer exists.
	for i := range conns {
		other := conns[i].Other(userID)
		switch conns[i].Status {
		case models.ConnectionPending:
			if conns[i].Sender == userID {
				if err := h.Users.DecrementPending(ctx, other); err != nil {
					log.Printf("[DeleteAccount] pending counter update for %s failed: %v", other.Hex(), err)
				}
			}
		case models.ConnectionAccepted:
			if err := h.Users.DecrementMatchCount(ctx, other); err != nil {
				log.Printf("[DeleteAccount] match counter update for %s failed: %v", other.Hex(), err)
			}
		}
	}

	if err := h.Connections.DeleteForUser(ctx, userID); err != nil {
		// The account is gone; orphaned connection docs are an
		// operational cleanup problem, not a user-facing failure.
		log.Printf("[DeleteAccount] cascade delete of connections for %s failed: %v", userID.Hex(), err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}
