package handlers

import (
	"math"
	"net/http"
	"strconv"

	"rishta/store"

	"github.com/gin-gonic/gin"
)

// GetAllUsers serves the paginated, filterable admin user listing.
// Admin accounts never appear in the results.
func (h *Handler) GetAllUsers(c *gin.Context) {
	filter := store.AdminFilter{
		Gender: c.Query("gender"),
		Search: c.Query("search"),
		Page:   1,
		Limit:  50,
	}

	if v := c.Query("minAge"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.MinAge = n
		}
	}
	if v := c.Query("maxAge"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.MaxAge = n
		}
	}
	if v := c.Query("profileCompleted"); v != "" {
		completed := v == "true"
		filter.ProfileCompleted = &completed
	}
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Page = n
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	ctx, cancel := requestContext()
	defer cancel()

	users, total, err := h.Users.List(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error fetching users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   users,
		"pagination": gin.H{
			"total": total,
			"page":  filter.Page,
			"limit": filter.Limit,
			"pages": int(math.Ceil(float64(total) / float64(filter.Limit))),
		},
	})
}

// GetStatistics serves the aggregate counts for the admin dashboard.
func (h *Handler) GetStatistics(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	stats, err := h.Users.Statistics(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error fetching statistics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"statistics": stats,
	})
}
