package handlers

import (
	"log"
	"net/http"
	"strings"

	"rishta/models"

	"github.com/gin-gonic/gin"
)

const citySearchLimit = 10

// SearchCities serves the location autocomplete. Queries shorter than
// two characters return nothing without touching the cache or the
// geocoder. Cache misses fall through to the external geocoder when one
// is configured, and its results are written back unverified for future
// lookups.
func (h *Handler) SearchCities(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if len(q) < 2 {
		c.JSON(http.StatusOK, gin.H{"success": true, "cities": []models.City{}})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	cities, err := h.Cities.SearchPrefix(ctx, q, citySearchLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while searching cities"})
		return
	}

	if len(cities) == 0 && h.Geo != nil {
		fetched, err := h.Geo.Search(ctx, q)
		if err != nil {
			// The cache stays authoritative; a geocoder outage just
			// means an empty result.
			log.Printf("[SearchCities] geocoder fallback for %q failed: %v", q, err)
		} else if len(fetched) > 0 {
			if err := h.Cities.InsertMany(ctx, fetched); err != nil {
				log.Printf("[SearchCities] caching geocoder results for %q failed: %v", q, err)
			}
			if len(fetched) > citySearchLimit {
				fetched = fetched[:citySearchLimit]
			}
			cities = fetched
		}
	}

	if cities == nil {
		cities = []models.City{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"cities":  cities,
	})
}
