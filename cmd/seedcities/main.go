// Command seedcities wipes and repopulates the city collection with the
// curated seed list used by the location autocomplete.
package main

import (
	"context"
	"log"
	"time"

	"rishta/config"
	"rishta/database"
	"rishta/models"
	"rishta/store"
)

var seedCities = []models.City{
	{Name: "Mumbai", Country: "India", DisplayName: "Mumbai, India", Population: 20411000},
	{Name: "Delhi", Country: "India", DisplayName: "Delhi, India", Population: 30291000},
	{Name: "Bangalore", Country: "India", DisplayName: "Bangalore, India", Population: 12327000},
	{Name: "Hyderabad", Country: "India", DisplayName: "Hyderabad, India", Population: 10004000},
	{Name: "Ahmedabad", Country: "India", DisplayName: "Ahmedabad, India", Population: 8059000},
	{Name: "Chennai", Country: "India", DisplayName: "Chennai, India", Population: 10971000},
	{Name: "Kolkata", Country: "India", DisplayName: "Kolkata, India", Population: 14850000},
	{Name: "Pune", Country: "India", DisplayName: "Pune, India", Population: 6630000},
	{Name: "Surat", Country: "India", DisplayName: "Surat, India", Population: 6081000},
	{Name: "Jaipur", Country: "India", DisplayName: "Jaipur, India", Population: 3460000},
	{Name: "Lucknow", Country: "India", DisplayName: "Lucknow, India", Population: 3382000},
	{Name: "New York", Country: "United States", DisplayName: "New York, United States", Population: 8336000},
	{Name: "Los Angeles", Country: "United States", DisplayName: "Los Angeles, United States", Population: 3979000},
	{Name: "Chicago", Country: "United States", DisplayName: "Chicago, United States", Population: 2693000},
	{Name: "Houston", Country: "United States", DisplayName: "Houston, United States", Population: 2320000},
	{Name: "Phoenix", Country: "United States", DisplayName: "Phoenix, United States", Population: 1680000},
	{Name: "Philadelphia", Country: "United States", DisplayName: "Philadelphia, United States", Population: 1584000},
	{Name: "Dallas", Country: "United States", DisplayName: "Dallas, United States", Population: 1343000},
	{Name: "Seattle", Country: "United States", DisplayName: "Seattle, United States", Population: 753000},
	{Name: "Boston", Country: "United States", DisplayName: "Boston, United States", Population: 692000},
	{Name: "Miami", Country: "United States", DisplayName: "Miami, United States", Population: 467000},
	{Name: "Toronto", Country: "Canada", DisplayName: "Toronto, Canada", Population: 2930000},
	{Name: "Montreal", Country: "Canada", DisplayName: "Montreal, Canada", Population: 1780000},
	{Name: "Vancouver", Country: "Canada", DisplayName: "Vancouver, Canada", Population: 675000},
	{Name: "Calgary", Country: "Canada", DisplayName: "Calgary, Canada", Population: 1336000},
	{Name: "Edmonton", Country: "Canada", DisplayName: "Edmonton, Canada", Population: 981000},
	{Name: "Ottawa", Country: "Canada", DisplayName: "Ottawa, Canada", Population: 994000},
	{Name: "London", Country: "United Kingdom", DisplayName: "London, United Kingdom", Population: 9002000},
	{Name: "Birmingham", Country: "United Kingdom", DisplayName: "Birmingham, United Kingdom", Population: 1141000},
	{Name: "Manchester", Country: "United Kingdom", DisplayName: "Manchester, United Kingdom", Population: 547000},
	{Name: "Leeds", Country: "United Kingdom", DisplayName: "Leeds, United Kingdom", Population: 793000},
	{Name: "Glasgow", Country: "United Kingdom", DisplayName: "Glasgow, United Kingdom", Population: 633000},
	{Name: "Edinburgh", Country: "United Kingdom", DisplayName: "Edinburgh, United Kingdom", Population: 524000},
	{Name: "Karachi", Country: "Pakistan", DisplayName: "Karachi, Pakistan", Population: 16094000},
	{Name: "Lahore", Country: "Pakistan", DisplayName: "Lahore, Pakistan", Population: 11126000},
	{Name: "Islamabad", Country: "Pakistan", DisplayName: "Islamabad, Pakistan", Population: 1095000},
	{Name: "Rawalpindi", Country: "Pakistan", DisplayName: "Rawalpindi, Pakistan", Population: 2098000},
	{Name: "Faisalabad", Country: "Pakistan", DisplayName: "Faisalabad, Pakistan", Population: 3204000},
	{Name: "Dhaka", Country: "Bangladesh", DisplayName: "Dhaka, Bangladesh", Population: 21006000},
	{Name: "Chittagong", Country: "Bangladesh", DisplayName: "Chittagong, Bangladesh", Population: 2592000},
	{Name: "Dubai", Country: "United Arab Emirates", DisplayName: "Dubai, United Arab Emirates", Population: 3331000},
	{Name: "Abu Dhabi", Country: "United Arab Emirates", DisplayName: "Abu Dhabi, United Arab Emirates", Population: 1483000},
	{Name: "Sydney", Country: "Australia", DisplayName: "Sydney, Australia", Population: 5312000},
	{Name: "Melbourne", Country: "Australia", DisplayName: "Melbourne, Australia", Population: 5078000},
	{Name: "Kuala Lumpur", Country: "Malaysia", DisplayName: "Kuala Lumpur, Malaysia", Population: 1808000},
	{Name: "Singapore", Country: "Singapore", DisplayName: "Singapore, Singapore", Population: 5686000},
	{Name: "Istanbul", Country: "Turkey", DisplayName: "Istanbul, Turkey", Population: 15462000},
	{Name: "Riyadh", Country: "Saudi Arabia", DisplayName: "Riyadh, Saudi Arabia", Population: 7676000},
	{Name: "Jeddah", Country: "Saudi Arabia", DisplayName: "Jeddah, Saudi Arabia", Population: 4697000},
	{Name: "Cairo", Country: "Egypt", DisplayName: "Cairo, Egypt", Population: 20901000},
}

func main() {
	cfg := config.Load()

	if err := database.ConnectMongo(cfg.MongoURI, cfg.DatabaseName); err != nil {
		log.Fatal("Failed to connect to MongoDB: ", err)
	}
	defer func() {
		if err := database.DisconnectMongo(); err != nil {
			log.Println("MongoDB disconnect error: ", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cities := store.NewMongoCityStore(database.Cities)

	if err := cities.DeleteAll(ctx); err != nil {
		log.Fatal("Failed to clear existing cities: ", err)
	}
	log.Println("Cleared existing cities")

	seed := make([]models.City, len(seedCities))
	copy(seed, seedCities)
	for i := range seed {
		seed[i].Verified = true
	}

	if err := cities.InsertMany(ctx, seed); err != nil {
		log.Fatal("Failed to insert cities: ", err)
	}
	log.Printf("Inserted %d cities", len(seed))
}
