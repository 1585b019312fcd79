// Development seeder: fills the database with fake students and
// listings so the frontend has something to browse. Not for production.
package main

import (
	"fmt"
	"log"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/campusswap/backend/internal/config"
	"github.com/campusswap/backend/internal/database"
	"github.com/campusswap/backend/internal/models"
	"github.com/joho/godotenv"
)

const (
	userCount          = 25
	listingsPerUserMax = 3
	seedPassword       = "password123"
)

var skills = []string{
	"math tutoring", "guitar lessons", "spanish conversation", "python",
	"photography", "graphic design", "calculus", "chemistry", "video editing",
	"public speaking", "chess", "cooking",
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()
	db, err := database.Init(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to initialize database: ", err)
	}

	gofakeit.Seed(0)

	for i := 0; i < userCount; i++ {
		user := models.User{
			Email:         gofakeit.Email(),
			Password:      seedPassword,
			Alias:         gofakeit.Username(),
			FirstName:     gofakeit.FirstName(),
			LastName:      gofakeit.LastName(),
			Career:        gofakeit.JobTitle(),
			Bio:           gofakeit.Sentence(12),
			SkillsOffered: gofakeit.RandomString(skills),
			SkillsWanted:  gofakeit.RandomString(skills),
			Role:          "student",
			IsActive:      true,
		}
		if err := db.Create(&user).Error; err != nil {
			log.Fatal("failed to create user: ", err)
		}

		for j := 0; j < gofakeit.Number(1, listingsPerUserMax); j++ {
			skill := gofakeit.RandomString(skills)
			listing := models.Listing{
				Title:       fmt.Sprintf("%s: %s", gofakeit.HackerVerb(), skill),
				Description: gofakeit.Paragraph(1, 3, 12, " "),
				SkillTag:    skill,
				OwnerID:     user.ID,
				IsActive:    true,
			}
			if err := db.Create(&listing).Error; err != nil {
				log.Fatal("failed to create listing: ", err)
			}
		}
	}

	log.Printf("seeded %d users (password %q)", userCount, seedPassword)
}
