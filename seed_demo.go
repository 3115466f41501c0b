package main

import (
	"log"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"service-marketplace-server/database"
	"service-marketplace-server/models"
	"service-marketplace-server/services"
)

// SeedDemoData populates an empty store with demo accounts and one open
// request. It is a no-op when any user already exists.
func SeedDemoData() error {
	var count int64
	if err := database.DB.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	jwtService := services.NewJWTService()
	password, err := jwtService.HashPassword("Demo1234")
	if err != nil {
		return err
	}

	return database.DB.Transaction(func(tx *gorm.DB) error {
		admin := models.User{
			FullName:     "Admin",
			Email:        "admin@demo.com",
			PasswordHash: password,
			Role:         models.RoleAdmin,
			IsActive:     true,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}

		customers := []struct {
			name  string
			email string
			phone string
		}{
			{"Aisha", "aisha@demo.com", "+91 90000 00001"},
			{"Rahul", "rahul@demo.com", "+91 90000 00002"},
		}
		var firstCustomer models.User
		for i, c := range customers {
			user := models.User{
				FullName:     c.name,
				Email:        c.email,
				PasswordHash: password,
				Role:         models.RoleCustomer,
				IsActive:     true,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			if err := tx.Create(&models.CustomerProfile{UserID: user.ID, Phone: c.phone}).Error; err != nil {
				return err
			}
			if i == 0 {
				firstCustomer = user
			}
		}

		suresh := models.User{
			FullName:     "Suresh",
			Email:        "suresh@demo.com",
			PasswordHash: password,
			Role:         models.RoleWorker,
			IsActive:     true,
		}
		if err := tx.Create(&suresh).Error; err != nil {
			return err
		}
		sureshPoster := "https://images.unsplash.com/photo-1581578731548-c64695cc6952?w=1200&q=80&auto=format&fit=crop"
		if err := tx.Create(&models.WorkerProfile{
			UserID:         suresh.ID,
			Phone:          "+91 80000 00001",
			Whatsapp:       "+91 80000 00001",
			Categories:     pq.StringArray{"AC", "Electrical"},
			Skills:         pq.StringArray{"Split AC service", "Wiring", "Fan repair", "Switchboard"},
			About:          "10+ years experience. Fast same-day service in city limits.",
			PromoPosterURL: &sureshPoster,
			RatingAvg:      4.6,
			RatingCount:    92,
			JobsDone:       92,
		}).Error; err != nil {
			return err
		}

		meena := models.User{
			FullName:     "Meena",
			Email:        "meena@demo.com",
			PasswordHash: password,
			Role:         models.RoleWorker,
			IsActive:     true,
		}
		if err := tx.Create(&meena).Error; err != nil {
			return err
		}
		meenaPoster := "https://images.unsplash.com/photo-1581092919535-7146c7d31c28?w=1200&q=80&auto=format&fit=crop"
		if err := tx.Create(&models.WorkerProfile{
			UserID:         meena.ID,
			Phone:          "+91 80000 00002",
			Viber:          "+91 80000 00002",
			Categories:     pq.StringArray{"Plumbing", "Carpentry"},
			Skills:         pq.StringArray{"Leak fixing", "Tap replacement", "Door hinges", "Furniture repair"},
			About:          "Trusted technician. Transparent pricing and neat work.",
			PromoPosterURL: &meenaPoster,
			RatingAvg:      4.8,
			RatingCount:    120,
			JobsDone:       120,
		}).Error; err != nil {
			return err
		}

		request := models.ServiceRequest{
			Status:              models.StatusOpen,
			Category:            models.CategoryPlumbing,
			Title:               "Bathroom tap leaking",
			Description:         "Continuous leak from tap. Need repair or replacement.",
			Budget:              800,
			Urgency:             models.UrgencyMedium,
			Location:            "Chennai",
			CustomerID:          firstCustomer.ID,
			InterestedWorkerIDs: pq.Int64Array{},
			QuoteOffers:         models.QuoteOfferList{},
		}
		if err := tx.Create(&request).Error; err != nil {
			return err
		}

		log.Println("🌱 Demo data seeded")
		return nil
	})
}
