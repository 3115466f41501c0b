package jobs

import (
	"log"
	"time"

	"service-marketplace-server/services"
)

// TokenCleanupJob periodically removes expired refresh tokens
type TokenCleanupJob struct {
	jwtService *services.JWTService
	stopChan   chan bool
}

// NewTokenCleanupJob creates a new token cleanup job
func NewTokenCleanupJob(jwtService *services.JWTService) *TokenCleanupJob {
	return &TokenCleanupJob{
		jwtService: jwtService,
		stopChan:   make(chan bool),
	}
}

// Start begins the token cleanup job
func (j *TokenCleanupJob) Start() {
	go j.run()
	log.Println("🚀 Token cleanup job started")
}

// Stop stops the token cleanup job
func (j *TokenCleanupJob) Stop() {
	j.stopChan <- true
	log.Println("🛑 Token cleanup job stopped")
}

func (j *TokenCleanupJob) run() {
	ticker := time.NewTicker(6 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := j.jwtService.CleanupExpiredTokens(); err != nil {
				log.Printf("❌ Token cleanup failed: %v", err)
			}
		case <-j.stopChan:
			return
		}
	}
}
