package jobs

import (
	"log"
	"time"

	"service-marketplace-server/events"
	"service-marketplace-server/services"
)

// ProjectionJob keeps the overview read model in sync with the store. It
// subscribes to store-change events and debounces bursts of writes into a
// single rebuild.
type ProjectionJob struct {
	projection *services.ProjectionService
	events     <-chan events.Event
	stopChan   chan bool
}

// NewProjectionJob creates a new projection refresh job
func NewProjectionJob(projection *services.ProjectionService, bus *events.Bus) *ProjectionJob {
	return &ProjectionJob{
		projection: projection,
		events:     bus.Subscribe(64),
		stopChan:   make(chan bool),
	}
}

// Start begins the projection job
func (j *ProjectionJob) Start() {
	go j.run()
	log.Println("🚀 Projection job started")
}

// Stop stops the projection job
func (j *ProjectionJob) Stop() {
	j.stopChan <- true
	log.Println("🛑 Projection job stopped")
}

func (j *ProjectionJob) run() {
	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case e := <-j.events:
			log.Printf("🔄 Store change observed (%s), scheduling projection refresh", e.Type)
			if timer == nil {
				timer = time.NewTimer(500 * time.Millisecond)
			} else {
				timer.Reset(500 * time.Millisecond)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			if _, err := j.projection.Refresh(); err != nil {
				log.Printf("❌ Projection refresh failed: %v", err)
			}

		case <-j.stopChan:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}
