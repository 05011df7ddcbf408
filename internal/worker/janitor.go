package worker

import (
	"log"
	"sync"
	"time"

	"taskhub/backend/internal/models"

	"gorm.io/gorm"
)

// Janitor periodically purges expired refresh tokens. The request path
// never depends on it; a missed sweep only leaves dead rows around
// until the next one.
type Janitor struct {
	db       *gorm.DB
	interval time.Duration
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewJanitor(db *gorm.DB, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Janitor{
		db:       db,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (j *Janitor) Start() {
	log.Printf("Starting token janitor, sweep interval %s", j.interval)
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				j.sweep()
			case <-j.stop:
				return
			}
		}
	}()
}

func (j *Janitor) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
	j.wg.Wait()
}

func (j *Janitor) sweep() {
	result := j.db.Where("expires_at < ?", time.Now()).Delete(&models.Token{})
	if result.Error != nil {
		log.Printf("Token janitor sweep failed: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("Token janitor removed %d expired refresh tokens", result.RowsAffected)
	}
}
