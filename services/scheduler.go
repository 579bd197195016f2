// services/scheduler.go - Out-of-band maintenance jobs
package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler runs the maintenance the request path never does inline:
// refreshing rankingSemanal snapshots and deactivating expired challenges.
type Scheduler struct {
	ranking  *RankingService
	desafios *DesafioService
	sched    gocron.Scheduler
}

func NewScheduler(ranking *RankingService, desafios *DesafioService) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		ranking:  ranking,
		desafios: desafios,
		sched:    sched,
	}, nil
}

// Start registers the jobs and launches the scheduler.
func (s *Scheduler) Start(intervaloRanking, intervaloDesafios time.Duration) error {
	_, err := s.sched.NewJob(
		gocron.DurationJob(intervaloRanking),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			n, err := s.ranking.AtualizarSnapshots(ctx)
			if err != nil {
				log.Printf("[SCHEDULER] Failed to refresh weekly ranking: %v", err)
				return
			}
			log.Printf("[SCHEDULER] Weekly ranking refreshed for %d users", n)
		}),
	)
	if err != nil {
		return err
	}

	_, err = s.sched.NewJob(
		gocron.DurationJob(intervaloDesafios),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			n, err := s.desafios.DesativarExpirados(ctx)
			if err != nil {
				log.Printf("[SCHEDULER] Failed to deactivate expired desafios: %v", err)
				return
			}
			if n > 0 {
				log.Printf("[SCHEDULER] Deactivated %d expired desafios", n)
			}
		}),
	)
	if err != nil {
		return err
	}

	s.sched.Start()
	return nil
}

// Stop shuts the scheduler down.
func (s *Scheduler) Stop() error {
	return s.sched.Shutdown()
}
