package scheduler

import (
	"fmt"
	"os"
	"time"

	"allure/config"
	"allure/internal/domain"
	"allure/internal/repository"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const leaseStaleBookings = "sweep_stale_bookings"

// Sweeper cancels bookings that were created but never paid within the TTL.
// Each run claims a database lease first, so overlapping runs and multiple
// server instances never sweep concurrently.
type Sweeper struct {
	cfg      *config.EscrowConfig
	bookings *repository.BookingRepository
	settings *repository.SettingRepository
	leases   *repository.LeaseRepository
	holder   string
	cron     *cron.Cron
}

func NewSweeper(cfg *config.EscrowConfig, db *gorm.DB) *Sweeper {
	host, _ := os.Hostname()
	return &Sweeper{
		cfg:      cfg,
		bookings: repository.NewBookingRepository(db),
		settings: repository.NewSettingRepository(db),
		leases:   repository.NewLeaseRepository(db),
		holder:   fmt.Sprintf("%s-%s", host, uuid.NewString()[:8]),
		cron:     cron.New(),
	}
}

func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.SweepInterval, s.run); err != nil {
		return err
	}
	s.cron.Start()
	logrus.WithField("cron", s.cfg.SweepInterval).Info("stale booking sweeper started")
	return nil
}

func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Sweeper) run() {
	now := time.Now()
	won, err := s.leases.Claim(leaseStaleBookings, s.holder, s.cfg.LeaseTTL, now)
	if err != nil {
		logrus.WithError(err).Warn("sweeper lease claim failed")
		return
	}
	if !won {
		return
	}
	defer func() {
		if err := s.leases.Release(leaseStaleBookings, s.holder); err != nil {
			logrus.WithError(err).Warn("sweeper lease release failed")
		}
	}()

	ttl := time.Duration(s.settings.GetInt(domain.SettingBookingPendingTTLHours, 24)) * time.Hour
	n, err := s.bookings.CancelStalePending(now.Add(-ttl))
	if err != nil {
		logrus.WithError(err).Warn("stale booking sweep failed")
		return
	}
	if n > 0 {
		logrus.WithField("cancelled", n).Info("cancelled stale pending bookings")
	}
}
