package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/pranaou2005/Wheelhub-backend/databases"
	"github.com/pranaou2005/Wheelhub-backend/storage"
)

// DefaultMinAge is how old an unreferenced upload must be before it is removed
const DefaultMinAge = time.Hour

// Scheduler handles periodic background jobs for the upload directory
type Scheduler struct {
	cron   *cron.Cron
	Disk   *storage.Disk
	UDB    databases.UserDatabase
	VDB    databases.VehicleDatabase
	RCDB   databases.RCDatabase
	MinAge time.Duration
	now    func() time.Time
}

// NewScheduler creates a new scheduler instance
func NewScheduler(disk *storage.Disk, uDB databases.UserDatabase, vDB databases.VehicleDatabase, rcDB databases.RCDatabase) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		Disk:   disk,
		UDB:    uDB,
		VDB:    vDB,
		RCDB:   rcDB,
		MinAge: DefaultMinAge,
		now:    time.Now,
	}
}

// Start registers the upload janitor on schedule and starts the cron loop
func (s *Scheduler) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, s.cleanUploads)
	if err != nil {
		return fmt.Errorf("failed to register upload janitor: %w", err)
	}
	s.cron.Start()
	zap.S().Infow("Upload janitor scheduled", "schedule", schedule, "root", s.Disk.Root)
	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Upload janitor stopped")
}

func (s *Scheduler) cleanUploads() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	removed, err := s.CleanOrphanedUploads(ctx)
	if err != nil {
		zap.S().Errorw("upload janitor failed", "error", err)
		return
	}
	zap.S().Infow("Upload janitor complete", "removed", removed)
}

// CleanOrphanedUploads deletes files below the upload root that are older than MinAge and
// that no user, vehicle or RC document references. It returns the number of removed files.
func (s *Scheduler) CleanOrphanedUploads(ctx context.Context) (int, error) {
	referenced, err := s.references(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-s.MinAge)
	removed := 0
	err = filepath.WalkDir(s.Disk.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return ctx.Err()
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		ref, ok := s.Disk.Reference(p)
		if !ok || referenced[ref] {
			return nil
		}
		if err := os.Remove(p); err != nil {
			zap.S().Warnw("failed to remove orphaned upload", "path", p, "error", err)
			return nil
		}
		zap.S().Debugw("removed orphaned upload", "path", p)
		removed++
		return nil
	})
	return removed, err
}

// references collects every upload reference stored on documents
func (s *Scheduler) references(ctx context.Context) (map[string]bool, error) {
	refs := map[string]bool{}

	users, err := s.UDB.Find(ctx, bson.M{"governmentId": bson.M{"$exists": true, "$ne": ""}})
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	for _, u := range users {
		refs[u.GovernmentID] = true
	}

	vehicles, err := s.VDB.Find(ctx, bson.M{"images.0": bson.M{"$exists": true}})
	if err != nil {
		return nil, fmt.Errorf("failed to load vehicles: %w", err)
	}
	for _, v := range vehicles {
		for _, img := range v.Images {
			refs[img] = true
		}
	}

	rcs, err := s.RCDB.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to load rcs: %w", err)
	}
	for _, rc := range rcs {
		refs[rc.RCBookPath] = true
	}
	return refs, nil
}
