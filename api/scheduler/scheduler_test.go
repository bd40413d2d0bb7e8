package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pranaou2005/Wheelhub-backend/databases/mocks"
	"github.com/pranaou2005/Wheelhub-backend/models"
	"github.com/pranaou2005/Wheelhub-backend/storage"
)

func writeFile(t *testing.T, root, rel string, modTime time.Time) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(p, modTime, modTime))
	return p
}

func TestCleanOrphanedUploads(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	old := now.Add(-2 * time.Hour)

	orphan := writeFile(t, root, "vehicles/1.jpg", old)
	fresh := writeFile(t, root, "vehicles/2.jpg", now)
	image := writeFile(t, root, "vehicles/3.jpg", old)
	govID := writeFile(t, root, "governmentIds/4.png", old)
	rcBook := writeFile(t, root, "rcbooks/5.pdf", old)

	uDB := &mocks.UserDatabase{}
	vDB := &mocks.VehicleDatabase{}
	rcDB := &mocks.RCDatabase{}
	uDB.On("Find", mock.Anything, mock.Anything).Return([]models.User{{GovernmentID: "/uploads/governmentIds/4.png"}}, nil)
	vDB.On("Find", mock.Anything, mock.Anything).Return([]models.Vehicle{{Images: []string{"/uploads/vehicles/3.jpg"}}}, nil)
	rcDB.On("Find", mock.Anything, mock.Anything).Return([]models.RC{{RCBookPath: "/uploads/rcbooks/5.pdf"}}, nil)

	s := NewScheduler(storage.NewDisk(root), uDB, vDB, rcDB)
	s.now = func() time.Time { return now }

	removed, err := s.CleanOrphanedUploads(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(orphan)
	assert.True(t, os.IsNotExist(err))
	for _, p := range []string{fresh, image, govID, rcBook} {
		_, err = os.Stat(p)
		assert.NoError(t, err, p)
	}
}

func TestCleanOrphanedUploadsMissingRoot(t *testing.T) {
	uDB := &mocks.UserDatabase{}
	vDB := &mocks.VehicleDatabase{}
	rcDB := &mocks.RCDatabase{}
	uDB.On("Find", mock.Anything, mock.Anything).Return(nil, nil)
	vDB.On("Find", mock.Anything, mock.Anything).Return(nil, nil)
	rcDB.On("Find", mock.Anything, mock.Anything).Return(nil, nil)

	s := NewScheduler(storage.NewDisk(filepath.Join(t.TempDir(), "missing")), uDB, vDB, rcDB)
	removed, err := s.CleanOrphanedUploads(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestCleanOrphanedUploadsKeepsFilesWhenLookupFails(t *testing.T) {
	root := t.TempDir()
	orphan := writeFile(t, root, "vehicles/1.jpg", time.Now().Add(-2*time.Hour))

	uDB := &mocks.UserDatabase{}
	uDB.On("Find", mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))

	s := NewScheduler(storage.NewDisk(root), uDB, &mocks.VehicleDatabase{}, &mocks.RCDatabase{})
	_, err := s.CleanOrphanedUploads(context.Background())

	assert.ErrorContains(t, err, "mocked-error")
	_, statErr := os.Stat(orphan)
	assert.NoError(t, statErr)
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	s := NewScheduler(storage.NewDisk(t.TempDir()), &mocks.UserDatabase{}, &mocks.VehicleDatabase{}, &mocks.RCDatabase{})
	assert.Error(t, s.Start("not a schedule"))
}

func TestStartAndStop(t *testing.T) {
	s := NewScheduler(storage.NewDisk(t.TempDir()), &mocks.UserDatabase{}, &mocks.VehicleDatabase{}, &mocks.RCDatabase{})
	assert.NoError(t, s.Start("@hourly"))
	s.Stop()
}
