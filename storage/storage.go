package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pranaou2005/Wheelhub-backend/config"
)

// Upload folders
const (
	FolderVehicles      = "vehicles"
	FolderGovernmentIDs = "governmentIds"
	FolderRCBooks       = "rcbooks"
)

// Store persists uploaded files and returns the reference saved on documents
type Store interface {
	Save(ctx context.Context, folder string, fh *multipart.FileHeader) (string, error)
	Remove(ctx context.Context, ref string) error
}

// New returns the Store selected by conf.StorageDriver
func New(ctx context.Context, conf *config.Config) (Store, error) {
	switch conf.StorageDriver {
	case "", "disk":
		return NewDisk(conf.UploadDir), nil
	case "s3":
		return NewS3(ctx, conf.AWSRegion, conf.AWSBucket)
	case "cloudinary":
		return NewCloudinary(conf.CloudinaryURL)
	}
	return nil, fmt.Errorf("unknown storage driver %q", conf.StorageDriver)
}

// objectName returns a time based unique file name keeping the original extension
func objectName(now time.Time, original string) string {
	return strconv.FormatInt(now.UnixNano(), 10) + strings.ToLower(filepath.Ext(original))
}
