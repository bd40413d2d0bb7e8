package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// PublicPrefix is the url path disk uploads are served under
const PublicPrefix = "/uploads/"

// Disk stores uploads below Root
type Disk struct {
	Root string
	now  func() time.Time
}

// NewDisk returns a Disk store rooted at root
func NewDisk(root string) *Disk {
	return &Disk{Root: root, now: time.Now}
}

// filesOnly hides directories so upload folders cannot be listed
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}

// FileServer serves the files below root without directory listings
func FileServer(root string) http.Handler {
	return http.FileServer(filesOnly{fs: http.Dir(root)})
}

// Save copies the uploaded file to Root/folder and returns its public path
func (d *Disk) Save(ctx context.Context, folder string, fh *multipart.FileHeader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	dir := filepath.Join(d.Root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	var (
		name string
		dst  *os.File
	)
	for attempt := 0; ; attempt++ {
		name = objectName(d.now(), fh.Filename)
		dst, err = os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) || attempt == 2 {
			return "", fmt.Errorf("failed to create upload file: %w", err)
		}
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	return PublicPrefix + path.Join(folder, name), nil
}

// Remove deletes the file behind a reference returned by Save
func (d *Disk) Remove(ctx context.Context, ref string) error {
	p, ok := d.LocalPath(ref)
	if !ok {
		return fmt.Errorf("not a disk upload: %q", ref)
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// LocalPath maps a public reference to its location on disk
func (d *Disk) LocalPath(ref string) (string, bool) {
	if !strings.HasPrefix(ref, PublicPrefix) {
		return "", false
	}
	rel := path.Clean("/" + strings.TrimPrefix(ref, PublicPrefix))
	if rel == "/" {
		return "", false
	}
	return filepath.Join(d.Root, filepath.FromSlash(rel)), true
}

// Reference maps a file below Root back to the public reference Save returned for it
func (d *Disk) Reference(localPath string) (string, bool) {
	rel, err := filepath.Rel(d.Root, localPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return PublicPrefix + filepath.ToSlash(rel), true
}
