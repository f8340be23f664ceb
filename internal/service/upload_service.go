package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	defaultMaxUploadSize = 5 * 1024 * 1024
	avatarsDir           = "avatars"
	sniffLen             = 3072
)

// imageExtensions lists the file extensions accepted for each sniffed type.
var imageExtensions = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/webp": {".webp"},
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// UploadFile is an incoming file part.
type UploadFile struct {
	Name        string
	Size        int64
	ContentType string
	Content     io.Reader
}

type UploadResult struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// UploadService stores avatar images under <dir>/avatars.
type UploadService struct {
	dir     string
	maxSize int64
	newName func() string
}

func NewUploadService(dir string, maxSize int64) *UploadService {
	if maxSize <= 0 {
		maxSize = defaultMaxUploadSize
	}
	return &UploadService{dir: dir, maxSize: maxSize, newName: uuid.NewString}
}

// AvatarsDir is the directory avatar files are written to.
func (s *UploadService) AvatarsDir() string {
	return filepath.Join(s.dir, avatarsDir)
}

// SaveAvatar checks size and image type, then writes the file under a random name.
func (s *UploadService) SaveAvatar(ctx context.Context, f UploadFile) (UploadResult, error) {
	if f.Content == nil {
		return UploadResult{}, ErrFileRequired
	}
	if f.Size > s.maxSize {
		return UploadResult{}, ErrFileTooLarge
	}
	if !allowedImageTypes[baseMediaType(f.ContentType)] {
		return UploadResult{}, ErrInvalidFileType
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return UploadResult{}, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	detected := mimetype.Detect(head)
	if !allowedImageTypes[baseMediaType(detected.String())] {
		return UploadResult{}, ErrInvalidFileType
	}

	if err := ctx.Err(); err != nil {
		return UploadResult{}, err
	}

	filename := s.newName() + avatarExtension(f.Name, detected)

	dir := s.AvatarsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return UploadResult{}, fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(dir, filename)
	size, err := s.write(path, io.MultiReader(bytes.NewReader(head), f.Content))
	if err != nil {
		_ = os.Remove(path)
		return UploadResult{}, err
	}
	return UploadResult{Filename: filename, Size: size}, nil
}

func (s *UploadService) write(path string, r io.Reader) (int64, error) {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create upload file: %w", err)
	}

	// the declared size is not trusted
	size, err := io.Copy(out, io.LimitReader(r, s.maxSize+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("write upload file: %w", err)
	}
	if size > s.maxSize {
		return 0, ErrFileTooLarge
	}
	return size, nil
}

// avatarExtension keeps the client's extension only when it matches the sniffed
// type, so static serving never picks a different content type.
func avatarExtension(name string, detected *mimetype.MIME) string {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range imageExtensions[baseMediaType(detected.String())] {
		if ext == allowed {
			return ext
		}
	}
	return detected.Extension()
}

func baseMediaType(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return mt
}
