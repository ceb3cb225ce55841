// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package upload

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// DefaultMaxBytes is the largest file accepted for upload (5 MiB).
const DefaultMaxBytes int64 = 5 * 1024 * 1024

// DefaultExtensions are offered by the file picker.
var DefaultExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp"}

// ErrFileTooLarge is matched by errors.Is on a rejected oversized file.
var ErrFileTooLarge = errors.New("file too large")

// SizeError reports a file above the limit.
type SizeError struct {
	Path string
	Size int64
	Max  int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("%s: %s exceeds the %s upload limit", filepath.Base(e.Path), humanize.IBytes(uint64(e.Size)), FormatLimit(e.Max))
}

// Is makes errors.Is(err, ErrFileTooLarge) work.
func (e *SizeError) Is(target error) bool {
	return target == ErrFileTooLarge
}

// UserMessage is the warning shown when a file is rejected.
func (e *SizeError) UserMessage() string {
	return "File too large (max " + FormatLimit(e.Max) + ")."
}

// FormatLimit renders a byte limit the way the warning shows it ("5MB").
func FormatLimit(n int64) string {
	const mib = 1024 * 1024
	if n > 0 && n%mib == 0 {
		return fmt.Sprintf("%dMB", n/mib)
	}
	return humanize.IBytes(uint64(n))
}

// =============================================================================
// FILE
// =============================================================================

// File is an accepted image held in memory.
type File struct {
	Path        string
	Name        string
	Size        int64
	ContentType string
	Data        []byte

	// Width and Height are zero when the format could not be decoded.
	Width  int
	Height int
}

// NewFile builds a File from bytes already in memory.
func NewFile(name string, data []byte) File {
	f := File{
		Path:        name,
		Name:        filepath.Base(name),
		Size:        int64(len(data)),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		f.Width, f.Height = cfg.Width, cfg.Height
	}
	return f
}

// PreviewURL is the local displayable reference to the original file.
func (f File) PreviewURL() string {
	abs, err := filepath.Abs(f.Path)
	if err != nil {
		abs = f.Path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

// Reader returns a fresh reader over the contents.
func (f File) Reader() io.Reader {
	return bytes.NewReader(f.Data)
}

// Describe returns a one-line summary ("scan.png · 2.0 MiB · 800x600").
func (f File) Describe() string {
	parts := []string{f.Name, humanize.IBytes(uint64(f.Size))}
	if f.Width > 0 && f.Height > 0 {
		parts = append(parts, fmt.Sprintf("%dx%d", f.Width, f.Height))
	}
	return strings.Join(parts, " · ")
}

// =============================================================================
// CONTROL
// =============================================================================

// Control validates file selections.
type Control struct {
	MaxBytes          int64
	AllowedExtensions []string
}

// NewControl creates a control. Zero or negative maxBytes means the default,
// nil extensions means DefaultExtensions.
func NewControl(maxBytes int64, extensions []string) *Control {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if extensions == nil {
		extensions = DefaultExtensions
	}
	return &Control{MaxBytes: maxBytes, AllowedExtensions: extensions}
}

// Open accepts the file at path, or rejects it with a *SizeError when it is
// larger than the limit. Oversized files are never read.
func (c *Control) Open(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("open image: %w", err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("open image: %s is a directory", path)
	}
	if info.Size() > c.MaxBytes {
		return File{}, &SizeError{Path: path, Size: info.Size(), Max: c.MaxBytes}
	}

	fh, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("open image: %w", err)
	}
	defer fh.Close()

	// The file may have grown since Stat.
	data, err := io.ReadAll(io.LimitReader(fh, c.MaxBytes+1))
	if err != nil {
		return File{}, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > c.MaxBytes {
		return File{}, &SizeError{Path: path, Size: int64(len(data)), Max: c.MaxBytes}
	}

	return NewFile(path, data), nil
}

// Allows reports whether the picker should offer path.
func (c *Control) Allows(path string) bool {
	if len(c.AllowedExtensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range c.AllowedExtensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}
