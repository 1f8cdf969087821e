package waymarks

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// Fetcher downloads reference files that are not present locally.
type Fetcher struct {
	fs     afero.Fs
	client *http.Client
	logger *slog.Logger
}

// NewFetcher returns a Fetcher writing into fsys. A nil client gets a 60s timeout.
func NewFetcher(fsys afero.Fs, client *http.Client, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{fs: fsys, client: client, logger: logger}
}

// Ensure makes sure path exists, downloading url into it otherwise.
// An existing file is never re-downloaded.
func (f *Fetcher) Ensure(ctx context.Context, url, path string) error {
	if ok, err := afero.Exists(f.fs, path); err != nil {
		return fmt.Errorf("%w: checking %s: %v", ErrAcquisition, path, err)
	} else if ok {
		f.logger.Info("reference file present, skipping download", slog.String("path", path))
		return nil
	}

	// WHY 0755: restrictive permissions (rwxr-xr-x) for the data directory, never world-writable.
	if dir := filepath.Dir(path); dir != "" {
		if err := f.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: creating directory %s: %v", ErrAcquisition, dir, err)
		}
	}

	f.logger.Info("downloading reference file", slog.String("url", url), slog.String("path", path))
	if err := f.download(ctx, url, path); err != nil {
		return fmt.Errorf("%w: %w", ErrAcquisition, err)
	}
	return nil
}

func (f *Fetcher) download(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", url, err)
	}
	// Without this the transport asks for gzip and, when served compressed,
	// hides the Content-Length the size check depends on.
	req.Header.Set("Accept-Encoding", "identity")
	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP GET %s: status %d", url, resp.StatusCode)
	}
	if resp.ContentLength < 0 {
		return fmt.Errorf("HTTP GET %s: missing content-length header", url)
	}

	// Download next to the target and rename once complete, so an
	// interrupted transfer never looks like a present file to Ensure.
	tmp := path + ".part"
	out, err := f.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", tmp, err)
	}

	success := false
	defer func() {
		out.Close()
		if !success {
			f.fs.Remove(tmp) // best-effort cleanup of partial file
		}
	}()

	pw := &progressWriter{total: resp.ContentLength, logger: f.logger, path: path}
	if _, err := io.Copy(out, io.TeeReader(resp.Body, pw)); err != nil {
		return fmt.Errorf("writing file %s: %w", tmp, err)
	}
	if pw.written != resp.ContentLength {
		return fmt.Errorf("HTTP GET %s: short body: got %d of %d bytes", url, pw.written, resp.ContentLength)
	}

	// Explicitly close to catch flush errors (e.g., on NFS)
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing file %s: %w", tmp, err)
	}
	if err := f.fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}
	success = true
	f.logger.Info("download complete", slog.String("path", path), slog.Int64("bytes", pw.written))
	return nil
}

// progressWriter logs download progress in 10% steps at debug level.
type progressWriter struct {
	total   int64
	written int64
	step    int64
	path    string
	logger  *slog.Logger
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	if p.total > 0 {
		if step := p.written * 10 / p.total; step > p.step {
			p.step = step
			p.logger.Debug("download progress",
				slog.String("path", p.path),
				slog.Int64("bytes", p.written),
				slog.Int64("total", p.total))
		}
	}
	return len(b), nil
}

// Extractor unpacks zip archives.
type Extractor struct {
	fs     afero.Fs
	logger *slog.Logger
}

// NewExtractor returns an Extractor working on fsys.
func NewExtractor(fsys afero.Fs, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{fs: fsys, logger: logger}
}

// Extract unpacks archivePath into dir. Entries whose destination already
// exists are skipped, so re-running is a no-op.
func (e *Extractor) Extract(archivePath, dir string) error {
	fh, err := e.fs.Open(archivePath)
	if err != nil {
		return fmt.Errorf("%w: opening zip file %s: %v", ErrAcquisition, archivePath, err)
	}
	defer fh.Close()

	info, err := fh.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat %s: %v", ErrAcquisition, archivePath, err)
	}
	rz, err := zip.NewReader(fh, info.Size())
	if err != nil {
		return fmt.Errorf("%w: reading zip file %s: %v", ErrAcquisition, archivePath, err)
	}

	for _, uF := range rz.File {
		if err := e.extractEntry(uF, dir); err != nil {
			return fmt.Errorf("%w: %v", ErrAcquisition, err)
		}
	}
	return nil
}

// extractEntry writes a single zip entry to disk.
// Extracted to avoid defer-in-loop anti-pattern.
func (e *Extractor) extractEntry(uF *zip.File, dir string) error {
	outPath := filepath.Join(dir, uF.Name)
	// Unlike an in-memory read, extraction writes to disk: refuse entries
	// that would escape dir (Zip Slip, CWE-22).
	if rel, err := filepath.Rel(dir, outPath); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("zip entry %q escapes %s", uF.Name, dir)
	}

	if _, err := e.fs.Stat(outPath); err == nil {
		e.logger.Info("skipping extraction, already exists", slog.String("path", outPath))
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", outPath, err)
	}

	if uF.FileInfo().IsDir() {
		return e.fs.MkdirAll(outPath, 0755)
	}
	if err := e.fs.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", outPath, err)
	}

	fi, err := uF.Open()
	if err != nil {
		return fmt.Errorf("opening file in zip: %w", err)
	}
	defer fi.Close()

	out, err := e.fs.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", outPath, err)
	}
	if _, err := io.Copy(out, fi); err != nil {
		out.Close()
		e.fs.Remove(outPath)
		return fmt.Errorf("extracting %s: %w", outPath, err)
	}
	if err := out.Close(); err != nil {
		e.fs.Remove(outPath)
		return fmt.Errorf("closing file %s: %w", outPath, err)
	}
	e.logger.Info("extracted", slog.String("path", outPath))
	return nil
}
