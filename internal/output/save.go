// Package output renders export jobs for the terminal and writes export files.
package output

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/diskspace"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/models"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/validation"
)

// SaveOptions controls where and how an export file is written.
type SaveOptions struct {
	// Path is the destination file. A trailing separator or an existing directory
	// means "this directory, default file name".
	Path string

	// CreateDirs creates missing parent directories (--save-path).
	CreateDirs bool

	// Pretty re-indents JSON output.
	Pretty bool
}

// DefaultFileName names an export file after its resource type and id.
func DefaultFileName(job *models.Export) string {
	format := job.Format
	if format == "" {
		format = validation.FormatJSON
	}
	return fmt.Sprintf("%s_%s.%s", job.ResourceType, job.ID, format)
}

// resolvePath picks the final file path and makes sure its directory exists.
func resolvePath(job *models.Export, opts SaveOptions) (string, error) {
	path := opts.Path
	if path == "" {
		return "", fmt.Errorf("output path is empty")
	}

	isDir := strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator))
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		isDir = true
	}
	if isDir {
		name := DefaultFileName(job)
		if err := validation.ValidateFilename(name); err != nil {
			return "", err
		}
		path = filepath.Join(path, name)
	}

	dir := filepath.Dir(path)
	if opts.CreateDirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	} else if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", fmt.Errorf("directory %s does not exist (use --save-path to create it)", dir)
	}

	return path, nil
}

// SaveExport downloads the job's attachment and writes it to opts.Path.
// Attachments are gzip compressed; plain payloads are written as they are.
// It returns the path of the written file.
func SaveExport(ctx context.Context, client *nethttp.Client, job *models.Export, opts SaveOptions) (string, error) {
	if job.AttachmentURL == "" {
		return "", fmt.Errorf("export %s has no attachment", job.ID)
	}

	path, err := resolvePath(job, opts)
	if err != nil {
		return "", err
	}

	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, job.AttachmentURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download export %s: %w", job.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		return "", fmt.Errorf("failed to download export %s: status %d", job.ID, resp.StatusCode)
	}

	// the compressed length is a lower bound of the file size
	if resp.ContentLength > 0 {
		if err := diskspace.CheckAvailableSpace(path, resp.ContentLength, 1.1); err != nil {
			return "", err
		}
	}

	body, err := decompress(resp.Body)
	if err != nil {
		return "", err
	}
	defer body.Close()

	// Use temporary file + rename so a failed download never leaves a partial file
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}

	written, err := writeBody(f, body, opts.Pretty && job.Format != validation.FormatCSV)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write export %s: %w", job.ID, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to save output file: %w", err)
	}

	log.Debug().Str("export_id", job.ID).Str("path", path).Int64("bytes", written).Msg("Export saved")
	return path, nil
}

// decompress returns a reader over the gunzipped body, or the body itself when it is not gzip.
func decompress(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress export: %w", err)
		}
		return zr, nil
	}
	return io.NopCloser(br), nil
}

func writeBody(w io.Writer, body io.Reader, pretty bool) (int64, error) {
	if !pretty {
		return io.Copy(w, body)
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return 0, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return 0, fmt.Errorf("export is not valid JSON: %w", err)
	}
	buf.WriteByte('\n')
	return buf.WriteTo(w)
}
