package main

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/beamdis/beamdis/container"
	"github.com/beamdis/beamdis/internal/xlog"
	"go.uber.org/zap"
)

// loadFailure records one input path the driver could not turn into a
// parsed module, so the caller can report it without aborting the batch.
type loadFailure struct {
	path string
	err  error
}

// loadAll resolves every input path to zero or more parsed modules. A path
// that yields nothing parseable under any transport is reported as a
// failure rather than silently dropped.
func loadAll(paths []string) ([]*container.Module, []loadFailure) {
	var modules []*container.Module
	var failures []loadFailure
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			failures = append(failures, loadFailure{path, err})
			continue
		}
		found, err := loadFromBytes(path, data)
		if err != nil {
			failures = append(failures, loadFailure{path, err})
			continue
		}
		modules = append(modules, found...)
	}
	return modules, failures
}

// loadFromBytes tries, in order: a zip archive (an .ez bundle of one or
// more members), a raw container, and finally a gzip-wrapped container —
// the *UnknownFileFormat*-triggers-retry-as-gzip fallback policy.
func loadFromBytes(name string, data []byte) ([]*container.Module, error) {
	if zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data))); err == nil {
		return loadFromZip(name, zr)
	}

	m, err := container.ParseBytes(data)
	if err == nil {
		return []*container.Module{m}, nil
	}
	firstErr := err

	inflated, gzErr := gunzip(data)
	if gzErr != nil {
		return nil, fmt.Errorf("%s: not a container, and not gzip either (%v): %w", name, gzErr, firstErr)
	}
	m, err = container.ParseBytes(inflated)
	if err != nil {
		return nil, fmt.Errorf("%s: failed as raw container (%v) and as gzip (%w)", name, firstErr, err)
	}
	xlog.L().Debug("parsed after gzip retry", zap.String("file", name))
	return []*container.Module{m}, nil
}

func loadFromZip(archiveName string, zr *zip.Reader) ([]*container.Module, error) {
	var modules []*container.Module
	var lastErr error
	for _, f := range zr.File {
		if filepath.Ext(f.Name) != ".beam" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			lastErr = err
			xlog.L().Warn("skipping archive member", zap.String("archive", archiveName), zap.String("member", f.Name), zap.Error(err))
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			lastErr = err
			continue
		}
		m, err := container.ParseBytes(data)
		if err != nil {
			lastErr = err
			xlog.L().Warn("skipping unparseable archive member", zap.String("archive", archiveName), zap.String("member", f.Name), zap.Error(err))
			continue
		}
		modules = append(modules, m)
	}
	if len(modules) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("%s: no module in archive parsed (last error: %w)", archiveName, lastErr)
		}
		return nil, errors.New(archiveName + ": archive contained no .beam members")
	}
	return modules, nil
}

func gunzip(data []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gr.Close()
	return io.ReadAll(gr)
}
