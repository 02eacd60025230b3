// Copyright 2026 Edilaw Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingestion

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/edilaw/normakit/core"
	"github.com/edilaw/normakit/index"
	"github.com/panjf2000/ants/v2"
)

// Pipeline orchestrates document ingestion: loading files, processing them
// into chunks, and committing the chunks to the tier indexes. Files are
// processed concurrently; one document's failure never aborts the rest of
// a batch.
type Pipeline struct {
	processor *Processor
	router    *index.MultiLevel
	pool      *ants.Pool
	logger    *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent file processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) PipelineOption {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithPipelineLogger sets a custom logger.
// Default is slog.Default().
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates an ingestion pipeline committing to router.
func NewPipeline(processor *Processor, router *index.MultiLevel, opts ...PipelineOption) (*Pipeline, error) {
	if router == nil {
		return nil, ErrRouterRequired
	}
	if processor == nil {
		var err error
		processor, err = NewProcessor()
		if err != nil {
			return nil, err
		}
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		processor: processor,
		router:    router,
		pool:      pool,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingestion-pipeline")
	return p, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// Assignment declares the jurisdiction a batch of documents belongs to.
type Assignment struct {
	Level        core.Level
	Region       string
	Province     string
	Municipality string
}

// FileResult records the outcome of ingesting one file.
type FileResult struct {
	Path   string
	Chunks int
	Err    error
}

// Report summarizes a directory ingestion run.
type Report struct {
	Files       []FileResult
	TotalChunks int
}

// Failed returns the results for files that could not be ingested.
func (r *Report) Failed() []FileResult {
	var failed []FileResult
	for _, fr := range r.Files {
		if fr.Err != nil {
			failed = append(failed, fr)
		}
	}
	return failed
}

// IngestText processes raw text under an assignment and commits the
// resulting chunks. Returns the number of chunks committed.
func (p *Pipeline) IngestText(ctx context.Context, source, text string, as Assignment) (int, error) {
	chunks, err := p.processor.Process(core.Document{
		Source:       source,
		Text:         text,
		Level:        as.Level,
		Region:       as.Region,
		Province:     as.Province,
		Municipality: as.Municipality,
	})
	if err != nil {
		return 0, err
	}

	committed, err := p.router.AddChunks(ctx, chunks)
	n := 0
	for _, ids := range committed {
		n += len(ids)
	}
	return n, err
}

// IngestFile loads one document from disk, processes it, and commits its
// chunks. Returns the number of chunks committed.
func (p *Pipeline) IngestFile(ctx context.Context, path string, as Assignment) (int, error) {
	text, err := LoadFile(path)
	if err != nil {
		return 0, err
	}
	return p.IngestText(ctx, path, text, as)
}

// IngestDirectory ingests every supported file under dir, concurrently,
// all under the same assignment. Unsupported files are skipped silently;
// a file that fails to load or process is recorded in the report and the
// run continues. The report lists files in path order.
func (p *Pipeline) IngestDirectory(ctx context.Context, dir string, as Assignment, recursive bool) (*Report, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && path != dir {
				return fs.SkipDir
			}
			return nil
		}
		if SupportedFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	report := &Report{Files: make([]FileResult, len(paths))}
	var wg sync.WaitGroup
	for i, path := range paths {
		i, path := i, path
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			count, err := p.IngestFile(ctx, path, as)
			if err != nil {
				p.logger.Error("error ingesting file", "path", path, "err", err)
			}
			report.Files[i] = FileResult{Path: path, Chunks: count, Err: err}
		})
		if submitErr != nil {
			wg.Done()
			report.Files[i] = FileResult{Path: path, Err: submitErr}
		}
	}
	wg.Wait()

	sort.Slice(report.Files, func(a, b int) bool {
		return report.Files[a].Path < report.Files[b].Path
	})
	for _, fr := range report.Files {
		report.TotalChunks += fr.Chunks
	}

	p.logger.Info("directory ingestion complete",
		"dir", dir, "files", len(report.Files), "chunks", report.TotalChunks)
	return report, nil
}
