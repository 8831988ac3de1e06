// Package download tracks background model artifact downloads. Each
// download gets a fresh opaque task id; callers poll the task snapshot
// until it reaches a terminal state. Task entries are never evicted.
package download

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"modelmgrd/pkg/types"
)

// FetchRequest describes one artifact fetch handed to a Fetcher.
// When Filename is empty the whole repository is fetched.
type FetchRequest struct {
	RepoID    string
	Filename  string
	TargetDir string
	CacheDir  string
	Token     string
}

// Fetcher retrieves model artifacts from a remote repository and returns
// the local path of the result. Implementations must honor ctx.
type Fetcher interface {
	Fetch(ctx context.Context, req FetchRequest) (string, error)
}

// DefaultMaxConcurrent bounds simultaneous fetches when the configured
// limit is zero.
const DefaultMaxConcurrent = 4

// initialProgress is reported once a task's fetch slot is acquired. The
// fetch itself is a single opaque call, so there is no finer-grained
// progress until it finishes.
const initialProgress = 0.1

// Tracker issues download task ids and runs each download as an
// independent background goroutine. It owns the task map exclusively.
type Tracker struct {
	fetcher   Fetcher
	modelsDir string
	cacheDir  string
	token     string
	log       zerolog.Logger

	sem     *semaphore.Weighted
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu    sync.Mutex
	tasks map[string]*types.DownloadTask
}

// TrackerConfig configures a Tracker.
type TrackerConfig struct {
	Fetcher   Fetcher
	ModelsDir string
	CacheDir  string
	Token     string
	// MaxConcurrent bounds simultaneous fetches; 0 uses DefaultMaxConcurrent.
	MaxConcurrent int
	Logger        zerolog.Logger
}

// NewTracker constructs a Tracker. Close must be called on shutdown to
// cancel in-flight fetches and join their goroutines.
func NewTracker(cfg TrackerConfig) *Tracker {
	maxc := cfg.MaxConcurrent
	if maxc <= 0 {
		maxc = DefaultMaxConcurrent
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Tracker{
		fetcher:   cfg.Fetcher,
		modelsDir: cfg.ModelsDir,
		cacheDir:  cfg.CacheDir,
		token:     cfg.Token,
		log:       cfg.Logger.With().Str("component", "download").Logger(),
		sem:       semaphore.NewWeighted(int64(maxc)),
		baseCtx:   ctx,
		cancel:    cancel,
		tasks:     make(map[string]*types.DownloadTask),
	}
}

// Start validates the config, records a new task in status=downloading and
// spawns the fetch in the background. It returns the task id immediately,
// without waiting for a fetch slot.
func (t *Tracker) Start(cfg types.ModelConfig) (string, error) {
	if cfg.RepoID == "" {
		return "", ErrInvalidConfig("repo_id is required")
	}

	id := uuid.NewString()
	t.mu.Lock()
	t.tasks[id] = &types.DownloadTask{
		ModelConfig: cfg.Clone(),
		Status:      types.DownloadDownloading,
		Progress:    0.0,
	}
	t.mu.Unlock()

	t.wg.Add(1)
	go t.run(id, cfg)

	t.log.Info().Str("download_id", id).Str("model_id", cfg.ModelID).Str("repo_id", cfg.RepoID).Msg("download started")
	return id, nil
}

// Status returns a snapshot of the task, or false for an unknown id.
func (t *Tracker) Status(id string) (types.DownloadTask, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	task, ok := t.tasks[id]
	if !ok {
		return types.DownloadTask{}, false
	}
	return task.Clone(), true
}

// Close cancels in-flight fetches and waits for their goroutines. Tasks
// interrupted by shutdown end up failed with a context error.
func (t *Tracker) Close() {
	t.cancel()
	t.wg.Wait()
}

// run is the background unit of work for one task. It must never panic
// the process: any failure lands in the task's error field.
func (t *Tracker) run(id string, cfg types.ModelConfig) {
	defer t.wg.Done()

	if err := t.sem.Acquire(t.baseCtx, 1); err != nil {
		t.fail(id, cfg, err)
		return
	}
	defer t.sem.Release(1)

	t.setProgress(id, initialProgress)

	local, err := t.fetcher.Fetch(t.baseCtx, FetchRequest{
		RepoID:    cfg.RepoID,
		Filename:  cfg.Filename,
		TargetDir: filepath.Join(t.modelsDir, cfg.ModelID),
		CacheDir:  t.cacheDir,
		Token:     t.token,
	})
	if err != nil {
		t.fail(id, cfg, err)
		return
	}

	t.mu.Lock()
	if task := t.tasks[id]; task != nil && task.Status == types.DownloadDownloading {
		task.Status = types.DownloadCompleted
		task.Progress = 1.0
		task.LocalPath = local
	}
	t.mu.Unlock()
	t.log.Info().Str("download_id", id).Str("model_id", cfg.ModelID).Str("local_path", local).Msg("download completed")
}

func (t *Tracker) fail(id string, cfg types.ModelConfig, err error) {
	t.mu.Lock()
	if task := t.tasks[id]; task != nil && task.Status == types.DownloadDownloading {
		task.Status = types.DownloadFailed
		task.Error = err.Error()
	}
	t.mu.Unlock()
	t.log.Error().Err(err).Str("download_id", id).Str("model_id", cfg.ModelID).Msg("download failed")
}

// setProgress raises the task's progress, never lowering it.
func (t *Tracker) setProgress(id string, p float64) {
	t.mu.Lock()
	if task := t.tasks[id]; task != nil && task.Status == types.DownloadDownloading && p > task.Progress {
		task.Progress = p
	}
	t.mu.Unlock()
}
