package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cesargomez89/strume/internal/config"
	"github.com/cesargomez89/strume/internal/constants"
	"github.com/cesargomez89/strume/internal/domain"
	"github.com/cesargomez89/strume/internal/logger"
	"github.com/cesargomez89/strume/internal/metadata"
	"github.com/cesargomez89/strume/internal/progress"
	"github.com/cesargomez89/strume/internal/separation"
	"github.com/cesargomez89/strume/internal/storage"
	"github.com/cesargomez89/strume/internal/store"
	"github.com/cesargomez89/strume/internal/tagging"
	"github.com/cesargomez89/strume/internal/worker"
)

// Transcoder converts a WAV artifact into a stored format.
type Transcoder interface {
	Transcode(ctx context.Context, src, dest, format string) error
}

// SeparateRequest is one upload to strip vocals from.
type SeparateRequest struct {
	Upload   io.Reader
	Filename string
	// TaskID is generated when empty.
	TaskID string
	Owner  string
	Title  string
	Artist string
	Genre  string
	Keep   bool
}

// SeparateResult points at the finished artifact. The caller must call
// Finish once the artifact has been delivered or abandoned.
type SeparateResult struct {
	finish       func()
	TaskID       string
	Path         string
	DownloadName string
	StoredName   string
	once         sync.Once
}

// Finish deletes the temporary input and output, then marks the task
// complete. Calls after the first are no-ops.
func (r *SeparateResult) Finish() {
	r.once.Do(r.finish)
}

type SeparationService struct {
	Runner       *separation.Runner
	Pool         *worker.Pool
	Registry     *progress.Registry
	Repo         *store.DB
	Library      *metadata.Store
	Transcoder   Transcoder
	Logger       *logger.Logger
	WorkDir      string
	StoredDir    string
	StoredFormat string
	now          func() time.Time
}

func NewSeparationService(
	cfg *config.Config,
	runner *separation.Runner,
	pool *worker.Pool,
	registry *progress.Registry,
	repo *store.DB,
	library *metadata.Store,
	transcoder Transcoder,
	log *logger.Logger,
) *SeparationService {
	if log == nil {
		log = logger.Default()
	}
	return &SeparationService{
		Runner:       runner,
		Pool:         pool,
		Registry:     registry,
		Repo:         repo,
		Library:      library,
		Transcoder:   transcoder,
		Logger:       log.WithComponent("separation_service"),
		WorkDir:      cfg.WorkDir,
		StoredDir:    cfg.StoredDir,
		StoredFormat: cfg.StoredFormat,
		now:          time.Now,
	}
}

// Separate runs one job to completion and returns the artifact to stream.
// A task id that is still live is rejected with domain.ErrTaskInUse. Every
// other failure leaves the task at -1, removes what the job wrote and
// returns a *domain.SeparationError.
func (s *SeparationService) Separate(ctx context.Context, req SeparateRequest) (*SeparateResult, error) {
	taskID := req.TaskID
	if taskID == "" {
		taskID = uuid.New().String()
	}
	if err := s.Registry.Claim(taskID); err != nil {
		return nil, err
	}
	log := s.Logger.WithTask(taskID)

	job := &job{svc: s, log: log, taskID: taskID}

	job.inputPath = filepath.Join(s.WorkDir, storage.UploadName(req.Filename))
	if _, err := storage.WriteStream(job.inputPath, req.Upload); err != nil {
		return nil, job.fail(fmt.Errorf("%w: save upload: %v", domain.ErrIO, err))
	}

	s.record(log, s.Repo.CreateSeparation(&domain.Separation{
		ID:        taskID,
		InputName: req.Filename,
		Owner:     req.Owner,
	}))
	log.Info("Separation started", "input", req.Filename, "keep", req.Keep)

	err := s.Pool.Do(ctx, func(jobCtx context.Context) error {
		out, runErr := s.Runner.Run(jobCtx, taskID, job.inputPath, s.WorkDir)
		job.outputPath = out
		return runErr
	})
	if err != nil {
		return nil, job.fail(err)
	}
	s.record(log, s.Repo.UpdateSeparationProgress(taskID, domain.ProgressSaved))

	if req.Keep {
		if err := job.keep(ctx, req); err != nil {
			return nil, job.fail(err)
		}
	}
	s.record(log, s.Repo.SetSeparationOutput(taskID, filepath.Base(job.outputPath), job.storedName))

	return &SeparateResult{
		TaskID:       taskID,
		Path:         job.outputPath,
		DownloadName: storage.DownloadName(req.Filename),
		StoredName:   job.storedName,
		finish:       job.finish,
	}, nil
}

// record logs history write failures; the history is an audit trail and
// never fails a job.
func (s *SeparationService) record(log *logger.Logger, err error) {
	if err != nil {
		log.Warn("Failed to update separation history", "error", err)
	}
}

type job struct {
	svc        *SeparationService
	log        *logger.Logger
	taskID     string
	inputPath  string
	outputPath string
	storedPath string
	storedName string
}

// keep writes the durable copy, tags it and then records it for the owner.
func (j *job) keep(ctx context.Context, req SeparateRequest) error {
	s := j.svc
	format := s.StoredFormat
	if format == "" {
		format = constants.FormatWAV
	}

	j.storedName = storage.StoredName(s.now(), format)
	storedPath := filepath.Join(s.StoredDir, j.storedName)

	if format == constants.FormatWAV {
		if err := storage.CopyFile(j.outputPath, storedPath); err != nil {
			return fmt.Errorf("%w: store copy: %v", domain.ErrIO, err)
		}
	} else {
		if s.Transcoder == nil {
			return fmt.Errorf("%w: no transcoder for %s", domain.ErrIO, format)
		}
		if err := s.Transcoder.Transcode(context.WithoutCancel(ctx), j.outputPath, storedPath, format); err != nil {
			return fmt.Errorf("%w: store %s copy: %v", domain.ErrIO, format, err)
		}
	}
	j.storedPath = storedPath

	info := domain.TrackInfo{Title: req.Title, Artist: req.Artist, Genre: req.Genre}
	if err := tagging.TagFile(storedPath, info); err != nil {
		j.log.Warn("Failed to tag stored file", "file", j.storedName, "error", err)
	}

	if req.Owner == "" {
		j.log.Info("Stored instrumental without owner", "file", j.storedName)
		return nil
	}

	record := domain.FileRecord{
		Filename: j.storedName,
		Title:    req.Title,
		Artist:   req.Artist,
		Genre:    req.Genre,
	}
	record.Normalize()
	if err := s.Library.Append(req.Owner, record); err != nil {
		return err
	}
	j.log.WithOwner(req.Owner).Info("Stored instrumental", "file", j.storedName)
	return nil
}

func (j *job) fail(cause error) error {
	s := j.svc
	s.Registry.Set(j.taskID, domain.ProgressFailed)

	j.remove(j.inputPath, j.outputPath, j.storedPath)

	var sepErr *domain.SeparationError
	if !errors.As(cause, &sepErr) {
		sepErr = &domain.SeparationError{TaskID: j.taskID, Err: cause}
	}
	s.record(j.log, s.Repo.FailSeparation(j.taskID, sepErr.Err.Error()))
	j.log.Error("Separation request failed", "error", sepErr.Err)
	return sepErr
}

func (j *job) finish() {
	j.remove(j.inputPath, j.outputPath)
	j.svc.Registry.Set(j.taskID, domain.ProgressComplete)
	j.svc.record(j.log, j.svc.Repo.CompleteSeparation(j.taskID))
	j.log.Info("Separation delivered")
}

func (j *job) remove(paths ...string) {
	for _, p := range paths {
		if err := storage.RemoveFile(p); err != nil {
			j.log.Warn("Failed to remove file", "path", p, "error", err)
		}
	}
}
