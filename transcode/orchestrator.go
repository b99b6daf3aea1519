package transcode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"captionburn/config"
	"captionburn/logging"
	"captionburn/storage"
	"captionburn/subtitles"
	"captionburn/types"
	"captionburn/video"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Fetcher opens remote or local inputs for staging.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) (io.ReadCloser, error)
}

// Options tune a single Transcode call.
type Options struct {
	// JobID identifies the job in logs and results; generated when empty.
	JobID string
	// Store overrides the orchestrator's default store for this job.
	Store storage.Store
	// Observer receives start and progress events.
	Observer video.Observer
}

// Result describes a stored artifact.
type Result struct {
	JobID       string `json:"job_id"`
	StorageID   string `json:"storage_id"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Orchestrator runs transcode jobs end to end.
type Orchestrator struct {
	renderer     video.Renderer
	fetcher      Fetcher
	store        storage.Store
	workRoot     string
	stageInputs  bool
	allowLocal   bool
	fetchTimeout time.Duration
	writeSRT     func(path, document string) error
	logger       *slog.Logger
}

// New creates an orchestrator. fetcher may be nil when cfg.StageInputs is false.
func New(cfg config.Render, renderer video.Renderer, fetcher Fetcher, store storage.Store, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		renderer:     renderer,
		fetcher:      fetcher,
		store:        store,
		workRoot:     cfg.WorkRoot,
		stageInputs:  cfg.StageInputs && fetcher != nil,
		allowLocal:   cfg.AllowLocalInputs,
		fetchTimeout: cfg.FetchTimeout.Duration,
		writeSRT:     subtitles.WriteSRT,
		logger:       logging.NewComponentLogger(logger, "transcode"),
	}
}

// Transcode validates req, renders it and stores the artifact.
// The job's working directory is removed on every path.
func (o *Orchestrator) Transcode(ctx context.Context, req types.TranscodeRequest, opts Options) (*Result, error) {
	jobID := opts.JobID
	if jobID == "" {
		jobID = uuid.NewString()
	}
	logger := o.logger.With(slog.String(logging.FieldJobID, jobID))

	job := req.Clone()
	if err := validate(job, o.allowLocal); err != nil {
		return nil, err
	}

	store := opts.Store
	if store == nil {
		store = o.store
	}
	if store == nil {
		return nil, newError(KindStorageUnavailable, "no artifact store configured", nil)
	}

	var forceStyle, document string
	if job.HasCaptions() {
		directives, err := subtitles.MapStyle(*job.CaptionStyle)
		if err != nil {
			if errors.Is(err, subtitles.ErrInvalidColorFormat) {
				return nil, newError(KindInvalidColorFormat, "", err)
			}
			return nil, newError(KindInvalidParameter, "", err)
		}
		forceStyle = directives.ForceStyle()

		document, err = subtitles.BuildSRT(job.Captions)
		if err != nil {
			return nil, newError(KindInvalidParameter, "", err)
		}
	}

	workDir, err := os.MkdirTemp(o.workRoot, config.WorkDirPrefix)
	if err != nil {
		return nil, newError(KindTranscodingFailed, "create working directory", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logger.Warn("failed to remove working directory", slog.String("dir", workDir), slog.String("error", err.Error()))
		}
	}()

	renderJob := video.Job{
		VideoInput: job.InputURL,
		AudioInput: job.AudioURL,
		Format:     job.OutputFormat,
		OutputPath: filepath.Join(workDir, config.OutputBaseName+"."+job.OutputFormat),
	}

	if o.stageInputs {
		if err := o.stage(ctx, workDir, &renderJob); err != nil {
			return nil, newError(KindStorageUnavailable, "", err)
		}
	}

	// an empty document renders without the subtitles filter
	if document != "" {
		srtPath := filepath.Join(workDir, config.SubtitleFileName)
		if err := o.writeSRT(srtPath, document); err != nil {
			return nil, newError(KindSubtitleWriteFailed, "", err)
		}
		renderJob.SubtitlePath = srtPath
		renderJob.ForceStyle = forceStyle
	}

	if err := o.renderer.Render(ctx, renderJob, o.observe(logger, opts.Observer)); err != nil {
		var renderErr *video.RenderError
		if errors.As(err, &renderErr) {
			return nil, newError(KindTranscodingFailed, renderErr.Detail, err)
		}
		return nil, newError(KindTranscodingFailed, "", err)
	}

	result, err := o.persist(ctx, store, renderJob.OutputPath, job.OutputFormat)
	if err != nil {
		return nil, newError(KindStorageUnavailable, "", err)
	}
	result.JobID = jobID

	logger.Info("transcode finished",
		slog.String("storage_id", result.StorageID),
		slog.String("content_type", result.ContentType),
		slog.String("size", humanize.Bytes(uint64(result.Size))),
	)
	return result, nil
}

func validate(req types.TranscodeRequest, allowLocal bool) error {
	var missing []string
	if req.InputURL == "" {
		missing = append(missing, "inputUrl")
	}
	if req.OutputFormat == "" {
		missing = append(missing, "outputFormat")
	}
	if len(missing) > 0 {
		return newError(KindMissingParameter, strings.Join(missing, ", "), nil)
	}
	if !allowLocal {
		for name, locator := range map[string]string{"inputUrl": req.InputURL, "audioUrl": req.AudioURL} {
			if locator != "" && !isRemoteLocator(locator) {
				return newError(KindInvalidParameter, fmt.Sprintf("%s must be an http(s) or s3 URL", name), nil)
			}
		}
	}
	if !isPlainExtension(req.OutputFormat) {
		return newError(KindInvalidParameter, fmt.Sprintf("outputFormat %q is not a container extension", req.OutputFormat), nil)
	}
	for i, seg := range req.Captions {
		if err := seg.Validate(); err != nil {
			return newError(KindInvalidParameter, fmt.Sprintf("captions[%d]: %v", i, err), err)
		}
	}
	return nil
}

var remoteSchemes = map[string]bool{"http": true, "https": true, "s3": true}

func isRemoteLocator(locator string) bool {
	u, err := url.Parse(locator)
	return err == nil && u.Host != "" && remoteSchemes[strings.ToLower(u.Scheme)]
}

func isPlainExtension(format string) bool {
	if len(format) > 16 {
		return false
	}
	for _, r := range format {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// stage downloads the inputs into workDir and points the job at the local copies.
func (o *Orchestrator) stage(ctx context.Context, workDir string, job *video.Job) error {
	if o.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.fetchTimeout)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(ctx)
	videoPath := filepath.Join(workDir, "input"+inputExt(job.VideoInput))
	g.Go(func() error {
		return o.download(gctx, job.VideoInput, videoPath)
	})

	var audioPath string
	if job.AudioInput != "" {
		audioPath = filepath.Join(workDir, "audio"+inputExt(job.AudioInput))
		g.Go(func() error {
			return o.download(gctx, job.AudioInput, audioPath)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	job.VideoInput = videoPath
	if audioPath != "" {
		job.AudioInput = audioPath
	}
	return nil
}

func (o *Orchestrator) download(ctx context.Context, locator, dst string) error {
	rc, err := o.fetcher.Fetch(ctx, locator)
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(dst), err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("download %s: %w", locator, err)
	}
	return out.Close()
}

// inputExt keeps the locator's extension so ffmpeg can pick a demuxer.
func inputExt(locator string) string {
	p := locator
	if u, err := url.Parse(locator); err == nil && u.Path != "" {
		p = u.Path
	}
	ext := path.Ext(p)
	if len(ext) < 2 || !isPlainExtension(ext[1:]) {
		return ""
	}
	return strings.ToLower(ext)
}

func (o *Orchestrator) observe(logger *slog.Logger, obs video.Observer) video.Observer {
	sampler := logging.NewProgressSampler(0)
	return video.ObserverFuncs{
		Start: func(commandLine string) {
			logger.Info("ffmpeg started", slog.String("command", commandLine))
			if obs != nil {
				obs.OnStart(commandLine)
			}
		},
		Progress: func(percent float64) {
			if sampler.ShouldLog(percent) {
				logger.Info("ffmpeg progress", slog.Float64("percent", percent))
			}
			if obs != nil {
				obs.OnProgress(percent)
			}
		},
	}
}

func (o *Orchestrator) persist(ctx context.Context, store storage.Store, outputPath, format string) (*Result, error) {
	contentType := detectContentType(outputPath, format)

	file, err := os.Open(outputPath)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat output: %w", err)
	}

	id, err := store.Store(ctx, file, contentType)
	if err != nil {
		return nil, fmt.Errorf("store artifact: %w", err)
	}
	location, err := store.ResolveURL(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve artifact url: %w", err)
	}
	return &Result{StorageID: id, URL: location, ContentType: contentType, Size: info.Size()}, nil
}

// detectContentType sniffs the rendered file and falls back to the requested container.
func detectContentType(outputPath, format string) string {
	mtype, err := mimetype.DetectFile(outputPath)
	if err != nil || mtype.Is("application/octet-stream") || strings.HasPrefix(mtype.String(), "text/") {
		return types.ContentTypeFor(format)
	}
	return mtype.String()
}
