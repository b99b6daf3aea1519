package transcode

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"captionburn/config"
	"captionburn/logging"
	"captionburn/storage"
	"captionburn/types"
	"captionburn/video"
)

type fakeRenderer struct {
	jobs     []video.Job
	subtitle string
	err      error
	progress []float64
}

func (f *fakeRenderer) Render(ctx context.Context, job video.Job, obs video.Observer) error {
	f.jobs = append(f.jobs, job)
	if job.SubtitlePath != "" {
		data, err := os.ReadFile(job.SubtitlePath)
		if err != nil {
			return err
		}
		f.subtitle = string(data)
	}
	obs.OnStart("ffmpeg -i " + job.VideoInput)
	for _, p := range f.progress {
		obs.OnProgress(p)
	}
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(job.OutputPath, []byte("rendered"), 0o644)
}

type fakeStore struct {
	stored      map[string]string
	contentType string
	storeErr    error
}

func (f *fakeStore) Store(ctx context.Context, r io.Reader, contentType string) (string, error) {
	if f.storeErr != nil {
		return "", f.storeErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if f.stored == nil {
		f.stored = map[string]string{}
	}
	f.stored["artifact-1"] = string(data)
	f.contentType = contentType
	return "artifact-1", nil
}

func (f *fakeStore) ResolveURL(ctx context.Context, id string) (string, error) {
	if _, ok := f.stored[id]; !ok {
		return "", storage.ErrNotFound
	}
	return "https://cdn.example.com/" + id, nil
}

type fakeFetcher struct {
	bodies map[string]string
	err    error
}

func (f *fakeFetcher) Fetch(ctx context.Context, locator string) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.bodies[locator]
	if !ok {
		return nil, errors.New("unexpected status 404 Not Found")
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

type recorder struct {
	starts   int
	progress []float64
}

func (r *recorder) OnStart(string) { r.starts++ }
func (r *recorder) OnProgress(p float64) { r.progress = append(r.progress, p) }

func captionedRequest() types.TranscodeRequest {
	return types.TranscodeRequest{
		InputURL:     "https://cdn.example.com/in.mp4",
		OutputFormat: "mp4",
		Captions: []types.CaptionSegment{
			{Text: "Hello", Start: 0, End: 0.5, Type: types.SegmentWord},
			{Text: "world", Start: 0.5, End: 1.25, Type: types.SegmentWord},
		},
		CaptionStyle: &types.CaptionStyle{FontSize: 24, Position: types.PositionBottom, Color: "#FF8800"},
	}
}

func newTestOrchestrator(t *testing.T, renderer video.Renderer, fetcher Fetcher, store storage.Store) (*Orchestrator, string) {
	t.Helper()
	root := t.TempDir()
	cfg := config.Render{WorkRoot: root, StageInputs: fetcher != nil}
	return New(cfg, renderer, fetcher, store, logging.Discard()), root
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read %s: %v", dir, err)
	}
	if len(entries) != 0 {
		t.Fatalf("working directory left behind: %v", entries)
	}
}

func TestTranscodeBurnsCaptionsAndStores(t *testing.T) {
	renderer := &fakeRenderer{progress: []float64{10, 55, 100}}
	store := &fakeStore{}
	orch, root := newTestOrchestrator(t, renderer, nil, store)
	obs := &recorder{}

	res, err := orch.Transcode(context.Background(), captionedRequest(), Options{JobID: "job-1", Observer: obs})
	if err != nil {
		t.Fatalf("Transcode: %v", err)
	}

	if res.JobID != "job-1" || res.StorageID != "artifact-1" || res.URL != "https://cdn.example.com/artifact-1" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.ContentType != "video/mp4" || res.Size != int64(len("rendered")) {
		t.Fatalf("unexpected content type/size: %+v", res)
	}
	if store.stored["artifact-1"] != "rendered" || store.contentType != "video/mp4" {
		t.Fatalf("store got %v (%s)", store.stored, store.contentType)
	}

	job := renderer.jobs[0]
	if job.VideoInput != "https://cdn.example.com/in.mp4" {
		t.Fatalf("inputs should pass through unstaged: %q", job.VideoInput)
	}
	if filepath.Base(job.SubtitlePath) != config.SubtitleFileName || filepath.Base(job.OutputPath) != "output.mp4" {
		t.Fatalf("unexpected paths: %+v", job)
	}
	if job.ForceStyle != "Alignment=2,Shadow=0,FontSize=24,PrimaryColour=0x0088FF,BorderStyle=0,MarginV=50,Outline=4" {
		t.Fatalf("force_style = %q", job.ForceStyle)
	}
	wantSRT := "1\n00:00:00.000 --> 00:00:00.500\nHello\n\n2\n00:00:00.500 --> 00:00:01.250\nworld\n\n"
	if renderer.subtitle != wantSRT {
		t.Fatalf("subtitle document = %q", renderer.subtitle)
	}
	if obs.starts != 1 || len(obs.progress) != 3 {
		t.Fatalf("observer saw %d starts, progress %v", obs.starts, obs.progress)
	}
	assertEmptyDir(t, root)
}

func TestTranscodeValidationFailsBeforeWorkDir(t *testing.T) {
	cases := []struct {
		name string
		edit func(*types.TranscodeRequest)
		kind Kind
	}{
		{"missing input", func(r *types.TranscodeRequest) { r.InputURL = "" }, KindMissingParameter},
		{"missing format", func(r *types.TranscodeRequest) { r.OutputFormat = "  " }, KindMissingParameter},
		{"format with path", func(r *types.TranscodeRequest) { r.OutputFormat = "../mp4" }, KindInvalidParameter},
		{"bad color", func(r *types.TranscodeRequest) { r.CaptionStyle.Color = "red" }, KindInvalidColorFormat},
		{"short color", func(r *types.TranscodeRequest) { r.CaptionStyle.Color = "#FFF" }, KindInvalidColorFormat},
		{"bad position", func(r *types.TranscodeRequest) { r.CaptionStyle.Position = "left" }, KindInvalidParameter},
		{"end before start", func(r *types.TranscodeRequest) { r.Captions[0].End = -1 }, KindInvalidParameter},
		{"audio event", func(r *types.TranscodeRequest) { r.Captions[1].Type = types.SegmentAudioEvent }, KindInvalidParameter},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			renderer := &fakeRenderer{}
			orch, root := newTestOrchestrator(t, renderer, nil, &fakeStore{})
			req := captionedRequest()
			c.edit(&req)

			_, err := orch.Transcode(context.Background(), req, Options{})
			if got := KindOf(err); got != c.kind {
				t.Fatalf("kind = %q (%v); want %q", got, err, c.kind)
			}
			if StatusCode(c.kind) != http.StatusBadRequest {
				t.Fatalf("status = %d; want 400", StatusCode(c.kind))
			}
			if len(renderer.jobs) != 0 {
				t.Fatal("renderer must not run")
			}
			assertEmptyDir(t, root)
		})
	}
}

func TestTranscodeWithoutCaptionsSkipsFilter(t *testing.T) {
	renderer := &fakeRenderer{}
	orch, root := newTestOrchestrator(t, renderer, nil, &fakeStore{})

	req := captionedRequest()
	req.CaptionStyle = nil
	if _, err := orch.Transcode(context.Background(), req, Options{}); err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if renderer.jobs[0].SubtitlePath != "" {
		t.Fatal("captions without a style must not render a filter")
	}

	req = captionedRequest()
	req.Captions = []types.CaptionSegment{}
	if _, err := orch.Transcode(context.Background(), req, Options{}); err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if renderer.jobs[1].SubtitlePath != "" {
		t.Fatal("an empty caption list must not render a filter")
	}
	assertEmptyDir(t, root)
}

func TestTranscodeRendererFailure(t *testing.T) {
	renderer := &fakeRenderer{err: &video.RenderError{Detail: "ffmpeg exited with code 1: Invalid data found"}}
	store := &fakeStore{}
	orch, root := newTestOrchestrator(t, renderer, nil, store)

	_, err := orch.Transcode(context.Background(), captionedRequest(), Options{})
	var jobErr *Error
	if !errors.As(err, &jobErr) || jobErr.Kind != KindTranscodingFailed {
		t.Fatalf("err = %v; want transcoding_failed", err)
	}
	if !strings.Contains(jobErr.Detail, "Invalid data found") {
		t.Fatalf("detail = %q", jobErr.Detail)
	}
	if StatusCode(jobErr.Kind) != http.StatusInternalServerError {
		t.Fatal("transcoding failures map to 500")
	}
	if len(store.stored) != 0 {
		t.Fatal("nothing may be stored after a failed render")
	}
	assertEmptyDir(t, root)
}

func TestTranscodeCanceled(t *testing.T) {
	renderer := &fakeRenderer{err: &video.RenderError{Detail: "render canceled: context canceled", Err: context.Canceled}}
	orch, root := newTestOrchestrator(t, renderer, nil, &fakeStore{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := orch.Transcode(ctx, captionedRequest(), Options{})
	if KindOf(err) != KindTranscodingFailed || !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	assertEmptyDir(t, root)
}

func TestTranscodeStorageFailure(t *testing.T) {
	orch, root := newTestOrchestrator(t, &fakeRenderer{}, nil, &fakeStore{storeErr: errors.New("bucket unreachable")})

	_, err := orch.Transcode(context.Background(), captionedRequest(), Options{})
	if KindOf(err) != KindStorageUnavailable {
		t.Fatalf("err = %v; want storage_unavailable", err)
	}
	assertEmptyDir(t, root)
}

func TestTranscodeSubtitleWriteFailure(t *testing.T) {
	renderer := &fakeRenderer{}
	orch, root := newTestOrchestrator(t, renderer, nil, &fakeStore{})
	var written string
	orch.writeSRT = func(path, document string) error {
		written = path
		if _, err := os.Stat(filepath.Dir(path)); err != nil {
			t.Errorf("working directory missing during subtitle write: %v", err)
		}
		return errors.New("no space left on device")
	}

	_, err := orch.Transcode(context.Background(), captionedRequest(), Options{})
	if KindOf(err) != KindSubtitleWriteFailed {
		t.Fatalf("err = %v; want subtitle_write_failed", err)
	}
	if StatusCode(KindOf(err)) != http.StatusInternalServerError {
		t.Fatalf("status = %d; want 500", StatusCode(KindOf(err)))
	}
	if filepath.Base(written) != config.SubtitleFileName {
		t.Fatalf("wrote %q; want %s", written, config.SubtitleFileName)
	}
	if len(renderer.jobs) != 0 {
		t.Fatalf("renderer ran %d times after subtitle failure", len(renderer.jobs))
	}
	assertEmptyDir(t, root)
}

func TestTranscodeValidatesBeforeStoreLookup(t *testing.T) {
	orch, root := newTestOrchestrator(t, &fakeRenderer{}, nil, nil)

	req := captionedRequest()
	req.InputURL = ""
	_, err := orch.Transcode(context.Background(), req, Options{})
	if KindOf(err) != KindMissingParameter {
		t.Fatalf("err = %v; want missing_parameter", err)
	}

	_, err = orch.Transcode(context.Background(), captionedRequest(), Options{})
	if KindOf(err) != KindStorageUnavailable {
		t.Fatalf("err = %v; want storage_unavailable without a store", err)
	}
	assertEmptyDir(t, root)
}

func TestTranscodeLocalInputsNeedOptIn(t *testing.T) {
	cases := []struct {
		name string
		edit func(*types.TranscodeRequest)
	}{
		{"bare path", func(r *types.TranscodeRequest) { r.InputURL = "/etc/secret.mp4" }},
		{"file url", func(r *types.TranscodeRequest) { r.InputURL = "file:///srv/media/in.mp4" }},
		{"local audio", func(r *types.TranscodeRequest) { r.AudioURL = "../voice.mp3" }},
		{"ffmpeg protocol", func(r *types.TranscodeRequest) { r.InputURL = "concat:/a.mp4|/b.mp4" }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			renderer := &fakeRenderer{}
			orch, root := newTestOrchestrator(t, renderer, nil, &fakeStore{})
			req := captionedRequest()
			c.edit(&req)

			_, err := orch.Transcode(context.Background(), req, Options{})
			if KindOf(err) != KindInvalidParameter {
				t.Fatalf("err = %v; want invalid_parameter", err)
			}
			if len(renderer.jobs) != 0 {
				t.Fatal("renderer ran for a rejected locator")
			}
			assertEmptyDir(t, root)
		})
	}

	renderer := &fakeRenderer{}
	root := t.TempDir()
	orch := New(config.Render{WorkRoot: root, AllowLocalInputs: true}, renderer, nil, &fakeStore{}, logging.Discard())
	req := captionedRequest()
	req.InputURL = "/srv/media/in.mp4"
	if _, err := orch.Transcode(context.Background(), req, Options{}); err != nil {
		t.Fatalf("local input with opt-in: %v", err)
	}
	if renderer.jobs[0].VideoInput != "/srv/media/in.mp4" {
		t.Fatalf("video input = %q", renderer.jobs[0].VideoInput)
	}
}

func TestTranscodeStagesInputs(t *testing.T) {
	renderer := &fakeRenderer{}
	fetcher := &fakeFetcher{bodies: map[string]string{
		"https://cdn.example.com/in.mp4":      "video",
		"https://cdn.example.com/voice.mp3?x": "audio",
	}}
	orch, root := newTestOrchestrator(t, renderer, fetcher, &fakeStore{})

	req := captionedRequest()
	req.AudioURL = "https://cdn.example.com/voice.mp3?x"
	if _, err := orch.Transcode(context.Background(), req, Options{}); err != nil {
		t.Fatalf("Transcode: %v", err)
	}

	job := renderer.jobs[0]
	if filepath.Base(job.VideoInput) != "input.mp4" || filepath.Base(job.AudioInput) != "audio.mp3" {
		t.Fatalf("inputs not staged: %+v", job)
	}
	if filepath.Dir(job.VideoInput) != filepath.Dir(job.OutputPath) {
		t.Fatal("staged inputs must live in the job working directory")
	}
	assertEmptyDir(t, root)
}

func TestTranscodeStagingFailure(t *testing.T) {
	renderer := &fakeRenderer{}
	orch, root := newTestOrchestrator(t, renderer, &fakeFetcher{err: errors.New("connection refused")}, &fakeStore{})

	_, err := orch.Transcode(context.Background(), captionedRequest(), Options{})
	if KindOf(err) != KindStorageUnavailable {
		t.Fatalf("err = %v; want storage_unavailable", err)
	}
	if len(renderer.jobs) != 0 {
		t.Fatal("renderer must not run without inputs")
	}
	assertEmptyDir(t, root)
}

func TestTranscodeOptionsStoreOverride(t *testing.T) {
	defaultStore := &fakeStore{}
	override := &fakeStore{}
	orch, _ := newTestOrchestrator(t, &fakeRenderer{}, nil, defaultStore)

	if _, err := orch.Transcode(context.Background(), captionedRequest(), Options{Store: override}); err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if len(defaultStore.stored) != 0 || len(override.stored) != 1 {
		t.Fatal("per-job store was not used")
	}
}

func TestTranscodeDoesNotMutateRequest(t *testing.T) {
	orch, _ := newTestOrchestrator(t, &fakeRenderer{}, nil, &fakeStore{})
	req := captionedRequest()
	req.InputURL = " https://cdn.example.com/in.mp4 "

	if _, err := orch.Transcode(context.Background(), req, Options{}); err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if req.InputURL != " https://cdn.example.com/in.mp4 " || req.CaptionStyle.FontSize != 24 {
		t.Fatal("caller's request was modified")
	}
}

func TestErrorMessages(t *testing.T) {
	err := newError(KindMissingParameter, "inputUrl", nil)
	if err.Error() != "Missing required parameters: inputUrl" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if KindOf(errors.New("plain")) != "" {
		t.Fatal("plain errors carry no kind")
	}
}
