package video

import (
	"path/filepath"

	"captionburn/config"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Job is one fully resolved render: inputs, optional subtitle burn-in and output.
type Job struct {
	// VideoInput is a local path or URL for the source video.
	VideoInput string
	// AudioInput, when set, replaces the source audio entirely.
	AudioInput string
	// SubtitlePath and ForceStyle enable the subtitles filter when SubtitlePath is set.
	SubtitlePath string
	ForceStyle   string
	Format       string
	OutputPath   string
}

// BuildCommand assembles the ffmpeg graph for a job.
func BuildCommand(job Job) *ffmpeg.Stream {
	source := ffmpeg.Input(job.VideoInput)

	video := source.Video()
	if job.SubtitlePath != "" {
		kwargs := ffmpeg.KwArgs{}
		if job.ForceStyle != "" {
			kwargs["force_style"] = job.ForceStyle
		}
		video = video.Filter("subtitles", ffmpeg.Args{filepath.ToSlash(job.SubtitlePath)}, kwargs)
	}

	outputArgs := ffmpeg.KwArgs{"f": job.Format}

	var streams []*ffmpeg.Stream
	switch {
	case job.AudioInput != "":
		// Video from the primary input, audio exclusively from the replacement track
		audio := ffmpeg.Input(job.AudioInput)
		streams = []*ffmpeg.Stream{video, audio.Audio()}
		outputArgs["c:a"] = config.AudioCodec
	case job.SubtitlePath != "":
		// Keep the original audio when present
		streams = []*ffmpeg.Stream{video, source.Get("a?")}
	default:
		streams = []*ffmpeg.Stream{source}
	}

	return ffmpeg.Output(streams, job.OutputPath, outputArgs).OverWriteOutput()
}

// Args returns the ffmpeg argument list for a job, without the binary name.
func Args(job Job) []string {
	return BuildCommand(job).GetArgs()
}
