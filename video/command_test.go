package video

import (
	"strings"
	"testing"
)

func indexOf(args []string, want string) int {
	for i, a := range args {
		if a == want {
			return i
		}
	}
	return -1
}

func mapTargets(args []string) []string {
	var out []string
	for i := 0; i < len(args)-1; i++ {
		if args[i] == "-map" {
			out = append(out, args[i+1])
		}
	}
	return out
}

func TestArgsPassthrough(t *testing.T) {
	args := Args(Job{VideoInput: "in.mp4", Format: "mp4", OutputPath: "/work/output.mp4"})

	if indexOf(args, "-i") < 0 || args[indexOf(args, "-i")+1] != "in.mp4" {
		t.Fatalf("missing input: %v", args)
	}
	if len(mapTargets(args)) != 0 {
		t.Fatalf("passthrough should not map streams: %v", args)
	}
	if strings.Contains(strings.Join(args, " "), "subtitles") {
		t.Fatalf("passthrough should not filter: %v", args)
	}
	if i := indexOf(args, "-f"); i < 0 || args[i+1] != "mp4" {
		t.Fatalf("missing output format: %v", args)
	}
	if indexOf(args, "/work/output.mp4") < 0 || indexOf(args, "-y") < 0 {
		t.Fatalf("missing output path or overwrite flag: %v", args)
	}
}

func TestArgsReplacementAudioUsesSecondInputOnly(t *testing.T) {
	args := Args(Job{VideoInput: "in.mp4", AudioInput: "voice.mp3", Format: "mp4", OutputPath: "out.mp4"})

	maps := mapTargets(args)
	if len(maps) != 2 || maps[0] != "0:v" || maps[1] != "1:a" {
		t.Fatalf("maps = %v; want [0:v 1:a]", maps)
	}
	for _, m := range maps {
		if strings.HasPrefix(m, "0:a") {
			t.Fatalf("primary audio must not be mapped: %v", maps)
		}
	}
	if i := indexOf(args, "-c:a"); i < 0 || args[i+1] != "aac" {
		t.Fatalf("audio must be re-encoded to aac: %v", args)
	}
	if strings.Count(strings.Join(args, " "), "-i ") != 2 {
		t.Fatalf("expected two inputs: %v", args)
	}
}

func TestArgsSubtitleFilter(t *testing.T) {
	job := Job{
		VideoInput:   "in.mp4",
		SubtitlePath: "/tmp/transcode-abc/captions.srt",
		ForceStyle:   "Alignment=2,Shadow=0,FontSize=24,PrimaryColour=0xFFFFFF,BorderStyle=0,MarginV=50,Outline=4",
		Format:       "mp4",
		OutputPath:   "/tmp/transcode-abc/output.mp4",
	}
	args := Args(job)
	joined := strings.Join(args, " ")

	i := indexOf(args, "-filter_complex")
	if i < 0 {
		t.Fatalf("expected a filter graph: %v", args)
	}
	graph := args[i+1]
	for _, want := range []string{"subtitles", "captions.srt", "force_style", "Alignment", "MarginV", "Outline"} {
		if !strings.Contains(graph, want) {
			t.Fatalf("filter graph %q missing %q", graph, want)
		}
	}
	maps := mapTargets(args)
	if len(maps) != 2 || maps[1] != "0:a?" {
		t.Fatalf("original audio should be kept when present: %v (%s)", maps, joined)
	}
}

func TestArgsSubtitlesWithReplacementAudio(t *testing.T) {
	args := Args(Job{
		VideoInput:   "in.mp4",
		AudioInput:   "voice.mp3",
		SubtitlePath: "captions.srt",
		ForceStyle:   "Alignment=6",
		Format:       "mov",
		OutputPath:   "output.mov",
	})
	maps := mapTargets(args)
	if len(maps) != 2 || maps[1] != "1:a" {
		t.Fatalf("maps = %v", maps)
	}
	if !strings.HasPrefix(maps[0], "[") {
		t.Fatalf("video should come from the filter graph: %v", maps)
	}
}
