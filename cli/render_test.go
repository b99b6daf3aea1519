package cli

import (
	"os"
	"path/filepath"
	"testing"

	"captionburn/types"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRenderRequestFromFlags(t *testing.T) {
	captions := writeFile(t, "captions.json", `[{"text":"hi","start":0,"end":1,"type":"word","speaker_id":"s"}]`)
	opts := renderOptions{
		input:        "in.mp4",
		audio:        "voice.mp3",
		captionsFile: captions,
		output:       "/tmp/out.webm",
		fontSize:     30,
		position:     "top",
		color:        "#00FF00",
	}

	req, err := opts.request()
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if req.InputURL != "in.mp4" || req.AudioURL != "voice.mp3" || req.OutputFormat != "webm" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if len(req.Captions) != 1 || req.CaptionStyle.Position != types.PositionTop || req.CaptionStyle.FontSize != 30 {
		t.Fatalf("captions not applied: %+v %+v", req.Captions, req.CaptionStyle)
	}
}

func TestRenderRequestFromFile(t *testing.T) {
	path := writeFile(t, "req.json", `{"inputUrl":"https://cdn/in.mp4","outputFormat":"mov","captions":[],"captionSettings":{"fontSize":20,"position":"middle","color":"#FFFFFF"}}`)

	req, err := renderOptions{requestFile: path, output: "out.mp4", format: "mp4"}.request()
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if req.InputURL != "https://cdn/in.mp4" || req.OutputFormat != "mp4" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if !req.HasCaptions() {
		t.Fatal("style from request file was dropped")
	}
}

func TestRenderRequestWithoutCaptions(t *testing.T) {
	req, err := renderOptions{input: "in.mp4", output: "out.mp4"}.request()
	if err != nil {
		t.Fatal(err)
	}
	if req.HasCaptions() || req.CaptionStyle != nil {
		t.Fatalf("no captions expected: %+v", req)
	}
}

func TestRootCommandTree(t *testing.T) {
	root := NewRootCommand()
	for _, name := range []string{"serve", "consume", "render"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("missing %s command: %v", name, err)
		}
	}
}
