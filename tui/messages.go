package tui

import "captionburn/transcode"

// StartedMsg is sent once ffmpeg has been launched.
type StartedMsg struct {
	CommandLine string
}

// ProgressMsg carries a render completion percentage.
type ProgressMsg struct {
	Percent float64
}

// DoneMsg is the terminal message of a render.
type DoneMsg struct {
	Result *transcode.Result
	Err    error
}
