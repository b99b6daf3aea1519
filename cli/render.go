package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"captionburn/storage"
	"captionburn/transcode"
	"captionburn/tui"
	"captionburn/types"
	"captionburn/video"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type renderOptions struct {
	requestFile  string
	input        string
	audio        string
	captionsFile string
	output       string
	format       string
	fontSize     int
	position     string
	color        string
	noTUI        bool
}

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one captioned video to a local file",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			cfg, _, err := ctx.ensure()
			if err != nil {
				return err
			}
			cfg.Render.AllowLocalInputs = true

			s, err := ctx.buildServices(runCtx, storage.FileSink{Path: opts.output})
			if err != nil {
				return err
			}

			render := func(ctx context.Context, obs video.Observer) (*transcode.Result, error) {
				return s.orchestrator.Transcode(ctx, req, transcode.Options{Observer: obs})
			}

			var res *transcode.Result
			if opts.noTUI {
				res, err = render(runCtx, nil)
			} else {
				res, err = tui.Run(runCtx, "captionburn render", render)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, %s)\n", res.URL, res.ContentType, humanize.Bytes(uint64(res.Size)))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.requestFile, "request", "", "JSON file with a full transcode request")
	flags.StringVarP(&opts.input, "input", "i", "", "Source video path or URL")
	flags.StringVar(&opts.audio, "audio", "", "Replacement audio path or URL")
	flags.StringVar(&opts.captionsFile, "captions", "", "JSON file with caption segments")
	flags.StringVarP(&opts.output, "output", "o", "", "Output file path")
	flags.StringVar(&opts.format, "format", "", "Output container (defaults to the output extension)")
	flags.IntVar(&opts.fontSize, "font-size", 24, "Caption font size")
	flags.StringVar(&opts.position, "position", string(types.PositionBottom), "Caption position: top, middle or bottom")
	flags.StringVar(&opts.color, "color", "#FFFFFF", "Caption color as #RRGGBB")
	flags.BoolVar(&opts.noTUI, "no-tui", false, "Disable the interactive progress view")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

// request assembles the transcode request from a request file or individual flags.
func (o renderOptions) request() (types.TranscodeRequest, error) {
	var req types.TranscodeRequest

	if o.requestFile != "" {
		data, err := os.ReadFile(o.requestFile)
		if err != nil {
			return req, fmt.Errorf("read request: %w", err)
		}
		if err := json.Unmarshal(data, &req); err != nil {
			return req, fmt.Errorf("parse request: %w", err)
		}
	} else {
		req.InputURL = o.input
		req.AudioURL = o.audio
		if o.captionsFile != "" {
			data, err := os.ReadFile(o.captionsFile)
			if err != nil {
				return req, fmt.Errorf("read captions: %w", err)
			}
			if err := json.Unmarshal(data, &req.Captions); err != nil {
				return req, fmt.Errorf("parse captions: %w", err)
			}
			req.CaptionStyle = &types.CaptionStyle{
				FontSize: o.fontSize,
				Position: types.Position(o.position),
				Color:    o.color,
			}
		}
	}

	if o.format != "" {
		req.OutputFormat = o.format
	}
	if req.OutputFormat == "" {
		req.OutputFormat = strings.TrimPrefix(filepath.Ext(o.output), ".")
	}
	return req, nil
}
