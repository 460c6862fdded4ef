package media

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// Info holds the metadata the pipeline needs from a media file.
type Info struct {
	DurationSeconds float64
	Width           int
	Height          int
	HasVideo        bool
	HasAudio        bool
	FormatName      string
	SizeBytes       int64
}

// probeStream mirrors one entry of ffprobe's streams array.
type probeStream struct {
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
}

// probeFormat mirrors ffprobe's format object.
type probeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
}

// probeOutput mirrors ffprobe's JSON document.
type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

// Prober extracts metadata from media files via ffprobe.
type Prober struct {
	ffprobePath string
	runner      Runner
}

// NewProber constructs a prober invoking the real ffprobe binary.
func NewProber() *Prober {
	return &Prober{ffprobePath: "ffprobe", runner: &ExecRunner{}}
}

// NewProberForTests constructs a prober with an injectable runner.
func NewProberForTests(ffprobePath string, runner Runner) *Prober {
	return &Prober{ffprobePath: ffprobePath, runner: runner}
}

// Probe analyzes a media file and extracts duration, dimensions, and
// stream layout.
func (p *Prober) Probe(ctx context.Context, sourcePath string) (Info, error) {
	if sourcePath == "" {
		return Info{}, fmt.Errorf("source path cannot be empty")
	}

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		sourcePath,
	}

	result, err := p.runner.Run(ctx, p.ffprobePath, args...)
	if err != nil {
		return Info{}, fmt.Errorf("ffprobe failed: %w (stderr: %s)", err, result.Stderr)
	}

	var out probeOutput
	if err := json.Unmarshal([]byte(result.Stdout), &out); err != nil {
		return Info{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := Info{FormatName: out.Format.FormatName}
	if out.Format.Duration != "" {
		duration, err := strconv.ParseFloat(out.Format.Duration, 64)
		if err != nil {
			return Info{}, fmt.Errorf("parse duration %q: %w", out.Format.Duration, err)
		}
		info.DurationSeconds = duration
	}
	if out.Format.Size != "" {
		if size, err := strconv.ParseInt(out.Format.Size, 10, 64); err == nil {
			info.SizeBytes = size
		}
	}

	for _, stream := range out.Streams {
		switch stream.CodecType {
		case "video":
			info.HasVideo = true
			if info.Width == 0 {
				info.Width = stream.Width
				info.Height = stream.Height
			}
		case "audio":
			info.HasAudio = true
		}
	}

	return info, nil
}
