package media

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"sync"
)

// Codec preference lists, most desirable first. Negotiation picks the first
// entry the local engine build actually ships an encoder for.
var (
	AudioCodecPreference = []string{"libopus", "aac", "libmp3lame"}
	VideoCodecPreference = []string{"libx264", "libvpx-vp9", "mpeg4"}
)

// Negotiator resolves codec support against the local engine build. The
// encoder inventory is queried once and cached for the process lifetime.
type Negotiator struct {
	ffmpegPath string
	runner     Runner

	once     sync.Once
	loadErr  error
	encoders map[string]bool
}

// NewNegotiator constructs a negotiator over the real ffmpeg binary.
func NewNegotiator() *Negotiator {
	return &Negotiator{ffmpegPath: "ffmpeg", runner: &ExecRunner{}}
}

// NewNegotiatorForTests constructs a negotiator with an injectable runner.
func NewNegotiatorForTests(ffmpegPath string, runner Runner) *Negotiator {
	return &Negotiator{ffmpegPath: ffmpegPath, runner: runner}
}

// FirstSupported returns the first codec from prefs that the engine can
// encode with, or an error when none is available.
func (n *Negotiator) FirstSupported(ctx context.Context, prefs []string) (string, error) {
	n.once.Do(func() { n.loadEncoders(ctx) })
	if n.loadErr != nil {
		return "", n.loadErr
	}

	for _, codec := range prefs {
		if n.encoders[codec] {
			return codec, nil
		}
	}
	return "", fmt.Errorf("no supported codec among %s", strings.Join(prefs, ", "))
}

// loadEncoders parses `ffmpeg -encoders` into a lookup set.
func (n *Negotiator) loadEncoders(ctx context.Context) {
	result, err := n.runner.Run(ctx, n.ffmpegPath, "-hide_banner", "-encoders")
	if err != nil {
		n.loadErr = fmt.Errorf("query encoders: %w", err)
		return
	}

	n.encoders = parseEncoderList(result.Stdout)
	if len(n.encoders) == 0 {
		n.loadErr = fmt.Errorf("engine reported no encoders")
	}
}

// parseEncoderList extracts encoder names from ffmpeg's listing. Lines look
// like " A....D aac  AAC (Advanced Audio Coding)"; the name is the second
// field after the capability flags column.
func parseEncoderList(listing string) map[string]bool {
	encoders := make(map[string]bool)
	scanner := bufio.NewScanner(strings.NewReader(listing))
	inTable := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "------") {
			inTable = true
			continue
		}
		if !inTable || line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		encoders[fields[1]] = true
	}

	return encoders
}
