package extract

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// progressParser extracts the output timestamp from the engine's
// `-progress` key=value stream. Handles both "out_time=HH:MM:SS.micro" and
// millisecond counter forms.
type progressParser struct {
	outTimeRegex   *regexp.Regexp
	outTimeUsRegex *regexp.Regexp
}

func newProgressParser() *progressParser {
	return &progressParser{
		outTimeRegex:   regexp.MustCompile(`^out_time=\s*([0-9:\.]+)`),
		outTimeUsRegex: regexp.MustCompile(`^out_time_us=\s*(\d+)`),
	}
}

// ParseLine returns the current output position in seconds when the line
// carries one.
func (p *progressParser) ParseLine(line string) (float64, bool) {
	line = strings.TrimSpace(line)
	if line == "" || line == "progress=continue" || line == "progress=end" {
		return 0, false
	}

	if matches := p.outTimeUsRegex.FindStringSubmatch(line); len(matches) > 1 {
		if us, err := strconv.ParseInt(matches[1], 10, 64); err == nil {
			return float64(us) / 1e6, true
		}
	}

	if matches := p.outTimeRegex.FindStringSubmatch(line); len(matches) > 1 {
		if seconds := timeToSeconds(matches[1]); seconds > 0 {
			return seconds, true
		}
	}

	return 0, false
}

// timeToSeconds converts the engine's HH:MM:SS.micro clock to seconds.
func timeToSeconds(timeStr string) float64 {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 3 {
		return 0
	}

	hours, err1 := strconv.ParseFloat(parts[0], 64)
	minutes, err2 := strconv.ParseFloat(parts[1], 64)
	seconds, err3 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0
	}

	return hours*3600 + minutes*60 + seconds
}

// streamRunner starts a command and feeds each stderr line (the engine
// interleaves stats and `-progress pipe:2` output there) to onLine.
type streamRunner func(ctx context.Context, name string, args []string, onLine func(string)) error

// execStream runs the command via os/exec and scans stderr. The engine
// overwrites stats lines with carriage returns, so the scanner splits on
// both \n and \r.
func execStream(ctx context.Context, name string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, name, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}

	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(scanCRLines)
	var lastLine string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) != "" {
			lastLine = line
		}
		if onLine != nil {
			onLine(line)
		}
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && lastLine != "" {
			return errors.New(strings.TrimSpace(lastLine))
		}
		return err
	}
	return nil
}

// scanCRLines is a bufio.SplitFunc treating \r and \n both as separators.
func scanCRLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
