package export

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"video-transcriber/internal/domain"
)

// Type selects how much of the transcript an export carries.
type Type string

const (
	TypeFull      Type = "full"
	TypeSummary   Type = "summary"
	TypeKeyPoints Type = "keypoints"
)

// Format selects the output file format.
type Format string

const (
	FormatTxt  Format = "txt"
	FormatHTML Format = "html"
	FormatDocx Format = "docx"
)

// Exporter is the external formatting collaborator boundary.
type Exporter interface {
	Export(segments []domain.TranscriptSegment, typ Type, format Format, baseName string) (string, error)
}

// ItemResult reports one format's outcome in a multi-format export. A
// failing item never aborts its siblings.
type ItemResult struct {
	Format   Format `json:"format"`
	Filename string `json:"filename,omitempty"`
	Error    string `json:"error,omitempty"`
}

// FileExporter renders transcripts into files under a fixed output
// directory.
type FileExporter struct {
	outputDir string
	mkdirAll  func(string, os.FileMode) error
	writeFile func(string, []byte, os.FileMode) error
}

// NewFileExporter creates an exporter writing into outputDir.
func NewFileExporter(outputDir string) *FileExporter {
	return &FileExporter{
		outputDir: outputDir,
		mkdirAll:  os.MkdirAll,
		writeFile: os.WriteFile,
	}
}

// Export renders the segments and writes one file, returning its path.
func (e *FileExporter) Export(segments []domain.TranscriptSegment, typ Type, format Format, baseName string) (string, error) {
	if len(segments) == 0 {
		return "", fmt.Errorf("nothing to export: transcript is empty")
	}
	if err := e.mkdirAll(e.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	selected := selectSegments(segments, typ)
	path := filepath.Join(e.outputDir, exportFileName(baseName, typ, format))

	var payload []byte
	var err error
	switch format {
	case FormatTxt:
		payload = []byte(renderText(selected, typ))
	case FormatHTML:
		payload = []byte(renderHTML(selected, baseName, typ))
	case FormatDocx:
		payload, err = renderDocx(selected, typ)
	default:
		return "", fmt.Errorf("unsupported export format: %s", format)
	}
	if err != nil {
		return "", err
	}

	if err := e.writeFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return path, nil
}

// ExportAll renders one type into several formats, collecting per-item
// outcomes.
func (e *FileExporter) ExportAll(segments []domain.TranscriptSegment, typ Type, formats []Format, baseName string) []ItemResult {
	results := make([]ItemResult, 0, len(formats))
	for _, format := range formats {
		item := ItemResult{Format: format}
		path, err := e.Export(segments, typ, format, baseName)
		if err != nil {
			item.Error = err.Error()
		} else {
			item.Filename = path
		}
		results = append(results, item)
	}
	return results
}

// selectSegments narrows the set for summary and key-point exports.
// Summaries keep every third segment; key points keep high-confidence
// segments, falling back to every fifth when confidence is absent.
func selectSegments(segments []domain.TranscriptSegment, typ Type) []domain.TranscriptSegment {
	switch typ {
	case TypeSummary:
		var out []domain.TranscriptSegment
		for i, seg := range segments {
			if i%3 == 0 {
				out = append(out, seg)
			}
		}
		return out
	case TypeKeyPoints:
		var out []domain.TranscriptSegment
		for i, seg := range segments {
			if seg.Confidence >= 0.95 || (seg.Confidence == 0 && i%5 == 0) {
				out = append(out, seg)
			}
		}
		if len(out) == 0 {
			out = append(out, segments[0])
		}
		return out
	default:
		return segments
	}
}

// renderText produces the plain text form with timecodes.
func renderText(segments []domain.TranscriptSegment, typ Type) string {
	var b strings.Builder
	b.WriteString(headingFor(typ) + "\n\n")
	for _, seg := range segments {
		if typ == TypeKeyPoints {
			fmt.Fprintf(&b, "- [%s] %s\n", clock(seg.StartTime), seg.Text)
			continue
		}
		fmt.Fprintf(&b, "[%s - %s] %s\n", clock(seg.StartTime), clock(seg.EndTime), seg.Text)
	}
	return b.String()
}

// renderHTML produces a minimal standalone document.
func renderHTML(segments []domain.TranscriptSegment, baseName string, typ Type) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>")
	b.WriteString(html.EscapeString(baseName))
	b.WriteString("</title></head>\n<body>\n<h1>")
	b.WriteString(html.EscapeString(headingFor(typ)))
	b.WriteString("</h1>\n")
	for _, seg := range segments {
		fmt.Fprintf(&b, "<p data-start=\"%.2f\" data-end=\"%.2f\"><strong>%s</strong> %s</p>\n",
			seg.StartTime, seg.EndTime, clock(seg.StartTime), html.EscapeString(seg.Text))
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// headingFor labels the export by type.
func headingFor(typ Type) string {
	switch typ {
	case TypeSummary:
		return "Transcript Summary"
	case TypeKeyPoints:
		return "Key Points"
	default:
		return "Transcript"
	}
}

// clock formats seconds as H:MM:SS or M:SS.
func clock(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// exportFileName builds the output filename from the source media name.
func exportFileName(baseName string, typ Type, format Format) string {
	name := strings.TrimSpace(strings.TrimSuffix(baseName, filepath.Ext(baseName)))
	if name == "" || name == "." {
		name = "transcript"
	}
	if typ != TypeFull {
		name += "-" + string(typ)
	}
	return name + "." + string(format)
}
