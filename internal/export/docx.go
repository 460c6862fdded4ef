package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"video-transcriber/internal/domain"
)

// Minimal OOXML scaffolding: a docx is a zip with a content-types manifest,
// a package relationship, and one word/document.xml part.

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>
`

const docxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>
`

// renderDocx builds the docx archive in memory.
func renderDocx(segments []domain.TranscriptSegment, typ Type) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRels},
		{"word/document.xml", renderDocxDocument(segments, typ)},
	}
	for _, part := range parts {
		f, err := w.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("create docx part %s: %w", part.name, err)
		}
		if _, err := f.Write([]byte(part.content)); err != nil {
			return nil, fmt.Errorf("write docx part %s: %w", part.name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize docx archive: %w", err)
	}
	return buf.Bytes(), nil
}

// renderDocxDocument emits the WordprocessingML body: a heading paragraph
// followed by one paragraph per segment.
func renderDocxDocument(segments []domain.TranscriptSegment, typ Type) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	writeParagraph(&b, headingFor(typ))
	for _, seg := range segments {
		writeParagraph(&b, fmt.Sprintf("[%s - %s] %s", clock(seg.StartTime), clock(seg.EndTime), seg.Text))
	}

	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

// writeParagraph appends one escaped w:p run.
func writeParagraph(b *strings.Builder, text string) {
	var escaped bytes.Buffer
	_ = xml.EscapeText(&escaped, []byte(text))
	b.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
	b.Write(escaped.Bytes())
	b.WriteString(`</w:t></w:r></w:p>`)
}
