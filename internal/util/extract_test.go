package util

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/fadilmartias/cv-batch-analyzer/internal/model"
	"github.com/gen2brain/go-fitz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const docxBody = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
    <w:p><w:r><w:t>Go,</w:t></w:r><w:r><w:tab/><w:t xml:space="preserve"> 5 years</w:t></w:r></w:p>
  </w:body>
</w:document>`

func buildDOCX(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractPlainFormatsVerbatim(t *testing.T) {
	e := NewExtractor(nil, false)

	for _, name := range []string{"cv.txt", "cv.MD", "cv.json"} {
		t.Run(name, func(t *testing.T) {
			out := e.Extract(model.Document{Name: name, Content: []byte("Python, 5 years\n")})
			require.False(t, out.Failed, out.Reason)
			assert.Equal(t, "Python, 5 years\n", out.Text)
		})
	}
}

func TestExtractRejectsInvalidUTF8(t *testing.T) {
	out := NewExtractor(nil, false).Extract(model.Document{Name: "cv.txt", Content: []byte{0xff, 0xfe, 0x00}})
	require.True(t, out.Failed)
	assert.Contains(t, out.Reason, "extraction error:")
}

func TestExtractUnsupportedFormat(t *testing.T) {
	e := NewExtractor(nil, false)

	out := e.Extract(model.Document{Name: "cv.xyz", Content: []byte("whatever")})
	require.True(t, out.Failed)
	assert.Equal(t, "unsupported format: .xyz", out.Reason)

	out = e.Extract(model.Document{Name: "noext", Content: []byte("whatever")})
	require.True(t, out.Failed)
	assert.Contains(t, out.Reason, "unsupported format")
}

func TestExtractDOCX(t *testing.T) {
	content := buildDOCX(t, map[string]string{"word/document.xml": docxBody})

	out := NewExtractor(nil, false).Extract(model.Document{Name: "cv.docx", Content: content})
	require.False(t, out.Failed, out.Reason)
	assert.Equal(t, "Jane Doe\nGo,\t 5 years", out.Text)
}

func TestExtractDOCXMissingBody(t *testing.T) {
	content := buildDOCX(t, map[string]string{"word/styles.xml": "<styles/>"})

	out := NewExtractor(nil, false).Extract(model.Document{Name: "cv.docx", Content: content})
	require.True(t, out.Failed)
	assert.Contains(t, out.Reason, "word/document.xml")
}

func TestExtractMalformedFilesAreData(t *testing.T) {
	e := NewExtractor(nil, false)

	for _, name := range []string{"broken.docx", "broken.pdf"} {
		t.Run(name, func(t *testing.T) {
			out := e.Extract(model.Document{Name: name, Content: []byte("definitely not a real file")})
			require.True(t, out.Failed)
			assert.Contains(t, out.Reason, "extraction error:")
		})
	}
}

func TestExtractDOCXSkipsTabStopDefinitions(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p>
      <w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/><w:tab w:val="left" w:pos="1440"/></w:tabs></w:pPr>
      <w:r><w:t>Jane Doe</w:t></w:r>
    </w:p>
    <w:p>
      <w:pPr><w:tabs><w:tab w:val="right" w:pos="9000"/></w:tabs></w:pPr>
      <w:r><w:t>Backend Engineer</w:t></w:r><w:r><w:tab/><w:t>2019</w:t></w:r>
    </w:p>
  </w:body>
</w:document>`
	content := buildDOCX(t, map[string]string{"word/document.xml": body})

	out := NewExtractor(nil, false).Extract(model.Document{Name: "cv.docx", Content: content})
	require.False(t, out.Failed, out.Reason)
	assert.Equal(t, "Jane Doe\nBackend Engineer\t2019", out.Text)
}

// buildPDF writes a minimal PDF with one Helvetica text line per page.
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()
	var (
		buf     bytes.Buffer
		offsets []int
	)
	object := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	kids := make([]string, 0, len(pages))
	for i := range pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", 4+2*i))
	}
	object("<< /Type /Catalog /Pages 2 0 R >>")
	object(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	object("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	for i, text := range pages {
		object(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		stream := fmt.Sprintf("BT /F1 24 Tf 72 700 Td (%s) Tj ET", text)
		object(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func TestExtractPDFJoinsPagesWithoutSeparator(t *testing.T) {
	content := buildPDF(t, "Jane Doe Backend", "Go and Postgres")

	out := NewExtractor(nil, false).Extract(model.Document{Name: "cv.pdf", Content: content})
	require.False(t, out.Failed, out.Reason)
	assert.Contains(t, out.Text, "Jane Doe Backend")
	assert.Contains(t, out.Text, "Go and Postgres")

	doc, err := fitz.NewFromMemory(content)
	require.NoError(t, err)
	defer doc.Close()
	require.Equal(t, 2, doc.NumPage())

	first, err := doc.Text(0)
	require.NoError(t, err)
	second, err := doc.Text(1)
	require.NoError(t, err)
	assert.Equal(t, first+second, out.Text)
	assert.Less(t, strings.Index(out.Text, "Jane Doe"), strings.Index(out.Text, "Go and Postgres"))
}
