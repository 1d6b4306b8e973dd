package docx

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maarif-labs/maarif/internal/core/domain"
)

// createTestDOCX creates a minimal valid DOCX file in memory.
func createTestDOCX(documentXML string) []byte {
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	contentTypes, _ := w.Create("[Content_Types].xml")
	contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))

	if documentXML != "" {
		doc, _ := w.Create("word/document.xml")
		doc.Write([]byte(documentXML))
	}

	w.Close()
	return buf.Bytes()
}

const sampleDocumentXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Leave policy overview.</w:t></w:r></w:p>
<w:p><w:r><w:t>Employees receive </w:t></w:r><w:r><w:t>30 days per year.</w:t></w:r></w:p>
</w:body>
</w:document>`

func TestFormats(t *testing.T) {
	assert.Equal(t, []string{"docx"}, New().Formats())
}

func TestExtract(t *testing.T) {
	data := createTestDOCX(sampleDocumentXML)

	text, err := New().Extract(data)
	require.NoError(t, err)
	assert.Equal(t, "Leave policy overview.\n\nEmployees receive 30 days per year.", text)
}

func TestExtract_ArabicContent(t *testing.T) {
	data := createTestDOCX(`<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>سياسة الإجازات السنوية</w:t></w:r></w:p>
</w:body>
</w:document>`)

	text, err := New().Extract(data)
	require.NoError(t, err)
	assert.Equal(t, "سياسة الإجازات السنوية", text)
}

func TestExtract_NotAZip(t *testing.T) {
	_, err := New().Extract([]byte("plain bytes, not an archive"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestExtract_MissingDocumentXML(t *testing.T) {
	data := createTestDOCX("")

	_, err := New().Extract(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestExtract_EmptyParagraphsSkipped(t *testing.T) {
	data := createTestDOCX(`<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p></w:p>
<w:p><w:r><w:t>only paragraph</w:t></w:r></w:p>
<w:p><w:r><w:t>  </w:t></w:r></w:p>
</w:body>
</w:document>`)

	text, err := New().Extract(data)
	require.NoError(t, err)
	assert.Equal(t, "only paragraph", text)
}

func TestExtract_OnlyEmptyParagraphs(t *testing.T) {
	data := createTestDOCX(`<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body><w:p></w:p></w:body>
</w:document>`)

	_, err := New().Extract(data)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}
