package report

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/nao1215/linkvalidator/internal/model"
)

// ODSWriter exports the report as an OpenDocument spreadsheet with the
// same pagination and sheet layout as XLSXWriter.
type ODSWriter struct {
	baseWriter
	policy SheetPolicy
	now    func() time.Time
}

// NewODSWriter creates an ODSWriter that outputs to the given writer.
func NewODSWriter(output io.Writer, opts ...SpreadsheetOption) *ODSWriter {
	c := newSpreadsheetConfig(opts)
	return &ODSWriter{
		baseWriter: newBaseWriter(output),
		policy:     c.policy,
		now:        c.now,
	}
}

const odsMimeType = "application/vnd.oasis.opendocument.spreadsheet"

const odsManifest = `<?xml version="1.0" encoding="UTF-8"?>
<manifest:manifest xmlns:manifest="urn:oasis:names:tc:opendocument:xmlns:manifest:1.0" manifest:version="1.2">
 <manifest:file-entry manifest:full-path="/" manifest:version="1.2" manifest:media-type="application/vnd.oasis.opendocument.spreadsheet"/>
 <manifest:file-entry manifest:full-path="content.xml" manifest:media-type="text/xml"/>
</manifest:manifest>
`

const odsContentHead = `<?xml version="1.0" encoding="UTF-8"?>
<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" xmlns:table="urn:oasis:names:tc:opendocument:xmlns:table:1.0" xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0" xmlns:style="urn:oasis:names:tc:opendocument:xmlns:style:1.0" xmlns:fo="urn:oasis:names:tc:opendocument:xmlns:xsl-fo-compatible:1.0" office:version="1.2">
<office:automatic-styles>
<style:style style:name="co1" style:family="table-column"><style:table-column-properties style:column-width="2.5cm"/></style:style>
<style:style style:name="co2" style:family="table-column"><style:table-column-properties style:column-width="7cm"/></style:style>
</office:automatic-styles>
<office:body>
<office:spreadsheet>
`

const odsContentTail = `</office:spreadsheet>
</office:body>
</office:document-content>
`

// Write builds the archive in memory and writes it out. The mimetype
// entry is stored first and uncompressed as OpenDocument requires.
func (w *ODSWriter) Write(report *model.Report) (int, error) {
	if err := w.policy.Validate(); err != nil {
		return 0, err
	}

	content, err := w.content(report)
	if err != nil {
		return 0, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	mt, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		return 0, fmt.Errorf("create mimetype: %w", err)
	}
	if _, err := io.WriteString(mt, odsMimeType); err != nil {
		return 0, fmt.Errorf("write mimetype: %w", err)
	}

	files := []struct {
		name string
		data []byte
	}{
		{"META-INF/manifest.xml", []byte(odsManifest)},
		{"content.xml", content},
	}
	for _, file := range files {
		fw, err := zw.Create(file.name)
		if err != nil {
			return 0, fmt.Errorf("create %s: %w", file.name, err)
		}
		if _, err := fw.Write(file.data); err != nil {
			return 0, fmt.Errorf("write %s: %w", file.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("close archive: %w", err)
	}

	return w.output.Write(buf.Bytes())
}

// content renders content.xml with one table per sheet.
func (w *ODSWriter) content(report *model.Report) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(odsContentHead)

	savedAt := savedAtLine(w.now())
	// Rows between the "Saved at" line and the header stay empty.
	gap := w.policy.headerRow() - 2

	for _, s := range w.policy.paginate(report.Entries()) {
		buf.WriteString(`<table:table table:name="`)
		if err := xml.EscapeText(&buf, []byte(s.Title)); err != nil {
			return nil, err
		}
		buf.WriteString(`">`)
		buf.WriteString(`<table:table-column table:style-name="co1"/>`)
		buf.WriteString(`<table:table-column table:style-name="co2"/>`)
		buf.WriteString(`<table:table-column table:style-name="co1" table:number-columns-repeated="2"/>`)
		buf.WriteString("\n")

		if err := writeODSRow(&buf, []string{savedAt}); err != nil {
			return nil, err
		}
		if gap > 0 {
			fmt.Fprintf(&buf, "<table:table-row table:number-rows-repeated=\"%d\"><table:table-cell/></table:table-row>\n", gap)
		}
		if err := writeODSRow(&buf, header); err != nil {
			return nil, err
		}
		for _, e := range s.Entries {
			if err := writeODSRow(&buf, entryRecord(e)); err != nil {
				return nil, err
			}
		}
		buf.WriteString("</table:table>\n")
	}

	buf.WriteString(odsContentTail)
	return buf.Bytes(), nil
}

func writeODSRow(buf *bytes.Buffer, values []string) error {
	buf.WriteString("<table:table-row>")
	for _, v := range values {
		buf.WriteString(`<table:table-cell office:value-type="string"><text:p>`)
		if err := xml.EscapeText(buf, []byte(v)); err != nil {
			return err
		}
		buf.WriteString("</text:p></table:table-cell>")
	}
	buf.WriteString("</table:table-row>\n")
	return nil
}
