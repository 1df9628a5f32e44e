package report

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readZipFile(t *testing.T, zr *zip.Reader, name string) string {
	t.Helper()

	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer func() { _ = rc.Close() }()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(data)
	}
	t.Fatalf("%s not found in archive", name)
	return ""
}

func TestODSWriter(t *testing.T) {
	t.Parallel()

	t.Run("stores mimetype first and uncompressed", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewODSWriter(&buf, WithClock(fixedClock)).Write(createTestReport())
		require.NoError(t, err)
		assert.Equal(t, buf.Len(), n)

		zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
		require.NoError(t, err)
		require.NotEmpty(t, zr.File)

		assert.Equal(t, "mimetype", zr.File[0].Name)
		assert.Equal(t, zip.Store, zr.File[0].Method)
		assert.Equal(t, odsMimeType, readZipFile(t, zr, "mimetype"))
		assert.Contains(t, readZipFile(t, zr, "META-INF/manifest.xml"), "content.xml")
	})

	t.Run("writes sheets with escaped cells", func(t *testing.T) {
		t.Parallel()

		policy := SheetPolicy{RowsPerSheet: 3, FirstDataRow: 3}

		var buf bytes.Buffer
		_, err := NewODSWriter(&buf, WithSheetPolicy(policy), WithClock(fixedClock)).Write(createTestReport())
		require.NoError(t, err)

		zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
		require.NoError(t, err)
		content := readZipFile(t, zr, "content.xml")

		assert.Equal(t, 2, strings.Count(content, "<table:table table:name="))
		assert.Contains(t, content, `table:name="Links 1-2"`)
		assert.Contains(t, content, `table:name="Links 2-2"`)
		assert.Equal(t, 2, strings.Count(content, "Saved at: 2024-02-01 10:30:00 UTC"))
		assert.Contains(t, content, "Resources &amp; more")
		assert.Contains(t, content, "404 - Not Found")
	})

	t.Run("pads rows above the header", func(t *testing.T) {
		t.Parallel()

		policy := SheetPolicy{RowsPerSheet: 10, FirstDataRow: 5}

		var buf bytes.Buffer
		_, err := NewODSWriter(&buf, WithSheetPolicy(policy)).Write(createTestReport())
		require.NoError(t, err)

		zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
		require.NoError(t, err)
		assert.Contains(t, readZipFile(t, zr, "content.xml"), `table:number-rows-repeated="2"`)
	})
}
