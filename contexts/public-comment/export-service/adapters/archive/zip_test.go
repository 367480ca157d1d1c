package archive

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

func TestZipFactoryWritesReadableEntries(t *testing.T) {
	var buf bytes.Buffer
	archive := ZipFactory{}.NewArchive(&buf)
	modified := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	w, err := archive.Create("table.csv", modified)
	require.NoError(t, err)
	_, err = io.WriteString(w, "a,b\r\n")
	require.NoError(t, err)
	require.NoError(t, archive.Add("t/d/c/letter.pdf", modified, []byte("one")))
	require.NoError(t, archive.Add("t/d/c/letter.pdf", modified, []byte("two")))
	require.NoError(t, archive.Close())

	reader, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	contents := map[string]string{}
	for _, file := range reader.File {
		rc, err := file.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		contents[file.Name] = string(data)
	}
	require.Equal(t, map[string]string{
		"table.csv":          "a,b\r\n",
		"t/d/c/letter.pdf":   "one",
		"t/d/c/letter_2.pdf": "two",
	}, contents)
}

func TestZipFactoryRejectsEmptyName(t *testing.T) {
	archive := ZipFactory{}.NewArchive(io.Discard)
	_, err := archive.Create("  ", time.Now())
	require.Error(t, err)
}
