package archive

import (
	"fmt"
	"io"
	"strings"
	"time"

	"docketdesk/contexts/public-comment/export-service/ports"

	"github.com/klauspost/compress/zip"
)

// ZipFactory writes deflate-compressed zip archives.
type ZipFactory struct{}

func (ZipFactory) NewArchive(w io.Writer) ports.ArchiveWriter {
	return &zipArchive{zw: zip.NewWriter(w), names: make(map[string]int)}
}

type zipArchive struct {
	zw    *zip.Writer
	names map[string]int
}

func (a *zipArchive) Add(name string, modified time.Time, data []byte) error {
	w, err := a.Create(name, modified)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Create opens a new entry. Repeated names get a numeric suffix before the
// extension so no entry is shadowed.
func (a *zipArchive) Create(name string, modified time.Time) (io.Writer, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("zip entry name is required")
	}
	header := &zip.FileHeader{
		Name:     a.uniqueName(name),
		Method:   zip.Deflate,
		Modified: modified.UTC(),
	}
	return a.zw.CreateHeader(header)
}

func (a *zipArchive) Close() error {
	return a.zw.Close()
}

func (a *zipArchive) uniqueName(name string) string {
	count := a.names[name]
	a.names[name] = count + 1
	if count == 0 {
		return name
	}
	dot := strings.LastIndex(name, ".")
	slash := strings.LastIndex(name, "/")
	if dot <= slash+1 {
		return fmt.Sprintf("%s_%d", name, count+1)
	}
	return fmt.Sprintf("%s_%d%s", name[:dot], count+1, name[dot:])
}

var _ ports.ArchiveFactory = ZipFactory{}
