package debsources

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	log "github.com/sirupsen/logrus"
)

// A sources file existing on the local filesystem
type fsSourceFile struct {
	path     string
	encoding Encoding
}

func (f fsSourceFile) GetReader() (io.ReadCloser, error) {
	return os.Open(f.path)
}

func (f fsSourceFile) GetName() string {
	_, name := filepath.Split(f.path)
	return name
}

func (f fsSourceFile) Encoding() Encoding {
	return f.encoding
}

type FileBackend struct {
	path string
}

func NewFileBackend(path string) FileBackend {
	return FileBackend{path}
}

// GetFiles finds every *.list and *.sources file under the backend root,
// sorted by path.
func (fb FileBackend) GetFiles() ([]SourceFile, error) {
	var files []fsSourceFile
	err := fs.WalkDir(os.DirFS(fb.path), ".", func(dirpath string, dir fs.DirEntry, err error) error {
		if err != nil {
			log.WithFields(log.Fields{
				"path":  dirpath,
				"error": err,
			}).Warn("Error scanning for sources files")
			return nil
		}
		if dir.IsDir() {
			return nil
		}
		if enc, ok := EncodingForPath(dir.Name()); ok {
			files = append(files, fsSourceFile{
				path:     filepath.Join(fb.path, dirpath),
				encoding: enc,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].path < files[j].path })
	out := make([]SourceFile, len(files))
	for i, f := range files {
		out[i] = f
	}
	log.Debugf("got files: %v", files)
	return out, nil
}
