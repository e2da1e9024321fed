package debsources

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// A backend to search for sources files in
type Backend interface {
	GetFiles() ([]SourceFile, error)
}

// An abstract interface for reading a sources file. This could be coming
// from the local fs, an archive, etc...
type SourceFile interface {
	GetReader() (io.ReadCloser, error)
	GetName() string
	Encoding() Encoding
}

// LoadAll parses every file the backend offers, in the order returned.
func LoadAll(be Backend) ([]Descriptor, error) {
	files, err := be.GetFiles()
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	var out []Descriptor
	for _, f := range files {
		ds, err := loadFile(f)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", f.GetName(), err)
		}
		log.WithFields(log.Fields{
			"file":     f.GetName(),
			"encoding": f.Encoding(),
			"entries":  len(ds),
		}).Debug("Loaded sources file")
		out = append(out, ds...)
	}
	return out, nil
}

func loadFile(f SourceFile) ([]Descriptor, error) {
	rd, err := f.GetReader()
	if err != nil {
		return nil, err
	}
	defer rd.Close()
	return Parse(f.Encoding(), rd)
}
