package debsources

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

// NewHandler serves conversions between the two encodings over HTTP.
func NewHandler() http.Handler {
	router := chi.NewRouter()
	router.Post("/deb822", func(w http.ResponseWriter, req *http.Request) {
		ds, err := ParseLines(req.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		out := ToStanzas(ds)
		if collapse, _ := strconv.ParseBool(req.URL.Query().Get("collapse")); collapse {
			out = Collapse(out)
		}
		writeEncoded(w, EncodingDeb822, out)
	})
	router.Post("/list", func(w http.ResponseWriter, req *http.Request) {
		ds, err := ParseStanzas(req.Body)
		if err != nil {
			writeParseError(w, err)
			return
		}
		writeEncoded(w, EncodingOneLine, ds)
	})
	router.Post("/fields", func(w http.ResponseWriter, req *http.Request) {
		var stanzas []map[string]any
		if err := json.NewDecoder(req.Body).Decode(&stanzas); err != nil {
			http.Error(w, fmt.Sprintf("decoding body: %v", err), http.StatusBadRequest)
			return
		}
		var ds []Descriptor
		for i, fields := range stanzas {
			d, err := ParseFields(fields)
			if errors.Is(err, ErrNoDescriptor) {
				log.WithFields(log.Fields{
					"stanza": i,
					"error":  err,
				}).Debug("Skipping stanza")
				continue
			}
			if err != nil {
				writeParseError(w, fmt.Errorf("stanza %d: %w", i, err))
				return
			}
			ds = append(ds, d)
		}
		writeEncoded(w, EncodingDeb822, ds)
	})
	return router
}

func writeParseError(w http.ResponseWriter, err error) {
	var fe *FieldError
	if errors.As(err, &fe) {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func writeEncoded(w http.ResponseWriter, e Encoding, ds []Descriptor) {
	var b bytes.Buffer
	if err := Write(e, &b, ds); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write(b.Bytes()); err != nil {
		log.Error(err)
	}
}
