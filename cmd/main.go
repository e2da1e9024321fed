package main

import (
	"bufio"
	"flag"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
	"github.com/wlcx/debsources"
)

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func logMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)
		log.WithFields(log.Fields{
			"remote": r.RemoteAddr,
			"method": r.Method,
			"url":    r.URL,
			"status": rec.status,
		}).Info("Got request")
	})
}

func must[T any](val T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return val
}

func main() {
	listenAddr := flag.String("listen", "", "Serve conversions over HTTP on this address instead of converting files")
	dir := flag.String("dir", "/etc/apt", "Directory to search for .list and .sources files")
	to := flag.String("to", "deb822", "Output encoding: list or deb822")
	collapse := flag.Bool("collapse", false, "Merge entries that differ only in type, URI or suite")
	debug := flag.Bool("debug", false, "Log skipped entries")
	flag.Parse()
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	if *listenAddr != "" {
		r := chi.NewRouter()
		r.Use(middleware.Recoverer)
		r.Use(logMiddleware)
		r.Mount("/", debsources.NewHandler())
		log.Infof("Listening on %s", *listenAddr)
		log.Fatal(http.ListenAndServe(*listenAddr, r))
	}

	enc := must(debsources.ParseEncoding(*to))
	ds := must(debsources.LoadAll(debsources.NewFileBackend(*dir)))
	log.WithFields(log.Fields{
		"dir":     *dir,
		"entries": len(ds),
	}).Info("Loaded sources")
	if enc == debsources.EncodingDeb822 {
		ds = debsources.ToStanzas(ds)
		if *collapse {
			ds = debsources.Collapse(debsources.ExpandAll(ds))
		}
	}

	out := bufio.NewWriter(os.Stdout)
	if err := debsources.Write(enc, out, ds); err != nil {
		log.Fatal(err)
	}
	if err := out.Flush(); err != nil {
		log.Fatal(err)
	}
}
