package server

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"mime"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

type asset struct {
	data        []byte
	contentType string
}

// Assets serves the console page from memory, minified once at startup.
type Assets struct {
	files   map[string]asset
	modTime time.Time
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)
	return m
}

// LoadAssets reads every file in fsys. HTML, CSS and JavaScript are minified;
// a file that fails to minify is served as is.
func LoadAssets(fsys fs.FS) (*Assets, error) {
	m := newMinifier()
	a := &Assets{files: make(map[string]asset), modTime: time.Now()}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}

		ctype := mime.TypeByExtension(path.Ext(p))
		if ctype == "" {
			ctype = http.DetectContentType(raw)
		}
		data := raw
		mediatype, _, _ := strings.Cut(ctype, ";")
		if out, err := m.Bytes(mediatype, raw); err == nil {
			data = out
		} else if !errors.Is(err, minify.ErrNotExist) {
			log.Printf("Minify %s: %v", p, err)
		}

		a.files["/"+p] = asset{data: data, contentType: ctype}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Assets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Path
	if strings.HasSuffix(p, "/") {
		p += "index.html"
	}
	f, ok := a.files[p]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", f.contentType)
	http.ServeContent(w, r, p, a.modTime, bytes.NewReader(f.data))
}
