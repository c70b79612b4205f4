// Package web serves the browser UI for `todoreview serve`. The page itself
// is static; ui.js talks to the scan API.
package web

import (
	"bytes"
	_ "embed"
	"html/template"
	"io"
	"net/http"
	"strings"
	"sync"
)

const (
	stylesPath = "/assets/styles.css"
	scriptPath = "/assets/ui.js"
)

var (
	//go:embed templates/index.html
	indexHTML string
	indexOnce sync.Once
	indexTmpl *template.Template

	//go:embed assets/styles.css
	stylesCSS string

	//go:embed assets/ui.js
	scriptJS string
)

// Info is rendered into the page so the form starts from the server's
// configuration.
type Info struct {
	Version   string
	Roots     []string
	Tags      []string
	Preset    string
	Languages []string
	// APIPath is the scan endpoint ui.js queries.
	APIPath string
}

type indexData struct {
	Info
	StylesPath string
	ScriptPath string
	RootsValue string
	TagsValue  string
	LangsValue string
}

// Register attaches the UI page and its assets to mux.
func Register(mux *http.ServeMux, info Info) {
	if info.APIPath == "" {
		info.APIPath = "/api/scan"
	}
	data := indexData{
		Info:       info,
		StylesPath: stylesPath,
		ScriptPath: scriptPath,
		RootsValue: strings.Join(info.Roots, ","),
		TagsValue:  strings.Join(info.Tags, ","),
		LangsValue: strings.Join(info.Languages, ","),
	}
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		indexHandler(w, data)
	})
	for path, a := range assets {
		mux.HandleFunc("GET "+path, a.serve)
	}
}

// asset is an embedded file served with a long cache lifetime.
type asset struct {
	contentType string
	body        string
}

var assets = map[string]asset{
	stylesPath: {contentType: "text/css; charset=utf-8", body: stylesCSS},
	scriptPath: {contentType: "application/javascript; charset=utf-8", body: scriptJS},
}

func (a asset) serve(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", a.contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = io.WriteString(w, a.body)
}

// securityHeaders locks the page down to its own assets and the scan API.
var securityHeaders = map[string]string{
	"X-Content-Type-Options":  "nosniff",
	"Referrer-Policy":         "no-referrer",
	"X-Frame-Options":         "DENY",
	"Content-Security-Policy": "default-src 'none'; style-src 'self'; script-src 'self'; img-src 'self'; connect-src 'self'; form-action 'self'; base-uri 'none'",
}

func indexHandler(w http.ResponseWriter, data indexData) {
	var buf bytes.Buffer
	if err := loadTemplate().Execute(&buf, data); err != nil {
		http.Error(w, "template rendering failed", http.StatusInternalServerError)
		return
	}
	for k, v := range securityHeaders {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func loadTemplate() *template.Template {
	indexOnce.Do(func() {
		indexTmpl = template.Must(template.New("index").Parse(indexHTML))
	})
	return indexTmpl
}
