package templates

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/a-h/templ"
)

//go:embed *.html
var files embed.FS

var pages = template.Must(template.ParseFS(files, "*.html"))

// Cell is one table cell, Invalid marks a value that is not a number
type Cell struct {
	Text    string
	Invalid bool
}

type TableRow struct {
	Day     int
	Cells   []Cell
	Invalid bool
}

type Streak struct {
	Count        int
	CanIncrement bool
	Countdown    string
	LastAction   string
}

type Dashboard struct {
	FileName    string
	LoadedAt    string
	UploadError string
	MaxUploadMB int
	Headers     []string
	Rows        []TableRow
	InvalidRows int
	Charts      []template.HTML
	Streak      Streak
}

func (d Dashboard) HasData() bool {
	return d.FileName != ""
}

func render(name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return pages.ExecuteTemplate(w, name, data)
	})
}

func Index(data Dashboard) templ.Component {
	return render("index.html", data)
}

func Error(message string) templ.Component {
	return render("error.html", message)
}
