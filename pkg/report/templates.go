package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	templates     *template.Template
	templatesOnce sync.Once
	errTemplates  error
)

const dateLayout = "2006-01-02 15:04:05 MST"

var funcMap = template.FuncMap{
	"inc": func(i int) int {
		return i + 1
	},
	"count": func(n int) string {
		return humanize.Comma(int64(n))
	},
	"number": func(v float64) string {
		if v == math.Trunc(v) {
			return humanize.Comma(int64(v))
		}

		return humanize.CommafWithDigits(v, 2)
	},
	"percent": func(v float64) string {
		return fmt.Sprintf("%.2f%%", v)
	},
	"average": func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	},
	"date": func(t time.Time) string {
		return t.UTC().Format(dateLayout)
	},
	"age": func(d time.Duration) string {
		days := int64(d / (24 * time.Hour))
		if days == 1 {
			return "1 day"
		}

		return humanize.Comma(days) + " days"
	},
}

func getTemplates() (*template.Template, error) {
	templatesOnce.Do(func() {
		var parseErr error

		templates, parseErr = template.New("").
			Funcs(funcMap).
			ParseFS(templateFS, "templates/*.html")
		if parseErr != nil {
			errTemplates = fmt.Errorf("parsing templates: %w", parseErr)
		}
	})

	return templates, errTemplates
}

// renderTemplate renders a named template with the given data.
func renderTemplate(name string, data any) (template.HTML, error) {
	tmpl, err := getTemplates()
	if err != nil {
		return "", fmt.Errorf("loading templates: %w", err)
	}

	var buf bytes.Buffer

	err = tmpl.ExecuteTemplate(&buf, name, data)
	if err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}

	//nolint:gosec // html/template output is already escaped.
	return template.HTML(buf.String()), nil
}

type fragmentData struct {
	Name      string
	Title     string
	Body      template.HTML
	WithLinks bool
}

// wrap surrounds a report body with its anchor, heading and back link.
func wrap(n Node, opts Options, body template.HTML) (template.HTML, error) {
	return renderTemplate("fragment.html", fragmentData{
		Name:      n.Name(),
		Title:     n.Title(),
		Body:      body,
		WithLinks: opts.WithLinks,
	})
}
