// Package plotpage renders report pages: themes, the page shell with its
// navigation menu, and embedded echarts charts.
package plotpage

import (
	"fmt"
	"html/template"
	"io"
	"time"
)

// EChartsScript is the script the page loads when it embeds charts.
const EChartsScript = "https://go-echarts.github.io/go-echarts-assets/assets/echarts.min.js"

// MenuItem is one entry of the navigation menu. Headings list their children
// as a nested list; other items link to a report.
type MenuItem struct {
	Title    string
	Href     string
	Children []MenuItem
	Current  bool
	Heading  bool
}

// Footer carries provenance shown at the bottom of every page.
type Footer struct {
	GeneratedAt   time.Time
	RepositoryURL string
	RunID         string
	Version       string
	Elapsed       time.Duration
}

// Page is one complete HTML document.
type Page struct {
	Title         string
	RepositoryURL string
	Theme         Theme
	Content       template.HTML
	Menu          []MenuItem
	Footer        Footer
	// Charts loads the echarts runtime.
	Charts bool
}

// pageData holds data for the page template.
type pageData struct {
	Page
	Style    ThemeConfig
	MenuHTML template.HTML
	Scripts  []string
}

// Render writes the page as HTML.
func (p *Page) Render(w io.Writer) error {
	menu, err := renderTemplate("menu.html", p.Menu)
	if err != nil {
		return fmt.Errorf("render menu: %w", err)
	}

	data := pageData{
		Page:     *p,
		Style:    GetThemeConfig(p.Theme),
		MenuHTML: menu,
	}

	if p.Charts {
		data.Scripts = []string{EChartsScript}
	}

	html, err := renderTemplate("page.html", data)
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	_, err = io.WriteString(w, string(html))
	if err != nil {
		return fmt.Errorf("writing page: %w", err)
	}

	return nil
}
