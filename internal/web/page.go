package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"strings"

	"moviematch/internal/recommend"
)

//go:embed templates/*.tmpl templates/*.css
var templateFS embed.FS

type pageView struct {
	Theme      string
	OtherTheme string
	Titles     []string
	Selected   string
	Submitted  bool
	Notices    []recommend.Notice
	Result     *recommend.Result
	CustomCSS  template.CSS
}

type pageRenderer struct {
	page   *template.Template
	themes map[string]template.CSS
}

func newPageRenderer() *pageRenderer {
	page := template.Must(template.ParseFS(templateFS, "templates/page.html.tmpl"))

	themes := make(map[string]template.CSS, 2)
	for _, name := range []string{"light", "dark"} {
		data, err := templateFS.ReadFile("templates/" + name + ".css")
		if err != nil {
			panic(fmt.Sprintf("embedded theme %s missing: %v", name, err))
		}
		themes[name] = template.CSS(data)
	}
	return &pageRenderer{page: page, themes: themes}
}

type renderData struct {
	pageView
	ThemeCSS template.CSS
}

func (p *pageRenderer) render(w io.Writer, view pageView) error {
	return p.page.Execute(w, renderData{pageView: view, ThemeCSS: p.themes[view.Theme]})
}

func normalizeTheme(theme string) string {
	if strings.EqualFold(strings.TrimSpace(theme), "dark") {
		return "dark"
	}
	return "light"
}

func otherTheme(theme string) string {
	if theme == "dark" {
		return "light"
	}
	return "dark"
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// customStylesheet reads the operator-supplied CSS. A missing file becomes a
// warning notice rather than an error.
func (s *Server) customStylesheet() (template.CSS, *recommend.Notice) {
	if s.stylesheetPath == "" {
		return "", nil
	}
	data, err := os.ReadFile(s.stylesheetPath)
	if err == nil {
		return template.CSS(data), nil
	}
	message := fmt.Sprintf("CSS file '%s' could not be read.", s.stylesheetPath)
	if errors.Is(err, fs.ErrNotExist) {
		message = fmt.Sprintf("CSS file '%s' not found.", s.stylesheetPath)
	}
	return "", &recommend.Notice{Level: recommend.LevelWarning, Message: message}
}
