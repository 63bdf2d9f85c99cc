package bridge

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/MrSnakeDoc/tabshell/internal/domain"
)

// PostMessageBinding is the global function content scripts call to post a
// JSON message back to the bridge. Surfaces must expose it on every page.
const PostMessageBinding = "tabshellPostMessage"

//go:embed scripts/*.js.tmpl
var scriptFS embed.FS

var scripts = template.Must(template.ParseFS(scriptFS, "scripts/*.js.tmpl"))

type bootstrapData struct {
	Post        string
	Dark        bool
	BlockPopups bool
}

type zoomData struct {
	Post  string
	Level int
}

// BootstrapScript renders the content script installed on every page.
func BootstrapScript(theme domain.Theme, blockPopups bool) (string, error) {
	return render("bootstrap.js.tmpl", bootstrapData{
		Post:        PostMessageBinding,
		Dark:        theme == domain.ThemeDark,
		BlockPopups: blockPopups,
	})
}

// ZoomScript renders the script applying a zoom percentage to the page.
func ZoomScript(level int) (string, error) {
	return render("zoom.js.tmpl", zoomData{Post: PostMessageBinding, Level: domain.ClampZoom(level)})
}

// ResetZoomScript renders the script removing any applied zoom.
func ResetZoomScript() (string, error) {
	return render("reset_zoom.js.tmpl", zoomData{Post: PostMessageBinding})
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := scripts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}
