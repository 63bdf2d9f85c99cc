package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/tabshell/internal/domain"
)

func TestBootstrapScript(t *testing.T) {
	src, err := BootstrapScript(domain.ThemeDark, true)
	require.NoError(t, err)
	assert.Contains(t, src, "window."+PostMessageBinding)
	assert.Contains(t, src, "var dark = true;")
	assert.Contains(t, src, "popupBlocked")

	src, err = BootstrapScript(domain.ThemeLight, false)
	require.NoError(t, err)
	assert.Contains(t, src, "var dark = false;")
	assert.NotContains(t, src, "window.open = function")
}

func TestZoomScriptClampsLevel(t *testing.T) {
	src, err := ZoomScript(10)
	require.NoError(t, err)
	assert.Contains(t, src, "var level = 25;")

	src, err = ZoomScript(125)
	require.NoError(t, err)
	assert.Contains(t, src, "var level = 125;")
}

func TestResetZoomScript(t *testing.T) {
	src, err := ResetZoomScript()
	require.NoError(t, err)
	assert.Contains(t, src, "zoomReset")
}
