package arbor

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// hudText formats the overlay shown when Window.HUD is enabled.
func hudText(s RenderStats, fps, tps float64, layoutErr error) string {
	msg := fmt.Sprintf("FPS: %.1f\nTPS: %.1f\ncommands: %d\nbuffers: %d\ndraw calls: %d\nshader switches: %d\ngeneration: %d",
		fps, tps, s.Commands, s.Buffers, s.DrawCalls, s.ShaderSwitches, s.Generation)
	if layoutErr != nil {
		msg += "\nlayout error: " + layoutErr.Error()
	}
	return msg
}

// drawHUD prints renderer stats in the top-left corner with the debug font.
func (v *View) drawHUD(screen *ebiten.Image) {
	ebitenutil.DebugPrint(screen, hudText(v.renderer.Stats(), ebiten.ActualFPS(), ebiten.ActualTPS(), v.layoutErr))
}
