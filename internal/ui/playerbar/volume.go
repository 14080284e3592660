package playerbar

import (
	"fmt"

	"github.com/llehouerou/aurora/internal/player"
)

// RenderVolumeCompact renders the volume indicator, e.g. "vol  80%".
// Silent volume shows as "mute".
func RenderVolumeCompact(volume float64) string {
	pct := int(player.ClampVolume(volume)*100 + 0.5)
	if pct == 0 {
		return progressTimeStyle().Render("mute    ")
	}
	return progressTimeStyle().Render(fmt.Sprintf("vol %3d%%", pct))
}
