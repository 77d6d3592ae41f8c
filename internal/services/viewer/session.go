package viewer

import (
	"time"

	"github.com/ternarybob/tagview/internal/models"
	"github.com/ternarybob/tagview/internal/scene"
)

// Session is the single open 3D preview. All fields are guarded by the controller mutex.
type Session struct {
	ID         string
	Generation uint64
	Path       string
	State      models.ViewerState
	OpenedAt   time.Time

	Scene    *scene.Scene
	Camera   *scene.PerspectiveCamera
	Controls *scene.OrbitControls
	Renderer scene.Renderer
	Model    *scene.Node
	Framing  *Framing

	task      *LoadTask
	loop      *renderLoop
	unobserve func()

	progress float64
	loaded   int64
	total    int64
	err      string
	frames   int64
}

// ownsResources reports whether anything still needs releasing
func (s *Session) ownsResources() bool {
	return s.Renderer != nil || s.Model != nil || s.Controls != nil || s.loop != nil || s.unobserve != nil || s.task != nil
}

func (s *Session) snapshot(width, height int) models.ViewerSnapshot {
	snap := models.ViewerSnapshot{
		SessionID:   s.ID,
		Generation:  s.Generation,
		Path:        s.Path,
		State:       s.State,
		Progress:    s.progress,
		LoadedBytes: s.loaded,
		TotalBytes:  s.total,
		Error:       s.err,
		Width:       width,
		Height:      height,
		Frames:      s.frames,
	}

	if s.Camera != nil {
		cam := &models.CameraSnapshot{
			Position: toModelVec(s.Camera.Position),
			Target:   toModelVec(s.Camera.Target),
			FOV:      s.Camera.FOV,
			Aspect:   s.Camera.Aspect,
			Near:     s.Camera.Near,
			Far:      s.Camera.Far,
		}
		if s.Controls != nil {
			cam.MaxDistance = s.Controls.MaxDistance
		}
		snap.Camera = cam
	}

	return snap
}

func toModelVec(v scene.Vec3) models.Vec3 {
	return models.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}
