package models

// ViewerState is the lifecycle state of the 3D preview
type ViewerState string

const (
	ViewerClosed  ViewerState = "closed"
	ViewerOpening ViewerState = "opening"
	ViewerLoading ViewerState = "loading"
	ViewerReady   ViewerState = "ready"
	// ViewerFailed shows the decode error; like Closed it owns no rendering resources
	ViewerFailed ViewerState = "failed"
)

// Vec3 is a plain vector for API payloads
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// CameraSnapshot is the framed camera of a ready session
type CameraSnapshot struct {
	Position    Vec3    `json:"position"`
	Target      Vec3    `json:"target"`
	FOV         float64 `json:"fov"`
	Aspect      float64 `json:"aspect"`
	Near        float64 `json:"near"`
	Far         float64 `json:"far"`
	MaxDistance float64 `json:"max_distance"`
}

// ViewerSnapshot is a point-in-time copy of the viewer session for the API and events
type ViewerSnapshot struct {
	SessionID   string          `json:"session_id,omitempty"`
	Generation  uint64          `json:"generation"`
	Path        string          `json:"path,omitempty"`
	State       ViewerState     `json:"state"`
	Progress    float64         `json:"progress"` // 0-100, only meaningful while loading
	LoadedBytes int64           `json:"loaded_bytes,omitempty"`
	TotalBytes  int64           `json:"total_bytes,omitempty"`
	Error       string          `json:"error,omitempty"`
	Camera      *CameraSnapshot `json:"camera,omitempty"`
	Width       int             `json:"width,omitempty"`
	Height      int             `json:"height,omitempty"`
	Frames      int64           `json:"frames,omitempty"`
}
