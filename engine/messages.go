package engine

type ResourceKind int

const (
	KindTexture ResourceKind = iota
	KindPipeline
)

func (k ResourceKind) String() string {
	switch k {
	case KindTexture:
		return "texture"
	case KindPipeline:
		return "pipeline"
	}
	return "unknown"
}

// MessageLoaded is published on Context.OnLoad when a load settles.
// Err is nil on success.
type MessageLoaded struct {
	Kind ResourceKind
	Name string
	Err  error
}

// MessageTargetResized is published on Context.OnResize after Autoresize
// rebuilt a render target.
type MessageTargetResized struct {
	Name          string
	Width, Height int
}
