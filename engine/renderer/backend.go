package renderer

// RendererBackend is what the engine drives during bootstrap. A backend must
// tolerate Shutdown after a failed or partial Initialize.
type RendererBackend interface {
	Initialize(appName string, appWidth, appHeight uint32) error
	Shutdown() error
}
