package gpu

// PassState carries per-pass context into RenderState.Apply and command execution.
type PassState struct {
	// Target is the render target of the pass, nil for the window surface.
	Target RenderTarget
	// Viewport is used by render states that do not specify their own.
	Viewport Viewport
	// Pass is an engine-defined pass identifier exposed to shaders as czm_pass.
	Pass int
}
