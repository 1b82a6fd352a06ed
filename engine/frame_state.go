package engine

import (
	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/uniform"
)

// frameState is the uniform.FrameState the render loop hands to the Context each frame.
type frameState struct {
	mode        uniform.SceneMode
	projection  common.MapProjection
	time        common.JulianDate
	morphTime   float64
	frameNumber int
	fogDensity  float64
	camera      uniform.Camera
}

var _ uniform.FrameState = &frameState{}

func (f *frameState) Mode() uniform.SceneMode             { return f.mode }
func (f *frameState) MapProjection() common.MapProjection { return f.projection }
func (f *frameState) Time() common.JulianDate             { return f.time }
func (f *frameState) MorphTime() float64                  { return f.morphTime }
func (f *frameState) FrameNumber() int                    { return f.frameNumber }
func (f *frameState) FogDensity() float64                 { return f.fogDensity }
func (f *frameState) Camera() uniform.Camera              { return f.camera }
