package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestShapes(t *testing.T) {
	s := SphereShape{Radius: 2}
	assert.True(t, s.ContainsPoint(mgl32.Vec3{0, 2, 0}))
	assert.False(t, s.ContainsPoint(mgl32.Vec3{0, 2.01, 0}))

	b := BoxShape{Extent: mgl32.Vec3{2, 4, 6}}
	assert.True(t, b.ContainsPoint(mgl32.Vec3{1, -2, 3}))
	assert.False(t, b.ContainsPoint(mgl32.Vec3{1.5, 0, 0}))
	assert.InDelta(t, mgl32.Vec3{2, 4, 6}.Len()/2, b.BoundingRadius(), 1e-5)

	assert.True(t, IsInfiniteShape(nil))
	assert.True(t, IsInfiniteShape(InfiniteShape{}))
	assert.False(t, IsInfiniteShape(s))
}

func TestClipVolumeInvert(t *testing.T) {
	clip := &ClipVolume{
		Shape: BoxShape{Extent: mgl32.Vec3{2, 2, 2}},
		Pose:  NewTransform(),
	}
	clip.Pose.Position = mgl32.Vec3{10, 0, 0}

	inside := mgl32.Vec3{10.5, 0, 0}
	outside := mgl32.Vec3{0, 0, 0}

	assert.True(t, clip.Includes(inside))
	assert.False(t, clip.Includes(outside))

	clip.Invert = true
	assert.False(t, clip.Includes(inside))
	assert.True(t, clip.Includes(outside))

	// Inversion flips the answer for every point.
	for _, p := range []mgl32.Vec3{inside, outside, {11, 1, 1}, {9, -1, 0.5}, {-3, 4, 2}} {
		clip.Invert = false
		a := clip.Includes(p)
		clip.Invert = true
		assert.Equal(t, !a, clip.Includes(p))
	}
}

func TestClipVolumeRotatedPose(t *testing.T) {
	clip := &ClipVolume{
		Shape: BoxShape{Extent: mgl32.Vec3{10, 1, 1}},
		Pose:  NewTransform(),
	}
	// Long axis rotated from X onto Z.
	clip.Pose.Rotation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})

	assert.True(t, clip.HasContact(mgl32.Vec3{0, 0, 4}))
	assert.False(t, clip.HasContact(mgl32.Vec3{4, 0, 0}))
}

func TestClipVolumeWithoutShape(t *testing.T) {
	clip := &ClipVolume{}
	assert.False(t, clip.Includes(mgl32.Vec3{}))
	clip.Invert = true
	assert.True(t, clip.Includes(mgl32.Vec3{}))
}
