package render

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTarget is returned by backends handed a target they did not
// allocate.
var ErrUnknownTarget = errors.New("render: unknown render target")

type Format uint32

const (
	FormatR32F Format = iota
	FormatR16F
	FormatRGBA8
)

func (f Format) String() string {
	switch f {
	case FormatR32F:
		return "r32f"
	case FormatR16F:
		return "r16f"
	case FormatRGBA8:
		return "rgba8"
	}
	return fmt.Sprintf("Format(%d)", uint32(f))
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "r32f", "r32float":
		return FormatR32F, nil
	case "r16f", "r16float":
		return FormatR16F, nil
	case "rgba8", "rgba8unorm":
		return FormatRGBA8, nil
	}
	return 0, fmt.Errorf("render: unknown format %q", s)
}

func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Format) UnmarshalText(text []byte) error {
	v, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

type TargetKind uint8

const (
	Target2D TargetKind = iota
	TargetCube
)

func (k TargetKind) String() string {
	if k == TargetCube {
		return "cube"
	}
	return "2d"
}

// TargetDesc identifies interchangeable targets. For cube targets Width and
// Height are both the face size.
type TargetDesc struct {
	Kind   TargetKind
	Width  int
	Height int
	Format Format
}

func (d TargetDesc) String() string {
	return fmt.Sprintf("%s %dx%d %s", d.Kind, d.Width, d.Height, d.Format)
}

// Target is an opaque GPU resource handle owned by an Allocator.
// Implementations must be comparable (pointer types).
type Target interface {
	Desc() TargetDesc
}

// CubeFace selects one face of a cube target, in +X, -X, +Y, -Y, +Z, -Z
// order. FaceNone binds a 2D target.
type CubeFace int

const (
	FaceNone CubeFace = -1

	FacePositiveX CubeFace = iota - 1
	FaceNegativeX
	FacePositiveY
	FaceNegativeY
	FacePositiveZ
	FaceNegativeZ
)

const NumCubeFaces = 6

// Allocator creates and destroys backend targets.
type Allocator interface {
	Allocate(desc TargetDesc) (Target, error)
	Release(t Target)
}

// TargetPool hands out targets for the duration of their use. Two targets
// checked out at the same time never alias.
type TargetPool interface {
	Obtain2D(width, height int, format Format) (Target, error)
	ObtainCube(size int, format Format) (Target, error)
	Recycle(t Target)
}
