package mesh

import (
	"shadowmap/internal/graphics/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

// Attribute locations shared with the mesh shaders
const (
	PositionLocation = 0
	NormalLocation   = 1
	TexCoordLocation = 2
)

const floatsPerVertex = 8

// Layout is the interleaved position/normal/uv stream every mesh uploads
var Layout = gpu.VertexLayout{
	Stride: floatsPerVertex * 4,
	Attributes: []gpu.Attribute{
		{Location: PositionLocation, Size: 3, Offset: 0},
		{Location: NormalLocation, Size: 3, Offset: 3 * 4},
		{Location: TexCoordLocation, Size: 2, Offset: 6 * 4},
	},
}

type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// Geometry is a non-indexed triangle list
type Geometry struct {
	Vertices []Vertex
}

// Count returns the number of vertices to draw
func (g Geometry) Count() int32 {
	return int32(len(g.Vertices))
}

// Interleave flattens the vertices into the Layout stream
func (g Geometry) Interleave() []float32 {
	out := make([]float32, 0, len(g.Vertices)*floatsPerVertex)
	for _, v := range g.Vertices {
		out = append(out,
			v.Position[0], v.Position[1], v.Position[2],
			v.Normal[0], v.Normal[1], v.Normal[2],
			v.UV[0], v.UV[1],
		)
	}
	return out
}

// TriangleGeometry is a single unit triangle in the XY plane facing +Z
func TriangleGeometry() Geometry {
	n := mgl32.Vec3{0, 0, 1}
	return Geometry{Vertices: []Vertex{
		{Position: mgl32.Vec3{-0.5, -0.5, 0}, Normal: n, UV: mgl32.Vec2{0, 0}},
		{Position: mgl32.Vec3{0.5, -0.5, 0}, Normal: n, UV: mgl32.Vec2{1, 0}},
		{Position: mgl32.Vec3{0, 0.5, 0}, Normal: n, UV: mgl32.Vec2{0.5, 1}},
	}}
}

// cubeFaces lists each face normal with two in-plane axes where u x v = normal,
// so the quads below come out counter-clockwise seen from outside.
var cubeFaces = [6]struct{ n, u, v mgl32.Vec3 }{
	{n: mgl32.Vec3{1, 0, 0}, u: mgl32.Vec3{0, 0, -1}, v: mgl32.Vec3{0, 1, 0}},
	{n: mgl32.Vec3{-1, 0, 0}, u: mgl32.Vec3{0, 0, 1}, v: mgl32.Vec3{0, 1, 0}},
	{n: mgl32.Vec3{0, 1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, -1}},
	{n: mgl32.Vec3{0, -1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, 1}},
	{n: mgl32.Vec3{0, 0, 1}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
	{n: mgl32.Vec3{0, 0, -1}, u: mgl32.Vec3{-1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
}

// CubeGeometry is a unit cube centred on the origin, 36 vertices with flat normals
func CubeGeometry() Geometry {
	corners := [4]mgl32.Vec2{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	order := [6]int{0, 1, 2, 0, 2, 3}

	verts := make([]Vertex, 0, len(cubeFaces)*len(order))
	for _, f := range cubeFaces {
		for _, i := range order {
			c := corners[i]
			pos := f.n.Mul(0.5).Add(f.u.Mul(0.5 * c[0])).Add(f.v.Mul(0.5 * c[1]))
			verts = append(verts, Vertex{
				Position: pos,
				Normal:   f.n,
				UV:       mgl32.Vec2{(c[0] + 1) / 2, (c[1] + 1) / 2},
			})
		}
	}
	return Geometry{Vertices: verts}
}
