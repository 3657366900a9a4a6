package mesh

import (
	"errors"
	"image"
	"math"
	"testing"

	"shadowmap/internal/graphics"
	"shadowmap/internal/graphics/gpu"
	"shadowmap/internal/graphics/gpu/gputest"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-4

const program gpu.Program = 7

func newDevice() *gputest.Recorder {
	return gputest.NewRecorder(graphics.MeshUniforms...)
}

func testCamera() (view, proj mgl32.Mat4) {
	c := graphics.NewCamera(900, 600)
	return c.GetViewMatrix(), c.GetProjectionMatrix()
}

func testLight() graphics.Light {
	return graphics.NewLight(mgl32.Vec3{4, 8, 2}, mgl32.Vec3{0, 0, 0})
}

func assertNear(t *testing.T, want, got []float32, delta float64) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], delta, "element %d: want %v got %v", i, want, got)
	}
}

func assertVec4Near(t *testing.T, want, got mgl32.Vec4, delta float64) {
	t.Helper()
	assertNear(t, want[:], got[:], delta)
}

func assertMat3Near(t *testing.T, want, got mgl32.Mat3, delta float64) {
	t.Helper()
	assertNear(t, want[:], got[:], delta)
}

func assertMat4Near(t *testing.T, want, got mgl32.Mat4, delta float64) {
	t.Helper()
	assertNear(t, want[:], got[:], delta)
}

func mustInit(t *testing.T, dev gpu.Device, m *Mesh) gpu.Uniform {
	t.Helper()
	mvp := gpu.InvalidUniform
	require.NoError(t, m.Init(dev, program, &mvp))
	return mvp
}

func TestUpdateRotatesAboutFixedAxis(t *testing.T) {
	ref := mgl32.Vec4{1, 0, 0, 1}
	for _, deg := range []float32{0, 30, 90, 135, 180, 270, -45, 720} {
		m := NewTriangle()
		m.Update(deg)

		got := m.Rotation().Mul4x1(ref)
		rad := float64(mgl32.DegToRad(deg))
		want := mgl32.Vec4{float32(math.Cos(rad)), 0, float32(-math.Sin(rad)), 1}
		assertVec4Near(t, want, got, tol)

		// points on the axis are fixed
		axis := m.Rotation().Mul4x1(RotationAxis.Vec4(1))
		assertVec4Near(t, RotationAxis.Vec4(1), axis, tol)
	}
}

func TestUpdateAbsoluteIsIdempotent(t *testing.T) {
	m := NewCube()
	m.Update(40)
	first := m.Rotation()
	m.Update(40)
	m.Update(40)

	assertMat4Near(t, first, m.Rotation(), tol)
	assert.InDelta(t, 40, m.Angle(), tol)
}

func TestUpdateCumulativeAccumulates(t *testing.T) {
	m := NewCube()
	m.SetRotationMode(RotationCumulative)
	m.Update(30)
	m.Update(30)
	m.Update(30)

	assert.InDelta(t, 90, m.Angle(), tol)
	want := mgl32.HomogRotate3D(mgl32.DegToRad(90), RotationAxis)
	assertMat4Near(t, want, m.Rotation(), tol)
}

func TestUpdateCumulativeWrapsAngle(t *testing.T) {
	m := NewCube()
	m.SetRotationMode(RotationCumulative)
	// an hour of frames at 60 fps, 45 degrees per second
	step := float32(45.0 / 60)
	for i := 0; i < 60*60*60; i++ {
		m.Update(step)
	}

	assert.Less(t, math.Abs(float64(m.Angle())), 360.0)
	// 162000 degrees is a whole number of turns
	assert.InDelta(t, 0, math.Sin(float64(mgl32.DegToRad(m.Angle()))), 1e-2)

	m.Update(-400)
	assert.Greater(t, m.Angle(), float32(-360))
}

func TestUpdateDoesNotTouchDevice(t *testing.T) {
	dev := newDevice()
	m := NewTriangle()
	mustInit(t, dev, m)
	m.Update(10)
	m.SetPosition(1, 2, 3)
	assert.Empty(t, dev.Draws)
}

func TestSetPositionTranslatesMVP(t *testing.T) {
	view, proj := testCamera()
	points := []mgl32.Vec3{{0, 0, 0}, {1, 2, 3}, {-4.5, 0.25, 9}, {1e3, -1e3, 0}}

	for _, p := range points {
		dev := newDevice()
		m := NewTriangle()
		mvpLoc := mustInit(t, dev, m)
		m.Update(33)
		m.SetPosition(p[0], p[1], p[2])
		m.Render(dev, view, proj, testLight())

		require.Len(t, dev.Draws, 1)
		mvp := dev.Draws[0].Mat4[mvpLoc]
		want := proj.Mul4(view).Mul4x1(p.Vec4(1))
		assertVec4Near(t, want, mvp.Col(3), 1e-2)
	}
}

func TestRenderUploadsAllUniforms(t *testing.T) {
	dev := newDevice()
	view, proj := testCamera()
	light := testLight()

	m := NewCube()
	mustInit(t, dev, m)
	m.SetPosition(1, 0, -2)
	m.Update(60)
	m.Render(dev, view, proj, light)

	require.Len(t, dev.Draws, 1)
	d := dev.Draws[0]
	model := m.ModelMatrix()

	assert.Equal(t, m.Buffer(), d.Buffer)
	assert.Equal(t, m.Texture(), d.Texture)
	assert.Equal(t, int32(36), d.Count)

	mv := view.Mul4(model)
	assertMat4Near(t, mv, d.Mat4[dev.Uniform(graphics.UniformMV)], tol)
	assertMat4Near(t, proj.Mul4(mv), d.Mat4[dev.Uniform(graphics.UniformMVP)], tol)
	assertMat4Near(t, light.Matrix().Mul4(model), d.Mat4[dev.Uniform(graphics.UniformLightMVP)], tol)

	// normal matrix of a rigid transform is its rotation part
	assertMat3Near(t, mv.Mat3(), d.Mat3[dev.Uniform(graphics.UniformMVIT)], tol)

	lightEye := d.Vec3[dev.Uniform(graphics.UniformLight)]
	assertVec4Near(t, view.Mul4x1(light.Position.Vec4(1)), lightEye.Vec4(1), tol)
}

func TestRenderBeforeInitIsNoop(t *testing.T) {
	dev := newDevice()
	view, proj := testCamera()

	m := NewTriangle()
	m.Render(dev, view, proj, testLight())

	assert.Empty(t, dev.Draws)
	assert.False(t, m.Initialized())
	assert.False(t, m.Buffer().Valid())
	assert.False(t, m.Texture().Valid())
}

func TestTriangleAndCubeInit(t *testing.T) {
	dev := newDevice()
	tri, cube := NewTriangle(), NewCube()

	triMVP := mustInit(t, dev, tri)
	cubeMVP := mustInit(t, dev, cube)

	assert.Equal(t, int32(3), tri.VertexCount())
	assert.Equal(t, int32(36), cube.VertexCount())
	assert.NotEqual(t, tri.VertexCount(), cube.VertexCount())

	for _, m := range []*Mesh{tri, cube} {
		assert.True(t, m.Initialized(), m.Name())
		assert.True(t, m.Buffer().Valid(), m.Name())
		assert.True(t, m.Texture().Valid(), m.Name())
		assert.Equal(t, int(m.VertexCount())*floatsPerVertex, dev.BufferFloats(m.Buffer()))
		assert.Equal(t, image.Pt(DefaultTextureSize, DefaultTextureSize), dev.TextureSize(m.Texture()))
	}
	assert.NotEqual(t, tri.Buffer(), cube.Buffer())
	assert.NotEqual(t, tri.Texture(), cube.Texture())

	assert.True(t, triMVP.Valid())
	assert.Equal(t, dev.Uniform(graphics.UniformMVP), triMVP)
	assert.Equal(t, triMVP, cubeMVP)
}

func TestTriangleAssetTextureIsGradient(t *testing.T) {
	img, err := TriangleAsset(16).Texture()
	require.NoError(t, err)
	assert.Equal(t, image.Pt(16, 16), img.Rect.Size())
	assert.Equal(t, img.RGBAAt(0, 0), img.RGBAAt(15, 0), "rows are uniform")
	assert.NotEqual(t, img.RGBAAt(0, 0), img.RGBAAt(0, 15), "colour changes top to bottom")
}

func TestInitNilMVPOut(t *testing.T) {
	dev := newDevice()
	m := NewTriangle()
	require.NoError(t, m.Init(dev, program, nil))
	assert.True(t, m.Initialized())
}

func TestInitTwiceKeepsResources(t *testing.T) {
	dev := newDevice()
	m := NewCube()
	mustInit(t, dev, m)
	buf, tex := m.Buffer(), m.Texture()

	mvp := mustInit(t, dev, m)
	assert.Equal(t, buf, m.Buffer())
	assert.Equal(t, tex, m.Texture())
	assert.Equal(t, 1, dev.LiveBuffers())
	assert.Equal(t, 1, dev.LiveTextures())
	assert.Equal(t, dev.Uniform(graphics.UniformMVP), mvp)
}

func TestInitMissingUniform(t *testing.T) {
	// program without the light-space matrix
	dev := gputest.NewRecorder(graphics.UniformMVP, graphics.UniformMV, graphics.UniformMVIT, graphics.UniformLight)
	m := NewTriangle()
	mvp := gpu.InvalidUniform

	err := m.Init(dev, program, &mvp)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInit))
	assert.True(t, errors.Is(err, gpu.ErrUniformNotFound))
	assert.False(t, m.Initialized())
	assert.Equal(t, gpu.InvalidUniform, mvp, "out parameter untouched on failure")
	assert.Equal(t, 0, dev.LiveBuffers())
	assert.Equal(t, 0, dev.LiveTextures())
}

func TestInitBufferFailure(t *testing.T) {
	dev := newDevice()
	dev.FailBuffers = true

	m := NewCube()
	err := m.Init(dev, program, nil)
	assert.ErrorIs(t, err, ErrInit)
	assert.False(t, m.Initialized())
	assert.Equal(t, 0, dev.LiveTextures())
}

func TestInitTextureFailureReleasesBuffer(t *testing.T) {
	dev := newDevice()
	dev.FailTextures = true

	m := NewCube()
	err := m.Init(dev, program, nil)
	assert.ErrorIs(t, err, ErrInit)
	assert.Equal(t, 0, dev.LiveBuffers())
	assert.Equal(t, int32(0), m.VertexCount())
}

func TestInitAssetFailures(t *testing.T) {
	boom := errors.New("boom")
	cases := map[string]Asset{
		"geometry": {
			Name:     "broken",
			Geometry: func() (Geometry, error) { return Geometry{}, boom },
			Texture:  TriangleAsset(8).Texture,
		},
		"empty": {
			Name:     "empty",
			Geometry: func() (Geometry, error) { return Geometry{}, nil },
			Texture:  TriangleAsset(8).Texture,
		},
		"texture": {
			Name:     "untextured",
			Geometry: TriangleAsset(8).Geometry,
			Texture:  func() (*image.RGBA, error) { return nil, boom },
		},
	}
	for name, asset := range cases {
		t.Run(name, func(t *testing.T) {
			dev := newDevice()
			m := New(asset)
			err := m.Init(dev, program, nil)
			assert.ErrorIs(t, err, ErrInit)
			assert.Equal(t, 0, dev.LiveBuffers())
			assert.Equal(t, 0, dev.LiveTextures())
		})
	}
}

func TestInitTexturePathMissing(t *testing.T) {
	dev := newDevice()
	m := New(CubeAsset(16).WithTexturePath("does/not/exist.png", 16))
	err := m.Init(dev, program, nil)
	assert.ErrorIs(t, err, ErrInit)
}

func TestTwoInstancesDrawDistinctMVPs(t *testing.T) {
	dev := newDevice()
	view, proj := testCamera()
	light := testLight()

	tri, cube := NewTriangle(), NewCube()
	mvpLoc := mustInit(t, dev, tri)
	mustInit(t, dev, cube)

	tri.SetPosition(-2, 0, 0)
	cube.SetPosition(2, 0.5, -1)

	tri.Render(dev, view, proj, light)
	cube.Render(dev, view, proj, light)

	require.Len(t, dev.Draws, 2)
	triDraw, cubeDraw := dev.Draws[0], dev.Draws[1]

	assert.Equal(t, tri.Buffer(), triDraw.Buffer)
	assert.Equal(t, cube.Buffer(), cubeDraw.Buffer)
	assert.Equal(t, int32(3), triDraw.Count)
	assert.Equal(t, int32(36), cubeDraw.Count)

	pv := proj.Mul4(view)
	assertVec4Near(t, pv.Mul4x1(mgl32.Vec4{-2, 0, 0, 1}), triDraw.Mat4[mvpLoc].Col(3), tol)
	assertVec4Near(t, pv.Mul4x1(mgl32.Vec4{2, 0.5, -1, 1}), cubeDraw.Mat4[mvpLoc].Col(3), tol)
	assert.False(t, triDraw.Mat4[mvpLoc].ApproxEqualThreshold(cubeDraw.Mat4[mvpLoc], tol))
}

func TestDispose(t *testing.T) {
	dev := newDevice()
	m := NewCube()
	mustInit(t, dev, m)
	require.Equal(t, 1, dev.LiveBuffers())

	m.Dispose(dev)
	assert.Equal(t, 0, dev.LiveBuffers())
	assert.Equal(t, 0, dev.LiveTextures())
	assert.False(t, m.Initialized())

	// second dispose is harmless, render is a no-op again
	m.Dispose(dev)
	view, proj := testCamera()
	m.Render(dev, view, proj, testLight())
	assert.Empty(t, dev.Draws)

	mustInit(t, dev, m)
	assert.Equal(t, 1, dev.LiveBuffers())
}

func TestRotationModeString(t *testing.T) {
	assert.Equal(t, "absolute", RotationAbsolute.String())
	assert.Equal(t, "cumulative", RotationCumulative.String())
	assert.Equal(t, "RotationMode(9)", RotationMode(9).String())
}
