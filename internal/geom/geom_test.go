package geom

import (
	"math"
	"math/rand"
	"testing"

	"github.com/piwi3910/CabinetFit/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const delta = 1e-9

func testRoom() model.Room {
	return model.Room{Width: 4.0, Depth: 3.0, Height: 2.5}
}

func assertBox(t *testing.T, want, got Box) {
	t.Helper()
	assert.InDelta(t, want.MinX, got.MinX, delta, "minX")
	assert.InDelta(t, want.MaxX, got.MaxX, delta, "maxX")
	assert.InDelta(t, want.MinZ, got.MinZ, delta, "minZ")
	assert.InDelta(t, want.MaxZ, got.MaxZ, delta, "maxZ")
}

func TestBoundingBox_CanonicalRotations(t *testing.T) {
	tests := []struct {
		name string
		rot  float64
		want Box
	}{
		{"back", 0, Box{MinX: 0, MaxX: 0.6, MinZ: 0, MaxZ: 0.56}},
		{"left", math.Pi / 2, Box{MinX: 0, MaxX: 0.56, MinZ: -0.6, MaxZ: 0}},
		{"right", -math.Pi / 2, Box{MinX: -0.56, MaxX: 0, MinZ: 0, MaxZ: 0.6}},
		{"front", math.Pi, Box{MinX: -0.6, MaxX: 0, MinZ: -0.56, MaxZ: 0}},
		{"front negative", -math.Pi, Box{MinX: -0.6, MaxX: 0, MinZ: -0.56, MaxZ: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertBox(t, tt.want, BoundingBox(0, 0, 0.6, 0.56, tt.rot))
		})
	}
}

func TestBoundingBox_Translated(t *testing.T) {
	b := BoundingBox(-1.5, -1.2, 0.8, 0.56, 0)
	assertBox(t, Box{MinX: -1.5, MaxX: -0.7, MinZ: -1.2, MaxZ: -0.64}, b)
}

func TestBoundingBox_GeneralRotationMatchesCanonical(t *testing.T) {
	// Just past the canonical tolerance the corner path must agree with the
	// closed form to within the angular error.
	for _, rot := range []float64{0, math.Pi / 2, -math.Pi / 2, math.Pi} {
		exact := BoundingBox(0.3, -0.2, 0.6, 0.56, rot)
		skewed := BoundingBox(0.3, -0.2, 0.6, 0.56, rot+0.11)
		assert.InDelta(t, exact.CenterX(), skewed.CenterX(), 0.1)
		assert.InDelta(t, exact.CenterZ(), skewed.CenterZ(), 0.1)
	}
}

func TestBoundingBox_GeneralRotation45(t *testing.T) {
	b := BoundingBox(0, 0, 1, 1, math.Pi/4)
	s := math.Sqrt2 / 2
	assertBox(t, Box{MinX: 0, MaxX: 2 * s, MinZ: -s, MaxZ: s}, b)
	assert.Equal(t, WallUnknown, WallOf(math.Pi/4))
}

func TestCorners_MatchBoundingBox(t *testing.T) {
	for _, rot := range []float64{0, math.Pi / 2, -math.Pi / 2, math.Pi, 0.4} {
		c := Corners(0.3, -0.2, 0.6, 0.56, rot)
		assert.Equal(t, [2]float64{0.3, -0.2}, c[0])

		b := Box{MinX: c[0][0], MaxX: c[0][0], MinZ: c[0][1], MaxZ: c[0][1]}
		for _, p := range c[1:] {
			b.MinX, b.MaxX = math.Min(b.MinX, p[0]), math.Max(b.MaxX, p[0])
			b.MinZ, b.MaxZ = math.Min(b.MinZ, p[1]), math.Max(b.MaxZ, p[1])
		}
		assertBox(t, BoundingBox(0.3, -0.2, 0.6, 0.56, rot), b)
	}

	// The width edge runs from the origin toward the second corner.
	c := Corners(0, 0, 0.6, 0.56, math.Pi/2)
	assert.Equal(t, [2]float64{0, -0.6}, c[1])
	assert.Equal(t, [2]float64{0.56, 0}, c[3])
}

func TestEffectiveDimensions(t *testing.T) {
	w, d := EffectiveDimensions(0.6, 0.56, 0)
	assert.Equal(t, 0.6, w)
	assert.Equal(t, 0.56, d)

	w, d = EffectiveDimensions(0.6, 0.56, math.Pi/2)
	assert.Equal(t, 0.56, w)
	assert.Equal(t, 0.6, d)

	w, d = EffectiveDimensions(0.6, 0.56, -math.Pi/2)
	assert.Equal(t, 0.56, w)
	assert.Equal(t, 0.6, d)

	w, d = EffectiveDimensions(0.6, 0.56, math.Pi)
	assert.Equal(t, 0.6, w)
	assert.Equal(t, 0.56, d)
}

func TestWallOf(t *testing.T) {
	assert.Equal(t, WallBack, WallOf(0.05))
	assert.Equal(t, WallBack, WallOf(2*math.Pi))
	assert.Equal(t, WallLeft, WallOf(math.Pi/2-0.05))
	assert.Equal(t, WallLeft, WallOf(-3*math.Pi/2))
	assert.Equal(t, WallRight, WallOf(-math.Pi/2))
	assert.Equal(t, WallRight, WallOf(3*math.Pi/2))
	assert.Equal(t, WallFront, WallOf(math.Pi))
	assert.Equal(t, WallFront, WallOf(-math.Pi+0.01))
	assert.Equal(t, WallUnknown, WallOf(1.0))
}

func TestWallRotationRoundTrip(t *testing.T) {
	for _, w := range []Wall{WallBack, WallLeft, WallRight, WallFront} {
		assert.Equal(t, w, WallOf(w.Rotation()), w.String())
	}
}

func TestAxisFor(t *testing.T) {
	assert.Equal(t, WallAxis{Wall: WallBack, Along: AxisX, Into: AxisZ, AlongSign: 1, IntoSign: 1}, AxisFor(0))
	assert.Equal(t, WallAxis{Wall: WallLeft, Along: AxisZ, Into: AxisX, AlongSign: -1, IntoSign: 1}, AxisFor(math.Pi/2))
	assert.Equal(t, WallAxis{Wall: WallRight, Along: AxisZ, Into: AxisX, AlongSign: 1, IntoSign: -1}, AxisFor(-math.Pi/2))
	assert.Equal(t, WallAxis{Wall: WallFront, Along: AxisX, Into: AxisZ, AlongSign: -1, IntoSign: -1}, AxisFor(math.Pi))

	unknown := AxisFor(0.8)
	assert.Equal(t, AxisX, unknown.Along)
	assert.Equal(t, 1, unknown.AlongSign)
}

func TestAlongWallSpan(t *testing.T) {
	b := BoundingBox(-2, 0.4, 0.6, 0.56, math.Pi/2)
	lo, hi := AxisFor(math.Pi / 2).AlongWallSpan(b)
	assert.InDelta(t, -0.2, lo, delta)
	assert.InDelta(t, 0.4, hi, delta)

	lo, hi = AxisFor(0).AlongWallSpan(BoundingBox(-2, -1.5, 0.6, 0.56, 0))
	assert.InDelta(t, -2.0, lo, delta)
	assert.InDelta(t, -1.4, hi, delta)
}

func TestParseWall(t *testing.T) {
	w, err := ParseWall("Left")
	require.NoError(t, err)
	assert.Equal(t, WallLeft, w)

	w, err = ParseWall("")
	require.NoError(t, err)
	assert.Equal(t, WallBack, w)

	_, err = ParseWall("ceiling")
	assert.Error(t, err)
}

func TestPoseOnWall_FlushAgainstEachWall(t *testing.T) {
	room := testRoom()
	for _, w := range []Wall{WallBack, WallLeft, WallRight, WallFront} {
		t.Run(w.String(), func(t *testing.T) {
			p := PoseOnWall(w, -0.5, 0.065, 0.6, 0.56, room)
			b := BoundingBox(p.X, p.Z, 0.6, 0.56, p.Rotation)
			wa := AxisOf(w)

			lo, hi := wa.AlongWallSpan(b)
			assert.InDelta(t, -0.5, lo, delta)
			assert.InDelta(t, 0.1, hi, delta)

			switch w {
			case WallBack:
				assert.InDelta(t, -room.HalfDepth()+0.065, b.MinZ, delta)
			case WallFront:
				assert.InDelta(t, room.HalfDepth()-0.065, b.MaxZ, delta)
			case WallLeft:
				assert.InDelta(t, -room.HalfWidth()+0.065, b.MinX, delta)
			case WallRight:
				assert.InDelta(t, room.HalfWidth()-0.065, b.MaxX, delta)
			}
			assert.Equal(t, w, WallOf(p.Rotation))
		})
	}
}

func TestPoseOnWall_LeftMatchesOriginConvention(t *testing.T) {
	p := PoseOnWall(WallLeft, -1.5, 0, 0.6, 0.56, testRoom())
	assert.InDelta(t, -2.0, p.X, delta)
	assert.InDelta(t, -0.9, p.Z, delta)

	p = PoseOnWall(WallRight, -1.5, 0, 0.6, 0.56, testRoom())
	assert.InDelta(t, 2.0, p.X, delta)
	assert.InDelta(t, -1.5, p.Z, delta)
}

func TestClampToRoom(t *testing.T) {
	room := testRoom()

	x, z := ClampToRoom(-2.3, 1.2, 0.6, 0.56, 0, room)
	assert.InDelta(t, -2.0, x, delta)
	assert.InDelta(t, 0.94, z, delta)

	x, z = ClampToRoom(2.1, -1.6, 0.6, 0.56, math.Pi/2, room)
	assert.InDelta(t, 2.0-0.56, x, delta)
	assert.InDelta(t, -1.5+0.6, z, delta)

	x, z = ClampToRoom(0.1, 0.2, 0.6, 0.56, 0, room)
	assert.Equal(t, 0.1, x, "inside box must not move")
	assert.Equal(t, 0.2, z)
}

func TestClampToRoom_Idempotent(t *testing.T) {
	room := testRoom()
	rng := rand.New(rand.NewSource(7))
	rots := []float64{0, math.Pi / 2, -math.Pi / 2, math.Pi, 0.7}

	for i := 0; i < 500; i++ {
		x := rng.Float64()*8 - 4
		z := rng.Float64()*6 - 3
		w := 0.2 + rng.Float64()
		d := 0.2 + rng.Float64()
		rot := rots[rng.Intn(len(rots))]

		x1, z1 := ClampToRoom(x, z, w, d, rot, room)
		x2, z2 := ClampToRoom(x1, z1, w, d, rot, room)
		require.InDelta(t, x1, x2, delta)
		require.InDelta(t, z1, z2, delta)
		assert.True(t, InsideRoom(BoundingBox(x1, z1, w, d, rot), room, 1e-9))
	}
}

func TestOverlap_TouchingIsNotCollision(t *testing.T) {
	a := BoundingBox(-1.0, -1.5, 0.6, 0.56, 0)
	b := BoundingBox(-0.4, -1.5, 0.6, 0.56, 0)
	assert.False(t, a.Overlaps(b))
	assert.False(t, b.Overlaps(a))

	c := BoundingBox(-0.401, -1.5, 0.6, 0.56, 0)
	assert.True(t, a.Overlaps(c), "1mm overlap must collide")
	assert.True(t, c.Overlaps(a))
}

func TestOverlap_Symmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	randBox := func() Box {
		x := rng.Float64()*4 - 2
		z := rng.Float64()*4 - 2
		return Box{MinX: x, MaxX: x + rng.Float64(), MinZ: z, MaxZ: z + rng.Float64()}
	}
	for i := 0; i < 5000; i++ {
		a, b := randBox(), randBox()
		for _, eps := range []float64{0, OverlapEpsilon, 0.002} {
			require.Equal(t, Overlap(a, b, eps), Overlap(b, a, eps))
		}
	}
}

func TestVerticalOverlap(t *testing.T) {
	// Base unit 0..0.72 and wall unit 1.4..2.12 are stacked apart.
	assert.False(t, VerticalOverlap(0, 0.72, 1.4, 0.72, VerticalEpsilon))
	// Tall unit spans both.
	assert.True(t, VerticalOverlap(0, 2.1, 1.4, 0.72, VerticalEpsilon))
	assert.True(t, VerticalOverlap(1.4, 0.72, 0, 2.1, VerticalEpsilon))
	// Exactly stacked is not overlapping.
	assert.False(t, VerticalOverlap(0, 0.72, 0.72, 0.72, VerticalEpsilon))
}

func TestIntersectionArea(t *testing.T) {
	a := Box{MinX: 0, MaxX: 1, MinZ: 0, MaxZ: 1}
	b := Box{MinX: 0.5, MaxX: 1.5, MinZ: 0.5, MaxZ: 1.5}
	assert.InDelta(t, 0.25, IntersectionArea(a, b), delta)
	assert.Equal(t, 0.0, IntersectionArea(a, Box{MinX: 2, MaxX: 3, MinZ: 2, MaxZ: 3}))
}

func TestNormalizeRotation(t *testing.T) {
	assert.InDelta(t, 0, NormalizeRotation(2*math.Pi), delta)
	assert.InDelta(t, -math.Pi/2, NormalizeRotation(3*math.Pi/2), delta)
	assert.True(t, SameRotation(math.Pi, -math.Pi, 1e-9))
	assert.False(t, SameRotation(0, math.Pi/2, 0.2))
}
