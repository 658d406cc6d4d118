package field

import (
	"math"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/fieldsim/internal/vecmath"
)

func TestEvaluate_SingleCharge(t *testing.T) {
	g := NewWithT(t)
	ev := NewEvaluator(DefaultGuard)
	src := []Source{{Pos: vecmath.V(0, 0), Q: 1e-9}}

	s := ev.Evaluate(src, vecmath.V(1, 0), Static)
	g.Expect(s.E.Len()).To(BeNumerically("~", 8.99, 1e-9))
	g.Expect(s.E.X).To(BeNumerically(">", 0), "field should point away from a positive charge")
	g.Expect(s.V).To(BeNumerically("~", 8.99, 1e-9))
	g.Expect(s.Nearest).To(BeNumerically("~", 1.0, 1e-12))
}

func TestEvaluate_InverseSquareInAnyDirection(t *testing.T) {
	ev := NewEvaluator(DefaultGuard)
	tests := []struct {
		name  string
		q     float64
		r     float64
		angle float64
	}{
		{"positive near", 1e-9, 0.5, 0},
		{"positive diagonal", 2e-9, 2, math.Pi / 4},
		{"negative", -1e-9, 1, math.Pi / 3},
		{"negative far", -5e-9, 3, -2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			dir := vecmath.FromAngle(tt.angle)
			p := dir.Scale(tt.r)
			s := ev.Evaluate([]Source{{Q: tt.q}}, p, Static)

			want := K * math.Abs(tt.q) / (tt.r * tt.r)
			g.Expect(s.E.Len()).To(BeNumerically("~", want, want*1e-12))

			along := s.E.Dot(dir)
			if tt.q > 0 {
				g.Expect(along).To(BeNumerically(">", 0))
			} else {
				g.Expect(along).To(BeNumerically("<", 0))
			}
			g.Expect(math.Abs(s.E.Cross(dir))).To(BeNumerically("<", want*1e-12))
		})
	}
}

func TestEvaluate_Superposition(t *testing.T) {
	g := NewWithT(t)
	ev := NewEvaluator(DefaultGuard)
	a := Source{Pos: vecmath.V(-1, 0.5), Q: 3e-9}
	b := Source{Pos: vecmath.V(2, -1), Q: -7e-9}

	for _, p := range []vecmath.Vec2{vecmath.V(0, 0), vecmath.V(0.3, 4), vecmath.V(-3, -3), vecmath.V(2, 1)} {
		both := ev.Evaluate([]Source{a, b}, p, Static)
		sa := ev.Evaluate([]Source{a}, p, Static)
		sb := ev.Evaluate([]Source{b}, p, Static)

		g.Expect(both.E.X).To(BeNumerically("~", sa.E.X+sb.E.X, 1e-9))
		g.Expect(both.E.Y).To(BeNumerically("~", sa.E.Y+sb.E.Y, 1e-9))
		g.Expect(both.V).To(BeNumerically("~", sa.V+sb.V, 1e-9))
		g.Expect(both.Nearest).To(Equal(math.Min(sa.Nearest, sb.Nearest)))
	}
}

func TestEvaluate_EmptySourceSet(t *testing.T) {
	g := NewWithT(t)
	s := NewEvaluator(DefaultGuard).Evaluate(nil, vecmath.V(1, 2), Static)

	g.Expect(s.E).To(Equal(vecmath.Vec2{}))
	g.Expect(s.V).To(BeZero())
	g.Expect(math.IsInf(s.Nearest, 1)).To(BeTrue())
}

func TestEvaluate_SelfExclusionByIdentity(t *testing.T) {
	g := NewWithT(t)
	ev := NewEvaluator(DefaultGuard)
	p := vecmath.V(1, 1)
	sources := []Source{
		{Pos: p, Q: 1e-6, Owner: 7},
		{Pos: vecmath.V(1.5, 1), Q: 1e-6, Owner: 7},
		{Pos: vecmath.V(-1, 1), Q: 1e-9, Owner: Static},
	}

	s := ev.Evaluate(sources, p, 7)
	only := ev.Evaluate(sources[2:], p, Static)
	g.Expect(s).To(Equal(only))
	g.Expect(ev.TooClose(s)).To(BeFalse())
}

func TestEvaluate_OtherBodyInsideGuard(t *testing.T) {
	g := NewWithT(t)
	ev := NewEvaluator(DefaultGuard)
	p := vecmath.V(0, 0)
	sources := []Source{
		{Pos: vecmath.V(DefaultGuard/2, 0), Q: 1e-6, Owner: 2},
		{Pos: vecmath.V(0, 3), Q: 1e-9, Owner: Static},
	}

	s := ev.Evaluate(sources, p, 1)
	far := ev.Evaluate(sources[1:], p, Static)

	g.Expect(s.E).To(Equal(far.E), "close body charge must not enter the sums")
	g.Expect(s.V).To(Equal(far.V))
	g.Expect(s.Nearest).To(BeNumerically("~", DefaultGuard/2, 1e-15))
	g.Expect(ev.TooClose(s)).To(BeTrue())
}

func TestEvaluate_CoincidentStaticStaysFinite(t *testing.T) {
	g := NewWithT(t)
	ev := NewEvaluator(DefaultGuard)
	s := ev.Evaluate([]Source{{Q: 1e-9}}, vecmath.V(0, 0), Static)

	g.Expect(s.E.IsFinite()).To(BeTrue())
	g.Expect(math.IsInf(s.V, 0) || math.IsNaN(s.V)).To(BeFalse())
	g.Expect(s.Nearest).To(BeZero())
	g.Expect(ev.TooClose(s)).To(BeTrue())
}

func TestNewEvaluator_DefaultGuard(t *testing.T) {
	g := NewWithT(t)
	g.Expect(NewEvaluator(0).Guard).To(Equal(DefaultGuard))
	g.Expect(NewEvaluator(0.3).Guard).To(Equal(0.3))
	g.Expect(Force(-2, vecmath.V(1, 3))).To(Equal(vecmath.V(-2, -6)))
}
