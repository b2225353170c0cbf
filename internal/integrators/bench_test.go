package integrators

import (
	"testing"

	"github.com/san-kum/curvsim/internal/dynamo"
)

func BenchmarkEuler(b *testing.B) {
	integ := NewEuler()
	dyn := &oscillator{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integ.Step(dyn, x, nil, 0, 0.01)
	}
}

func BenchmarkRK4(b *testing.B) {
	integ := NewRK4()
	dyn := &oscillator{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integ.Step(dyn, x, nil, 0, 0.01)
	}
}
