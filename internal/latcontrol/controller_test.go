package latcontrol_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/curvsim/internal/control"
	"github.com/san-kum/curvsim/internal/latcontrol"
)

// constEstimator returns a fixed raw curvature and records its last call.
type constEstimator struct {
	k                     float64
	steer, speed, rollArg float64
}

func (e *constEstimator) Curvature(steerRad, speed, roll float64) float64 {
	e.steer, e.speed, e.rollArg = steerRad, speed, roll
	return e.k
}

func newController(cfg latcontrol.Config) *latcontrol.Controller {
	c, err := latcontrol.New(cfg)
	Expect(err).NotTo(HaveOccurred())
	return c
}

func gains(kp, ki, kf float64) latcontrol.Config {
	cfg := latcontrol.DefaultConfig()
	cfg.Kp = control.Const(kp)
	cfg.Ki = control.Const(ki)
	cfg.Kf = kf
	return cfg
}

func activeInput(desired, v float64) latcontrol.Input {
	return latcontrol.Input{
		Active:           true,
		Car:              latcontrol.CarState{VEgo: v},
		DesiredCurvature: desired,
	}
}

var _ = Describe("Controller", func() {
	var vm *constEstimator

	BeforeEach(func() {
		vm = &constEstimator{}
	})

	Describe("inactive cycles", func() {
		It("commands exactly zero and resets the integral", func() {
			c := newController(gains(1, 5, 0))
			for range 20 {
				_, err := c.Update(activeInput(0.05, 20), vm)
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(c.Integral()).NotTo(BeZero())
			Expect(c.Mode()).To(Equal(latcontrol.Active))

			out, err := c.Update(latcontrol.Input{Active: false, DesiredCurvature: 0.05}, vm)

			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(latcontrol.Output{}))
			Expect(out.Frozen).To(BeFalse())
			Expect(out.State.Active).To(BeFalse())
			Expect(c.Integral()).To(BeZero())
			Expect(c.Mode()).To(Equal(latcontrol.Inactive))
		})

		It("is idempotent across consecutive cycles", func() {
			c := newController(gains(1, 5, 0))
			for range 10 {
				_, _ = c.Update(activeInput(-0.08, 25), vm)
			}

			for range 2 {
				out, err := c.Update(latcontrol.Input{}, vm)
				Expect(err).NotTo(HaveOccurred())
				Expect(out.Curvature).To(Equal(0.0))
				Expect(c.Integral()).To(BeZero())
			}
		})

		It("never consults the estimator or the pose", func() {
			cfg := gains(1, 1, 1)
			cfg.Source = latcontrol.PoseBlended
			c := newController(cfg)

			_, err := c.Update(latcontrol.Input{Active: false}, nil)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("output bound", func() {
		It("stays within the configured limit for every input", func() {
			c := newController(gains(3, 10, 0.05))
			for _, desired := range []float64{-1, -0.3, -0.1, 0, 0.1, 0.3, 1} {
				for _, v := range []float64{0, 1, 3, 5, 12, 40} {
					for _, roll := range []float64{-0.1, 0, 0.1} {
						vm.k = desired / 2
						in := activeInput(desired, v)
						in.Params.Roll = roll
						out, err := c.Update(in, vm)
						Expect(err).NotTo(HaveOccurred())
						Expect(math.Abs(out.Curvature)).To(BeNumerically("<=", latcontrol.DefaultLimit))
					}
				}
			}
		})
	})

	Describe("integrator freeze", func() {
		var c *latcontrol.Controller

		BeforeEach(func() {
			c = newController(gains(0.5, 2, 0.001))
			for range 10 {
				_, err := c.Update(activeInput(0.02, 20), vm)
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(c.Integral()).NotTo(BeZero())
		})

		DescribeTable("holds the integral while still producing output",
			func(mutate func(*latcontrol.Input)) {
				before := c.Integral()
				in := activeInput(0.02, 20)
				mutate(&in)

				out, err := c.Update(in, vm)

				Expect(err).NotTo(HaveOccurred())
				Expect(out.Frozen).To(BeTrue())
				Expect(c.Integral()).To(Equal(before))
				terms := c.Terms()
				Expect(terms.P).NotTo(BeZero())
				Expect(out.Curvature).To(BeNumerically("~", terms.P+terms.F+before, 1e-12))
			},
			Entry("driver steering", func(in *latcontrol.Input) { in.Car.SteeringPressed = true }),
			Entry("actuator limited upstream", func(in *latcontrol.Input) { in.SteerLimited = true }),
			Entry("slow", func(in *latcontrol.Input) { in.Car.VEgo = 4.9 }),
		)

		It("integrates at exactly the freeze speed", func() {
			before := c.Integral()
			out, err := c.Update(activeInput(0.02, latcontrol.FreezeSpeed), vm)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Frozen).To(BeFalse())
			Expect(c.Integral()).NotTo(Equal(before))
		})
	})

	Describe("curvature estimation", func() {
		It("negates the raw model curvature", func() {
			c := newController(gains(1, 0, 0))
			vm.k = 0.02

			out, err := c.Update(activeInput(0, 20), vm)

			Expect(err).NotTo(HaveOccurred())
			Expect(out.State.Error).To(BeNumerically("~", 0.02, 1e-12))
			Expect(out.Curvature).To(BeNumerically("~", 0.02, 1e-12))
		})

		It("corrects the steering angle by the learned offset", func() {
			c := newController(gains(1, 0, 0))
			in := activeInput(0, 12)
			in.Car.SteeringAngleDeg = 10
			in.Params.AngleOffsetDeg = 4
			in.Params.Roll = 0.03

			_, err := c.Update(in, vm)

			Expect(err).NotTo(HaveOccurred())
			Expect(vm.steer).To(BeNumerically("~", 6*math.Pi/180, 1e-12))
			Expect(vm.speed).To(Equal(12.0))
			Expect(vm.rollArg).To(Equal(0.03))
		})

		DescribeTable("blends toward the pose estimate across the breakpoints",
			func(v, want float64) {
				cfg := gains(1, 0, 0)
				cfg.Source = latcontrol.PoseBlended
				c := newController(cfg)
				vm.k = -0.01 // geometric estimate 0.01

				in := activeInput(0, v)
				in.Pose = &latcontrol.Pose{YawRate: 0.03 * v} // pose estimate 0.03

				out, err := c.Update(in, vm)

				Expect(err).NotTo(HaveOccurred())
				Expect(out.State.Error).To(BeNumerically("~", -want, 1e-12))
			},
			Entry("fully geometric at 2 m/s", 2.0, 0.01),
			Entry("midpoint at 3.5 m/s", 3.5, 0.02),
			Entry("fully pose based at 5 m/s", 5.0, 0.03),
			Entry("clamped above the range", 30.0, 0.03),
			Entry("clamped below the range", 1.0, 0.01),
		)

		It("handles zero speed with a pose", func() {
			cfg := gains(1, 0, 0)
			cfg.Source = latcontrol.PoseBlended
			c := newController(cfg)
			in := activeInput(0.01, 0)
			in.Pose = &latcontrol.Pose{YawRate: 0.2}

			out, err := c.Update(in, vm)

			Expect(err).NotTo(HaveOccurred())
			Expect(math.IsNaN(out.Curvature) || math.IsInf(out.Curvature, 0)).To(BeFalse())
			Expect(out.State.Error).To(Equal(0.01))
		})

		It("ignores the pose when trusting steering angle", func() {
			c := newController(gains(1, 0, 0))
			vm.k = -0.01
			in := activeInput(0, 20)
			in.Pose = &latcontrol.Pose{YawRate: 5}

			out, err := c.Update(in, vm)

			Expect(err).NotTo(HaveOccurred())
			Expect(out.State.Error).To(BeNumerically("~", -0.01, 1e-12))
		})
	})

	Describe("feedforward", func() {
		It("compensates road bank through gravity", func() {
			c := newController(gains(0, 0, 0.01))
			in := activeInput(0, 10)
			in.Params.Roll = 0.05

			out, err := c.Update(in, vm)

			Expect(err).NotTo(HaveOccurred())
			Expect(out.Curvature).To(BeNumerically("~", -0.05*9.81*0.01, 1e-12))
		})

		It("uses the lateral acceleration gap to the geometric estimate", func() {
			c := newController(gains(0, 0, 0.001))
			vm.k = -0.01
			out, err := c.Update(activeInput(0.03, 10), vm)

			Expect(err).NotTo(HaveOccurred())
			Expect(out.Curvature).To(BeNumerically("~", (0.03-0.01)*100*0.001, 1e-12))
		})
	})

	Describe("saturation", func() {
		It("reports saturation when the output is pinned at the bound", func() {
			c := newController(gains(1, 0, 1))

			out, err := c.Update(activeInput(0.3, 10), vm)

			Expect(err).NotTo(HaveOccurred())
			Expect(out.Curvature).To(Equal(latcontrol.DefaultLimit))
			Expect(out.Saturated).To(BeTrue())
			Expect(out.State.Saturated).To(BeTrue())
		})

		It("does not report saturation an upstream limiter caused", func() {
			c := newController(gains(1, 0, 1))
			in := activeInput(0.3, 10)
			in.SteerLimited = true

			out, err := c.Update(in, vm)

			Expect(err).NotTo(HaveOccurred())
			Expect(out.Curvature).To(Equal(latcontrol.DefaultLimit))
			Expect(out.Saturated).To(BeFalse())
		})

		It("does not report saturation while tracking inside the bound", func() {
			c := newController(gains(1, 0, 0))
			vm.k = 0 // error equals desired

			out, err := c.Update(activeInput(0.01, 20), vm)

			Expect(err).NotTo(HaveOccurred())
			Expect(out.Curvature).To(BeNumerically("~", 0.01, 1e-12))
			Expect(out.Saturated).To(BeFalse())
		})

		It("applies symmetrically", func() {
			c := newController(gains(1, 0, 1))
			out, err := c.Update(activeInput(-0.5, 10), vm)

			Expect(err).NotTo(HaveOccurred())
			Expect(out.Curvature).To(Equal(-latcontrol.DefaultLimit))
			Expect(out.Saturated).To(BeTrue())
		})
	})

	Describe("diagnostics", func() {
		It("records the error and the post-controller curvature", func() {
			c := newController(gains(1, 0, 0))
			vm.k = -0.004
			in := activeInput(0.01, 20)
			in.Model = struct{ Frame int }{Frame: 7}

			out, err := c.Update(in, vm)

			Expect(err).NotTo(HaveOccurred())
			Expect(out.State.Active).To(BeTrue())
			Expect(out.State.Error).To(BeNumerically("~", 0.006, 1e-12))
			Expect(out.State.DesiredCurvature).To(Equal(out.Curvature))
		})
	})

	Describe("precondition", func() {
		It("fails loudly without a pose and leaves state untouched", func() {
			cfg := gains(1, 2, 0)
			cfg.Source = latcontrol.PoseBlended
			c := newController(cfg)

			in := activeInput(0.02, 20)
			in.Pose = &latcontrol.Pose{YawRate: 0.1}
			for range 5 {
				_, err := c.Update(in, vm)
				Expect(err).NotTo(HaveOccurred())
			}
			before := c.Integral()

			in.Pose = nil
			out, err := c.Update(in, vm)

			Expect(err).To(MatchError(latcontrol.ErrPreconditionViolation))
			Expect(out).To(Equal(latcontrol.Output{}))
			Expect(c.Integral()).To(Equal(before))
			Expect(c.Mode()).To(Equal(latcontrol.Active))
		})

		It("fails even below the fusion range", func() {
			cfg := gains(1, 0, 0)
			cfg.Source = latcontrol.PoseBlended
			c := newController(cfg)

			_, err := c.Update(activeInput(0.02, 0), vm)
			Expect(err).To(MatchError(latcontrol.ErrPreconditionViolation))
		})
	})

	It("Reset returns to inactive", func() {
		c := newController(gains(1, 3, 0))
		_, _ = c.Update(activeInput(0.05, 20), vm)

		c.Reset()

		Expect(c.Mode()).To(Equal(latcontrol.Inactive))
		Expect(c.Integral()).To(BeZero())
	})
})
