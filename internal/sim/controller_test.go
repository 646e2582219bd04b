package sim_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/galaxysim/internal/compute"
	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/galaxy"
	"github.com/san-kum/galaxysim/internal/integrators"
	"github.com/san-kum/galaxysim/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

func smallDisk() []galaxy.Config {
	cfg := galaxy.DefaultConfig()
	cfg.Stars = 50
	cfg.InclinationDeg = 30
	return []galaxy.Config{cfg}
}

func newController(opts ...sim.Option) *sim.Controller {
	return sim.New(compute.NewDirect(compute.DefaultParams()), integrators.NewSymplecticEuler(), opts...)
}

// corrupting scribbles over the System before reporting a failure.
type corrupting struct{ particle int }

func (corrupting) Name() string { return "corrupting" }

func (c corrupting) Step(_ dynamo.ForceEvaluator, sys *dynamo.System, _ float64) error {
	for i := range sys.Pos {
		sys.Pos[i] = math.NaN()
		sys.Vel[i] = math.Inf(1)
	}
	return dynamo.Unstable(c.particle)
}

// failing succeeds on its first call and returns err afterwards.
type failing struct {
	err   error
	calls *int
}

func (f failing) Accelerations(_, _, acc []float64) error {
	*f.calls++
	if *f.calls > 1 {
		return f.err
	}
	clear(acc)
	return nil
}

type counter struct {
	ticks  int
	resets int
	last   float64
}

func (c *counter) OnTick(_ *dynamo.System, t float64) {
	c.ticks++
	c.last = t
}

func (c *counter) Reset() { c.resets++ }

var _ = Describe("Controller", func() {
	var c *sim.Controller

	BeforeEach(func() {
		c = newController(sim.WithSeed(7))
	})

	Describe("before initialization", func() {
		It("is idle with no buffer", func() {
			Expect(c.State()).To(Equal(sim.Idle))
			Expect(c.PositionsBuffer()).To(BeNil())
		})

		It("refuses to start or step", func() {
			Expect(c.Start()).To(MatchError(dynamo.ErrInvalidTransition))
			Expect(c.StepOnce(1)).To(MatchError(dynamo.ErrInvalidTransition))
		})

		It("rejects invalid configurations", func() {
			bad := galaxy.DefaultConfig()
			bad.Stars = 0
			_, err := c.Initialize([]galaxy.Config{bad})
			Expect(err).To(MatchError(dynamo.ErrInvalidConfiguration))
			Expect(c.System()).To(BeNil())
		})
	})

	Describe("after initialization", func() {
		var sys *dynamo.System

		BeforeEach(func() {
			var err error
			sys, err = c.Initialize(smallDisk())
			Expect(err).NotTo(HaveOccurred())
		})

		It("exposes a 3n buffer aliasing the system", func() {
			buf := c.PositionsBuffer()
			Expect(buf).To(HaveLen(3 * 50))
			Expect(&buf[0]).To(BeIdenticalTo(&sys.Pos[0]))
			Expect(c.State()).To(Equal(sim.Idle))
			Expect(c.SimTime()).To(BeZero())
		})

		It("does not advance while idle", func() {
			before := append([]float64(nil), c.PositionsBuffer()...)
			Expect(c.Tick(100)).To(Succeed())
			Expect(c.PositionsBuffer()).To(Equal(before))
			Expect(c.SimTime()).To(BeZero())
		})

		It("steps once from idle and stays idle", func() {
			Expect(c.StepOnce(100)).To(Succeed())
			Expect(c.State()).To(Equal(sim.Idle))
			Expect(c.SimTime()).To(Equal(100.0))
			Expect(c.Steps()).To(Equal(1))
		})

		It("advances time by dt while running", func() {
			Expect(c.Start()).To(Succeed())
			for i := 0; i < 5; i++ {
				Expect(c.Tick(50)).To(Succeed())
			}
			Expect(c.SimTime()).To(BeNumerically("~", 250, 1e-9))
			Expect(c.Steps()).To(Equal(5))
		})

		It("keeps the buffer address across ticks", func() {
			addr := &c.PositionsBuffer()[0]
			Expect(c.Start()).To(Succeed())
			Expect(c.Tick(100)).To(Succeed())
			Expect(&c.PositionsBuffer()[0]).To(BeIdenticalTo(addr))
		})

		It("fails StepOnce while running", func() {
			Expect(c.Start()).To(Succeed())
			err := c.StepOnce(100)
			Expect(errors.Is(err, dynamo.ErrInvalidTransition)).To(BeTrue())
			Expect(c.State()).To(Equal(sim.Running))
			Expect(c.Steps()).To(BeZero())
		})

		It("ignores ticks while paused", func() {
			Expect(c.Start()).To(Succeed())
			Expect(c.Tick(100)).To(Succeed())
			Expect(c.Pause()).To(Succeed())

			before := append([]float64(nil), c.PositionsBuffer()...)
			t := c.SimTime()
			Expect(c.Tick(100)).To(Succeed())
			Expect(c.PositionsBuffer()).To(Equal(before))
			Expect(c.SimTime()).To(Equal(t))
		})

		It("steps once from paused and stays paused", func() {
			Expect(c.Pause()).To(Succeed())
			before := append([]float64(nil), c.PositionsBuffer()...)
			Expect(c.StepOnce(100)).To(Succeed())
			Expect(c.State()).To(Equal(sim.Paused))
			Expect(c.PositionsBuffer()).NotTo(Equal(before))
		})

		It("resumes after pause", func() {
			Expect(c.Start()).To(Succeed())
			Expect(c.Pause()).To(Succeed())
			Expect(c.Resume()).To(Succeed())
			Expect(c.State()).To(Equal(sim.Running))
		})

		It("resets to idle at time zero", func() {
			initial := append([]float64(nil), sys.Pos...)
			Expect(c.Start()).To(Succeed())
			Expect(c.Tick(100)).To(Succeed())
			Expect(c.Reset(smallDisk())).To(Succeed())
			Expect(c.State()).To(Equal(sim.Idle))
			Expect(c.SimTime()).To(BeZero())
			Expect(c.Steps()).To(BeZero())
			Expect(c.PositionsBuffer()).To(Equal(initial))
		})

		It("rejects a negative timestep without touching the system", func() {
			before := append([]float64(nil), c.PositionsBuffer()...)
			Expect(c.StepOnce(-1)).To(MatchError(dynamo.ErrInvalidTransition))
			Expect(c.PositionsBuffer()).To(Equal(before))
		})

		It("validates SetTimestep", func() {
			Expect(c.SetTimestep(25)).To(Succeed())
			Expect(c.Timestep()).To(Equal(25.0))
			Expect(c.SetTimestep(0)).To(MatchError(dynamo.ErrInvalidConfiguration))
			Expect(c.Timestep()).To(Equal(25.0))
		})
	})

	Describe("determinism", func() {
		It("produces identical buffers for identical inputs", func() {
			run := func() []float64 {
				ctl := newController(sim.WithSeed(42))
				_, err := ctl.Initialize(smallDisk())
				Expect(err).NotTo(HaveOccurred())
				Expect(ctl.Start()).To(Succeed())
				for i := 0; i < 20; i++ {
					Expect(ctl.Tick(100)).To(Succeed())
				}
				return append([]float64(nil), ctl.PositionsBuffer()...)
			}
			Expect(run()).To(Equal(run()))
		})
	})

	Describe("rollback", func() {
		It("restores the pre-tick system on numeric failure", func() {
			ctl := sim.New(compute.NewDirect(compute.DefaultParams()), corrupting{particle: 3})
			_, err := ctl.Initialize(smallDisk())
			Expect(err).NotTo(HaveOccurred())
			Expect(ctl.Start()).To(Succeed())

			pos := append([]float64(nil), ctl.PositionsBuffer()...)
			vel := append([]float64(nil), ctl.System().Vel...)

			err = ctl.Tick(100)
			Expect(err).To(MatchError(dynamo.ErrNumericInstability))

			var serr *dynamo.SimulationError
			Expect(errors.As(err, &serr)).To(BeTrue())
			Expect(serr.Particle).To(Equal(3))
			Expect(serr.Step).To(BeZero())

			Expect(ctl.PositionsBuffer()).To(Equal(pos))
			Expect(ctl.System().Vel).To(Equal(vel))
			Expect(ctl.SimTime()).To(BeZero())
			Expect(ctl.Steps()).To(BeZero())
		})

		It("surfaces evaluator errors with step context", func() {
			boom := errors.New("boom")
			calls := 0
			ctl := sim.New(failing{err: boom, calls: &calls}, integrators.NewSymplecticEuler())
			_, err := ctl.Initialize(smallDisk())
			Expect(err).NotTo(HaveOccurred())
			Expect(ctl.StepOnce(100)).To(Succeed())

			err = ctl.StepOnce(100)
			Expect(err).To(MatchError(boom))

			var serr *dynamo.SimulationError
			Expect(errors.As(err, &serr)).To(BeTrue())
			Expect(serr.Step).To(Equal(1))
			Expect(serr.Particle).To(Equal(-1))
		})
	})

	Describe("observers", func() {
		It("are called after each successful step and reset on regeneration", func() {
			obs := &counter{}
			ctl := newController(sim.WithObserver(obs))
			_, err := ctl.Initialize(smallDisk())
			Expect(err).NotTo(HaveOccurred())
			Expect(obs.resets).To(Equal(1))

			Expect(ctl.StepOnce(10)).To(Succeed())
			Expect(ctl.StepOnce(10)).To(Succeed())
			Expect(obs.ticks).To(Equal(2))
			Expect(obs.last).To(Equal(20.0))

			Expect(ctl.Reset(smallDisk())).To(Succeed())
			Expect(obs.resets).To(Equal(2))
		})

		It("accept plain functions", func() {
			var times []float64
			ctl := newController(sim.WithObserver(sim.ObserverFunc(func(_ *dynamo.System, t float64) {
				times = append(times, t)
			})))
			_, err := ctl.Initialize(smallDisk())
			Expect(err).NotTo(HaveOccurred())
			Expect(ctl.StepOnce(5)).To(Succeed())
			Expect(times).To(Equal([]float64{5}))
		})
	})

	Describe("snapshots", func() {
		It("restores an earlier point in time", func() {
			ctl := newController()
			_, err := ctl.Initialize(smallDisk())
			Expect(err).NotTo(HaveOccurred())

			snap := ctl.Snapshot()
			Expect(ctl.StepOnce(100)).To(Succeed())
			Expect(ctl.Restore(snap)).To(Succeed())

			Expect(ctl.PositionsBuffer()).To(Equal(snap.System.Pos))
			Expect(ctl.SimTime()).To(BeZero())
			Expect(ctl.Steps()).To(BeZero())
		})

		It("refuses to restore while running or across sizes", func() {
			ctl := newController()
			_, err := ctl.Initialize(smallDisk())
			Expect(err).NotTo(HaveOccurred())
			snap := ctl.Snapshot()

			Expect(ctl.Start()).To(Succeed())
			Expect(ctl.Restore(snap)).To(MatchError(dynamo.ErrInvalidTransition))

			Expect(ctl.Pause()).To(Succeed())
			other := sim.Snapshot{System: dynamo.FromParticles([]dynamo.Particle{{Pos: r3.Vec{}, Mass: 1}})}
			Expect(ctl.Restore(other)).To(MatchError(dynamo.ErrDimensionMismatch))
		})
	})
})

var _ = DescribeTable("State.String",
	func(s sim.State, want string) {
		Expect(s.String()).To(Equal(want))
	},
	Entry("idle", sim.Idle, "idle"),
	Entry("running", sim.Running, "running"),
	Entry("paused", sim.Paused, "paused"),
	Entry("unknown", sim.State(9), "unknown"),
)
