package estimator

import (
	"context"
	"errors"
	"math"
	"os"
	"sync"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/pdratio/internal/model"
	"github.com/san-kum/pdratio/internal/numeric"
	"github.com/san-kum/pdratio/internal/path"
)

func smallParams() model.Params {
	p := model.DefaultParams()
	p.N = 50
	p.M = 200
	return p
}

// countingEstimator wraps the real path simulator and counts invocations.
func countingEstimator(p model.Params, calls *atomic.Int64) *Estimator {
	e := New(p)
	e.newStatistic = func(p model.Params) statisticFunc {
		sim := path.New(p)
		return func(x0 float64, seed uint64) float64 {
			calls.Add(1)
			return sim.Statistic(x0, seed)
		}
	}
	return e
}

var _ = Describe("Estimator", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("configuration errors", func() {
		DescribeTable("fails fast without simulating",
			func(mod func(p *model.Params)) {
				p := smallParams()
				mod(&p)

				var calls atomic.Int64
				res, err := countingEstimator(p, &calls).Run(ctx, numeric.Grid(-0.3, 0.3, 5))

				Expect(err).To(MatchError(model.ErrInvalidConfig))
				Expect(res).To(BeNil())
				Expect(calls.Load()).To(BeZero())
			},
			Entry("M = 0", func(p *model.Params) { p.M = 0 }),
			Entry("N = 0", func(p *model.Params) { p.N = 0 }),
			Entry("negative M", func(p *model.Params) { p.M = -1 }),
			Entry("NaN beta", func(p *model.Params) { p.Beta = math.NaN() }),
			Entry("negative sigma", func(p *model.Params) { p.Sigma = -0.05 }),
		)

		It("rejects invalid params even for an empty grid", func() {
			p := smallParams()
			p.M = 0
			_, err := New(p).Run(ctx, nil)
			Expect(errors.Is(err, model.ErrInvalidConfig)).To(BeTrue())
		})
	})

	Describe("empty grid", func() {
		It("returns an empty result without simulating", func() {
			var calls atomic.Int64
			res, err := countingEstimator(smallParams(), &calls).Run(ctx, []float64{})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Values).To(BeEmpty())
			Expect(res.StdErrs).To(BeEmpty())
			Expect(calls.Load()).To(BeZero())
		})

		It("returns an empty slice from EstimateValueFunction", func() {
			v, err := EstimateValueFunction(nil, smallParams())
			Expect(err).NotTo(HaveOccurred())
			Expect(v).NotTo(BeNil())
			Expect(v).To(BeEmpty())
		})
	})

	Describe("grid shape and order", func() {
		It("returns one estimate per grid point in grid order", func() {
			grid := []float64{0.3, -0.3, 0.1, 0, -0.1, 0.2, -0.2}
			p := smallParams()

			var calls atomic.Int64
			e := countingEstimator(p, &calls)
			e.SetWorkers(4)
			res, err := e.Run(ctx, grid)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Values).To(HaveLen(len(grid)))
			Expect(res.Grid).To(Equal(grid))
			Expect(calls.Load()).To(Equal(int64(len(grid) * p.M)))
			Expect(res.Simulations()).To(Equal(len(grid) * p.M))

			sim := path.New(p)
			stats := make([]float64, p.M)
			for i, x := range grid {
				for j := range stats {
					stats[j] = sim.Statistic(x, uint64(j))
				}
				mean, stderr := numeric.MeanStdErr(stats)
				Expect(res.Values[i]).To(Equal(mean), "grid index %d", i)
				Expect(res.StdErrs[i]).To(Equal(stderr), "grid index %d", i)
			}
		})

		It("does not depend on the number of workers", func() {
			grid := numeric.Grid(-0.3, 0.3, 9)

			serial := New(smallParams())
			serial.SetWorkers(1)
			a, err := serial.Run(ctx, grid)
			Expect(err).NotTo(HaveOccurred())

			parallel := New(smallParams())
			parallel.SetWorkers(8)
			b, err := parallel.Run(ctx, grid)
			Expect(err).NotTo(HaveOccurred())

			Expect(b.Values).To(Equal(a.Values))
			Expect(b.StdErrs).To(Equal(a.StdErrs))
		})

		It("does not alias the caller's grid", func() {
			grid := []float64{0, 0.1}
			res, err := New(smallParams()).Run(ctx, grid)
			Expect(err).NotTo(HaveOccurred())

			grid[0] = 99
			Expect(res.Grid[0]).To(Equal(0.0))
		})
	})

	Describe("seeding", func() {
		It("reproduces the same estimate on repeated runs", func() {
			grid := []float64{0.05}
			a, err := EstimateValueFunction(grid, smallParams())
			Expect(err).NotTo(HaveOccurred())
			b, err := EstimateValueFunction(grid, smallParams())
			Expect(err).NotTo(HaveOccurred())
			Expect(b).To(Equal(a))
		})

		It("draws a different batch under a different seed offset", func() {
			grid := []float64{0.05}
			a, err := New(smallParams()).Run(ctx, grid)
			Expect(err).NotTo(HaveOccurred())

			e := New(smallParams())
			e.SetSeedOffset(1_000_000)
			b, err := e.Run(ctx, grid)
			Expect(err).NotTo(HaveOccurred())

			Expect(b.Values[0]).NotTo(Equal(a.Values[0]))
		})
	})

	Describe("degenerate shocks", func() {
		It("equals the closed form at every grid point", func() {
			p := smallParams()
			p.Sigma, p.SigmaC, p.SigmaD = 0, 0, 0

			grid := numeric.Grid(-0.3, 0.3, 7)
			res, err := New(p).Run(ctx, grid)
			Expect(err).NotTo(HaveOccurred())

			for i, x := range grid {
				closed := path.Deterministic(x, p)
				Expect(res.Values[i]).To(BeNumerically("~", closed, 1e-12*closed))
				Expect(res.StdErrs[i]).To(BeNumerically("<", 1e-9))
			}
		})
	})

	Describe("numeric overflow", func() {
		It("surfaces non-finite estimates instead of failing", func() {
			p := smallParams()
			p.M = 10
			res, err := New(p).Run(ctx, []float64{-1000, 0})

			Expect(err).NotTo(HaveOccurred())
			Expect(math.IsInf(res.Values[0], 1) || math.IsNaN(res.Values[0])).To(BeTrue())
			Expect(math.IsInf(res.Values[1], 0)).To(BeFalse())
			Expect(res.AllFinite()).To(BeFalse())
		})
	})

	Describe("path failures", func() {
		It("fails the whole estimation with the offending grid point", func() {
			var calls atomic.Int64
			e := New(smallParams())
			e.newStatistic = func(p model.Params) statisticFunc {
				return func(x0 float64, seed uint64) float64 {
					calls.Add(1)
					if x0 > 0.25 && seed == 3 {
						panic("out of memory")
					}
					return 1
				}
			}

			res, err := e.Run(ctx, []float64{0, 0.1, 0.3})
			Expect(res).To(BeNil())
			Expect(err).To(MatchError(ErrPathFailed))

			var pe *PointError
			Expect(errors.As(err, &pe)).To(BeTrue())
			Expect(pe.Index).To(Equal(2))
			Expect(pe.X).To(Equal(0.3))
			Expect(err.Error()).To(Equal("estimator: grid point 2 (x=0.3000): path simulation failed: out of memory"))
		})
	})

	Describe("cancellation", func() {
		It("does no work when the context is already canceled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			var calls atomic.Int64
			res, err := countingEstimator(smallParams(), &calls).Run(cctx, numeric.Grid(-0.3, 0.3, 5))

			Expect(res).To(BeNil())
			Expect(err).To(MatchError(context.Canceled))
			Expect(calls.Load()).To(BeZero())
		})

		It("stops between paths once canceled", func() {
			p := smallParams()
			p.M = 100_000
			cctx, cancel := context.WithCancel(ctx)
			defer cancel()

			var calls atomic.Int64
			e := New(p)
			e.SetWorkers(1)
			e.newStatistic = func(p model.Params) statisticFunc {
				return func(x0 float64, seed uint64) float64 {
					if calls.Add(1) == 10 {
						cancel()
					}
					return 1
				}
			}

			_, err := e.Run(cctx, []float64{0, 0.1})
			Expect(err).To(MatchError(context.Canceled))
			Expect(calls.Load()).To(BeNumerically("<=", cancelEvery))
		})
	})

	Describe("observers", func() {
		It("sees every grid point exactly once", func() {
			grid := numeric.Grid(-0.3, 0.3, 6)

			var mu sync.Mutex
			seen := make(map[int]Point)
			e := New(smallParams())
			e.AddObserver(ObserverFunc(func(pt Point) {
				mu.Lock()
				defer mu.Unlock()
				seen[pt.Index] = pt
			}))

			res, err := e.Run(ctx, grid)
			Expect(err).NotTo(HaveOccurred())
			Expect(seen).To(HaveLen(len(grid)))
			for _, pt := range res.Points() {
				Expect(seen[pt.Index]).To(Equal(pt))
			}
		})
	})

	Describe("sampling error", func() {
		It("shrinks like 1/sqrt(M)", func() {
			// A short, weakly persistent state keeps Λ close to lognormal with
			// a small spread, so the replicate deviations are stable.
			p := smallParams()
			p.N = 50
			p.Rho = 0.5
			p.Sigma = 0.005
			const replicates = 100

			spread := func(m int) float64 {
				q := p
				q.M = m
				values := make([]float64, replicates)
				for r := range values {
					e := New(q)
					e.SetSeedOffset(uint64(r * m))
					res, err := e.Run(ctx, []float64{0})
					Expect(err).NotTo(HaveOccurred())
					values[r] = res.Values[0]
				}
				return stat.StdDev(values, nil)
			}

			small, large := spread(50), spread(5000)
			Expect(small / large).To(BeNumerically("~", 10, 4))
		})
	})

	Describe("sample buffers", func() {
		It("only hands out buffers of M slots", func() {
			pool := newSamplePool(7)
			buf := pool.get()
			Expect(buf).To(HaveLen(7))

			pool.put(buf)
			pool.put(make([]float64, 3))
			Expect(pool.get()).To(HaveLen(7))
			Expect(pool.get()).To(HaveLen(7))
		})
	})

	Describe("end-to-end scenario", func() {
		It("returns 20 finite estimates for the baseline model", func() {
			p := model.DefaultParams()
			if os.Getenv("PDRATIO_FULL") == "" {
				// Full M takes minutes; the shape and finiteness claims do not depend on it.
				p.M = 200
			}

			grid := numeric.Grid(-0.3, 0.3, 20)
			res, err := New(p).Run(ctx, grid)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Values).To(HaveLen(20))
			Expect(res.AllFinite()).To(BeTrue())
			for _, v := range res.Values {
				Expect(v).To(BeNumerically(">", 0))
			}
			// γ > 1: higher states lower the growth factor.
			Expect(res.Values[0]).To(BeNumerically(">", res.Values[19]))
		})
	})
})
