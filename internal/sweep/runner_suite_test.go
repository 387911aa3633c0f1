package sweep

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/san-kum/gwdetect/internal/power"
)

func TestSweep(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Sweep Suite")
}

// fakeCalc answers every scenario with a fixed power, except the ids it
// was told to fail or panic on.
type fakeCalc struct {
	failID  string
	panicID string
}

func (f *fakeCalc) Power(ctx context.Context, scn power.Scenario) (power.Result, error) {
	switch scn.ID {
	case f.failID:
		return power.Result{}, errors.New("simulated blowup")
	case f.panicID:
		panic("worker exploded")
	}
	return power.Result{Scenario: scn, Power: 42, NSims: 100, Detected: 42}, nil
}

func batch(ids ...string) []power.Scenario {
	scenarios := make([]power.Scenario, len(ids))
	for i, id := range ids {
		scenarios[i] = power.Scenario{ID: id, InitialConc: 10, Slope: -0.5, NoiseSD: 1, SamplingYears: 10, SamplesPerYear: 4}
	}
	return scenarios
}

var _ = Describe("Runner", func() {
	var log zerolog.Logger

	BeforeEach(func() {
		log = zerolog.Nop()
	})

	It("completes every sibling when one run fails", func() {
		runner := NewRunner(&fakeCalc{failID: "bad"}, 4, log)

		table, err := runner.Run(context.Background(), batch("a", "bad", "c", "d"))
		Expect(err).NotTo(HaveOccurred())
		Expect(table).To(HaveLen(4))

		bad, ok := table.Get("bad")
		Expect(ok).To(BeTrue())
		Expect(bad.Err).To(ContainSubstring("simulated blowup"))

		for _, id := range []string{"a", "c", "d"} {
			row, ok := table.Get(id)
			Expect(ok).To(BeTrue(), "sibling %s missing", id)
			Expect(row.Err).To(BeEmpty())
			Expect(row.Power).To(Equal(42.0))
		}
	})

	It("captures panics as row errors with a stack", func() {
		runner := NewRunner(&fakeCalc{panicID: "boom"}, 2, log)

		table, err := runner.Run(context.Background(), batch("a", "boom"))
		Expect(err).NotTo(HaveOccurred())

		boom, _ := table.Get("boom")
		Expect(boom.Err).To(HavePrefix("panic: worker exploded"))
		Expect(boom.Err).To(ContainSubstring("goroutine"))
	})

	It("preserves input order in the results table", func() {
		runner := NewRunner(&fakeCalc{}, 8, log)
		ids := []string{"z", "m", "a", "q", "b"}

		table, err := runner.Run(context.Background(), batch(ids...))
		Expect(err).NotTo(HaveOccurred())
		for i, id := range ids {
			Expect(table[i].ID).To(Equal(id))
		}
	})

	It("reports progress up to the total", func() {
		runner := NewRunner(&fakeCalc{failID: "bad"}, 2, log)

		var mu sync.Mutex
		var last Progress
		runner.OnProgress(func(p Progress) {
			mu.Lock()
			if p.Done > last.Done {
				last = p
			}
			mu.Unlock()
		})

		_, err := runner.Run(context.Background(), batch("a", "bad", "c"))
		Expect(err).NotTo(HaveOccurred())

		mu.Lock()
		defer mu.Unlock()
		Expect(last.Done).To(Equal(3))
		Expect(last.Total).To(Equal(3))
		Expect(last.Failed).To(Equal(1))
	})

	It("saves the results table when an output path is set", func() {
		dir := GinkgoT().TempDir()
		out := filepath.Join(dir, "results.csv")

		runner := NewRunner(&fakeCalc{}, 2, log)
		runner.SetOutput(out)

		_, err := runner.Run(context.Background(), batch("a", "b"))
		Expect(err).NotTo(HaveOccurred())

		data, err := os.ReadFile(out)
		Expect(err).NotTo(HaveOccurred())
		Expect(strings.Count(string(data), "\n")).To(BeNumerically(">=", 3))
	})

	It("returns the context error after cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		runner := NewRunner(&fakeCalc{}, 2, log)
		table, err := runner.Run(ctx, batch("a", "b"))
		Expect(err).To(MatchError(context.Canceled))

		for _, row := range table {
			Expect(row.Err).NotTo(BeEmpty())
		}
	})
})
