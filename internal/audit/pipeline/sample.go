package pipeline

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/shandysiswandi/hijackaudit/internal/audit/entity"
)

var ErrInvalidFraction = errors.New("sample fraction must be within [0, 1]")

// SampleResult is a stratified sample or, when stratification failed, an
// unstratified fallback. Err carries the stratification failure in that case.
type SampleResult struct {
	Table      *entity.Table
	Stratified bool
	Err        error
}

type stratum struct {
	auditor  string
	decision entity.NullString
}

// Sample draws round(n*fraction) rows from every (auditor, decision) stratum,
// shuffles the union and deals verifiers round-robin. It never fails: a broken
// stratification degrades to a plain random sample without verifiers.
func Sample(master *entity.Table, fraction float64, verifiers []string, rng *rand.Rand) SampleResult {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	out, err := stratifiedSample(master, fraction, verifiers, rng)
	if err == nil {
		return SampleResult{Table: out, Stratified: true}
	}

	return SampleResult{Table: randomSample(master, clamp(fraction), rng), Err: err}
}

func stratifiedSample(master *entity.Table, fraction float64, verifiers []string, rng *rand.Rand) (out *entity.Table, err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			out, err = nil, fmt.Errorf("stratified sampling: %v", rvr)
		}
	}()

	if math.IsNaN(fraction) || fraction < 0 || fraction > 1 {
		return nil, ErrInvalidFraction
	}

	var order []stratum
	groups := make(map[stratum][]int)
	for i, rec := range master.Records {
		key := stratum{auditor: rec.SourceAuditor, decision: rec.Decision}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	out = &entity.Table{Columns: master.Columns}
	for _, key := range order {
		idx := groups[key]
		for _, i := range pick(idx, sampleSize(len(idx), fraction), rng) {
			out.Records = append(out.Records, master.Records[i])
		}
	}

	rng.Shuffle(len(out.Records), func(i, j int) {
		out.Records[i], out.Records[j] = out.Records[j], out.Records[i]
	})

	if k := len(verifiers); k > 0 {
		for i := range out.Records {
			out.Records[i].AssignedVerifier = verifiers[i%k]
		}
	}

	return out, nil
}

func randomSample(master *entity.Table, fraction float64, rng *rand.Rand) *entity.Table {
	idx := make([]int, len(master.Records))
	for i := range idx {
		idx[i] = i
	}

	out := &entity.Table{Columns: master.Columns}
	for _, i := range pick(idx, sampleSize(len(idx), fraction), rng) {
		rec := master.Records[i]
		rec.AssignedVerifier = ""
		out.Records = append(out.Records, rec)
	}
	return out
}

// pick returns k distinct elements of idx in random order, leaving idx untouched.
func pick(idx []int, k int, rng *rand.Rand) []int {
	pool := append([]int(nil), idx...)
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

// sampleSize rounds half to even and never exceeds n.
func sampleSize(n int, fraction float64) int {
	if n == 0 {
		return 0
	}
	k := int(math.RoundToEven(float64(n) * fraction))
	return min(max(k, 0), n)
}

func clamp(fraction float64) float64 {
	if math.IsNaN(fraction) || fraction < 0 {
		return 0
	}
	return min(fraction, 1)
}
