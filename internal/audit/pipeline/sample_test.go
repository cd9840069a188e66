package pipeline

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/shandysiswandi/hijackaudit/internal/audit/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleSize(t *testing.T) {
	tests := []struct {
		n        int
		fraction float64
		want     int
	}{
		{n: 10, fraction: 0.5, want: 5},
		{n: 3, fraction: 0.5, want: 2},
		{n: 5, fraction: 0.5, want: 2},
		{n: 1, fraction: 0.5, want: 0},
		{n: 0, fraction: 0.7, want: 0},
		{n: 4, fraction: 1, want: 4},
		{n: 7, fraction: 0.15, want: 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sampleSize(tt.n, tt.fraction), "n=%d fraction=%v", tt.n, tt.fraction)
	}
}

func TestSamplePerStratum(t *testing.T) {
	a := masterTable("a.csv", append(repeat("Valid", 4), repeat("Invalid", 6)...)...)
	b := masterTable("b.csv", repeat("Valid", 3)...)
	master := Concat([]*entity.Table{a, b})

	res := Sample(master, 0.5, nil, testRand())
	require.True(t, res.Stratified)
	require.NoError(t, res.Err)

	counts := map[[2]string]int{}
	for _, r := range res.Table.Records {
		counts[[2]string{r.SourceAuditor, r.Decision.Value}]++
		assert.Empty(t, r.AssignedVerifier)
	}
	assert.Equal(t, map[[2]string]int{
		{"a.csv", "Valid"}:   2,
		{"a.csv", "Invalid"}: 3,
		{"b.csv", "Valid"}:   2,
	}, counts)
}

func TestSampleStrataUseExactDecision(t *testing.T) {
	master := masterTable("a.csv", "Valid", "valid", "Valid ")

	res := Sample(master, 0.5, nil, testRand())
	require.True(t, res.Stratified)
	// three strata of one row each: round(0.5) is 0 for every one of them
	assert.Equal(t, 0, res.Table.Len())
}

func TestSampleFullFractionEqualsMaster(t *testing.T) {
	master := Concat([]*entity.Table{
		masterTable("a.csv", "Valid", "Invalid", "Valid"),
		masterTable("b.csv", "Plausible", "Plausible"),
	})

	res := Sample(master, 1, []string{"v1", "v2"}, testRand())
	require.True(t, res.Stratified)
	assert.ElementsMatch(t, keys(master), keys(res.Table))
}

func TestSampleAssignsVerifiersCyclically(t *testing.T) {
	master := Concat([]*entity.Table{
		masterTable("a.csv", repeat("Valid", 5)...),
		masterTable("b.csv", repeat("Invalid", 6)...),
	})
	verifiers := []string{"v1", "v2", "v3"}

	res := Sample(master, 1, verifiers, testRand())
	require.Equal(t, 11, res.Table.Len())
	for i, r := range res.Table.Records {
		assert.Equal(t, verifiers[i%len(verifiers)], r.AssignedVerifier)
	}
	for _, r := range master.Records {
		assert.Empty(t, r.AssignedVerifier, "master must not be modified")
	}
}

func TestSampleSizeIsMonotonicInFraction(t *testing.T) {
	master := Concat([]*entity.Table{
		masterTable("a.csv", append(repeat("Valid", 7), repeat("Invalid", 3)...)...),
		masterTable("b.csv", append(repeat("Plausible", 5), "Valid")...),
	})

	prev := -1
	for step := 0; step <= 20; step++ {
		res := Sample(master, float64(step)/20, nil, testRand())
		require.True(t, res.Stratified)
		assert.GreaterOrEqual(t, res.Table.Len(), prev)
		assert.LessOrEqual(t, res.Table.Len(), master.Len())
		prev = res.Table.Len()
	}
}

func TestSampleFallsBackWhenStratificationFails(t *testing.T) {
	master := masterTable("a.csv", repeat("Valid", 4)...)

	res := Sample(master, 1.5, []string{"v1"}, testRand())
	assert.False(t, res.Stratified)
	assert.ErrorIs(t, res.Err, ErrInvalidFraction)
	assert.ElementsMatch(t, keys(master), keys(res.Table))
	for _, r := range res.Table.Records {
		assert.Empty(t, r.AssignedVerifier)
	}

	res = Sample(master, math.NaN(), nil, testRand())
	assert.False(t, res.Stratified)
	assert.Equal(t, 0, res.Table.Len())
}

// flakySource panics on its first draw and behaves like PCG afterwards.
type flakySource struct {
	failed bool
	next   rand.Source
}

func (s *flakySource) Uint64() uint64 {
	if !s.failed {
		s.failed = true
		panic("entropy source unavailable")
	}
	return s.next.Uint64()
}

func TestSampleFallsBackWhenStratificationPanics(t *testing.T) {
	a := masterTable("a.csv", repeat("Valid", 6)...)
	b := masterTable("b.csv", repeat("Invalid", 4)...)
	master := Concat([]*entity.Table{a, b})
	src := &flakySource{next: rand.NewPCG(1, 2)}

	res := Sample(master, 0.5, []string{"v1", "v2"}, rand.New(src))
	assert.True(t, src.failed)
	assert.False(t, res.Stratified)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "entropy source unavailable")

	require.Equal(t, 5, res.Table.Len())
	seen := map[string]bool{}
	for _, r := range res.Table.Records {
		assert.Empty(t, r.AssignedVerifier)
		assert.False(t, seen[r.UniqueID], "duplicate row %s", r.UniqueID)
		seen[r.UniqueID] = true
	}
	assert.Subset(t, keys(master), keys(res.Table))
}

func TestSampleEmptyMaster(t *testing.T) {
	res := Sample(&entity.Table{}, 0.5, []string{"v1"}, nil)
	assert.True(t, res.Stratified)
	assert.Equal(t, 0, res.Table.Len())
}
