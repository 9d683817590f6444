package turbulence

import "sort"

// LayerStatistics accumulates layer averages of the dynamic Smagorinsky
// model for channel flows. Add performs unguarded read-modify-write; the
// caller serializes concurrent updates or reduces per-worker copies.
type LayerStatistics struct {
	Planes       []float64
	SumCs        []float64
	SumCsDeltaSq []float64
	SumVisceff   []float64
	Count        []int
}

// NewLayerStatistics allocates one layer between each pair of planes
func NewLayerStatistics(planes []float64) (ls *LayerStatistics) {
	n := len(planes) - 1
	if n < 1 {
		n = 1
	}
	ls = &LayerStatistics{
		Planes:       append([]float64(nil), planes...),
		SumCs:        make([]float64, n),
		SumCsDeltaSq: make([]float64, n),
		SumVisceff:   make([]float64, n),
		Count:        make([]int, n),
	}
	sort.Float64s(ls.Planes)
	return
}

// Layer returns the layer containing coordinate y, or -1 outside the planes
func (ls *LayerStatistics) Layer(y float64) int {
	if len(ls.Planes) < 2 {
		return 0
	}
	if y < ls.Planes[0] || y > ls.Planes[len(ls.Planes)-1] {
		return -1
	}
	i := sort.SearchFloat64s(ls.Planes, y)
	if i > 0 && (i == len(ls.Planes) || ls.Planes[i] > y) {
		i--
	}
	if i >= len(ls.SumCs) {
		i = len(ls.SumCs) - 1
	}
	return i
}

func (ls *LayerStatistics) Add(y, cs, csDeltaSq, visceff float64) {
	layer := ls.Layer(y)
	if layer < 0 {
		return
	}
	ls.SumCs[layer] += cs
	ls.SumCsDeltaSq[layer] += csDeltaSq
	ls.SumVisceff[layer] += visceff
	ls.Count[layer]++
}

// Merge adds the sums of another accumulator over the same planes
func (ls *LayerStatistics) Merge(other *LayerStatistics) {
	for i := range ls.SumCs {
		ls.SumCs[i] += other.SumCs[i]
		ls.SumCsDeltaSq[i] += other.SumCsDeltaSq[i]
		ls.SumVisceff[i] += other.SumVisceff[i]
		ls.Count[i] += other.Count[i]
	}
}

// Means returns the layer averages
func (ls *LayerStatistics) Means() (cs, csDeltaSq, visceff []float64) {
	n := len(ls.SumCs)
	cs, csDeltaSq, visceff = make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		if ls.Count[i] == 0 {
			continue
		}
		c := float64(ls.Count[i])
		cs[i] = ls.SumCs[i] / c
		csDeltaSq[i] = ls.SumCsDeltaSq[i] / c
		visceff[i] = ls.SumVisceff[i] / c
	}
	return
}
