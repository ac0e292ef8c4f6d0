package profiling

import "sort"

// DataProfiler profiles named datasets with a shared analyzer
type DataProfiler struct {
	analyzer *DistributionAnalyzer
}

// NewDataProfiler creates a new data profiler
func NewDataProfiler() *DataProfiler {
	return &DataProfiler{analyzer: NewDistributionAnalyzer()}
}

// ProfileColumn analyzes one dataset; empty input yields zero characteristics
func (dp *DataProfiler) ProfileColumn(data []float64) Characteristics {
	c, err := dp.analyzer.Analyze(data)
	if err != nil {
		return Characteristics{}
	}
	return c
}

// ProfileDataset analyzes every named dataset
func (dp *DataProfiler) ProfileDataset(datasets map[string][]float64) map[string]Characteristics {
	results := make(map[string]Characteristics, len(datasets))

	names := make([]string, 0, len(datasets))
	for name := range datasets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		results[name] = dp.ProfileColumn(datasets[name])
	}

	return results
}
