package baker

import "time"

// Sample counters collected by a rasterization worker.
type sampleStats struct {
	Triangles           int
	DegenerateTriangles int

	SamplesTested int
	SamplesInside int

	// Inside samples whose tangent frame could not be built.
	InvalidFrames int

	// Ray query outcomes for inside samples.
	Accepted   int
	Missed     int
	BackFacing int
}

func (s *sampleStats) add(other sampleStats) {
	s.Triangles += other.Triangles
	s.DegenerateTriangles += other.DegenerateTriangles
	s.SamplesTested += other.SamplesTested
	s.SamplesInside += other.SamplesInside
	s.InvalidFrames += other.InvalidFrames
	s.Accepted += other.Accepted
	s.Missed += other.Missed
	s.BackFacing += other.BackFacing
}

type WorkerStat struct {
	// The worker index.
	Id int

	// The assigned triangle block and the percentage of all low-poly
	// triangles it represents.
	FirstTriangle int
	Triangles     int
	Percent       float32

	// Accepted samples.
	Accepted int

	// Rasterization time for assigned block.
	BakeTime time.Duration
}

type BakeStats struct {
	sampleStats

	// Texels that received at least one accepted sample.
	CoveredTexels int

	// High-poly acceleration structure.
	HighTriangles int
	AccelNodes    int
	AccelDepth    int
	AccelTime     time.Duration

	// Individual worker stats.
	Workers []WorkerStat

	// Total rasterization time including the buffer merge.
	BakeTime time.Duration
}
