package hll

import "math"

// Estimate returns the approximate number of distinct items observed.
// The result is a pure function of the precision and register values:
// deterministic, non-negative, and always finite, including on register
// states loaded from untrusted bytes.
//
// The raw estimate is the bias-corrected harmonic mean
// alphaMSquared / sum(2^-reg[i]), corrected at both extremes:
//
//   - Small range: while the raw estimate is at most (5/2)*m and zero
//     registers remain, linear counting over the zero registers,
//     m*ln(m/zeros), is less biased.  An empty sketch lands here and
//     returns exactly 0, since ln(m/m) = 0.
//   - Large range: past 2^64/30 the published correction for hash-space
//     saturation applies, -2^64 * ln(1 - raw/2^64).  The router consumes
//     all 64 digest bits, so this branch only engages beyond roughly
//     6.1e17 distinct items; the constants published for 32-bit hashes do
//     not apply here.
//
// Estimate may run concurrently with other read-only methods, but not
// with Update or Merge on the same instance.
func (s *Sketch) Estimate() float64 {

	sum, numberOfZeros := s.regs.indicator()

	pr := &paramsByPrecision[s.precision]

	raw := pr.alphaMSquared / sum

	if numberOfZeros != 0 && raw <= pr.smallEstimatorCutoff {
		return pr.mf * math.Log(pr.mf/float64(numberOfZeros))
	}

	if raw > largeEstimatorCutoff {
		// a store with every register near the ceiling can push the raw
		// estimate past 2^64, where the correction is undefined.  such
		// states are only reachable through crafted payloads; keep the
		// result finite by returning the raw estimate.
		if raw >= twoTo64 {
			return raw
		}
		return -twoTo64 * math.Log(1.0-raw/twoTo64)
	}

	return raw
}
