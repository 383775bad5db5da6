package hll

import (
	"fmt"
	"math"
	"strconv"

	"github.com/yfedoseev/go-sketches"
)

const (
	// MinPrecision and MaxPrecision bound the precision parameter accepted
	// by New.  Precision is the log-base-2 of the register count.
	MinPrecision = 4
	MaxPrecision = 18

	// registerWidth is the number of bits dedicated to each register
	// value.  Six bits hold every rarity the 64-bit router can produce and
	// match the width Redis uses, which keeps the interop in redis.go a
	// straight repacking.
	registerWidth = 6

	// maxRegisterValue is the widest value a packed register can hold.
	maxRegisterValue = 1<<registerWidth - 1
)

// params holds the constants the estimator needs for one precision.  There
// are only fifteen valid precisions, so the whole table is computed once
// at package init.
type params struct {
	// m is the register count, 2^precision.  mf is the same value as a
	// float, which is what the estimator arithmetic consumes.
	m  int
	mf float64

	// alphaMSquared is alpha * m^2, the constant in the raw HyperLogLog
	// estimator.
	alphaMSquared float64

	// smallEstimatorCutoff is the raw-estimate value below which the
	// small-range (linear counting) correction is considered.
	smallEstimatorCutoff float64

	// standardError is the theoretical relative standard error of the
	// estimate, 1.04/sqrt(m).
	standardError float64
}

// The large-range correction counteracts saturation of the hash space.
// The router inspects all 64 digest bits regardless of precision, so the
// ceiling is 2^64 and the cutoff is precision-independent.
var (
	twoTo64              = math.Exp2(64)
	largeEstimatorCutoff = twoTo64 / 30.0
)

var paramsByPrecision [MaxPrecision + 1]params

func init() {
	for p := MinPrecision; p <= MaxPrecision; p++ {
		m := 1 << uint(p)
		paramsByPrecision[p] = params{
			m:                    m,
			mf:                   float64(m),
			alphaMSquared:        alphaMSquared(p),
			smallEstimatorCutoff: smallEstimatorCutoff(m),
			standardError:        1.04 / math.Sqrt(float64(m)),
		}
	}
}

// alphaMSquared calculates the alpha-m-squared constant used by the raw
// estimator.  The small-m values come from the published algorithm; the
// closed form covers everything larger.
func alphaMSquared(precision int) float64 {

	m := float64(int(1) << uint(precision))

	switch precision {
	case 4:
		return 0.673 * m * m
	case 5:
		return 0.697 * m * m
	case 6:
		return 0.709 * m * m
	default:
		return (0.7213 / (1.0 + 1.079/m)) * m * m
	}
}

// smallEstimatorCutoff calculates the raw-estimate bound below which the
// small-range correction applies, (5/2)*m per the published algorithm.
func smallEstimatorCutoff(m int) float64 {
	return (float64(m) * 5) / 2
}

// packedLen returns the serialized register payload size in bytes for a
// precision.  m*registerWidth bits is a whole number of bytes for every
// valid precision, so the payload always cuts exactly at a register
// boundary.
func packedLen(precision int) int {
	return (1 << uint(precision)) * registerWidth / 8
}

// validatePrecision rejects precisions outside [MinPrecision,
// MaxPrecision].
func validatePrecision(precision int) error {
	if precision < MinPrecision || precision > MaxPrecision {
		return &sketches.ConfigError{
			Param:      "precision",
			Value:      strconv.Itoa(precision),
			Constraint: fmt.Sprintf("must be in [%d,%d]", MinPrecision, MaxPrecision),
		}
	}
	return nil
}
