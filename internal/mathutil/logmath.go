package mathutil

import "math"

// LogZero represents log(0), used as negative infinity in log-domain arithmetic.
const LogZero = -1e30

// LogAdd returns log(exp(a) + exp(b)) in a numerically stable way.
// Uses threshold-based early exit to skip expensive exp/log1p when the
// smaller value contributes less than float64 precision (exp(-36) ≈ 2.3e-16).
func LogAdd(a, b float64) float64 {
	if a > b {
		if b == LogZero {
			return a
		}
		d := b - a
		if d < -36.0 {
			return a
		}
		return a + math.Log1p(math.Exp(d))
	}
	if a == LogZero {
		return b
	}
	d := a - b
	if d < -36.0 {
		return b
	}
	return b + math.Log1p(math.Exp(d))
}

// UniformCost returns the cost -ln(1/n) of picking one of n equally likely
// choices. A non-positive n has no distribution and costs 0.
func UniformCost(n int) float64 {
	if n <= 0 {
		return 0
	}
	// ln(n) rather than -ln(1/n): the latter yields -0 for n == 1.
	return math.Log(float64(n))
}

// CostMass returns the probability mass sum(exp(-c)) of a set of costs,
// accumulated in the log domain.
func CostMass(costs []float64) float64 {
	acc := LogZero
	for _, c := range costs {
		acc = LogAdd(acc, -c)
	}
	if acc == LogZero {
		return 0
	}
	return math.Exp(acc)
}
