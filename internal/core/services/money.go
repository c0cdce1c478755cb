package services

import "math"

// round2 rounds to two decimal places. Used for the withdrawal fee so that
// fee + net reconstructs the gross amount exactly.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// WithdrawalFeeRate is the flat fee applied to every withdrawal.
const WithdrawalFeeRate = 0.02
