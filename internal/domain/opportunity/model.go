package opportunity

import (
	"fmt"
	"math"

	"github.com/revcycle/recovery/internal/domain/claims"
)

// Bucket is a coarse confidence band.
type Bucket string

const (
	BucketHigh   Bucket = "High"
	BucketMedium Bucket = "Medium"
	BucketLow    Bucket = "Low"
)

// Score thresholds for the High and Medium buckets.
const (
	HighThreshold   = 70
	MediumThreshold = 40
)

// DefaultMinClaims is the smallest cohort that is ranked at all.
const DefaultMinClaims = 5

// BucketFor maps a score to its bucket.
func BucketFor(score int) Bucket {
	switch {
	case score >= HighThreshold:
		return BucketHigh
	case score >= MediumThreshold:
		return BucketMedium
	}
	return BucketLow
}

// ParseBucket accepts the exact bucket names.
func ParseBucket(s string) (Bucket, bool) {
	switch b := Bucket(s); b {
	case BucketHigh, BucketMedium, BucketLow:
		return b, true
	}
	return "", false
}

// Weights tunes the confidence heuristic. The score is
//
//	rate*RateWeight + min(avg/DollarDivisor, DollarCap) + min(count/VolumeDivisor, VolumeCap)
//
// rounded to the nearest integer and clamped to [0, 100].
type Weights struct {
	RateWeight    float64 `yaml:"rate_weight"`
	DollarDivisor float64 `yaml:"dollar_divisor"`
	DollarCap     float64 `yaml:"dollar_cap"`
	VolumeDivisor float64 `yaml:"volume_divisor"`
	VolumeCap     float64 `yaml:"volume_cap"`
}

// DefaultWeights gives up to 50 points for the eligibility rate, 30 for the
// average missing dollars (saturating at $300 per claim) and 20 for volume
// (saturating at 100 claims).
func DefaultWeights() Weights {
	return Weights{
		RateWeight:    0.5,
		DollarDivisor: 10,
		DollarCap:     30,
		VolumeDivisor: 5,
		VolumeCap:     20,
	}
}

// MaxScore is the highest score the weights can produce before clamping.
func (w Weights) MaxScore() float64 {
	return 100*w.RateWeight + w.DollarCap + w.VolumeCap
}

// Validate rejects weights that cannot produce a meaningful score.
func (w Weights) Validate() error {
	if w.RateWeight < 0 || w.DollarCap < 0 || w.VolumeCap < 0 {
		return fmt.Errorf("score weights must not be negative")
	}
	if w.DollarDivisor <= 0 || w.VolumeDivisor <= 0 {
		return fmt.Errorf("score divisors must be positive")
	}
	if w.MaxScore() > 100 {
		return fmt.Errorf("score weights allow %.1f points, more than 100", w.MaxScore())
	}
	return nil
}

// Score computes the confidence score for a cohort.
func (w Weights) Score(rate, avgMissing float64, count int64) int {
	s := rate*w.RateWeight +
		math.Min(avgMissing/w.DollarDivisor, w.DollarCap) +
		math.Min(float64(count)/w.VolumeDivisor, w.VolumeCap)
	s = math.Round(s)
	return int(math.Max(0, math.Min(100, s)))
}

// Cohort aggregates the underpaid claims sharing payer, plan and procedure.
type Cohort struct {
	PayerType          string  `json:"payer_type" yaml:"payer_type"`
	PayerPlan          string  `json:"payer_plan" yaml:"payer_plan"`
	CPTHCPCSCode       string  `json:"cpt_hcpcs_code" yaml:"cpt_hcpcs_code"`
	ClaimCount         int64   `json:"claim_count" yaml:"claim_count"`
	TotalMissingAmount float64 `json:"total_missing_amount" yaml:"total_missing_amount"`
	AvgMissingPerClaim float64 `json:"avg_missing_per_claim" yaml:"avg_missing_per_claim"`
	AppealEligibleRate float64 `json:"appeal_eligible_rate" yaml:"appeal_eligible_rate"`
}

// CohortFrom derives cohort statistics from a cohort aggregate.
func CohortFrom(a claims.Aggregate) Cohort {
	c := Cohort{
		PayerType:          a.Key.PayerType,
		PayerPlan:          a.Key.PayerPlan,
		CPTHCPCSCode:       a.Key.CPT,
		ClaimCount:         a.ClaimCount,
		TotalMissingAmount: a.Missing,
	}
	if a.ClaimCount > 0 {
		c.AvgMissingPerClaim = a.Missing / float64(a.ClaimCount)
		c.AppealEligibleRate = math.Round(float64(a.EligibleCount)*1000/float64(a.ClaimCount)) / 10
	}
	return c
}

// Opportunity is a scored cohort.
type Opportunity struct {
	Cohort           `yaml:",inline"`
	ConfidenceScore  int    `json:"confidence_score" yaml:"confidence_score"`
	ConfidenceBucket Bucket `json:"confidence_bucket" yaml:"confidence_bucket"`
}

// Opportunity scores c and assigns its bucket.
func (w Weights) Opportunity(c Cohort) Opportunity {
	score := w.Score(c.AppealEligibleRate, c.AvgMissingPerClaim, c.ClaimCount)
	return Opportunity{Cohort: c, ConfidenceScore: score, ConfidenceBucket: BucketFor(score)}
}
