package credit

import (
	"errors"
	"math"
	"time"
)

const (
	MinScore     = 300
	MaxScore     = 850
	InitialScore = 500

	// MaxRepaymentBonus is awarded for a repayment at the moment of issuance.
	MaxRepaymentBonus = 50
	OverduePenalty    = 20
)

var ErrScoreTooLow = errors.New("credit score too low for a loan")

// Outcome labels a full repayment by how early it landed.
type Outcome string

const (
	OutcomeEarly  Outcome = "early"
	OutcomeOnTime Outcome = "on_time"
	OutcomeLate   Outcome = "late"
)

// Clamp keeps a score inside [MinScore, MaxScore].
func Clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// RepaymentSpeed is 1 for a repayment at issuance and 0 at or after the due time.
func RepaymentSpeed(issuedAt, dueAt, repaidAt time.Time) float64 {
	total := dueAt.Sub(issuedAt)
	if total <= 0 {
		return 0
	}
	actual := repaidAt.Sub(issuedAt)
	speed := 1 - float64(actual)/float64(total)
	return math.Max(0, math.Min(1, speed))
}

// RepaymentDelta never returns a negative value.
func RepaymentDelta(issuedAt, dueAt, repaidAt time.Time) int {
	return int(math.Round(MaxRepaymentBonus * RepaymentSpeed(issuedAt, dueAt, repaidAt)))
}

func Classify(speed float64) Outcome {
	switch {
	case speed > 0.8:
		return OutcomeEarly
	case speed > 0.5:
		return OutcomeOnTime
	default:
		return OutcomeLate
	}
}

// ApplyRepayment returns the new score and the delta awarded.
func ApplyRepayment(score int, issuedAt, dueAt, repaidAt time.Time) (int, int) {
	delta := RepaymentDelta(issuedAt, dueAt, repaidAt)
	return Clamp(score + delta), delta
}

func ApplyOverdue(score int) int { return Clamp(score - OverduePenalty) }

// Eligible reports whether a party with the given score may take part in a
// loan under the given threshold.
func Eligible(score, threshold int) bool { return score >= threshold }
