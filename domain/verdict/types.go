package verdict

// Verdict is the decision tag attached to a hypothesis test result
type Verdict string

const (
	// One-sample mean test
	Reject       Verdict = "reject"
	FailToReject Verdict = "fail_to_reject"

	// Period-vs-expectation test
	Confident    Verdict = "confident"
	NotConfident Verdict = "not_confident"
)

// DefaultAlpha is the significance level used when the caller does not set one.
const DefaultAlpha = 0.05

// ForMeanTest rejects the null hypothesis when p falls below alpha.
func ForMeanTest(pValue, alpha float64) Verdict {
	if pValue < alpha {
		return Reject
	}
	return FailToReject
}

// ForPeriodTest is confident in the measured period when it is statistically
// indistinguishable from the expected one.
func ForPeriodTest(pValue, alpha float64) Verdict {
	if pValue > alpha {
		return Confident
	}
	return NotConfident
}

// IsReject reports whether the verdict rejects its null hypothesis.
func (v Verdict) IsReject() bool {
	return v == Reject || v == NotConfident
}
