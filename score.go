package anthrocheck

// MaxScore is the coherence score of a record without findings.
const MaxScore = 100.0

type penaltyKey struct {
	rule     RuleID
	severity Severity
}

var penalties = map[penaltyKey]float64{
	{RuleRequiredField, SeverityError}: 25,
	{RuleBasicValue, SeverityError}:    20,
	{RuleHeightNorm, SeverityError}:    15,
	{RuleBMI, SeverityError}:           15,
	{RuleBMI, SeverityWarning}:         5,
	{RuleBodyRatio, SeverityError}:     10,
	{RuleBodyRatio, SeverityWarning}:   3,
	{RuleAdultWeight, SeverityError}:   10,
	{RuleChildWeight, SeverityWarning}: 5,
	{RuleWaistSpan, SeverityError}:     10,
	{RuleLegSpan, SeverityError}:       10,
}

// PenaltyFor returns the coherence score deduction for a finding of the
// given rule and severity. Unlisted combinations cost nothing.
func PenaltyFor(rule RuleID, severity Severity) float64 {
	return penalties[penaltyKey{rule, severity}]
}
