package domain

import "time"

// PolicyRule defines a lender policy overlay rule. Rules are CEL
// expressions over the normalized feature set and request velocity; a
// triggered rule attaches a condition code to the decision or declines
// it outright, independent of the score.
type PolicyRule struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenantId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`

	// CEL expression evaluating to bool (triggered or not).
	Expression string `json:"expression"`

	// Severity of a triggered rule: decline, review or condition.
	Severity string `json:"severity"`

	// Code is the machine-readable condition code attached on trigger.
	Code string `json:"code"`

	// Whether rule is active
	Enabled bool `json:"enabled"`

	// Audit timestamps
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Policy severities.
const (
	PolicySeverityDecline   = "decline"
	PolicySeverityReview    = "review"
	PolicySeverityCondition = "condition"
)

// PolicyResult is the outcome of evaluating a single policy rule.
type PolicyResult struct {
	RuleID    string `json:"ruleId"`
	Triggered bool   `json:"triggered"`
	Severity  string `json:"severity"`
	Code      string `json:"code,omitempty"`
	Reason    string `json:"reason,omitempty"`

	// Err is set when the expression failed to evaluate; evaluation
	// errors never abort the decision.
	Err string `json:"err,omitempty"`
}
