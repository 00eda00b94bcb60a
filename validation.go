package llmprovider

import (
	"slices"
	"sync"
)

// Severity ranks a ValidationWarning.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error" // the API will most likely reject the request
)

// WarningCode identifies a ValidationWarning for programmatic handling.
type WarningCode string

const (
	WarningCodeModelUnknown      WarningCode = "MODEL_UNKNOWN"
	WarningCodeCapabilityMissing WarningCode = "CAPABILITY_MISSING"

	WarningCodeToolUnsupported          WarningCode = "TOOL_UNSUPPORTED"
	WarningCodeToolNotInCapabilities    WarningCode = "TOOL_NOT_IN_CAPABILITIES"
	WarningCodeModelDoesNotSupportTools WarningCode = "MODEL_DOES_NOT_SUPPORT_TOOLS"

	WarningCodeReasoningUnsupported   WarningCode = "REASONING_UNSUPPORTED"
	WarningCodeReasoningEffortInvalid WarningCode = "REASONING_EFFORT_INVALID"

	WarningCodeVisionUnsupported WarningCode = "VISION_UNSUPPORTED"

	WarningCodeTemperatureOutOfRange  WarningCode = "TEMPERATURE_OUT_OF_RANGE"
	WarningCodeTopPOutOfRange         WarningCode = "TOP_P_OUT_OF_RANGE"
	WarningCodeParameterUnsupported   WarningCode = "PARAMETER_UNSUPPORTED"
	WarningCodeServiceTierUnsupported WarningCode = "SERVICE_TIER_UNSUPPORTED"

	// A previous_response_id cannot be resolved when responses are not stored.
	WarningCodePreviousResponseUnstored WarningCode = "PREVIOUS_RESPONSE_UNSTORED"

	WarningCodeSystemMessageRemoved WarningCode = "SYSTEM_MESSAGE_REMOVED"
	WarningCodeContentDropped       WarningCode = "CONTENT_DROPPED"
)

// ValidationWarning describes something in a request the Responses API may
// reject or silently ignore. Warnings never block a request.
type ValidationWarning struct {
	Code     WarningCode
	Category string // model, tool, reasoning, parameter, vision, message
	Field    string
	Value    any
	Message  string
	Severity Severity
}

// ValidationRule inspects a request for one class of problems.
type ValidationRule interface {
	Name() string
	Check(provider string, req *GenerateRequest) []ValidationWarning
}

// RuleFunc adapts a plain function to ValidationRule.
type RuleFunc struct {
	RuleName string
	Fn       func(provider string, req *GenerateRequest) []ValidationWarning
}

func (r RuleFunc) Name() string { return r.RuleName }

func (r RuleFunc) Check(provider string, req *GenerateRequest) []ValidationWarning {
	return r.Fn(provider, req)
}

// ValidationEngine runs an ordered set of rules. Safe for concurrent use.
type ValidationEngine struct {
	mu    sync.RWMutex
	rules []ValidationRule
}

// NewValidationEngine returns an engine running rules in the given order.
func NewValidationEngine(rules ...ValidationRule) *ValidationEngine {
	return &ValidationEngine{rules: slices.Clone(rules)}
}

var defaultEngine = sync.OnceValue(func() *ValidationEngine {
	return NewValidationEngine(CapabilityRules(GetCapabilityRegistry())...)
})

// GetValidationEngine returns the process-wide engine backed by the
// capability registry.
func GetValidationEngine() *ValidationEngine { return defaultEngine() }

// AddRule appends rule to the engine.
func (e *ValidationEngine) AddRule(rule ValidationRule) {
	e.mu.Lock()
	e.rules = append(e.rules, rule)
	e.mu.Unlock()
}

// RemoveRule drops the first rule with the given name and reports whether
// one was found.
func (e *ValidationEngine) RemoveRule(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := slices.IndexFunc(e.rules, func(r ValidationRule) bool { return r.Name() == name })
	if i < 0 {
		return false
	}
	e.rules = slices.Delete(e.rules, i, i+1)
	return true
}

// Validate collects the warnings of every rule.
func (e *ValidationEngine) Validate(provider string, req *GenerateRequest) []ValidationWarning {
	e.mu.RLock()
	rules := slices.Clone(e.rules)
	e.mu.RUnlock()

	var out []ValidationWarning
	for _, r := range rules {
		out = append(out, r.Check(provider, req)...)
	}
	return out
}

// GetValidationWarnings checks req against the default engine. Callers
// decide whether to surface the result; the request is sent regardless.
func GetValidationWarnings(provider string, req *GenerateRequest) []ValidationWarning {
	return GetValidationEngine().Validate(provider, req)
}

func filterWarnings[T comparable](warnings []ValidationWarning, key func(ValidationWarning) T, keep []T) []ValidationWarning {
	out := make([]ValidationWarning, 0, len(warnings))
	for _, w := range warnings {
		if slices.Contains(keep, key(w)) {
			out = append(out, w)
		}
	}
	return out
}

func FilterWarningsBySeverity(warnings []ValidationWarning, severities ...Severity) []ValidationWarning {
	return filterWarnings(warnings, func(w ValidationWarning) Severity { return w.Severity }, severities)
}

func FilterWarningsByCategory(warnings []ValidationWarning, categories ...string) []ValidationWarning {
	return filterWarnings(warnings, func(w ValidationWarning) string { return w.Category }, categories)
}

func FilterWarningsByCode(warnings []ValidationWarning, codes ...WarningCode) []ValidationWarning {
	return filterWarnings(warnings, func(w ValidationWarning) WarningCode { return w.Code }, codes)
}
