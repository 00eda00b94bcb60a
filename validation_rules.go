package llmprovider

import (
	"fmt"
	"slices"
)

// Rule names used by CapabilityRules.
const (
	RuleModel         = "model"
	RuleTools         = "tools"
	RuleReasoning     = "reasoning"
	RuleVision        = "vision"
	RuleSampling      = "sampling"
	RuleServiceTier   = "service-tier"
	RuleStoredContext = "stored-context"
)

// capabilityChecks derives warnings from what the capability registry knows
// about a model. A model missing from the registry only trips the model
// check; the other checks stay silent rather than guess.
type capabilityChecks struct {
	registry *CapabilityRegistry
}

// CapabilityRules returns the built-in rules backed by registry.
func CapabilityRules(registry *CapabilityRegistry) []ValidationRule {
	c := capabilityChecks{registry: registry}
	return []ValidationRule{
		RuleFunc{RuleModel, c.model},
		RuleFunc{RuleTools, c.tools},
		RuleFunc{RuleReasoning, c.reasoning},
		RuleFunc{RuleVision, c.vision},
		RuleFunc{RuleSampling, c.sampling},
		RuleFunc{RuleServiceTier, c.serviceTier},
		RuleFunc{RuleStoredContext, storedContext},
	}
}

func (c capabilityChecks) model(provider string, req *GenerateRequest) []ValidationWarning {
	if c.registry.SupportsModel(provider, req.Model) {
		return nil
	}
	return []ValidationWarning{{
		Code:     WarningCodeModelUnknown,
		Category: "model",
		Field:    "model",
		Value:    req.Model,
		Message:  fmt.Sprintf("%s has no capability entry for model %s", provider, req.Model),
		Severity: SeverityWarning,
	}}
}

func (c capabilityChecks) tools(provider string, req *GenerateRequest) []ValidationWarning {
	if req.Params == nil || len(req.Params.Tools) == 0 {
		return nil
	}
	mc, err := c.registry.GetModelCapability(provider, req.Model)
	if err != nil {
		return nil
	}
	if !mc.Features.Tools {
		return []ValidationWarning{{
			Code:     WarningCodeModelDoesNotSupportTools,
			Category: "tool",
			Field:    "tools",
			Value:    len(req.Params.Tools),
			Message:  fmt.Sprintf("%s is not listed as supporting tools", req.Model),
			Severity: SeverityWarning,
		}}
	}

	// Function tools are executed by the caller, so only built-in tools
	// are checked against the model.
	var out []ValidationWarning
	for _, tool := range req.Params.Tools {
		if tool.Type != ToolTypeProvider || tool.Provider == nil {
			continue
		}
		if _, err := c.registry.GetToolCapability(provider, req.Model, tool.Provider.ID); err == nil {
			continue
		}
		out = append(out, ValidationWarning{
			Code:     WarningCodeToolNotInCapabilities,
			Category: "tool",
			Field:    "tools",
			Value:    tool.Provider.ID,
			Message:  fmt.Sprintf("built-in tool %s is not listed for %s", tool.Provider.ID, req.Model),
			Severity: SeverityInfo,
		})
	}
	return out
}

func (c capabilityChecks) reasoning(provider string, req *GenerateRequest) []ValidationWarning {
	if req.Params == nil || !req.Params.HasReasoning() {
		return nil
	}
	if !c.registry.IsReasoningModel(provider, req.Model) {
		return []ValidationWarning{{
			Code:     WarningCodeReasoningUnsupported,
			Category: "reasoning",
			Field:    "reasoning",
			Value:    req.Model,
			Message:  fmt.Sprintf("%s does not reason; reasoning options are ignored", req.Model),
			Severity: SeverityWarning,
		}}
	}

	effort := req.Params.ReasoningEffort
	mc, err := c.registry.GetModelCapability(provider, req.Model)
	if err != nil || effort == nil || len(mc.Reasoning.Efforts) == 0 || slices.Contains(mc.Reasoning.Efforts, *effort) {
		return nil
	}
	return []ValidationWarning{{
		Code:     WarningCodeReasoningEffortInvalid,
		Category: "reasoning",
		Field:    "reasoning_effort",
		Value:    *effort,
		Message:  fmt.Sprintf("%s accepts reasoning effort %v, not %q", req.Model, mc.Reasoning.Efforts, *effort),
		Severity: SeverityError,
	}}
}

func (c capabilityChecks) vision(provider string, req *GenerateRequest) []ValidationWarning {
	if !containsBlock(req.Messages, BlockTypeImage) {
		return nil
	}
	mc, err := c.registry.GetModelCapability(provider, req.Model)
	if err != nil || mc.Features.Vision {
		return nil
	}
	return []ValidationWarning{{
		Code:     WarningCodeVisionUnsupported,
		Category: "vision",
		Field:    "messages",
		Value:    BlockTypeImage,
		Message:  fmt.Sprintf("%s is not listed as accepting image input", req.Model),
		Severity: SeverityWarning,
	}}
}

func (c capabilityChecks) sampling(provider string, req *GenerateRequest) []ValidationWarning {
	if req.Params == nil {
		return nil
	}
	caps, err := c.registry.GetProviderCapabilities(provider)
	if err != nil {
		return nil
	}
	bounds := caps.Constraints

	var out []ValidationWarning
	check := func(code WarningCode, field string, v *float64, lo, hi float64) {
		if v == nil || (*v >= lo && *v <= hi) {
			return
		}
		out = append(out, ValidationWarning{
			Code:     code,
			Category: "parameter",
			Field:    field,
			Value:    *v,
			Message:  fmt.Sprintf("%s %.2f is outside [%.2f, %.2f]", field, *v, lo, hi),
			Severity: SeverityWarning,
		})
	}
	check(WarningCodeTemperatureOutOfRange, "temperature", req.Params.Temperature, bounds.TemperatureMin, bounds.TemperatureMax)
	check(WarningCodeTopPOutOfRange, "top_p", req.Params.TopP, bounds.TopPMin, bounds.TopPMax)
	return out
}

func (c capabilityChecks) serviceTier(provider string, req *GenerateRequest) []ValidationWarning {
	if req.Params == nil || req.Params.ServiceTier == nil {
		return nil
	}
	mc, err := c.registry.GetModelCapability(provider, req.Model)
	if err != nil {
		return nil
	}
	tier := *req.Params.ServiceTier
	if (tier != "flex" || mc.SupportsFlexProcessing) && (tier != "priority" || mc.SupportsPriorityProcessing) {
		return nil
	}
	return []ValidationWarning{{
		Code:     WarningCodeServiceTierUnsupported,
		Category: "parameter",
		Field:    "service_tier",
		Value:    tier,
		Message:  fmt.Sprintf("%s does not offer %s processing", req.Model, tier),
		Severity: SeverityWarning,
	}}
}

// storedContext flags continuing a conversation from a response that was
// never stored server side.
func storedContext(_ string, req *GenerateRequest) []ValidationWarning {
	p := req.Params
	if p == nil || p.PreviousResponseID == nil || p.GetStore(true) {
		return nil
	}
	return []ValidationWarning{{
		Code:     WarningCodePreviousResponseUnstored,
		Category: "parameter",
		Field:    "previous_response_id",
		Value:    *p.PreviousResponseID,
		Message:  "previous_response_id requires store; the referenced response may not exist",
		Severity: SeverityWarning,
	}}
}

func containsBlock(messages []Message, blockType string) bool {
	for _, msg := range messages {
		for _, b := range msg.Blocks {
			if b.BlockType == blockType {
				return true
			}
		}
	}
	return false
}
