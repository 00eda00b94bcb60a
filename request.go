package llmprovider

const (
	RoleSystem    = "system"
	RoleDeveloper = "developer"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// GenerateRequest is one call to the Responses API.
type GenerateRequest struct {
	// Messages is the conversation so far. Tool results go back as
	// tool_result blocks in a user message.
	Messages []Message
	Model    string
	Params   *RequestParams
}

type Message struct {
	Role   string // a Role constant
	Blocks []*Block
}

// GetParams returns Params, or empty params when unset.
func (r *GenerateRequest) GetParams() *RequestParams {
	if r.Params != nil {
		return r.Params
	}
	return &RequestParams{}
}
