package llmprovider

import (
	"fmt"
	"strings"
)

// PrepareReplay rewrites conversation history so it can be sent to target.
//
// Provider-executed tool calls recorded by a different provider cannot be
// referenced by the target, so each one is replaced by a synthetic exchange:
//  1. the assistant message is split at the tool call
//  2. the call becomes assistant text: "I used the X tool ..."
//  3. the text block that immediately follows it (its result) becomes a user message
//  4. the remaining blocks continue in a new assistant message
//
// Reasoning blocks from other providers are dropped; they are opaque to the target.
func PrepareReplay(messages []Message, target ProviderID) []Message {
	result := make([]Message, 0, len(messages))

	for _, msg := range messages {
		if msg.Role != RoleAssistant || !needsReplaySplit(msg.Blocks, target) {
			result = append(result, msg)
			continue
		}

		current := []*Block{}
		flush := func() {
			if len(current) > 0 {
				result = append(result, Message{Role: RoleAssistant, Blocks: current})
				current = []*Block{}
			}
		}

		for i := 0; i < len(msg.Blocks); i++ {
			block := msg.Blocks[i]

			if block.BlockType == BlockTypeThinking && !block.CanReplayToProvider(target) {
				continue
			}
			if !isForeignServerTool(block, target) {
				current = append(current, block)
				continue
			}

			flush()
			toolName, _ := block.GetToolName()
			if toolName == "" {
				toolName = "search"
			}
			result = append(result,
				textMessage(RoleAssistant, fmt.Sprintf("I used the %s tool to help answer your question.", toolName)),
			)

			results, consumed := FindToolResultBlocks(msg.Blocks, i)
			result = append(result, textMessage(RoleUser, FormatToolResults(results)))
			i += consumed
		}
		flush()
	}

	return result
}

func needsReplaySplit(blocks []*Block, target ProviderID) bool {
	for _, block := range blocks {
		if isForeignServerTool(block, target) {
			return true
		}
		if block.BlockType == BlockTypeThinking && !block.CanReplayToProvider(target) {
			return true
		}
	}
	return false
}

func isForeignServerTool(block *Block, target ProviderID) bool {
	return block.BlockType == BlockTypeToolUse &&
		block.IsServerSideTool() &&
		!block.CanReplayToProvider(target)
}

func textMessage(role, text string) Message {
	return Message{
		Role:   role,
		Blocks: []*Block{{BlockType: BlockTypeText, TextContent: &text}},
	}
}

// FindToolResultBlocks returns the text block that immediately follows the
// tool call at toolUseIndex, and how many blocks it consumed (0 or 1).
// Later text blocks belong to the assistant's continuation.
func FindToolResultBlocks(blocks []*Block, toolUseIndex int) ([]*Block, int) {
	if toolUseIndex+1 < len(blocks) {
		next := blocks[toolUseIndex+1]
		if next.BlockType == BlockTypeText {
			return []*Block{next}, 1
		}
	}
	return nil, 0
}

// FormatToolResults renders tool result blocks as user-facing text.
func FormatToolResults(blocks []*Block) string {
	if len(blocks) == 0 {
		return "No results found."
	}

	var sb strings.Builder
	sb.WriteString("Tool results:\n\n")
	for _, block := range blocks {
		if block.TextContent != nil {
			sb.WriteString(*block.TextContent)
			sb.WriteString("\n\n")
		}
	}
	return strings.TrimSpace(sb.String())
}
