package llm

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/tmc/langchaingo/llms"
	"google.golang.org/genai"

	"github.com/ternarybob/ticketctx/internal/interfaces"
)

// splitSystem validates a conversation and separates the first system message
// from the user/assistant turns.
func splitSystem(messages []interfaces.Message) ([]interfaces.Message, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("messages cannot be empty")
	}

	hasUserMessage := false
	for _, msg := range messages {
		if msg.Role == "user" {
			hasUserMessage = true
			break
		}
	}
	if !hasUserMessage {
		return nil, "", fmt.Errorf("at least one message must have role 'user'")
	}

	turns := make([]interfaces.Message, 0, len(messages))
	var systemText string
	for _, msg := range messages {
		if msg.Role == "system" {
			if systemText == "" {
				systemText = msg.Content
			}
			continue
		}
		turns = append(turns, msg)
	}

	return turns, systemText, nil
}

// convertMessagesToClaude maps turns to Anthropic message params. Unknown roles are sent as user.
func convertMessagesToClaude(messages []interfaces.Message) ([]anthropic.MessageParam, string, error) {
	turns, systemText, err := splitSystem(messages)
	if err != nil {
		return nil, "", err
	}

	claudeMessages := make([]anthropic.MessageParam, 0, len(turns))
	for _, msg := range turns {
		if msg.Role == "assistant" {
			claudeMessages = append(claudeMessages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
			continue
		}
		claudeMessages = append(claudeMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
	}

	return claudeMessages, systemText, nil
}

// convertMessagesToGemini maps turns to Gemini contents; assistant becomes the model role.
func convertMessagesToGemini(messages []interfaces.Message) ([]*genai.Content, string, error) {
	turns, systemText, err := splitSystem(messages)
	if err != nil {
		return nil, "", err
	}

	contents := make([]*genai.Content, 0, len(turns))
	for _, msg := range turns {
		role := genai.RoleUser
		if msg.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
		})
	}

	return contents, systemText, nil
}

// convertMessagesToLangchain maps the whole conversation, system message first,
// to langchaingo message content for OpenAI-compatible models.
func convertMessagesToLangchain(messages []interfaces.Message, systemOverride string) ([]llms.MessageContent, error) {
	turns, systemText, err := splitSystem(messages)
	if err != nil {
		return nil, err
	}
	if systemOverride != "" {
		systemText = systemOverride
	}

	content := make([]llms.MessageContent, 0, len(turns)+1)
	if systemText != "" {
		content = append(content, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemText)},
		})
	}
	for _, msg := range turns {
		role := llms.ChatMessageTypeHuman
		if msg.Role == "assistant" {
			role = llms.ChatMessageTypeAI
		}
		content = append(content, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(msg.Content)},
		})
	}

	return content, nil
}
