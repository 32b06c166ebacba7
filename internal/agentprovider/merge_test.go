package agentprovider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithKnowledgeBasePreservesNestedFields(t *testing.T) {
	original := AgentConfig{
		"agent_id": "agent-1",
		"name":     "Concierge",
		"conversation_config": map[string]interface{}{
			"tts": map[string]interface{}{"voice_id": "v1"},
			"agent": map[string]interface{}{
				"first_message": "Bonjour",
				"prompt": map[string]interface{}{
					"prompt":         "You help tenants.",
					"llm":            "gpt-4o",
					"knowledge_base": []interface{}{map[string]interface{}{"id": "old"}},
				},
			},
		},
	}

	merged := WithKnowledgeBase(original, FileRef("doc-1", "Lease FAQ"))

	assert.Equal(t, "Concierge", merged["name"])
	conversation := merged["conversation_config"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"voice_id": "v1"}, conversation["tts"])
	agent := conversation["agent"].(map[string]interface{})
	assert.Equal(t, "Bonjour", agent["first_message"])
	prompt := agent["prompt"].(map[string]interface{})
	assert.Equal(t, "You help tenants.", prompt["prompt"])
	assert.Equal(t, "gpt-4o", prompt["llm"])

	kb := prompt["knowledge_base"].([]interface{})
	require.Len(t, kb, 1)
	assert.Equal(t, map[string]interface{}{
		"type":       "file",
		"id":         "doc-1",
		"name":       "Lease FAQ",
		"usage_mode": "auto",
	}, kb[0])

	untouched := original["conversation_config"].(map[string]interface{})["agent"].(map[string]interface{})["prompt"].(map[string]interface{})
	assert.Equal(t, []interface{}{map[string]interface{}{"id": "old"}}, untouched["knowledge_base"])
}

func TestWithKnowledgeBaseBuildsMissingLevels(t *testing.T) {
	merged := WithKnowledgeBase(AgentConfig{"conversation_config": "garbage"}, FileRef("d", "n"))
	prompt := merged["conversation_config"].(map[string]interface{})["agent"].(map[string]interface{})["prompt"].(map[string]interface{})
	assert.Len(t, prompt["knowledge_base"], 1)

	fromNil := WithKnowledgeBase(nil, FileRef("d", "n"))
	assert.Contains(t, fromNil, "conversation_config")
}
