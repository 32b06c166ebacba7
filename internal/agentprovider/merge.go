package agentprovider

// KnowledgeBaseRef is the entry the provider expects in an agent prompt's
// knowledge_base list.
type KnowledgeBaseRef struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	UsageMode string `json:"usage_mode"`
}

func FileRef(id, name string) KnowledgeBaseRef {
	return KnowledgeBaseRef{Type: "file", ID: id, Name: name, UsageMode: "auto"}
}

// WithKnowledgeBase returns a copy of cfg whose
// conversation_config.agent.prompt.knowledge_base holds only ref. Every other
// field at every level is preserved; cfg itself is not modified.
func WithKnowledgeBase(cfg AgentConfig, ref KnowledgeBaseRef) AgentConfig {
	out := copyMap(cfg)
	conversation := childMap(out, "conversation_config")
	agent := childMap(conversation, "agent")
	prompt := childMap(agent, "prompt")
	prompt["knowledge_base"] = []interface{}{
		map[string]interface{}{
			"type":       ref.Type,
			"id":         ref.ID,
			"name":       ref.Name,
			"usage_mode": ref.UsageMode,
		},
	}
	return out
}

// childMap replaces parent[key] with a shallow copy of its map value (or a new
// map when absent or not an object) and returns it.
func childMap(parent map[string]interface{}, key string) map[string]interface{} {
	existing, _ := parent[key].(map[string]interface{})
	child := copyMap(existing)
	parent[key] = child
	return child
}

func copyMap(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}
