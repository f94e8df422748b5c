package llm

import (
	"encoding/json"
	"strings"
)

// ParseStringList extracts the first JSON array of strings from a model
// reply. Code fences and surrounding prose are ignored. Blank entries are
// dropped.
func ParseStringList(text string) ([]string, error) {
	for i := strings.IndexByte(text, '['); i >= 0; {
		var list []string
		if err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&list); err == nil {
			out := make([]string, 0, len(list))
			for _, s := range list {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
			return out, nil
		}
		next := strings.IndexByte(text[i+1:], '[')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return nil, ErrNoJSON
}

// AgentChoice is the model's pick of research agent.
type AgentChoice struct {
	Agent      string `json:"agent"`
	Server     string `json:"server"`
	RolePrompt string `json:"agent_role_prompt"`
}

// Name returns the agent name, accepting the older "server" key.
func (c AgentChoice) Name() string {
	if c.Agent != "" {
		return c.Agent
	}
	return c.Server
}

// ParseAgentChoice extracts the first JSON object with an agent name and a
// role prompt from a model reply.
func ParseAgentChoice(text string) (AgentChoice, error) {
	for i := strings.IndexByte(text, '{'); i >= 0; {
		var c AgentChoice
		err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&c)
		if err == nil && c.Name() != "" && c.RolePrompt != "" {
			return c, nil
		}
		next := strings.IndexByte(text[i+1:], '{')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return AgentChoice{}, ErrNoJSON
}
