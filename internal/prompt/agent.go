package prompt

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

const (
	// DefaultAgent is the agent used when none is chosen.
	DefaultAgent = "Default Agent"

	// AutoAgentName asks the model to pick an agent and write its role prompt.
	AutoAgentName = "auto"
)

// builtinRoles maps agent names to role prompt templates. The single %s
// verb receives the language name.
var builtinRoles = map[string]string{
	"Finance Agent": "You are a seasoned finance analyst AI assistant. " +
		"Your primary goal is to compose comprehensive, astute, impartial, and methodically arranged financial reports " +
		"based on provided data and trends. All answers must be in %s.",
	"Travel Agent": "You are a world-travelled AI tour guide assistant. " +
		"Your main purpose is to draft engaging, insightful, unbiased, and well-structured travel reports " +
		"on given locations, including history, attractions, and cultural insights. All answers must be in %s.",
	"Academic Research Agent": "You are an AI academic research assistant. " +
		"Your primary responsibility is to create thorough, academically rigorous, unbiased, and systematically organized " +
		"reports on a given research topic, following the standards of scholarly work. All answers must be in %s.",
	"Business Analyst": "You are an experienced AI business analyst assistant. " +
		"Your main objective is to produce comprehensive, insightful, impartial, and systematically structured business reports " +
		"based on provided business data, market trends, and strategic analysis. All answers must be in %s.",
	"Computer Security Analyst Agent": "You are an AI specializing in computer security analysis. " +
		"Your principal duty is to generate comprehensive, meticulously detailed, impartial, and systematically structured reports " +
		"on computer security topics. All answers must be in %s.",
	DefaultAgent: "You are an AI critical thinker research assistant. " +
		"Your sole purpose is to write well written, critically acclaimed, objective and structured reports on given text. " +
		"All answers must be in %s.",
}

// Roles resolves agent names to role prompts. Custom prompts loaded from the
// configuration file take precedence over the built-in ones.
type Roles struct {
	custom map[string]string
}

// NewRoles creates a Roles registry. Keys of custom are normalized with
// NormalizeAgentName.
func NewRoles(custom map[string]string) *Roles {
	r := &Roles{custom: make(map[string]string, len(custom))}
	for name, p := range custom {
		r.custom[NormalizeAgentName(name)] = p
	}
	return r
}

// RolePrompt returns the system prompt for agent written for language.
// Unknown agents receive a prompt that only pins the answer language.
func (r *Roles) RolePrompt(agent, lang string) string {
	name := NormalizeAgentName(agent)
	langName := LanguageName(lang)

	if p, ok := r.custom[name]; ok {
		if strings.Contains(p, "%s") {
			return fmt.Sprintf(p, langName)
		}
		return p
	}
	if p, ok := builtinRoles[name]; ok {
		return fmt.Sprintf(p, langName)
	}
	return fmt.Sprintf("No such agent. All answers must be in %s.", langName)
}

// Known reports whether agent has a custom or built-in role prompt.
func (r *Roles) Known(agent string) bool {
	name := NormalizeAgentName(agent)
	if _, ok := r.custom[name]; ok {
		return true
	}
	_, ok := builtinRoles[name]
	return ok
}

// Names returns every known agent name in sorted order.
func (r *Roles) Names() []string {
	set := make(map[string]struct{}, len(builtinRoles)+len(r.custom))
	for name := range builtinRoles {
		set[name] = struct{}{}
	}
	for name := range r.custom {
		set[name] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}
