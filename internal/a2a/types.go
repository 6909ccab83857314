// ABOUTME: A2A agent card wire types as served at the well-known path
// ABOUTME: Mirrors the JSON shape remote agents publish for discovery

package a2a

// WellKnownPath is where an A2A agent serves its card, relative to its base URL.
const WellKnownPath = "/.well-known/agent-card.json"

// AgentCard is an agent's self-describing metadata document, fetched from
// {baseURL}/.well-known/agent-card.json. It is consumed transiently for
// validation and listing, never stored.
type AgentCard struct {
	Name               string             `json:"name"`
	Description        string             `json:"description"`
	URL                string             `json:"url,omitempty"`
	Version            string             `json:"version,omitempty"`
	DefaultInputModes  []string           `json:"defaultInputModes,omitempty"`
	DefaultOutputModes []string           `json:"defaultOutputModes,omitempty"`
	Capabilities       *AgentCapabilities `json:"capabilities,omitempty"`
	Skills             []AgentSkill       `json:"skills,omitempty"`
}

// AgentCapabilities advertises optional protocol features
type AgentCapabilities struct {
	Streaming         bool `json:"streaming,omitempty"`
	PushNotifications bool `json:"pushNotifications,omitempty"`
}

// AgentSkill describes one capability the agent offers
type AgentSkill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	Examples    []string `json:"examples,omitempty"`
}
