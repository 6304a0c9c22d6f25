package voice

import (
	"errors"

	"go.uber.org/zap"
)

const conversationURL = "wss://api.elevenlabs.io/v1/convai/conversation?agent_id="

// ErrNoAgents is returned when neither the requested difficulty nor the
// medium fallback has an agent configured.
var ErrNoAgents = errors.New("no voice agents configured")

// Resolver maps a 1-5 difficulty level to a realtime voice agent. The
// mapping is pure configuration; raising difficulty mid-session is the
// provider's concern.
type Resolver struct {
	agents map[int]string
	logger *zap.Logger
}

func NewResolver(agents map[int]string, logger *zap.Logger) *Resolver {
	return &Resolver{agents: agents, logger: logger}
}

// Resolve returns the agent id and connection URL for a difficulty level.
// Zero difficulty defaults to 3; an unconfigured level falls back to the
// medium agent.
func (r *Resolver) Resolve(difficulty int) (agentID, wsURL string, level int, err error) {
	level = difficulty
	if level == 0 {
		level = 3
	}

	agentID = r.agents[level]
	if agentID == "" {
		r.logger.Warn("no agent configured for difficulty, using medium fallback",
			zap.Int("difficulty", level))
		agentID = r.agents[3]
	}
	if agentID == "" {
		return "", "", level, ErrNoAgents
	}
	return agentID, conversationURL + agentID, level, nil
}
