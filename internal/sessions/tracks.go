package sessions

import "github.com/abhinandc/ai-interview/internal/models"

// RoundPlanForTrack returns the round template a new session starts from.
// Unknown tracks fall back to the sales plan.
func RoundPlanForTrack(track string, difficulty int) models.RoundPlan {
	switch track {
	case models.TrackAgenticEng:
		return agenticEngRounds(difficulty)
	default:
		return salesRounds(difficulty)
	}
}

func salesRounds(difficulty int) models.RoundPlan {
	return models.RoundPlan{
		{
			RoundNumber:     1,
			RoundType:       models.RoundTypeVoiceRealtime,
			Title:           "Round 1: Live Voice Call with AI Prospect",
			Prompt:          "Conduct a live voice discovery call with an AI prospect. Ask discovery questions, handle objections, demonstrate value, and close for next steps.",
			DurationMinutes: 12,
			Status:          models.RoundPending,
			Config: models.JSONMap{
				"initial_difficulty": difficulty,
				"allow_curveballs":   false,
				"voice":              "sage",
			},
		},
		{
			RoundNumber:     2,
			RoundType:       models.RoundTypeEmail,
			Title:           "Round 2: Negotiation via Email Thread",
			Prompt:          "Respond to the prospect's email objections. Maintain professional tone, protect margins, and demonstrate strong negotiation posture.",
			DurationMinutes: 15,
			Status:          models.RoundPending,
			Config: models.JSONMap{
				"thread_depth":         2,
				"initial_objection":    "discount_request",
				"escalation_objection": "timeline_pressure",
			},
		},
		{
			RoundNumber:     3,
			RoundType:       models.RoundTypeText,
			Title:           "Round 3: Follow-up Discipline",
			Prompt:          "Write an internal handoff note summarizing the deal status, key commitments, and next steps for the account team.",
			DurationMinutes: 5,
			Status:          models.RoundPending,
			Config: models.JSONMap{
				"optional": true,
			},
		},
	}
}

func agenticEngRounds(difficulty int) models.RoundPlan {
	return models.RoundPlan{
		{
			RoundNumber:     1,
			RoundType:       models.RoundTypeVoiceRealtime,
			Title:           "Round 1: System Walkthrough with AI Interviewer",
			Prompt:          "Walk through a recent system you built end to end. Expect probing on trade-offs, failure modes, and what you would do differently.",
			DurationMinutes: 15,
			Status:          models.RoundPending,
			Config: models.JSONMap{
				"initial_difficulty": difficulty,
				"allow_curveballs":   false,
				"voice":              "sage",
			},
		},
		{
			RoundNumber:     2,
			RoundType:       models.RoundTypeCode,
			Title:           "Round 2: Debugging Under Time Pressure",
			Prompt:          "Diagnose the failing pipeline described below. Explain your hypothesis, the checks you would run, and the fix you would ship.",
			DurationMinutes: 20,
			Status:          models.RoundPending,
			Config: models.JSONMap{
				"language": "any",
			},
		},
		{
			RoundNumber:     3,
			RoundType:       models.RoundTypeText,
			Title:           "Round 3: Incident Writeup",
			Prompt:          "Write a short incident summary for the on-call channel covering impact, root cause, and follow-up actions.",
			DurationMinutes: 10,
			Status:          models.RoundPending,
			Config: models.JSONMap{
				"optional": true,
			},
		},
	}
}
