package scoring

import "github.com/abhinandc/ai-interview/internal/models"

// StandardDimensions is the fixed rubric applied to every scored round.
// Max scores sum to 100 so the weighted aggregation maps directly onto a
// percentage when every dimension returns.
var StandardDimensions = []models.Dimension{
	{
		Name:          "role_depth",
		Description:   "Depth of role-specific knowledge: does the candidate show hands-on familiarity with the day-to-day work, tools, and failure modes of the role rather than surface-level talking points?",
		MaxScore:      30,
		CriticalBelow: 15,
	},
	{
		Name:          "reasoning",
		Description:   "Quality of reasoning: does the candidate structure the problem, weigh trade-offs, and reach conclusions that follow from stated premises?",
		MaxScore:      20,
		CriticalBelow: 10,
	},
	{
		Name:          "verification",
		Description:   "Verification mindset: does the candidate check claims, test assumptions, and distinguish what they know from what they assume?",
		MaxScore:      20,
		CriticalBelow: 10,
	},
	{
		Name:          "communication",
		Description:   "Communication: is the response clear, appropriately concise, and pitched to the audience?",
		MaxScore:      15,
		CriticalBelow: 8,
	},
	{
		Name:          "reliability",
		Description:   "Reliability signals: does the candidate commit to realistic outcomes, acknowledge limits, and avoid overpromising?",
		MaxScore:      15,
		CriticalBelow: 8,
	},
}
