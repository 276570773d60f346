package schema

// FillStatus enumerates the terminal states of a single fill evaluation.
type FillStatus string

const (
	// FillStatusFilled marks a complete execution.
	FillStatusFilled FillStatus = "filled"
	// FillStatusPartial marks an execution below the requested quantity.
	FillStatusPartial FillStatus = "partial"
	// FillStatusResting marks a non-marketable limit order left working.
	FillStatusResting FillStatus = "resting"
	// FillStatusNoFill marks an evaluation that produced no execution.
	FillStatusNoFill FillStatus = "no_fill"
	// FillStatusTriggered marks a stop order that converted and executed.
	FillStatusTriggered FillStatus = "triggered"
)

// FillOutcome is the immutable result of evaluating one intent against one
// snapshot. It is created once per evaluation and never mutated afterwards.
type FillOutcome struct {
	Price     float64
	FilledQty float64
	SlipCost  float64
	Status    FillStatus
}

// NoFill is the zero outcome shared by every non-executing path.
func NoFill() FillOutcome {
	return FillOutcome{Price: 0, FilledQty: 0, SlipCost: 0, Status: FillStatusNoFill}
}

// Resting is the outcome for a limit order left working on the book.
func Resting() FillOutcome {
	return FillOutcome{Price: 0, FilledQty: 0, SlipCost: 0, Status: FillStatusResting}
}
