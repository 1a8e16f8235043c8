package model

// Direction is the lifecycle verb carried by an action.
// Keep these values stable; they are intended for CSV output.
type Direction string

const (
	DirectionOpen  Direction = "OPEN"
	DirectionClose Direction = "CLOSE"
)

// LifecycleAction is a directive for the execution boundary. It is consumed
// exactly once and never stored as state by the reconciler.
//
// Quantity is the unit count for Open. Close always liquidates the full
// position, so its Quantity is 0.
type LifecycleAction struct {
	Symbol    Symbol    `json:"symbol"`
	Direction Direction `json:"direction"`
	Quantity  float64   `json:"quantity"`
}

func OpenAction(sym Symbol, qty float64) LifecycleAction {
	return LifecycleAction{Symbol: sym, Direction: DirectionOpen, Quantity: qty}
}

func CloseAction(sym Symbol) LifecycleAction {
	return LifecycleAction{Symbol: sym, Direction: DirectionClose}
}
