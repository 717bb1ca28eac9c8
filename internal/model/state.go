package model

// WorkflowState 單一車輛交易的狀態
type WorkflowState string

const (
	StateAwaitingSpot WorkflowState = "awaiting_spot"
	StateSpotReserved WorkflowState = "spot_reserved"
	StateTicketOpen   WorkflowState = "ticket_open"
	StateFareComputed WorkflowState = "fare_computed"
	StateTicketClosed WorkflowState = "ticket_closed"
	StateSpotReleased WorkflowState = "spot_released"
)

// IsValid 驗證狀態是否有效
func (s WorkflowState) IsValid() bool {
	switch s {
	case StateAwaitingSpot, StateSpotReserved, StateTicketOpen,
		StateFareComputed, StateTicketClosed, StateSpotReleased:
		return true
	}
	return false
}

// IsTerminal 只有 SpotReleased 是成功終點
func (s WorkflowState) IsTerminal() bool {
	return s == StateSpotReleased
}

// CanTransitionTo 狀態只能依序前進一步
func (s WorkflowState) CanTransitionTo(target WorkflowState) bool {
	transitions := map[WorkflowState]WorkflowState{
		StateAwaitingSpot: StateSpotReserved,
		StateSpotReserved: StateTicketOpen,
		StateTicketOpen:   StateFareComputed,
		StateFareComputed: StateTicketClosed,
		StateTicketClosed: StateSpotReleased,
	}

	next, ok := transitions[s]
	return ok && next == target
}
