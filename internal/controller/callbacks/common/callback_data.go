package common

// Префиксы callback data. ID дописываются через ":"
const (
	Noop = "noop"

	ViewMySlots   = "view_my_slots"
	ViewMarket    = "view_market"
	ViewRequests  = "view_requests"
	ViewWeek      = "view_week"
	NewSlot       = "new_slot"
	ToggleSlot    = "toggle_slot:"    // toggle_slot:slot_id
	DeleteSlot    = "delete_slot:"    // delete_slot:slot_id
	ConfirmDelete = "confirm_delete:" // confirm_delete:slot_id

	SwapTarget = "swap_target:" // swap_target:their_slot_id
	SwapOffer  = "swap_offer:"  // swap_offer:their_slot_id:my_slot_id
	SwapAccept = "swap_accept:" // swap_accept:request_id
	SwapReject = "swap_reject:" // swap_reject:request_id
)
