package constants

// CancelReason records why an order left the pending or confirmed state.
type CancelReason string

const (
	CancelReasonUnknown            CancelReason = ""
	CancelReasonReservationExpired CancelReason = "reservation_expired"
	CancelReasonBuyerRequest       CancelReason = "buyer_request"
	CancelReasonRefunded           CancelReason = "refunded"
)

func (r CancelReason) String() string {
	return string(r)
}

func ParseCancelReason(s string) CancelReason {
	switch CancelReason(s) {
	case CancelReasonReservationExpired:
		return CancelReasonReservationExpired
	case CancelReasonBuyerRequest:
		return CancelReasonBuyerRequest
	case CancelReasonRefunded:
		return CancelReasonRefunded
	default:
		return CancelReasonUnknown
	}
}
