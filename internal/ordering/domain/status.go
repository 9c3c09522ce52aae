package domain

// OrderStatus is a step of the order lifecycle. The only legal moves are
// pending -> received -> making -> completed.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusReceived  OrderStatus = "received"
	StatusMaking    OrderStatus = "making"
	StatusCompleted OrderStatus = "completed"
)

// Statuses lists every status in lifecycle order.
var Statuses = []OrderStatus{StatusPending, StatusReceived, StatusMaking, StatusCompleted}

func (s OrderStatus) String() string {
	return string(s)
}

// Next returns the status that follows s. ok is false for completed and unknown statuses.
func (s OrderStatus) Next() (next OrderStatus, ok bool) {
	switch s {
	case StatusPending:
		return StatusReceived, true
	case StatusReceived:
		return StatusMaking, true
	case StatusMaking:
		return StatusCompleted, true
	default:
		return s, false
	}
}

// Terminal reports whether no further transition exists.
func (s OrderStatus) Terminal() bool {
	_, ok := s.Next()
	return !ok
}

// Label is the admin dashboard name of the status.
func (s OrderStatus) Label() string {
	switch s {
	case StatusPending:
		return "주문 대기"
	case StatusReceived:
		return "주문 접수"
	case StatusMaking:
		return "제조 중"
	case StatusCompleted:
		return "제조 완료"
	default:
		return string(s)
	}
}

// ActionLabel is the text of the admin button that advances an order out of s.
// Terminal statuses have no action.
func (s OrderStatus) ActionLabel() string {
	switch s {
	case StatusPending:
		return "주문 접수"
	case StatusReceived:
		return "제조 시작"
	case StatusMaking:
		return "제조 완료"
	default:
		return ""
	}
}

// AdvanceOrder moves the order one step forward. A completed order is left as is and advanced
// is false. Unknown ids fail with ErrOrderNotFound.
func AdvanceOrder(s State, orderID int64) (next State, order Order, advanced bool, err error) {
	for i, o := range s.Orders {
		if o.ID != orderID {
			continue
		}
		to, ok := o.Status.Next()
		if !ok {
			return s, o.copy(), false, nil
		}
		next = s.clone()
		next.Orders[i].Status = to
		return next, next.Orders[i].copy(), true, nil
	}
	return s, Order{}, false, NewError(CodeNotFound, ErrOrderNotFound, MsgOrderNotFound)
}

// ActiveOrders returns every order that is not completed, newest first.
func ActiveOrders(s State) []Order {
	active := make([]Order, 0, len(s.Orders))
	for _, o := range s.Orders {
		if o.Status != StatusCompleted {
			active = append(active, o.copy())
		}
	}
	return active
}

// Stats are the dashboard counters, computed over every order ever placed.
type Stats struct {
	Total     int
	Pending   int
	Received  int
	Making    int
	Completed int
}

// ComputeStats folds the order list into Stats.
func ComputeStats(s State) Stats {
	st := Stats{Total: len(s.Orders)}
	for _, o := range s.Orders {
		switch o.Status {
		case StatusPending:
			st.Pending++
		case StatusReceived:
			st.Received++
		case StatusMaking:
			st.Making++
		case StatusCompleted:
			st.Completed++
		}
	}
	return st
}
