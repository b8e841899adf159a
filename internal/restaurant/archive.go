package restaurant

import "sort"

// archive keeps dispatched orders by order id until they are resumed.
type archive struct {
	byID map[string]*Order
}

func newArchive() *archive {
	return &archive{byID: make(map[string]*Order)}
}

func (a *archive) put(o *Order) {
	a.byID[o.ID] = o
}

func (a *archive) take(orderID string) (*Order, bool) {
	o, ok := a.byID[orderID]
	if ok {
		delete(a.byID, orderID)
	}
	return o, ok
}

func (a *archive) get(orderID string) (*Order, bool) {
	o, ok := a.byID[orderID]
	return o, ok
}

func (a *archive) len() int {
	return len(a.byID)
}

// list returns dispatched orders, most recently dispatched first.
func (a *archive) list() []*Order {
	out := make([]*Order, 0, len(a.byID))
	for _, o := range a.byID {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DispatchedAt.Equal(*out[j].DispatchedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].DispatchedAt.After(*out[j].DispatchedAt)
	})
	return out
}
