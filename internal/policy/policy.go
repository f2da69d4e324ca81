package policy

// Action names a lifecycle capability checked once at the engine boundary,
// replacing per-route role lists.
type Action string

const (
	OrdersRead    Action = "orders.read"
	OrdersCreate  Action = "orders.create"
	OrdersStatus  Action = "orders.status"
	OrdersItems   Action = "orders.items"
	Payments      Action = "payments"
	Split         Action = "split"
	TablesRead    Action = "tables.read"
	TablesManage  Action = "tables.manage"
	TablesService Action = "tables.service"
)

// capabilities mirrors the role lists the ops team runs with: waiters take
// orders and bills, stations advance preparation, managers edit the floor.
var capabilities = map[Action]map[string]bool{
	OrdersRead:    roles("ADMIN", "MANAGER", "KITCHEN", "BAR", "WAITER", "CASHIER"),
	OrdersCreate:  roles("ADMIN", "WAITER"),
	OrdersStatus:  roles("ADMIN", "KITCHEN", "BAR"),
	OrdersItems:   roles("ADMIN", "WAITER"),
	Payments:      roles("ADMIN", "WAITER", "CASHIER"),
	Split:         roles("ADMIN", "WAITER", "CASHIER"),
	TablesRead:    roles("ADMIN", "MANAGER", "KITCHEN", "BAR", "WAITER", "CASHIER"),
	TablesManage:  roles("ADMIN", "MANAGER"),
	TablesService: roles("ADMIN", "WAITER"),
}

func roles(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// Can reports whether the role may perform the action.
func Can(role string, action Action) bool {
	allowed, ok := capabilities[action]
	if !ok {
		return false
	}
	return allowed[role]
}
