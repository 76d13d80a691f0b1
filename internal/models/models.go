package models

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{}, &Bootstrap{},
		&Stop{}, &Route{}, &RouteStop{},
		&TicketType{},
		&BusAssignment{}, &RegularBusAssignment{}, &RentalBusAssignment{}, &RentalDriver{},
		&QuotaPolicy{}, &FixedQuota{}, &PercentageQuota{},
		&BusTrip{}, &TicketBusTrip{},
		&DamageReport{}, &MaintenanceWork{}, &Task{}, &TaskTool{},
		&RentalRequest{},
	}
}
