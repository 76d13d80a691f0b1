package cache

// Entity tags. A write invalidates the tags of every read model it feeds.
const (
	EntityAssignments = "assignments"
	EntityDashboard   = "dashboard"
	EntityTrips       = "trips"
	EntityMaintenance = "maintenance"
	EntityRentals     = "rentals"
	EntityRoutes      = "routes"
	EntityStops       = "stops"
	EntityTicketTypes = "ticket-types"
	EntityRegistry    = "registry"
)

// OperationsEntities are the read models touched by any assignment or trip
// write.
var OperationsEntities = []string{EntityAssignments, EntityTrips, EntityDashboard}
