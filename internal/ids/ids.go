package ids

import (
	"strings"

	"github.com/google/uuid"
)

// Entity prefixes.
const (
	BusAssignment   = "BA"
	QuotaPolicy     = "QP"
	BusTrip         = "BT"
	TicketBusTrip   = "TBT"
	DamageReport    = "DR"
	MaintenanceWork = "MW"
	RentalRequest   = "RR"
	RentalDriver    = "RD"
	Route           = "RT"
	RouteStop       = "RTS"
	Stop            = "STP"
	TicketType      = "TT"
	Task            = "TSK"
	TaskTool        = "TSKT"
	User            = "USR"
)

// New returns "<prefix>-<random suffix>".
func New(prefix string) string {
	return prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// HasPrefix reports whether id was generated for the given prefix.
func HasPrefix(id, prefix string) bool {
	return strings.HasPrefix(id, prefix+"-") && len(id) > len(prefix)+1
}
