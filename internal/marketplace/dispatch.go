package marketplace

import (
	"errors"
	"fmt"
)

var ErrNoEligibleDriver = errors.New("no eligible drivers")

// Assignment is the result of auto-dispatching a load.
type Assignment struct {
	LoadID     string `json:"loadId"`
	DriverID   string `json:"driverId"`
	DriverName string `json:"driverName"`

	// EquipmentMatch is false when no available driver had matching
	// equipment and the first available driver was taken instead.
	EquipmentMatch bool `json:"equipmentMatch"`
}

// Notice is the operator-facing message for the assignment.
func (a Assignment) Notice() string {
	return fmt.Sprintf("Assigned %s to %s.", a.LoadID, a.label())
}

func (a Assignment) label() string {
	if a.DriverName != "" {
		return a.DriverName
	}
	return a.DriverID
}

// AutoDispatch assigns load to the first driver whose HOS state is
// Available and whose equipment matches, either exactly or by equipment
// class. Without such a driver the first Available driver is used. Drivers
// in any other HOS state are never assigned.
func AutoDispatch(load Load, drivers []Driver) (Assignment, error) {
	var fallback *Driver
	for i := range drivers {
		d := &drivers[i]
		if d.HOS != HOSAvailable {
			continue
		}
		if d.Equipment == load.Equipment || fits(load.Equipment, d.Equipment) {
			return assign(load, *d, true), nil
		}
		if fallback == nil {
			fallback = d
		}
	}
	if fallback == nil {
		return Assignment{}, fmt.Errorf("%w for %s (HOS constraint)", ErrNoEligibleDriver, load.ID)
	}
	return assign(load, *fallback, false), nil
}

func assign(load Load, d Driver, exact bool) Assignment {
	return Assignment{LoadID: load.ID, DriverID: d.ID, DriverName: d.Name, EquipmentMatch: exact}
}
