// Package marketplace matches loads with drivers and carriers once profiles
// reach the directory: HOS-aware auto-dispatch, the No-Strings instant rate
// shop, rate confirmations and the shipper load post gate.
package marketplace

import (
	"strings"

	"murmax-onboarding/internal/directory"
	"murmax-onboarding/internal/onboarding"
)

// HOS is a driver's hours-of-service state.
type HOS string

const (
	HOSAvailable HOS = "Available"
	HOSDriving   HOS = "Driving"
	HOSRest      HOS = "Rest"
	HOSNearLimit HOS = "Near Limit"
)

// Names used on generated rate confirmations.
const (
	InHouseCarrier    = "MurMax Express®"
	DefaultShipper    = "Shipper, Inc."
	BrokerDirect      = "Direct"
	BrokerMarketplace = "Marketplace"
	InstantLoadID     = "AUTO-INSTANT"
)

// DefaultTerms are the rate confirmation terms every booking carries.
const DefaultTerms = "1) Carrier complies with FMCSA regulations.\n" +
	"2) Detention: $50/hr after 2 free hours.\n" +
	"3) TONU: $150 if cancelled <2h pre-pick.\n" +
	"4) POD + signed BOL required for payment.\n" +
	"5) Cargo insurance >= $100,000.\n" +
	"6) Payment NET 24h after verified delivery (Escrow)."

type Driver struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	HOS       HOS    `json:"hos"`
	Equipment string `json:"equipment"`
}

// Load is a posting on the load board.
type Load struct {
	ID            string `json:"id"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	RateUSD       int    `json:"rateUSD"`
	DistanceMiles int    `json:"distance,omitempty"`
	Equipment     string `json:"equipment"`
	Broker        string `json:"broker,omitempty"`
}

// Offer is a carrier's standing price for one equipment type.
type Offer struct {
	Carrier   string  `json:"carrier"`
	RPM       float64 `json:"rpm"`
	ETAHours  float64 `json:"eta"`
	Equipment string  `json:"equipment"`
	OnTime    float64 `json:"onTime"`
}

// SampleDrivers is the roster used when no driver profiles are on file.
func SampleDrivers() []Driver {
	return []Driver{
		{ID: "DRV-201", Name: "J. Rivera", HOS: HOSAvailable, Equipment: "26' Box"},
		{ID: "DRV-144", Name: "M. Lewis", HOS: HOSNearLimit, Equipment: "53' Van"},
		{ID: "DRV-089", Name: "S. Patel", HOS: HOSRest, Equipment: "Reefer"},
		{ID: "DRV-033", Name: "A. Chen", HOS: HOSAvailable, Equipment: "Hotshot"},
	}
}

// SampleLoads is the load board.
func SampleLoads() []Load {
	return []Load{
		{ID: "MMX-1042", Origin: "Tampa, FL", Destination: "Atlanta, GA", RateUSD: 1250, DistanceMiles: 456, Equipment: "26' Box", Broker: "ATL Logistics"},
		{ID: "MMX-1043", Origin: "Miami, FL", Destination: "Savannah, GA", RateUSD: 1425, DistanceMiles: 485, Equipment: "53' Van", Broker: "Seaport Freight"},
		{ID: "MMX-1044", Origin: "Orlando, FL", Destination: "Houston, TX", RateUSD: 2800, DistanceMiles: 969, Equipment: "Reefer", Broker: "TX Hub"},
		{ID: "MMX-1045", Origin: "Jacksonville, FL", Destination: "Charlotte, NC", RateUSD: 1100, DistanceMiles: 370, Equipment: "Hotshot", Broker: "Queen City"},
	}
}

func InHouseOffers() []Offer {
	return []Offer{
		{Carrier: InHouseCarrier, RPM: 2.35, ETAHours: 3.2, Equipment: "26' Box", OnTime: 0.98},
	}
}

func PartnerOffers() []Offer {
	return []Offer{
		{Carrier: "Queen City Freight", RPM: 2.20, ETAHours: 4.0, Equipment: "26' Box", OnTime: 0.96},
		{Carrier: "TX Hub Carriers", RPM: 2.10, ETAHours: 5.0, Equipment: "Reefer", OnTime: 0.95},
		{Carrier: "Seaport Freight", RPM: 2.28, ETAHours: 3.8, Equipment: "53' Van", OnTime: 0.94},
	}
}

// FindLoad looks a load up by id.
func FindLoad(loads []Load, id string) (Load, bool) {
	id = strings.TrimSpace(id)
	for _, l := range loads {
		if l.ID == id {
			return l, true
		}
	}
	return Load{}, false
}

// DriversFromRecords turns the driver profiles in the directory into a
// dispatch roster. Records of other roles are skipped.
func DriversFromRecords(records []directory.Record) []Driver {
	var out []Driver
	for _, r := range records {
		if r.Role != onboarding.RoleDriver {
			continue
		}
		out = append(out, Driver{
			ID:        r.ID,
			Name:      r.Name,
			HOS:       HOS(r.HOS),
			Equipment: r.Equipment,
		})
	}
	return out
}

// equipmentClass is the leading word of an equipment label, e.g. "26'" for
// "26' Box".
func equipmentClass(equipment string) string {
	fields := strings.Fields(equipment)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// fits reports whether equipment offers the class of the wanted label.
func fits(equipment, wanted string) bool {
	class := equipmentClass(wanted)
	return class != "" && strings.Contains(equipment, class)
}
