package marketplace

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidRateCon = errors.New("invalid rate confirmation")

// RateCon is a rate confirmation between shipper, carrier and broker.
type RateCon struct {
	LoadID      string `json:"loadId"`
	Shipper     string `json:"shipper"`
	Carrier     string `json:"carrier"`
	Broker      string `json:"broker"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Equipment   string `json:"equipment"`
	RateUSD     int    `json:"rateUSD"`
	Terms       string `json:"terms"`
}

// RateConFor builds the confirmation for hauling a board load in-house.
func RateConFor(load Load) RateCon {
	return RateCon{
		LoadID:      load.ID,
		Shipper:     DefaultShipper,
		Carrier:     InHouseCarrier,
		Broker:      load.Broker,
		Origin:      load.Origin,
		Destination: load.Destination,
		Equipment:   load.Equipment,
		RateUSD:     load.RateUSD,
		Terms:       DefaultTerms,
	}
}

// Validate requires a load id and a positive rate.
func (rc RateCon) Validate() error {
	if strings.TrimSpace(rc.LoadID) == "" {
		return fmt.Errorf("%w: load id is required", ErrInvalidRateCon)
	}
	if rc.RateUSD <= 0 {
		return fmt.Errorf("%w: rate must be positive", ErrInvalidRateCon)
	}
	return nil
}

// FileName is the download name of the rendered confirmation.
func (rc RateCon) FileName() string {
	return rc.LoadID + "_RateCon.txt"
}

// Render produces the plain-text confirmation document.
func (rc RateCon) Render() string {
	var b strings.Builder
	b.WriteString("RATE CONFIRMATION\n\n")
	fmt.Fprintf(&b, "Load: %s\n", rc.LoadID)
	fmt.Fprintf(&b, "Shipper: %s\n", rc.Shipper)
	fmt.Fprintf(&b, "Carrier: %s\n", rc.Carrier)
	fmt.Fprintf(&b, "Broker: %s\n", rc.Broker)
	fmt.Fprintf(&b, "Origin: %s\n", rc.Origin)
	fmt.Fprintf(&b, "Destination: %s\n", rc.Destination)
	fmt.Fprintf(&b, "Equipment: %s\n", rc.Equipment)
	fmt.Fprintf(&b, "Rate: $%d\n\n", rc.RateUSD)
	fmt.Fprintf(&b, "Terms:\n%s", rc.Terms)
	return b.String()
}
