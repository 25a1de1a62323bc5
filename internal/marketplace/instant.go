package marketplace

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	// StandardMiles is the lane length instant quotes are priced on.
	StandardMiles = 300
	// MinPartnerOnTime is the on-time rate a partner needs to be booked.
	MinPartnerOnTime = 0.95
)

// Booking sources.
const (
	SourceInHouse = "in-house"
	SourcePartner = "partner"
)

var (
	ErrMissingFields        = errors.New("missing required fields (origin/destination/budget/equipment)")
	ErrNoPartnerUnderBudget = errors.New("no eligible carrier under budget")
	ErrMissingRoute         = errors.New("enter origin and destination to post")
)

// LoadRequest is the shipper's load form.
type LoadRequest struct {
	Origin       string `json:"origin"`
	Destination  string `json:"destination"`
	PickupDate   string `json:"pickupDate,omitempty"`
	DeliveryDate string `json:"deliveryDate,omitempty"`
	Equipment    string `json:"equipment"`
	WeightLbs    int    `json:"weightLbs,omitempty"`
	BudgetUSD    int    `json:"budgetUSD"`
	Notes        string `json:"notes,omitempty"`
}

// NewLoadRequest returns the form defaults a shipper starts from.
func NewLoadRequest() LoadRequest {
	return LoadRequest{Equipment: "26' Box", WeightLbs: 5000, BudgetUSD: 1200}
}

func (r LoadRequest) hasRoute() bool {
	return strings.TrimSpace(r.Origin) != "" && strings.TrimSpace(r.Destination) != ""
}

// Quote is the offer's price for a standard lane, rounded to whole dollars.
func (o Offer) Quote() int {
	return int(math.Round(o.RPM * StandardMiles))
}

// Booking is the outcome of an instant booking. Log records each decision
// and is filled in even when booking fails.
type Booking struct {
	Carrier string   `json:"carrier,omitempty"`
	Source  string   `json:"source,omitempty"`
	RPM     float64  `json:"rpm,omitempty"`
	RateCon RateCon  `json:"rateCon,omitzero"`
	Log     []string `json:"log"`
}

func (b *Booking) logf(format string, args ...any) {
	b.Log = append(b.Log, fmt.Sprintf(format, args...))
}

// InstantBook runs the No-Strings instant rate shop. The first in-house
// offer for the requested equipment class is booked when its quote fits the
// budget. Otherwise partners with that class and an on-time rate of at least
// MinPartnerOnTime are tried from the lowest RPM up, and the first quote
// within budget is booked.
func InstantBook(req LoadRequest, inHouse, partners []Offer) (Booking, error) {
	var b Booking
	b.logf("Starting No-Strings™ Instant booking…")
	if !req.hasRoute() || req.BudgetUSD <= 0 || strings.TrimSpace(req.Equipment) == "" {
		b.logf("Missing required fields (origin/destination/budget/equipment).")
		return b, ErrMissingFields
	}

	b.logf("Searching in-house MurMax® capacity…")
	if ih, ok := firstFitting(inHouse, req.Equipment); ok {
		if ih.Quote() <= req.BudgetUSD {
			b.logf("In-house within budget → Booking %s.", ih.Carrier)
			b.book(req, ih, SourceInHouse, BrokerDirect)
			return b, nil
		}
		b.logf("In-house over budget → Falling back to partner network.")
	} else {
		b.logf("No in-house equipment match → Partner search.")
	}

	b.logf("Scanning partners for lowest RPM under budget…")
	var eligible []Offer
	for _, o := range partners {
		if fits(o.Equipment, req.Equipment) && o.OnTime >= MinPartnerOnTime {
			eligible = append(eligible, o)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool { return eligible[i].RPM < eligible[j].RPM })
	for _, o := range eligible {
		if o.Quote() <= req.BudgetUSD {
			b.logf("Selected %s at $%.2f/mi (lowest under budget).", o.Carrier, o.RPM)
			b.book(req, o, SourcePartner, BrokerMarketplace)
			return b, nil
		}
	}
	b.logf("No eligible carrier under budget. Consider raising budget or relaxing constraints.")
	return b, ErrNoPartnerUnderBudget
}

func (b *Booking) book(req LoadRequest, o Offer, source, broker string) {
	b.Carrier = o.Carrier
	b.Source = source
	b.RPM = o.RPM
	b.RateCon = RateCon{
		LoadID:      InstantLoadID,
		Shipper:     DefaultShipper,
		Carrier:     o.Carrier,
		Broker:      broker,
		Origin:      req.Origin,
		Destination: req.Destination,
		Equipment:   req.Equipment,
		RateUSD:     o.Quote(),
		Terms:       DefaultTerms,
	}
	b.logf("Escrow hold initialized.")
}

func firstFitting(offers []Offer, equipment string) (Offer, bool) {
	for _, o := range offers {
		if fits(o.Equipment, equipment) {
			return o, true
		}
	}
	return Offer{}, false
}

// PostLoad puts a shipper load on the board. Origin and destination are
// required; the returned text confirms the lane.
func PostLoad(req LoadRequest) (string, error) {
	if !req.hasRoute() {
		return "", ErrMissingRoute
	}
	return fmt.Sprintf("Load posted: %s → %s.", strings.TrimSpace(req.Origin), strings.TrimSpace(req.Destination)), nil
}
