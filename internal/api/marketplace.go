package api

import (
	"context"
	stderrors "errors"
	"net/http"

	"murmax-onboarding/internal/common/errors"
	"murmax-onboarding/internal/common/metrics"
	"murmax-onboarding/internal/marketplace"
)

type loadsResponse struct {
	Count int                `json:"count"`
	Loads []marketplace.Load `json:"loads"`
}

type postLoadResponse struct {
	Message string                  `json:"message"`
	Load    marketplace.LoadRequest `json:"load"`
}

type dispatchRequest struct {
	LoadID  string               `json:"loadId,omitempty"`
	Load    *marketplace.Load    `json:"load,omitempty"`
	Drivers []marketplace.Driver `json:"drivers,omitempty"`
}

type dispatchResponse struct {
	marketplace.Assignment
	Notice string `json:"notice"`
}

func (s *Server) handleListLoads(w http.ResponseWriter, r *http.Request) {
	loads := marketplace.SampleLoads()
	writeJSON(w, http.StatusOK, loadsResponse{Count: len(loads), Loads: loads})
}

func (s *Server) handlePostLoad(w http.ResponseWriter, r *http.Request) {
	var req marketplace.LoadRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err, nil)
		return
	}
	msg, err := marketplace.PostLoad(req)
	if err != nil {
		s.writeError(w, errors.NewValidationError("Enter origin and destination to post.", err.Error()), nil)
		return
	}
	writeJSON(w, http.StatusAccepted, postLoadResponse{Message: msg, Load: req})
}

// handleDispatch auto-assigns a board load. The roster is the request's
// drivers, else the driver profiles in the directory, else the sample roster.
func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var req dispatchRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err, nil)
		return
	}

	var load marketplace.Load
	switch {
	case req.LoadID != "":
		l, ok := marketplace.FindLoad(marketplace.SampleLoads(), req.LoadID)
		if !ok {
			s.writeError(w, errors.NewNotFoundError("Load", req.LoadID), nil)
			return
		}
		load = l
	case req.Load != nil:
		load = *req.Load
	default:
		s.writeError(w, errors.NewValidationError("Dispatch needs a load", "set loadId or load"), nil)
		return
	}

	drivers := req.Drivers
	if len(drivers) == 0 {
		roster, err := s.roster(r.Context())
		if err != nil {
			s.writeError(w, errors.NewPersistenceError("list the directory", err), nil)
			return
		}
		drivers = roster
	}

	a, err := marketplace.AutoDispatch(load, drivers)
	if err != nil {
		metrics.MarketplaceMatches.WithLabelValues("dispatch", "none").Inc()
		s.writeError(w, errors.NewNoMatchError("No eligible drivers", err), nil)
		return
	}
	outcome := "matched"
	if !a.EquipmentMatch {
		outcome = "fallback"
	}
	metrics.MarketplaceMatches.WithLabelValues("dispatch", outcome).Inc()
	s.logger.Info("load dispatched", map[string]interface{}{
		"loadId":   a.LoadID,
		"driverId": a.DriverID,
		"outcome":  outcome,
	})
	writeJSON(w, http.StatusOK, dispatchResponse{Assignment: a, Notice: a.Notice()})
}

func (s *Server) roster(ctx context.Context) ([]marketplace.Driver, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if drivers := marketplace.DriversFromRecords(records); len(drivers) > 0 {
		return drivers, nil
	}
	return marketplace.SampleDrivers(), nil
}

func (s *Server) handleInstantBook(w http.ResponseWriter, r *http.Request) {
	req := marketplace.NewLoadRequest()
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err, nil)
		return
	}

	b, err := marketplace.InstantBook(req, marketplace.InHouseOffers(), marketplace.PartnerOffers())
	switch {
	case stderrors.Is(err, marketplace.ErrMissingFields):
		s.writeError(w, errors.NewValidationError("Enter origin, destination, budget, equipment.", err.Error()).
			WithMetadata("log", b.Log), nil)
		return
	case err != nil:
		metrics.MarketplaceMatches.WithLabelValues("instant", "none").Inc()
		s.writeError(w, errors.NewNoMatchError("No partner match under budget.", err).
			WithMetadata("log", b.Log), nil)
		return
	}

	metrics.MarketplaceMatches.WithLabelValues("instant", b.Source).Inc()
	s.logger.Info("instant booking", map[string]interface{}{
		"carrier": b.Carrier,
		"source":  b.Source,
		"rateUSD": b.RateCon.RateUSD,
	})
	writeJSON(w, http.StatusOK, b)
}

// handleRateCon returns the confirmation for a board load, as JSON or, with
// format=text, as the downloadable document.
func (s *Server) handleRateCon(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	load, ok := marketplace.FindLoad(marketplace.SampleLoads(), id)
	if !ok {
		s.writeError(w, errors.NewNotFoundError("Load", id), nil)
		return
	}
	rc := marketplace.RateConFor(load)
	if err := rc.Validate(); err != nil {
		s.writeError(w, errors.NewValidationError("Rate confirmation is incomplete", err.Error()), nil)
		return
	}

	if r.URL.Query().Get("format") != "text" {
		writeJSON(w, http.StatusOK, rc)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+rc.FileName()+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(rc.Render()))
}
