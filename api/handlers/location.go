package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/linesmerrill/vehicle-intake-api/api"
	"github.com/linesmerrill/vehicle-intake-api/intake"
	"github.com/linesmerrill/vehicle-intake-api/location"
	"github.com/linesmerrill/vehicle-intake-api/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Location resolves ZIP codes, once or while the user types
type Location struct {
	Resolver *location.Resolver
	Intakes  *intake.Service
	Debounce time.Duration
}

type zipInput struct {
	ZipCode string `json:"zipcode"`
}

// LocationHandler resolves the zipcode query parameter
func (h Location) LocationHandler(w http.ResponseWriter, r *http.Request) {
	zip := r.URL.Query().Get("zipcode")
	loc, err := h.Resolver.Resolve(r.Context(), zip)
	if err != nil {
		writeError(w, "failed to resolve zipcode", err)
		return
	}
	writeJSON(w, http.StatusOK, models.LocationResult{Input: zip, Location: loc, ReadOnly: !loc.Empty()})
}

// ZipStreamHandler upgrades to a websocket that takes ZIP keystrokes as {"zipcode": "..."}
// and answers with one LocationResult per settled input. A resolved location is written
// onto the intake.
func (h Location) ZipStreamHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["intake_id"]
	caller := api.SessionFrom(r.Context())
	if _, err := h.Intakes.Get(r.Context(), caller, id); err != nil {
		writeError(w, "failed to open zip stream", err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnw("websocket upgrade failed", "intake", id, "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	lookup := location.NewLookup(ctx, h.Resolver, h.Debounce, func(res models.LocationResult) {
		if err := conn.WriteJSON(res); err != nil {
			zap.S().Debugw("failed to write zip result", "intake", id, "error", err)
			return
		}
		if res.Error == "" && !res.Location.Empty() {
			res.Location.ZipCode = res.Input
			if _, err := h.Intakes.ApplyLocation(ctx, caller, id, res.Location); err != nil {
				zap.S().Warnw("failed to apply location", "intake", id, "error", err)
			}
		}
	})
	defer lookup.Close()

	for {
		var in zipInput
		if err := conn.ReadJSON(&in); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				zap.S().Debugw("zip stream closed", "intake", id, "error", err)
			}
			return
		}
		lookup.Input(in.ZipCode)
	}
}
