package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/calvinwijaya/lucky-money-be/internal/config"
	"github.com/calvinwijaya/lucky-money-be/internal/game"
	"github.com/calvinwijaya/lucky-money-be/internal/store"
	"github.com/calvinwijaya/lucky-money-be/internal/wish"
)

// maxDeckSize bounds decks requested by clients
const maxDeckSize = 200

const defaultWishTimeout = 10 * time.Second

// Dispatcher starts a background wish request for a flip
type Dispatcher interface {
	Dispatch(tableID string, f game.Flip)
}

// ClientConfig is served to the browser at startup.
type ClientConfig struct {
	Notes          []string           `json:"notes"`
	WelcomeMessage string             `json:"welcomeMessage"`
	ResetMessage   string             `json:"resetMessage"`
	Confetti       game.Confetti      `json:"confetti"`
	Music          config.MusicConfig `json:"music"`
	DeckSize       int                `json:"deckSize"`
	TurnLimit      int                `json:"turnLimit"`
	Threshold      int                `json:"highValueThreshold"`
}

// Options carries the game parameters the handlers need.
type Options struct {
	Settings      game.Settings
	Denominations []game.Denomination
	Celebration   game.Celebration
	Client        ClientConfig
	RNG           game.RNG
}

// Handlers contains all the API handlers
type Handlers struct {
	store  store.Store
	hub    *Hub
	wishes Dispatcher
	opts   Options
	logger *zap.Logger
}

// NewHandlers creates a new instance of Handlers. Without a dispatcher,
// every flip is answered with the fallback wish.
func NewHandlers(store store.Store, hub *Hub, wishes Dispatcher, opts Options, logger *zap.Logger) *Handlers {
	if opts.RNG == nil {
		opts.RNG = game.StdRNG{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if wishes == nil {
		var b Broadcaster
		if hub != nil {
			b = hub
		}
		wishes = NewWishDispatcher(context.Background(), store, wish.NewFallback(nil, "", logger), b, defaultWishTimeout, logger)
	}
	return &Handlers{
		store:  store,
		hub:    hub,
		wishes: wishes,
		opts:   opts,
		logger: logger,
	}
}

// RegisterRoutes registers all API routes
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", h.Healthz).Methods("GET")
	r.HandleFunc("/api/config", h.GetConfig).Methods("GET")

	// Table endpoints
	r.HandleFunc("/api/tables", h.ListTables).Methods("GET")
	r.HandleFunc("/api/table/new", h.NewTable).Methods("POST")
	r.HandleFunc("/api/table/{id}", h.GetTable).Methods("GET")
	r.HandleFunc("/api/table/{id}", h.CloseTable).Methods("DELETE")
	r.HandleFunc("/api/table/{id}/flip", h.Flip).Methods("POST")
	r.HandleFunc("/api/table/{id}/reset", h.Reset).Methods("POST")

	// Denomination pool endpoints
	r.HandleFunc("/api/table/{id}/pool", h.GetPool).Methods("GET")
	r.HandleFunc("/api/table/{id}/pool", h.AddDenomination).Methods("POST")
	r.HandleFunc("/api/table/{id}/pool/{index}", h.UpdateDenomination).Methods("PUT")
	r.HandleFunc("/api/table/{id}/pool/{index}", h.RemoveDenomination).Methods("DELETE")

	// WebSocket endpoint
	if h.hub != nil {
		r.HandleFunc("/ws", h.hub.WebSocketHandler)
	}
}

// response helper function to send JSON responses
func response(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// error response helper function
func errorResponse(w http.ResponseWriter, status int, message string) {
	response(w, status, map[string]string{"error": message})
}

// storeError maps store failures to HTTP responses
func (h *Handlers) storeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrTableNotFound) {
		errorResponse(w, http.StatusNotFound, "Table not found")
		return
	}
	h.logger.Error("store failure", zap.String("request_id", RequestID(r.Context())), zap.Error(err))
	errorResponse(w, http.StatusInternalServerError, "Internal error")
}

func (h *Handlers) broadcast(tableID, event string, data interface{}) {
	if h.hub == nil {
		return
	}
	h.hub.BroadcastToTable(tableID, Message{Type: event, TableID: tableID, Data: data})
}

// Healthz reports liveness
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// GetConfig returns the presentation settings for the browser
func (h *Handlers) GetConfig(w http.ResponseWriter, r *http.Request) {
	response(w, http.StatusOK, h.opts.Client)
}

// NewTable creates a table with a freshly dealt deck
func (h *Handlers) NewTable(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeckSize  int `json:"deckSize"`
		TurnLimit int `json:"turnLimit"`
	}

	// An empty body means defaults
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	settings := h.opts.Settings
	if req.DeckSize > 0 {
		settings.DeckSize = req.DeckSize
	}
	if settings.DeckSize > maxDeckSize {
		settings.DeckSize = maxDeckSize
	}
	if req.TurnLimit > 0 {
		settings.TurnLimit = req.TurnLimit
	}

	t := game.NewTable(game.NewPool(h.opts.Denominations), settings, h.opts.RNG)

	if err := h.store.SaveTable(t); err != nil {
		h.storeError(w, r, err)
		return
	}

	h.logger.Info("table created",
		zap.String("table_id", t.ID),
		zap.Int("deck_size", t.Session.Deck.Size()),
		zap.Int("turn_limit", t.Session.TurnLimit),
	)

	response(w, http.StatusCreated, newTableView(t))
}

// GetTable returns the current state of a table
func (h *Handlers) GetTable(w http.ResponseWriter, r *http.Request) {
	t, err := h.store.GetTable(mux.Vars(r)["id"])
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	response(w, http.StatusOK, newTableView(t))
}

// TableSummary is one entry of the table list
type TableSummary struct {
	ID             string             `json:"id"`
	Status         game.SessionStatus `json:"status"`
	Total          int                `json:"total"`
	TurnsRemaining int                `json:"turnsRemaining"`
	Watchers       int                `json:"watchers"`
	LastUpdated    string             `json:"lastUpdated"`
}

// ListTables returns a summary of every open table, most recently used first
func (h *Handlers) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.store.GetAllTables()
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	sort.Slice(tables, func(i, j int) bool {
		return tables[i].UpdatedAt.After(tables[j].UpdatedAt)
	})

	list := make([]TableSummary, 0, len(tables))
	for _, t := range tables {
		summary := TableSummary{
			ID:             t.ID,
			Status:         t.Session.Status(),
			Total:          t.Session.Total,
			TurnsRemaining: t.Session.TurnsRemaining(),
			LastUpdated:    t.UpdatedAt.Format(time.RFC3339),
		}
		if h.hub != nil {
			summary.Watchers = h.hub.ClientCount(t.ID)
		}
		list = append(list, summary)
	}

	response(w, http.StatusOK, list)
}

// CloseTable removes a table. Pending wishes for it are dropped.
func (h *Handlers) CloseTable(w http.ResponseWriter, r *http.Request) {
	tableID := mux.Vars(r)["id"]

	if err := h.store.DeleteTable(tableID); err != nil {
		h.storeError(w, r, err)
		return
	}

	h.logger.Info("table closed", zap.String("table_id", tableID))
	h.broadcast(tableID, EventTableClosed, nil)

	w.WriteHeader(http.StatusNoContent)
}

// Flip opens one card. Clicks on opened cards, unknown ids or a finished
// session are answered with flipped=false and change nothing.
func (h *Handlers) Flip(w http.ResponseWriter, r *http.Request) {
	tableID := mux.Vars(r)["id"]

	var req struct {
		CardID *int `json:"cardId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CardID == nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var (
		flip      game.Flip
		flipped   bool
		celebrate *game.Confetti
	)
	t, err := h.store.UpdateTable(tableID, func(t *game.Table) error {
		flip, flipped = t.Flip(*req.CardID)
		if !flipped {
			return nil
		}

		// Broadcast while the table is held so watchers see versions in order
		celebrate = h.opts.Celebration.Celebrate(flip)
		h.broadcast(tableID, EventTableUpdate, newTableView(t))
		if celebrate != nil {
			h.broadcast(tableID, EventCelebrate, celebrate)
		}
		h.broadcast(tableID, EventWishPending, map[string]uint64{"version": flip.Version})
		return nil
	})
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	view := newTableView(t)
	if !flipped {
		h.logger.Debug("flip ignored", zap.String("table_id", tableID), zap.Int("card_id", *req.CardID))
		response(w, http.StatusOK, FlipResponse{Flipped: false, Table: view})
		return
	}

	h.wishes.Dispatch(tableID, flip)

	card := flip.Card
	response(w, http.StatusOK, FlipResponse{
		Flipped:   true,
		Card:      &card,
		Celebrate: celebrate,
		Table:     view,
	})
}

// Reset deals a new deck from the table's current pool
func (h *Handlers) Reset(w http.ResponseWriter, r *http.Request) {
	tableID := mux.Vars(r)["id"]

	t, err := h.store.UpdateTable(tableID, func(t *game.Table) error {
		t.Reset(h.opts.RNG)
		h.broadcast(tableID, EventTableUpdate, newTableView(t))
		return nil
	})
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	response(w, http.StatusOK, newTableView(t))
}

// GetPool lists the table's denominations
func (h *Handlers) GetPool(w http.ResponseWriter, r *http.Request) {
	t, err := h.store.GetTable(mux.Vars(r)["id"])
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	response(w, http.StatusOK, PoolResponse{Changed: false, Denominations: t.Pool.Items()})
}

// AddDenomination appends a denomination to the pool. The amount may be
// sent as a number or a string and is coerced to a non-negative integer.
func (h *Handlers) AddDenomination(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label  string          `json:"label"`
		Amount json.RawMessage `json:"amount"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	t, err := h.store.UpdateTable(mux.Vars(r)["id"], func(t *game.Table) error {
		t.Pool.Add(game.NewDenomination(req.Label, coerceAmount(req.Amount)))
		t.Touch()
		return nil
	})
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	response(w, http.StatusOK, PoolResponse{Changed: true, Denominations: t.Pool.Items()})
}

// UpdateDenomination replaces one field of a pool entry
func (h *Handlers) UpdateDenomination(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	index, ok := parseIndex(vars["index"])
	if !ok {
		errorResponse(w, http.StatusBadRequest, "Invalid index")
		return
	}

	var req struct {
		Field string          `json:"field"`
		Value json.RawMessage `json:"value"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	field := game.DenominationField(req.Field)
	if field != game.FieldLabel && field != game.FieldAmount {
		errorResponse(w, http.StatusBadRequest, "Field must be label or amount")
		return
	}

	var changed bool
	t, err := h.store.UpdateTable(vars["id"], func(t *game.Table) error {
		changed = t.Pool.Update(index, field, rawString(req.Value))
		if changed {
			t.Touch()
		}
		return nil
	})
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	response(w, http.StatusOK, PoolResponse{Changed: changed, Denominations: t.Pool.Items()})
}

// RemoveDenomination deletes a pool entry. Removing the last entry is
// ignored.
func (h *Handlers) RemoveDenomination(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	index, ok := parseIndex(vars["index"])
	if !ok {
		errorResponse(w, http.StatusBadRequest, "Invalid index")
		return
	}

	var changed bool
	t, err := h.store.UpdateTable(vars["id"], func(t *game.Table) error {
		changed = t.Pool.Remove(index)
		if changed {
			t.Touch()
		}
		return nil
	})
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	response(w, http.StatusOK, PoolResponse{Changed: changed, Denominations: t.Pool.Items()})
}
