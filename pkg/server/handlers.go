// Copyright 2025 Certen Protocol
//
// HTTP Handlers for the HTM Aggregation API
// Provides endpoints for world/trixel creation, updates, reads, point
// location, and batch inclusion proofs.

package server

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/certen/independant-validator/pkg/batch"
	"github.com/certen/independant-validator/pkg/commitment"
	"github.com/certen/independant-validator/pkg/database"
	"github.com/certen/independant-validator/pkg/htm"
	"github.com/certen/independant-validator/pkg/metrics"
	"github.com/certen/independant-validator/pkg/pipeline"
	"github.com/certen/independant-validator/pkg/sphere"
	"github.com/certen/independant-validator/pkg/statistic"
	"github.com/certen/independant-validator/pkg/store"
)

// Handlers provides HTTP handlers for the HTM aggregation API.
type Handlers struct {
	store     *store.Store
	collector *batch.Collector
	metrics   *metrics.Registry
	audit     *database.AuditRepository
	logger    *log.Logger
}

// NewHandlers creates new HTM API handlers. metrics and audit may both be
// nil if metrics collection and the operational audit log are disabled,
// respectively.
func NewHandlers(s *store.Store, collector *batch.Collector, reg *metrics.Registry, audit *database.AuditRepository) *Handlers {
	return &Handlers{
		store:     s,
		collector: collector,
		metrics:   reg,
		audit:     audit,
		logger:    log.New(log.Writer(), "[Server] ", log.LstdFlags),
	}
}

// ----------------------------------------------------------------------
// create_world
// ----------------------------------------------------------------------

type createWorldRequest struct {
	Address              string `json:"address"` // hex, 32 bytes
	Authority            string `json:"authority"`
	Name                 string `json:"name"` // hex, 32 bytes, optional
	CanonicalResolution  uint8  `json:"canonical_resolution"`
	PermissionedUpdates  bool   `json:"permissioned_updates"`
	StatisticType        string `json:"statistic_type"`
}

// HandleCreateWorld handles POST /api/worlds
func (h *Handlers) HandleCreateWorld(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodPost {
		writeJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createWorldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	addr, err := parseAddress(req.Address)
	if err != nil {
		writeJSONError(w, "invalid address: "+err.Error(), http.StatusBadRequest)
		return
	}
	var name [32]byte
	if req.Name != "" {
		n, err := parseAddress(req.Name)
		if err != nil {
			writeJSONError(w, "invalid name: "+err.Error(), http.StatusBadRequest)
			return
		}
		name = n
	}

	tag, err := parseStatisticType(req.StatisticType)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := pipeline.CreateWorld(h.store, addr, req.Authority, name, req.CanonicalResolution, req.PermissionedUpdates, tag)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.WorldsCreated.Inc()
	}
	writeJSON(w, http.StatusCreated, rec)
}

// ----------------------------------------------------------------------
// create_trixel_and_ancestors
// ----------------------------------------------------------------------

// HandleCreateTrixel handles POST /api/worlds/{address}/trixels/{id}
func (h *Handlers) HandleCreateTrixel(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodPost {
		writeJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	addr, id, ok := parseWorldTrixelPath(w, r, "/api/worlds/", "/trixels/")
	if !ok {
		return
	}

	if err := pipeline.CreateTrixelAndAncestors(h.store, addr, id); err != nil {
		writePipelineError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.TrixelsCreated.Inc()
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"status": "created"})
}

// ----------------------------------------------------------------------
// update_trixel
// ----------------------------------------------------------------------

type updateTrixelRequest struct {
	Caller string   `json:"caller"`
	Value  int32    `json:"value"`
	RA     *float64 `json:"ra,omitempty"`
	Dec    *float64 `json:"dec,omitempty"`
}

// HandleUpdateTrixel handles POST /api/worlds/{address}/trixels/{id}/update
func (h *Handlers) HandleUpdateTrixel(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodPost {
		writeJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/worlds/")
	path = strings.TrimSuffix(path, "/update")
	parts := strings.SplitN(path, "/trixels/", 2)
	if len(parts) != 2 {
		writeJSONError(w, "path must be /api/worlds/{address}/trixels/{id}/update", http.StatusBadRequest)
		return
	}
	addr, err := parseAddress(parts[0])
	if err != nil {
		writeJSONError(w, "invalid address: "+err.Error(), http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		writeJSONError(w, "invalid trixel id", http.StatusBadRequest)
		return
	}

	var req updateTrixelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var coords *sphere.Coords
	if req.RA != nil && req.Dec != nil {
		coords = &sphere.Coords{RA: *req.RA, Dec: *req.Dec}
	}

	if err := pipeline.UpdateTrixel(h.store, addr, req.Caller, id, req.Value, coords); err != nil {
		if h.metrics != nil {
			var pe *pipeline.Error
			if errors.As(err, &pe) {
				h.metrics.UpdatesRejected.WithLabelValues(string(pe.Code)).Inc()
			}
		}
		writePipelineError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.UpdatesAccepted.Inc()
	}

	leaf, err := h.store.LoadTrixel(addr, id)
	if err != nil {
		writeJSONError(w, "update accepted but reload failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if h.collector != nil {
		result := h.collector.AddUpdate(batch.UpdateRecord{
			WorldAddr: addr,
			TrixelID:  id,
			LeafHash:  leaf.Hash,
		})
		h.logger.Printf("queued update for batch %s (size=%d)", result.BatchID, result.BatchSize)
	}

	if h.audit != nil {
		entry := database.AuditEntry{
			WorldAddress:  addr,
			TrixelID:      id,
			Caller:        req.Caller,
			Value:         int64(req.Value),
			ResultingHash: leaf.Hash,
			AcceptedAt:    time.Now(),
		}
		if err := h.audit.Record(r.Context(), entry); err != nil {
			h.logger.Printf("audit log write failed for world=%x trixel=%d: %v", addr, id, err)
		}
	}

	writeJSON(w, http.StatusOK, leaf)
}

// ----------------------------------------------------------------------
// Reads
// ----------------------------------------------------------------------

// HandleGetWorld handles GET /api/worlds/{address}
func (h *Handlers) HandleGetWorld(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	addrHex := strings.TrimPrefix(r.URL.Path, "/api/worlds/")
	addrHex = strings.TrimSuffix(addrHex, "/")
	addr, err := parseAddress(addrHex)
	if err != nil {
		writeJSONError(w, "invalid address: "+err.Error(), http.StatusBadRequest)
		return
	}
	rec, err := h.store.LoadWorld(addr)
	if err != nil {
		if errors.Is(err, store.ErrWorldNotFound) {
			writeJSONError(w, "world not found", http.StatusNotFound)
			return
		}
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleGetTrixel handles GET /api/worlds/{address}/trixels/{id}
func (h *Handlers) HandleGetTrixel(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	addr, id, ok := parseWorldTrixelPath(w, r, "/api/worlds/", "/trixels/")
	if !ok {
		return
	}
	rec, err := h.store.LoadTrixel(addr, id)
	if err != nil {
		if errors.Is(err, store.ErrTrixelNotFound) {
			writeJSONError(w, "trixel not found", http.StatusNotFound)
			return
		}
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleGetTrixelCommitment handles GET /api/worlds/{address}/trixels/{id}/commitment.
// It returns a canonical SHA-256 digest of the trixel record so an external
// verifier can recompute the same hash independent of this server's JSON
// field ordering.
func (h *Handlers) HandleGetTrixelCommitment(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	addr, id, ok := parseWorldTrixelPath(w, r, "/api/worlds/", "/trixels/")
	if !ok {
		return
	}
	rec, err := h.store.LoadTrixel(addr, id)
	if err != nil {
		if errors.Is(err, store.ErrTrixelNotFound) {
			writeJSONError(w, "trixel not found", http.StatusNotFound)
			return
		}
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	digest, err := commitment.HashCanonical(rec)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"commitment": digest})
}

// HandleLocate handles GET /api/locate?ra=&dec=&resolution=
func (h *Handlers) HandleLocate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	q := r.URL.Query()
	ra, err1 := strconv.ParseFloat(q.Get("ra"), 64)
	dec, err2 := strconv.ParseFloat(q.Get("dec"), 64)
	resolution, err3 := strconv.Atoi(q.Get("resolution"))
	if err1 != nil || err2 != nil || err3 != nil {
		writeJSONError(w, "ra, dec, and resolution query params are required", http.StatusBadRequest)
		return
	}

	id, err := htm.Locate(sphere.Coords{RA: ra, Dec: dec}, resolution)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"trixel_id": id})
}

// ----------------------------------------------------------------------
// Batch close / inclusion proofs
// ----------------------------------------------------------------------

// HandleCloseBatch handles POST /api/batches/close
func (h *Handlers) HandleCloseBatch(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodPost {
		writeJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.collector == nil {
		writeJSONError(w, "batch collector not enabled", http.StatusServiceUnavailable)
		return
	}
	closed, err := h.collector.Close()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if closed == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "no pending batch"})
		return
	}
	if h.metrics != nil {
		h.metrics.BatchesClosed.Inc()
		h.metrics.BatchSize.Observe(float64(len(closed.Records)))
	}
	writeJSON(w, http.StatusOK, closed)
}

// ----------------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------------

func parseAddress(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, errors.New("address must be 32 bytes")
	}
	copy(out[:], b)
	return out, nil
}

func parseStatisticType(s string) (statistic.Type, error) {
	switch s {
	case "", "count":
		return statistic.Count, nil
	case "aggregate_overwrite":
		return statistic.AggregateOverwrite, nil
	case "aggregate_accumulate":
		return statistic.AggregateAccumulate, nil
	case "mean_overwrite":
		return statistic.MeanOverwrite, nil
	case "mean_accumulate":
		return statistic.MeanAccumulate, nil
	default:
		return 0, errors.New("unknown statistic_type: " + s)
	}
}

// parseWorldTrixelPath extracts {address}/{id} from a "/api/worlds/{address}/trixels/{id}"
// style path, trimming a trailing suffix if one follows the id.
func parseWorldTrixelPath(w http.ResponseWriter, r *http.Request, prefix, sep string) ([32]byte, uint64, bool) {
	var addr [32]byte
	path := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.SplitN(path, sep, 2)
	if len(parts) != 2 {
		writeJSONError(w, "path must be "+prefix+"{address}"+sep+"{id}", http.StatusBadRequest)
		return addr, 0, false
	}
	addr, err := parseAddress(parts[0])
	if err != nil {
		writeJSONError(w, "invalid address: "+err.Error(), http.StatusBadRequest)
		return addr, 0, false
	}
	idStr := strings.TrimSuffix(parts[1], "/")
	idStr = strings.TrimSuffix(idStr, "/update")
	idStr = strings.TrimSuffix(idStr, "/commitment")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		writeJSONError(w, "invalid trixel id", http.StatusBadRequest)
		return addr, 0, false
	}
	return addr, id, true
}

// writePipelineError maps a *pipeline.Error to an HTTP status and JSON body.
func writePipelineError(w http.ResponseWriter, err error) {
	var pe *pipeline.Error
	if !errors.As(err, &pe) {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	status := http.StatusBadRequest
	switch pe.Code {
	case pipeline.UnauthorizedAction:
		status = http.StatusForbidden
	case pipeline.InvalidAccount, pipeline.InvalidTrixelAccount:
		status = http.StatusNotFound
	case pipeline.UnspecifiedError:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]string{"error": string(pe.Code), "detail": pe.Error()})
}

func writeJSONError(w http.ResponseWriter, message string, status int) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
