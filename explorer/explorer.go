// Package explorer serves correspondence analysis results over a REST
// API backed by an in-memory store.
package explorer

import (
	"encoding/json"
	"fmt"
	"github.com/gorilla/mux"
	"github.com/tgehrmann/corrana/lib"
	"github.com/tgehrmann/corrana/lib/permutation"
	"github.com/tgehrmann/corrana/lib/settings"
	"gonum.org/v1/gonum/mat"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type ResultExplorer struct {
	Store      *ResultStore
	Factorizer *lib.Factorizer
}

func NewResultExplorer(store *ResultStore, factorizer *lib.Factorizer) *ResultExplorer {
	return &ResultExplorer{
		Store:      store,
		Factorizer: factorizer,
	}
}

// RegisterRoutes attaches all explorer endpoints to the router.
func (e *ResultExplorer) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/results", e.GetResults).Methods("GET")
	router.HandleFunc("/results/{id}", e.GetResult).Methods("GET")
	router.HandleFunc("/results/{id}/coordinates", e.GetCoordinates).Methods("GET")
	router.HandleFunc("/results/{id}/scree", e.GetScree).Methods("GET")
	router.HandleFunc("/results/{id}/dims", e.GetDims).Methods("GET")
}

func (e *ResultExplorer) GetResults(w http.ResponseWriter, r *http.Request) {
	entries := e.Store.List()
	ret := resultListResponse{
		Results: make([]resultSummary, 0, len(entries)),
	}
	for _, entry := range entries {
		summary := resultSummary{
			ID:      entry.ID,
			Status:  entry.Status,
			Error:   entry.Error,
			Created: entry.Created.Format(time.RFC3339),
		}
		if entry.Matrix != nil {
			summary.Rows = entry.Matrix.Rows()
			summary.Cols = entry.Matrix.Cols()
		}
		if entry.Result != nil {
			summary.Dims = entry.Result.Dims
		}
		ret.Results = append(ret.Results, summary)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ret)
}

func (e *ResultExplorer) GetResult(w http.ResponseWriter, r *http.Request) {
	entry, ok := e.getEntry(w, r)
	if !ok {
		return
	}
	ret := resultDetailResponse{
		ID:     entry.ID,
		Status: entry.Status,
		Error:  entry.Error,
	}
	if entry.Result != nil {
		result := entry.Result
		ret.RowNames = result.RowNames
		ret.ColNames = result.ColNames
		ret.DimLabels = result.DimLabels
		ret.SingularValues = result.D
		ret.RowMasses = result.RowMasses
		ret.ColMasses = result.ColMasses
		ret.TotInertia = result.TotInertia
		ret.ExplainedInertia = result.ExplainedInertia()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ret)
}

func (e *ResultExplorer) GetCoordinates(w http.ResponseWriter, r *http.Request) {
	entry, ok := e.getReadyEntry(w, r)
	if !ok {
		return
	}
	params := r.URL.Query()
	kind, err := getChoice(params, "kind", []string{"std", "prin"}, "std")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	axis, err := getChoice(params, "axis", []string{"rows", "cols"}, "rows")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dims, err := getOptionalInt(params, "dims")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, err := e.coordinatesFor(entry, kind, axis)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if dims > 0 {
		result = result.Truncated(dims)
	}
	names := result.RowNames
	if axis == "cols" {
		names = result.ColNames
	}
	coords := coordinateMatrix(result, kind, axis)
	ret := coordinatesResponse{
		ID:        entry.ID,
		Kind:      kind,
		Axis:      axis,
		Names:     names,
		DimLabels: result.DimLabels,
		Coords:    matrixRows(coords),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ret)
}

func (e *ResultExplorer) GetScree(w http.ResponseWriter, r *http.Request) {
	entry, ok := e.getReadyEntry(w, r)
	if !ok {
		return
	}
	reps, err := getOptionalInt(r.URL.Query(), "reps")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var summary *permutation.Summary
	if reps > 0 {
		summary, err = e.Factorizer.PermutedInertia(entry.Matrix, entry.Result, reps)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(lib.ScreeTable(entry.Result, summary))
}

func (e *ResultExplorer) GetDims(w http.ResponseWriter, r *http.Request) {
	entry, ok := e.getReadyEntry(w, r)
	if !ok {
		return
	}
	params := r.URL.Query()
	method := settings.METHOD_AVG_INERTIA
	if values, exists := params["method"]; exists {
		method = strings.TrimSpace(values[0])
	}
	reps, err := getOptionalInt(params, "reps")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dims, err := e.Factorizer.PickDims(method, entry.Result, entry.Matrix, reps)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(dimsResponse{
		ID:     entry.ID,
		Method: method,
		Dims:   dims,
	})
}

func (e *ResultExplorer) getEntry(w http.ResponseWriter, r *http.Request) (Entry, bool) {
	id := mux.Vars(r)["id"]
	entry, exists := e.Store.Get(id)
	if !exists {
		http.Error(w, fmt.Sprintf("no result with id %s", id), http.StatusNotFound)
		return Entry{}, false
	}
	return entry, true
}

func (e *ResultExplorer) getReadyEntry(w http.ResponseWriter, r *http.Request) (Entry, bool) {
	entry, ok := e.getEntry(w, r)
	if !ok {
		return Entry{}, false
	}
	if entry.Status != STATUS_READY || entry.Result == nil {
		http.Error(w, fmt.Sprintf("result %s is %s", entry.ID, entry.Status), http.StatusBadRequest)
		return Entry{}, false
	}
	return entry, true
}

// coordinatesFor returns a result carrying the requested coordinates,
// deriving them on demand. Derived coordinates go back into the store
// so later requests find them.
func (e *ResultExplorer) coordinatesFor(entry Entry, kind string, axis string) (*lib.Result, error) {
	result := entry.Result
	if coordinateMatrix(result, kind, axis) != nil {
		return result, nil
	}
	princ := lib.PRINC_NONE
	if kind == "prin" {
		if axis == "rows" {
			princ = lib.PRINC_ROWS
		} else {
			princ = lib.PRINC_COLS
		}
	}
	principalOnly := result.StdCoordsRows != nil && result.StdCoordsCols != nil
	upgraded, err := result.WithCoords(0, princ, principalOnly)
	if err != nil {
		return nil, err
	}
	e.Store.SetReady(entry.ID, upgraded)
	return upgraded, nil
}

func coordinateMatrix(r *lib.Result, kind string, axis string) *mat.Dense {
	if kind == "std" {
		if axis == "rows" {
			return r.StdCoordsRows
		}
		return r.StdCoordsCols
	}
	if axis == "rows" {
		return r.PrinCoordsRows
	}
	return r.PrinCoordsCols
}

func matrixRows(m *mat.Dense) [][]float64 {
	rows, cols := m.Dims()
	ret := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		copy(row, m.RawRowView(i))
		ret[i] = row
	}
	return ret
}

func getChoice(params url.Values, name string, allowed []string, fallback string) (string, error) {
	values, exists := params[name]
	if !exists {
		return fallback, nil
	}
	value := strings.TrimSpace(values[0])
	for _, a := range allowed {
		if value == a {
			return value, nil
		}
	}
	return "", fmt.Errorf("parameter %s must be one of %s", name, strings.Join(allowed, ", "))
}

func getOptionalInt(params url.Values, name string) (int, error) {
	values, exists := params[name]
	if !exists {
		return 0, nil
	}
	parsed, err := strconv.ParseInt(strings.TrimSpace(values[0]), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("failed to parse an integer out of %s", values[0])
	}
	return int(parsed), nil
}
