// Package receiver accepts labeled matrices over HTTP and queues them
// for correspondence analysis.
package receiver

import (
	"encoding/json"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tgehrmann/corrana/explorer"
	"github.com/tgehrmann/corrana/lib"
	"github.com/tgehrmann/corrana/lib/datatypes"
	"github.com/tgehrmann/corrana/lib/settings"
	"log"
	"net/http"
	"sync"
	"time"
)

var (
	receivedMatrices = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "corrana_received_matrices_total",
			Help: "Total number of received matrices.",
		},
	)
	failedAnalyses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "corrana_failed_analyses_total",
			Help: "Total number of analyses that ended in an error.",
		},
	)
	queuedAnalyses = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "corrana_queued_analyses",
			Help: "Number of matrices waiting for analysis.",
		},
	)
	analysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:                            "corrana_analysis_duration_milliseconds",
			Help:                            "Duration of correspondence analysis calls.",
			Buckets:                         prometheus.DefBuckets,
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  10,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
	)
)

func init() {
	prometheus.MustRegister(receivedMatrices)
	prometheus.MustRegister(failedAnalyses)
	prometheus.MustRegister(queuedAnalyses)
	prometheus.MustRegister(analysisDuration)
}

type analysisRequest struct {
	id     string
	matrix *datatypes.LabeledMatrix
}

type receivedResponse struct {
	ID string `json:"id"`
}

// A MatrixProcessor takes matrices off the wire and runs them through
// the factorizer one at a time. Results land in the store where the
// explorer finds them.
type MatrixProcessor struct {
	factorizer    *lib.Factorizer
	store         *explorer.ResultStore
	analysisQueue chan *analysisRequest
	wg            sync.WaitGroup
}

func NewMatrixProcessor(config settings.CaSettings, store *explorer.ResultStore) (*MatrixProcessor, error) {
	factorizer, err := lib.NewFactorizer(config)
	if err != nil {
		return nil, err
	}
	processor := &MatrixProcessor{
		factorizer:    factorizer,
		store:         store,
		analysisQueue: make(chan *analysisRequest, 16),
	}

	processor.wg.Add(1)
	go func() {
		defer processor.wg.Done()
		log.Println("watching the analysis queue")
		for request := range processor.analysisQueue {
			processor.analyze(request)
		}
	}()

	return processor, nil
}

func (p *MatrixProcessor) analyze(request *analysisRequest) {
	queuedAnalyses.Dec()
	start := time.Now()
	result, err := p.factorizer.Factorize(request.matrix)
	elapsed := time.Since(start)
	analysisDuration.Observe(float64(elapsed.Milliseconds()))
	if err != nil {
		failedAnalyses.Inc()
		log.Printf("analysis of result %s failed: %v\n", request.id, err)
		p.store.SetFailed(request.id, err)
		return
	}
	p.store.SetReady(request.id, result)
	log.Printf("analysed result %s in %d milliseconds\n", request.id, elapsed.Milliseconds())
}

// ReceiveMatrix handles POST requests carrying a json LabeledMatrix.
// The analysis runs in the background; the response only hands out the
// id under which the result will appear.
func (p *MatrixProcessor) ReceiveMatrix(w http.ResponseWriter, r *http.Request) {
	var matrix datatypes.LabeledMatrix
	if err := json.NewDecoder(r.Body).Decode(&matrix); err != nil {
		log.Printf("failed to decode a matrix request: %v\n", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := matrix.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	receivedMatrices.Inc()

	id := uuid.New().String()
	p.store.Add(id, &matrix)
	queuedAnalyses.Inc()
	p.analysisQueue <- &analysisRequest{id: id, matrix: &matrix}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(receivedResponse{ID: id})
}

// Shutdown stops accepting work and waits for queued analyses to finish.
func (p *MatrixProcessor) Shutdown() error {
	close(p.analysisQueue)
	p.wg.Wait()
	return nil
}
