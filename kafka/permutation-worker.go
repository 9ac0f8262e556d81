package main

import (
	"context"
	"encoding/json"
	"flag"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	kafka "github.com/segmentio/kafka-go"
	"github.com/tgehrmann/corrana/lib"
	messages "github.com/tgehrmann/corrana/lib/kafka"
	"github.com/tgehrmann/corrana/lib/permutation"
	"log"
	"net/http"
)

var (
	processedJobs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "corrana_worker_processed_jobs_total",
			Help: "Total number of permutation jobs this worker picked up.",
		},
	)
	failedJobs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "corrana_worker_failed_jobs_total",
			Help: "Total number of permutation jobs that ended in an error.",
		},
	)
)

func init() {
	prometheus.MustRegister(processedJobs)
	prometheus.MustRegister(failedJobs)
}

func decodeJobMessage(msg kafka.Message, job *messages.PermutationJob) error {
	return json.Unmarshal(msg.Value, job)
}

// runJob permutes the matrix with the seed and rep from the job,
// factorizes the copy and reports the explained inertia. Failures
// travel back as text so the engine can surface them.
func runJob(job *messages.PermutationJob) *messages.InertiaResult {
	result := &messages.InertiaResult{
		JobID: job.JobID,
		Rep:   job.Rep,
	}
	if err := job.Matrix.Validate(); err != nil {
		result.Error = err.Error()
		return result
	}
	config := job.Config.ApplyDefaults()
	factorizer, err := lib.NewFactorizer(config)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	permuted := permutation.PermutedCopy(job.Matrix, config.Seed, job.Rep)
	caResult, err := factorizer.Factorize(permuted)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.ExplainedInertia = caResult.ExplainedInertia()
	return result
}

func main() {
	var kafkaURL string
	var metricsAddr string
	flag.StringVar(&kafkaURL, "kafkaURL", "", "The URL for the kafka broker.")
	flag.StringVar(&metricsAddr, "metrics-address", ":9304", "The address the metrics endpoint binds to.")
	flag.Parse()

	http.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(metricsAddr, nil)

	jobReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{kafkaURL},
		// TODO: add partition here so we can have multiple job readers
		GroupID: "1",
		Topic:   messages.JOBS_TOPIC,
	})
	defer jobReader.Close()

	resultsWriter := &kafka.Writer{
		Addr:     kafka.TCP(kafkaURL),
		Topic:    messages.RESULTS_TOPIC,
		Balancer: &kafka.Hash{},
	}
	defer resultsWriter.Close()

	log.Println("permutation worker waiting for jobs")
	for {
		msg, err := jobReader.ReadMessage(context.Background())
		if err != nil {
			log.Printf("failed to read job message: %v\n", err)
			continue
		}
		job := &messages.PermutationJob{}
		log.Printf("received job message with key %s, partition %d\n", string(msg.Key), msg.Partition)
		err = decodeJobMessage(msg, job)
		if err != nil {
			log.Printf("failed to decode job message: %v\n", err)
			continue
		}

		result := runJob(job)
		processedJobs.Inc()
		if result.Error != "" {
			failedJobs.Inc()
			log.Printf("job %s rep %d failed: %s\n", job.JobID, job.Rep, result.Error)
		}

		valueBytes, err := json.Marshal(result)
		if err != nil {
			log.Printf("error encoding result message: %v\n", err)
			continue
		}
		err = resultsWriter.WriteMessages(context.Background(), kafka.Message{
			Key:   []byte(job.JobID),
			Value: valueBytes,
		})
		if err != nil {
			log.Printf("failed to send result message: %v\n", err)
		} else {
			log.Printf("answered job %s rep %d\n", job.JobID, job.Rep)
		}
	}
}
