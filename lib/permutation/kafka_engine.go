package permutation

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"github.com/tgehrmann/corrana/lib/datatypes"
	messages "github.com/tgehrmann/corrana/lib/kafka"
	"github.com/tgehrmann/corrana/lib/settings"
	kafka "github.com/segmentio/kafka-go"
	"log"
)

// A KafkaEngine sends permutation jobs as kafka messages for workers
// to pick up and process. It then listens for the results.
type KafkaEngine struct {
	config        settings.CaSettings
	resultChannel chan<- *Result

	jobWriter    *kafka.Writer
	resultReader *kafka.Reader
	runnerCtx    context.Context
	runnerCancel context.CancelFunc
	msgCounter   int
}

func (k *KafkaEngine) Initialize(config settings.CaSettings, results chan<- *Result) {
	k.config = config
	k.resultChannel = results
	k.msgCounter = 0
	k.jobWriter = &kafka.Writer{
		Addr:     kafka.TCP(config.KafkaURL),
		Topic:    messages.JOBS_TOPIC,
		Balancer: &kafka.LeastBytes{},
	}
	k.resultReader = kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{config.KafkaURL},
		GroupID: "2",
		Topic:   messages.RESULTS_TOPIC,
	})

	k.runnerCtx, k.runnerCancel = context.WithCancel(context.Background())
	go func(ctx context.Context) {
		for {
			select {
			case <-ctx.Done():
				log.Printf("runner stopped\n")
				return
			default:
				msg, err := k.resultReader.ReadMessage(ctx)
				if err != nil {
					log.Printf("error getting inertia message: %v\n", err)
					continue
				}
				result, err := k.decodeResultMessage(msg)
				if err != nil {
					log.Printf("error decoding inertia message: %v\n", err)
					continue
				}
				k.resultChannel <- result
			}
		}
	}(k.runnerCtx)
	log.Printf("kafka permutation engine initialized with url %s\n", config.KafkaURL)
}

// Permute sends one repetition to the workers. The engine does not
// wait for an answer here, results arrive through the reader.
func (k *KafkaEngine) Permute(m *datatypes.LabeledMatrix, rep int) error {
	if k.jobWriter == nil {
		return fmt.Errorf("uninitialized engine asked to permute")
	}
	msgBytes, err := k.encodeJobMessage(m, rep)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("key-%d-%d", rep, k.msgCounter)),
		Value: msgBytes,
	}
	k.msgCounter++
	err = k.jobWriter.WriteMessages(context.Background(), msg)
	if err != nil {
		log.Printf("error sending job message: %v\n", err)
		return err
	}
	return nil
}

func (k *KafkaEngine) Shutdown() error {
	log.Println("kafka permutation engine shutting down")
	if k.jobWriter != nil {
		k.jobWriter.Close()
	}
	if k.resultReader != nil {
		k.resultReader.Close()
	}
	if k.runnerCancel != nil {
		k.runnerCancel()
	}
	return nil
}

// encodeJobMessage builds the job for one repetition. Workers never
// compute coordinates, the caller only wants inertia values.
func (k *KafkaEngine) encodeJobMessage(m *datatypes.LabeledMatrix, rep int) ([]byte, error) {
	config := k.config
	config.Coords = false
	return json.Marshal(messages.PermutationJob{
		JobID:  uuid.New().String(),
		Rep:    rep,
		Config: config,
		Matrix: m,
	})
}

func (k *KafkaEngine) decodeResultMessage(msg kafka.Message) (*Result, error) {
	parsed := &messages.InertiaResult{}
	if err := json.Unmarshal(msg.Value, parsed); err != nil {
		return nil, err
	}
	ret := &Result{
		Rep:              parsed.Rep,
		ExplainedInertia: parsed.ExplainedInertia,
	}
	if parsed.Error != "" {
		ret.Err = fmt.Errorf("%s", parsed.Error)
	}
	return ret, nil
}
