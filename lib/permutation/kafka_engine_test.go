package permutation

import (
	"encoding/json"
	messages "github.com/tgehrmann/corrana/lib/kafka"
	"github.com/tgehrmann/corrana/lib/settings"
	kafka "github.com/segmentio/kafka-go"
	"gonum.org/v1/gonum/mat"
	"testing"
)

func TestEncodeJobMessage(t *testing.T) {
	engine := &KafkaEngine{
		config: settings.CaSettings{
			TopRows:  2,
			Dims:     2,
			Coords:   true,
			Seed:     17,
			Backend:  settings.BACKEND_DENSE,
			KafkaURL: "localhost:9092",
		},
	}
	m := testMatrix()
	msgBytes, err := engine.encodeJobMessage(m, 1)
	if err != nil {
		t.Errorf("unexpected error in encodeJobMessage: %v", err)
	}
	var job messages.PermutationJob
	err = json.Unmarshal(msgBytes, &job)
	if err != nil {
		t.Errorf("unexpected error parsing job message: %v", err)
	}
	if job.JobID == "" {
		t.Errorf("expected a job id")
	}
	if job.Rep != 1 {
		t.Errorf("expected repetition 1 but got %d", job.Rep)
	}
	if job.Config.Seed != 17 || job.Config.TopRows != 2 || job.Config.Dims != 2 {
		t.Errorf("job config lost settings: %+v", job.Config)
	}
	if job.Config.Coords {
		t.Errorf("permutation workers should not compute coordinates")
	}
	if job.Matrix == nil {
		t.Fatalf("job message lost the matrix")
	}
	if !mat.Equal(job.Matrix.Data, m.Data) {
		t.Errorf("matrix values did not survive the round trip")
	}
	if len(job.Matrix.RowNames) != 4 || job.Matrix.RowNames[3] != "r4" {
		t.Errorf("row names did not survive, got %v", job.Matrix.RowNames)
	}
}

func TestDecodeResultMessage(t *testing.T) {
	engine := &KafkaEngine{}
	payload, err := json.Marshal(messages.InertiaResult{
		JobID:            "job-1",
		Rep:              2,
		ExplainedInertia: []float64{70, 20, 10},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := engine.decodeResultMessage(kafka.Message{Value: payload})
	if err != nil {
		t.Errorf("unexpected error in decodeResultMessage: %v", err)
	}
	if result.Rep != 2 {
		t.Errorf("expected repetition 2 but got %d", result.Rep)
	}
	if len(result.ExplainedInertia) != 3 || result.ExplainedInertia[0] != 70 {
		t.Errorf("unexpected inertia values %v", result.ExplainedInertia)
	}
	if result.Err != nil {
		t.Errorf("unexpected repetition error %v", result.Err)
	}
}

func TestDecodeResultMessageWithWorkerError(t *testing.T) {
	engine := &KafkaEngine{}
	payload, err := json.Marshal(messages.InertiaResult{
		JobID: "job-2",
		Rep:   0,
		Error: "factorization failed on the worker",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := engine.decodeResultMessage(kafka.Message{Value: payload})
	if err != nil {
		t.Errorf("decoding should succeed, the failure rides inside: %v", err)
	}
	if result.Err == nil {
		t.Errorf("expected the worker failure to surface on the result")
	}
}

func TestDecodeResultMessageRejectsBadPayload(t *testing.T) {
	engine := &KafkaEngine{}
	_, err := engine.decodeResultMessage(kafka.Message{Value: []byte("not json")})
	if err == nil {
		t.Errorf("expected an error for an unparseable payload")
	}
}

func TestKafkaEngineNeedsInitialize(t *testing.T) {
	engine := &KafkaEngine{}
	err := engine.Permute(testMatrix(), 0)
	if err == nil {
		t.Errorf("expected an error from an uninitialized engine")
	}
}
