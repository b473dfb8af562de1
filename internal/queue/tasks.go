package queue

const (
	TypePodcastGenerate = "podcast:generate"
	TypePodcastBatch    = "podcast:batch"
	TypeWebhookDeliver  = "webhook:deliver"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// Priorities weights the queues for the worker server.
var Priorities = map[string]int{
	QueueCritical: 6,
	QueueDefault:  3,
	QueueLow:      1,
}

// The job itself lives in the job store; payloads carry only its ID.
type PodcastGeneratePayload struct {
	JobID string `json:"job_id"`
}

type PodcastBatchPayload struct {
	BatchID     string `json:"batch_id"`
	Concurrency int    `json:"concurrency,omitempty"`
}

type WebhookDeliverPayload struct {
	DeliveryID string `json:"delivery_id"`
	JobID      string `json:"job_id"`
	URL        string `json:"url"`
	Event      string `json:"event"`
	Payload    string `json:"payload"` // JSON string
}
