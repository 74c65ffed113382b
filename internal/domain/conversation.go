package domain

// Sender identifies which party appended a chat message.
type Sender string

const (
	SenderUser  Sender = "user"
	SenderAgent Sender = "agent"
)

// Message is a single chat message within a process-code conversation.
// Messages are immutable once appended; order is the only relied-upon
// property, so no timestamp is carried here.
type Message struct {
	Sender Sender `json:"sender"`
	Text   string `json:"message"`
}

// Feedback is a scored free-text feedback record. Sentiment fields are
// populated by the external collaborator and opaque to the core.
type Feedback struct {
	ID                 string  `json:"id"`
	Feedback           string  `json:"feedback"`
	Feature            string  `json:"feature"`
	Timestamp          string  `json:"timestamp"`
	SentimentScore     float64 `json:"sentiment_score"`
	SentimentMagnitude float64 `json:"sentiment_magnitude"`
}
