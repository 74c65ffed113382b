package gateway

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/quickdatapro/core/internal/domain"
)

// FeedbackClient submits free-text feedback and retrieves previously
// scored records. Sentiment scoring happens entirely on the collaborator
// side.
type FeedbackClient struct {
	baseURL string
	hc      *http.Client
}

// NewFeedbackClient creates a client for the feedback backend.
func NewFeedbackClient(baseURL string, timeout time.Duration) *FeedbackClient {
	return &FeedbackClient{baseURL: baseURL, hc: newHTTPClient(timeout)}
}

// Submit stores one feedback record tagged by feature.
func (c *FeedbackClient) Submit(ctx context.Context, feedback, feature string) error {
	payload := map[string]string{"feedback": feedback, "feature": feature}

	var resp statusEnvelope
	code, err := postJSON(ctx, c.hc, c.baseURL+"/store-feedback", payload, &resp)
	if err != nil {
		return err
	}
	if code >= 400 {
		return classify(code, resp.Message)
	}
	return nil
}

// List returns scored feedback, optionally filtered by feature tag.
func (c *FeedbackClient) List(ctx context.Context, feature string) ([]domain.Feedback, error) {
	u := c.baseURL + "/get-feedbacks"
	if feature != "" {
		u += "?feature=" + url.QueryEscape(feature)
	}

	var records []domain.Feedback
	code, err := getJSON(ctx, c.hc, u, &records)
	if err != nil {
		return nil, err
	}
	if code >= 400 {
		return nil, classify(code, "")
	}
	return records, nil
}
