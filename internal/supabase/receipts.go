package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/fingerprint"
)

type receiptRow struct {
	Fingerprint   string         `json:"fingerprint"`
	Sender        string         `json:"sender"`
	ReceivedAtUTC string         `json:"received_at_utc"`
	HeadersJSON   map[string]any `json:"headers_json"`
}

// SaveReceipt records an email receipt. Saving the same fingerprint twice
// is not an error.
func (c *Client) SaveReceipt(ctx context.Context, r domain.EmailReceipt) error {
	headers := map[string]any{
		"message_id": r.MessageID,
		"subject":    r.NormalizedSubject,
	}
	for k, v := range r.Headers {
		if _, taken := headers[k]; !taken {
			headers[k] = v
		}
	}
	row := receiptRow{
		Fingerprint:   r.Fingerprint,
		Sender:        r.Sender,
		ReceivedAtUTC: r.ReceivedAt,
		HeadersJSON:   headers,
	}
	q := url.Values{"on_conflict": {"fingerprint"}}
	if err := c.request(ctx, http.MethodPost, tableReceipts, q, "resolution=ignore-duplicates,return=minimal", row, nil); err != nil {
		return fmt.Errorf("save email receipt: %w", err)
	}
	c.logger.WithField("fingerprint", fingerprint.Short(r.Fingerprint)).Info("logged email receipt")
	return nil
}
