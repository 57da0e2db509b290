package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Sjf12/AACL/internal/core/security"
)

// SignatureHeader carries the HMAC of the body
const SignatureHeader = "X-AACL-Signature"

// Envelope is the JSON body every webhook receives
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// DefaultClient sends with a timeout (don't let slow receivers block us!)
var DefaultClient = &http.Client{Timeout: 5 * time.Second}

// SendWebhook signs and POSTs the envelope to url
func SendWebhook(ctx context.Context, client *http.Client, url string, envelope Envelope, secret string) error {
	// 1. Convert Payload to JSON
	jsonData, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	// 2. Prepare Request
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "AACL-Webhook/1.0")
	req.Header.Set(SignatureHeader, security.SignPayload(jsonData, secret))

	// 3. Send
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// 4. Check Response
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	return fmt.Errorf("webhook receiver returned error: %d", resp.StatusCode)
}
