package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
)

// postWebhook delivers the drift change-set JSON verbatim (spec §6.6) to
// url. No pack library covers "POST a JSON body and check the status
// code" — net/http's zero-configuration client is the idiomatic choice
// for a one-shot fire-and-report call.
func postWebhook(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body is discarded either way

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook %s returned status %d", url, resp.StatusCode)
	}

	return nil
}
