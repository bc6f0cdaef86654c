package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// OrderRef is an order identifier sent either as a JSON number or a string.
type OrderRef string

// UnmarshalJSON accepts numbers, strings and null.
func (r *OrderRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = OrderRef(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("order id must be a number or string: %w", err)
	}
	*r = OrderRef(n.String())
	return nil
}

// WebhookRequest describes the commerce webhook payload.
type WebhookRequest struct {
	ID    OrderRef `json:"id"`
	Event string   `json:"event"`
}

// WebhookResponse is returned for processed and ignored deliveries.
type WebhookResponse struct {
	Success bool `json:"success,omitempty"`
	Ignored bool `json:"ignored,omitempty"`
}

// SyncProductsResponse reports the outcome of a catalog sync.
type SyncProductsResponse struct {
	Success bool   `json:"success"`
	Count   int    `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse carries a failure message.
type ErrorResponse struct {
	Error string `json:"error"`
}
