package event

import (
	"encoding/json"
	"os"
	"sigem/common"
)

// NotificationWebhookEnv points to an external notification sink. Delivery is
// fire-and-forget and at-most-once: a failed post is logged, never retried,
// and never fails the operation that emitted the event.
const NotificationWebhookEnv = "NOTIFY_WEBHOOK_URL"

func NotificationHandler(e *EventRecord) *EventHandleResult {
	if e.SourceType != SourceTypeRequest && e.SourceType != SourceTypeAssignment {
		return nil
	}
	url := os.ExpandEnv(os.Getenv(NotificationWebhookEnv))
	if url == "" {
		return nil
	}

	body, err := json.Marshal(e)
	if err != nil {
		return &EventHandleResult{Success: false, Message: err.Error(), HandlerIdentifier: "notification"}
	}
	if _, err := common.HttpInvokeJson("POST", url, nil, string(body)); err != nil {
		return &EventHandleResult{Success: false, Message: err.Error(), HandlerIdentifier: "notification"}
	}
	return &EventHandleResult{Success: true, HandlerIdentifier: "notification"}
}
