package webhooks

import "errors"

var ErrEventsRequired = errors.New("at least one event type is required")
