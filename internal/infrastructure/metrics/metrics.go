package metrics

import "time"

// Recorder receives operational counters and latencies
type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}

// Counter names
const (
	WatcherPolls          = "watcher_poll"
	WatcherRPCErrors      = "watcher_rpc_error"
	WatcherStorageErrors  = "watcher_storage_error"
	WatcherEventsSeen     = "watcher_event_seen"
	WatcherEventsApplied  = "watcher_event_processed"
	WatcherEventsSkipped  = "watcher_event_skipped"
	ExpirySweeps          = "expiry_sweep"
	PaymentsExpired       = "payment_expired"
	RealtimeBroadcasts    = "realtime_broadcast"
	RealtimeDroppedClient = "realtime_client_dropped"
	HTTPRequests          = "http_request"
)

// Latency names
const (
	WatcherPollLatency = "watcher_poll"
	HTTPLatency        = "http_request"
)
