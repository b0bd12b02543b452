package observability

// Metric name prefixes
const (
	MetricPrefix = "clanwallet"
)

// Metric names
const (
	// Payment provider metrics
	ProviderRequestsTotal   = MetricPrefix + ".provider.requests_total"
	ProviderRequestDuration = MetricPrefix + ".provider.request_duration"

	// Ledger metrics
	BalanceTransactionsTotal = MetricPrefix + ".balance.transactions_total"

	// HTTP metrics
	HTTPRequestsTotal   = MetricPrefix + ".http.requests_total"
	HTTPRequestDuration = MetricPrefix + ".http.request_duration"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"

	// Scheduler metrics
	JobRunsTotal = MetricPrefix + ".jobs.runs_total"
)

// Label keys
const (
	LabelType       = "type"
	LabelEventType  = "event_type"
	LabelEndpoint   = "endpoint"
	LabelOutcome    = "outcome"
	LabelRoute      = "route"
	LabelMethod     = "method"
	LabelStatusCode = "status_code"
	LabelJob        = "job"
)

// Outcome values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
