package shared

// Task type identifiers for asynq.
// Convention: "<domain>:<action>".
const (
	TypeNotifyOverdueLoans = "loan:notify_overdue"
)

// Queue names
const (
	QueueLoan    = "loan"
	QueueDefault = "default"
)
