package domain

// TaskStatus is the lifecycle label of a Task Record on the task board.
type TaskStatus string

const (
	StatusProposed        TaskStatus = "Proposed"
	StatusNeedsReview     TaskStatus = "Needs Review"
	StatusApproved        TaskStatus = "Approved"
	StatusPromoted        TaskStatus = "Promoted"
	StatusCompleted       TaskStatus = "Completed"
	StatusCompletedOrphan TaskStatus = "Completed (Orphan)"
)

// ValidTaskStatuses is the canonical set of accepted status labels.
var ValidTaskStatuses = map[TaskStatus]bool{
	StatusProposed: true, StatusNeedsReview: true, StatusApproved: true,
	StatusPromoted: true, StatusCompleted: true, StatusCompletedOrphan: true,
}

type Priority string

const (
	PriorityP0 Priority = "P0"
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"
)

// ParsePriority maps free-form model output onto the P0-P3 ordinal,
// defaulting to P2 for anything unrecognized.
func ParsePriority(s string) Priority {
	switch Priority(s) {
	case PriorityP0, PriorityP1, PriorityP2, PriorityP3:
		return Priority(s)
	default:
		return PriorityP2
	}
}

// Rank returns 0 for P0 through 3 for P3.
func (p Priority) Rank() int {
	switch p {
	case PriorityP0:
		return 0
	case PriorityP1:
		return 1
	case PriorityP3:
		return 3
	default:
		return 2
	}
}

// TaskSource records how a Task Record entered the task board.
type TaskSource string

const (
	SourceAIExtraction TaskSource = "ai_extraction"
	SourceReverseSync  TaskSource = "reverse_sync"
)

// AuditEventType enumerates the audit log entries the reconciler writes.
type AuditEventType string

const (
	EventEmailReceived      AuditEventType = "email_received"
	EventTaskProposed       AuditEventType = "task_proposed"
	EventTaskCreated        AuditEventType = "task_created"
	EventTaskPromoted       AuditEventType = "task_promoted"
	EventTaskCompleted      AuditEventType = "task_completed"
	EventCompletionOrphaned AuditEventType = "completion_orphaned"
	EventTaskReverseSynced  AuditEventType = "task_reverse_synced"
	EventMatterStubCreated  AuditEventType = "matter_stub_created"
	EventProjectMapped      AuditEventType = "project_mapped"
	EventExtractionFailed   AuditEventType = "extraction_failed"
)

// ValidAuditEventTypes is the fixed enumeration stored in the audit log.
var ValidAuditEventTypes = map[AuditEventType]bool{
	EventEmailReceived: true, EventTaskProposed: true, EventTaskCreated: true,
	EventTaskPromoted: true, EventTaskCompleted: true, EventCompletionOrphaned: true,
	EventTaskReverseSynced: true, EventMatterStubCreated: true, EventProjectMapped: true,
	EventExtractionFailed: true,
}

type MatterStatus string

const (
	MatterPending MatterStatus = "Pending"
	MatterActive  MatterStatus = "Active"
	MatterClosed  MatterStatus = "Closed"
)
