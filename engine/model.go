package engine

import (
	"fmt"
	"time"
)

// InstanceState describes possible states of process instances, activity instances, case instances and case executions.
//
// Process instances are ACTIVE, SUSPENDED, COMPLETED or TERMINATED.
// Case instances and case executions follow the CMMN lifecycle and can be in any state.
type InstanceState int

const (
	InstanceActive InstanceState = iota + 1
	InstanceAvailable
	InstanceClosed
	InstanceCompleted
	InstanceDisabled
	InstanceEnabled
	InstanceFailed
	InstanceSuspended
	InstanceTerminated
)

func MapInstanceState(s string) InstanceState {
	switch s {
	case "ACTIVE":
		return InstanceActive
	case "AVAILABLE":
		return InstanceAvailable
	case "CLOSED":
		return InstanceClosed
	case "COMPLETED":
		return InstanceCompleted
	case "DISABLED":
		return InstanceDisabled
	case "ENABLED":
		return InstanceEnabled
	case "FAILED":
		return InstanceFailed
	case "SUSPENDED":
		return InstanceSuspended
	case "TERMINATED":
		return InstanceTerminated
	default:
		return 0
	}
}

// IsEnded determines if the state is final, regarding the execution. A closed case instance is also ended.
func (v InstanceState) IsEnded() bool {
	switch v {
	case InstanceClosed, InstanceCompleted, InstanceFailed, InstanceTerminated:
		return true
	default:
		return false
	}
}

func (v InstanceState) MarshalJSON() ([]byte, error) {
	s := v.String()
	if s == "" {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", s)), nil
}

func (v InstanceState) String() string {
	switch v {
	case InstanceActive:
		return "ACTIVE"
	case InstanceAvailable:
		return "AVAILABLE"
	case InstanceClosed:
		return "CLOSED"
	case InstanceCompleted:
		return "COMPLETED"
	case InstanceDisabled:
		return "DISABLED"
	case InstanceEnabled:
		return "ENABLED"
	case InstanceFailed:
		return "FAILED"
	case InstanceSuspended:
		return "SUSPENDED"
	case InstanceTerminated:
		return "TERMINATED"
	default:
		return ""
	}
}

func (v *InstanceState) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) > 2 {
		s = s[1 : len(s)-1]
		*v = MapInstanceState(s)
	}
	if *v == 0 {
		return fmt.Errorf("invalid instance state data %s", s)
	}
	return nil
}

// ActivityType describes the activities a process definition consists of.
//
//   - [ActivityCallActivity]: creates a process instance of another process definition and waits for its end
//   - [ActivityServiceTask]: creates a job of type [JobExecute]
//   - [ActivityTimerEvent]: creates a job of type [JobTimer], due when the timer is reached
//   - [ActivityUserTask]: creates a task for a human user
type ActivityType int

const (
	ActivityCallActivity ActivityType = iota + 1
	ActivityServiceTask
	ActivityTimerEvent
	ActivityUserTask
)

func MapActivityType(s string) ActivityType {
	switch s {
	case "CALL_ACTIVITY":
		return ActivityCallActivity
	case "SERVICE_TASK":
		return ActivityServiceTask
	case "TIMER_EVENT":
		return ActivityTimerEvent
	case "USER_TASK":
		return ActivityUserTask
	default:
		return 0
	}
}

func (v ActivityType) MarshalJSON() ([]byte, error) {
	s := v.String()
	if s == "" {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", s)), nil
}

func (v ActivityType) String() string {
	switch v {
	case ActivityCallActivity:
		return "CALL_ACTIVITY"
	case ActivityServiceTask:
		return "SERVICE_TASK"
	case ActivityTimerEvent:
		return "TIMER_EVENT"
	case ActivityUserTask:
		return "USER_TASK"
	default:
		return ""
	}
}

func (v *ActivityType) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) > 2 {
		s = s[1 : len(s)-1]
		*v = MapActivityType(s)
	}
	if *v == 0 {
		return fmt.Errorf("invalid activity type data %s", s)
	}
	return nil
}

// PlanItemType describes the plan items a case definition consists of.
type PlanItemType int

const (
	PlanItemCaseTask PlanItemType = iota + 1
	PlanItemHumanTask
	PlanItemMilestone
	PlanItemProcessTask
	PlanItemStage
)

func MapPlanItemType(s string) PlanItemType {
	switch s {
	case "CASE_TASK":
		return PlanItemCaseTask
	case "HUMAN_TASK":
		return PlanItemHumanTask
	case "MILESTONE":
		return PlanItemMilestone
	case "PROCESS_TASK":
		return PlanItemProcessTask
	case "STAGE":
		return PlanItemStage
	default:
		return 0
	}
}

func (v PlanItemType) MarshalJSON() ([]byte, error) {
	s := v.String()
	if s == "" {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", s)), nil
}

func (v PlanItemType) String() string {
	switch v {
	case PlanItemCaseTask:
		return "CASE_TASK"
	case PlanItemHumanTask:
		return "HUMAN_TASK"
	case PlanItemMilestone:
		return "MILESTONE"
	case PlanItemProcessTask:
		return "PROCESS_TASK"
	case PlanItemStage:
		return "STAGE"
	default:
		return ""
	}
}

func (v *PlanItemType) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) > 2 {
		s = s[1 : len(s)-1]
		*v = MapPlanItemType(s)
	}
	if *v == 0 {
		return fmt.Errorf("invalid plan item type data %s", s)
	}
	return nil
}

// JobType describes the different types of jobs, a worker needs to complete.
type JobType int

const (
	JobExecute JobType = iota + 1
	JobTimer
)

func MapJobType(s string) JobType {
	switch s {
	case "EXECUTE":
		return JobExecute
	case "TIMER":
		return JobTimer
	default:
		return 0
	}
}

func (v JobType) MarshalJSON() ([]byte, error) {
	s := v.String()
	if s == "" {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", s)), nil
}

func (v JobType) String() string {
	switch v {
	case JobExecute:
		return "EXECUTE"
	case JobTimer:
		return "TIMER"
	default:
		return ""
	}
}

func (v *JobType) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) > 2 {
		s = s[1 : len(s)-1]
		*v = MapJobType(s)
	}
	if *v == 0 {
		return fmt.Errorf("invalid job type data %s", s)
	}
	return nil
}

// CaseTransition describes a lifecycle transition of a case instance or case execution.
type CaseTransition int

const (
	TransitionClose CaseTransition = iota + 1
	TransitionComplete
	TransitionDisable
	TransitionFault
	TransitionOccur
	TransitionReenable
	TransitionResume
	TransitionStart
	TransitionSuspend
	TransitionTerminate
)

func MapCaseTransition(s string) CaseTransition {
	switch s {
	case "CLOSE":
		return TransitionClose
	case "COMPLETE":
		return TransitionComplete
	case "DISABLE":
		return TransitionDisable
	case "FAULT":
		return TransitionFault
	case "OCCUR":
		return TransitionOccur
	case "REENABLE":
		return TransitionReenable
	case "RESUME":
		return TransitionResume
	case "START":
		return TransitionStart
	case "SUSPEND":
		return TransitionSuspend
	case "TERMINATE":
		return TransitionTerminate
	default:
		return 0
	}
}

func (v CaseTransition) String() string {
	switch v {
	case TransitionClose:
		return "CLOSE"
	case TransitionComplete:
		return "COMPLETE"
	case TransitionDisable:
		return "DISABLE"
	case TransitionFault:
		return "FAULT"
	case TransitionOccur:
		return "OCCUR"
	case TransitionReenable:
		return "REENABLE"
	case TransitionResume:
		return "RESUME"
	case TransitionStart:
		return "START"
	case TransitionSuspend:
		return "SUSPEND"
	case TransitionTerminate:
		return "TERMINATE"
	default:
		return ""
	}
}

// Activity is a step of a process definition.
type Activity struct {
	Id   string       `json:"id" validate:"required,activity_id"` // Activity ID, unique within a process definition.
	Name string       `json:"name,omitempty"`                     // Human-readable activity name.
	Type ActivityType `json:"type" validate:"required"`           // Activity type.

	Assignee        string          `json:"assignee,omitempty"`                                 // User task: initial assignee.
	CandidateGroups []string        `json:"candidateGroups,omitempty" validate:"max=100"`       // User task: groups, allowed to claim the task.
	CandidateUsers  []string        `json:"candidateUsers,omitempty" validate:"max=100"`        // User task: users, allowed to claim the task.
	Description     string          `json:"description,omitempty"`                              // User task: task description.
	DueDate         ISO8601Duration `json:"dueDate,omitempty" validate:"iso8601_duration"`      // User task: duration until the task is due.
	FollowUpDate    ISO8601Duration `json:"followUpDate,omitempty" validate:"iso8601_duration"` // User task: duration until a follow-up is needed.

	CalledProcessDefinitionKey string `json:"calledProcessDefinitionKey,omitempty"` // Call activity: key of the process definition to instantiate.
	Retries                    int    `json:"retries,omitempty" validate:"gte=0"`   // Service task: number of retries.
	Timer                      *Timer `json:"timer,omitempty"`                      // Timer event: timer definition.
}

// ActivityInstance is the execution of an activity within a process instance.
type ActivityInstance struct {
	Id string `json:"id" validate:"required"` // Activity instance ID.

	ProcessInstanceId string `json:"processInstanceId" validate:"required"` // ID of the enclosing process instance.

	ActivityId   string        `json:"activityId" validate:"required"`   // ID of the activity.
	ActivityType ActivityType  `json:"activityType" validate:"required"` // Type of the activity.
	CreatedAt    time.Time     `json:"createdAt" validate:"required"`    // Creation time.
	EndedAt      *time.Time    `json:"endedAt,omitempty"`                // End time.
	State        InstanceState `json:"state" validate:"required"`        // ACTIVE, COMPLETED or TERMINATED.
}

func (v ActivityInstance) String() string {
	return fmt.Sprintf("%s:%s", v.Id, v.ActivityId)
}

// ActivityInstanceCriteria specifies the results, returned by an activity instance query.
type ActivityInstanceCriteria struct {
	ProcessInstanceId string `json:"processInstanceId,omitempty"` // Process instance filter.

	ActivityId string          `json:"activityId,omitempty"`                     // Activity filter.
	States     []InstanceState `json:"states,omitempty" validate:"max=9,unique"` // States to include.
}

// CaseDefinition is a versioned model of a case, consisting of plan items.
type CaseDefinition struct {
	Id string `json:"id" validate:"required"` // Case definition ID.

	CreatedAt time.Time  `json:"createdAt" validate:"required"` // Creation time.
	CreatedBy string     `json:"createdBy" validate:"required"` // ID of the worker that created the case definition.
	Key       string     `json:"key" validate:"required"`       // Key, shared by all versions.
	Name      string     `json:"name,omitempty"`                // Human-readable name.
	PlanItems []PlanItem `json:"planItems" validate:"required"` // Plan items.
	Version   int        `json:"version" validate:"required"`   // Version, starting at 1.
}

func (v CaseDefinition) String() string {
	return fmt.Sprintf("%s:%d", v.Key, v.Version)
}

// CaseDefinitionCriteria specifies the results, returned by a case definition query.
type CaseDefinitionCriteria struct {
	Id string `json:"id,omitempty"` // Case definition filter.

	Key     string `json:"key,omitempty"`     // Key filter.
	Version int    `json:"version,omitempty"` // Version filter.
}

// CaseExecution is the execution of a plan item within a case instance.
type CaseExecution struct {
	Id string `json:"id" validate:"required"` // Case execution ID.

	CaseDefinitionId string `json:"caseDefinitionId" validate:"required"` // ID of the related case definition.
	CaseInstanceId   string `json:"caseInstanceId" validate:"required"`   // ID of the enclosing case instance.
	ParentId         string `json:"parentId,omitempty"`                   // ID of the enclosing stage execution, if any.

	ActivityId    string        `json:"activityId" validate:"required"`   // ID of the plan item.
	ActivityName  string        `json:"activityName,omitempty"`           // Name of the plan item.
	ActivityType  PlanItemType  `json:"activityType" validate:"required"` // Type of the plan item.
	CreatedAt     time.Time     `json:"createdAt" validate:"required"`    // Creation time.
	EndedAt       *time.Time    `json:"endedAt,omitempty"`                // End time.
	IsRequired    bool          `json:"required"`                         // Determines if the plan item is required to complete the enclosing scope.
	PreviousState InstanceState `json:"previousState,omitempty"`          // State before the last transition.
	State         InstanceState `json:"state" validate:"required"`        // Current state.
}

func (v CaseExecution) String() string {
	return fmt.Sprintf("%s:%s", v.Id, v.ActivityId)
}

// CaseExecutionCriteria specifies the results, returned by a case execution query.
type CaseExecutionCriteria struct {
	Id string `json:"id,omitempty"` // Case execution filter.

	CaseInstanceId string `json:"caseInstanceId,omitempty"` // Case instance filter.
	ParentId       string `json:"parentId,omitempty"`       // Parent stage execution filter.

	ActivityId   string          `json:"activityId,omitempty"`                     // Plan item filter.
	ActivityType PlanItemType    `json:"activityType,omitempty"`                   // Plan item type filter.
	States       []InstanceState `json:"states,omitempty" validate:"max=9,unique"` // States to include.
}

// CaseInstance is an instance of a case definition.
type CaseInstance struct {
	Id string `json:"id" validate:"required"` // Case instance ID.

	CaseDefinitionId  string `json:"caseDefinitionId" validate:"required"`  // ID of the related case definition.
	CaseDefinitionKey string `json:"caseDefinitionKey" validate:"required"` // Key of the related case definition.

	BusinessKey   string        `json:"businessKey,omitempty"`         // Key, used to correlate a case instance with a business entity.
	CreatedAt     time.Time     `json:"createdAt" validate:"required"` // Creation time.
	CreatedBy     string        `json:"createdBy" validate:"required"` // ID of the worker that created the case instance.
	EndedAt       *time.Time    `json:"endedAt,omitempty"`             // End time.
	PreviousState InstanceState `json:"previousState,omitempty"`       // State before the last transition.
	State         InstanceState `json:"state" validate:"required"`     // Current state.
}

func (v CaseInstance) String() string {
	return v.Id
}

// CaseInstanceCriteria specifies the results, returned by a case instance query.
type CaseInstanceCriteria struct {
	Id string `json:"id,omitempty"` // Case instance filter.

	CaseDefinitionId  string `json:"caseDefinitionId,omitempty"`  // Case definition filter.
	CaseDefinitionKey string `json:"caseDefinitionKey,omitempty"` // Case definition key filter.

	BusinessKey string          `json:"businessKey,omitempty"`                    // Business key filter.
	States      []InstanceState `json:"states,omitempty" validate:"max=9,unique"` // States to include.
}

// Data is used to store any data within an engine.
type Data struct {
	Encoding string `json:"encoding" validate:"required"` // Encoding of the value - e.g. `json`.
	Value    string `json:"value" validate:"required"`    // Data value, encoded as a string.
}

// Job is a unit of work, performed by a worker for a service task, or a timer that needs to be reached.
type Job struct {
	Id string `json:"id" validate:"required"` // Job ID.

	ProcessDefinitionId string `json:"processDefinitionId" validate:"required"` // ID of the related process definition.
	ProcessInstanceId   string `json:"processInstanceId" validate:"required"`   // ID of the enclosing process instance.

	ActivityId  string     `json:"activityId" validate:"required"`     // ID of the related activity.
	CompletedAt *time.Time `json:"completedAt,omitempty"`              // Completion time.
	CreatedAt   time.Time  `json:"createdAt" validate:"required"`      // Creation time.
	DueAt       time.Time  `json:"dueAt" validate:"required"`          // Point in time when a job can be completed.
	Error       string     `json:"error,omitempty"`                    // Error of the last failed attempt.
	IsSuspended bool       `json:"suspended"`                          // Determines if the job is suspended, together with its process instance.
	Retries     int        `json:"retries" validate:"required,gte=0"`  // Remaining retries.
	Type        JobType    `json:"type" validate:"required"`           // Job type.
}

func (v Job) HasError() bool {
	return v.Error != ""
}

func (v Job) IsCompleted() bool {
	return v.CompletedAt != nil
}

func (v Job) String() string {
	return fmt.Sprintf("%s:%s", v.Id, v.ActivityId)
}

// JobCriteria specifies the results, returned by a job query.
type JobCriteria struct {
	Id string `json:"id,omitempty"` // Job filter.

	ProcessInstanceId string `json:"processInstanceId,omitempty"` // Process instance filter.

	ActivityId       string `json:"activityId,omitempty"` // Activity filter.
	ExcludeCompleted bool   `json:"excludeCompleted"`     // Determines if completed jobs are returned.
}

// PlanItem is an element of a case definition.
type PlanItem struct {
	Id                 string       `json:"id" validate:"required,activity_id"` // Plan item ID, unique within a case definition.
	Name               string       `json:"name,omitempty"`                     // Human-readable name.
	ParentId           string       `json:"parentId,omitempty"`                 // ID of the enclosing stage plan item. If empty, the item belongs to the case plan model.
	Type               PlanItemType `json:"type" validate:"required"`           // Plan item type.
	IsManualActivation bool         `json:"manualActivation,omitempty"`         // Determines if the plan item must be started manually, when it becomes enabled.
	IsRequired         bool         `json:"required,omitempty"`                 // Determines if the plan item is required.
}

// ProcessDefinition is a versioned, sequential model of a process.
type ProcessDefinition struct {
	Id string `json:"id" validate:"required"` // Process definition ID.

	Activities  []Activity `json:"activities" validate:"required"` // Activities, executed in sequence.
	CreatedAt   time.Time  `json:"createdAt" validate:"required"`  // Creation time.
	CreatedBy   string     `json:"createdBy" validate:"required"`  // ID of the worker that created the process definition.
	IsSuspended bool       `json:"suspended"`                      // Determines if the process definition is suspended.
	Key         string     `json:"key" validate:"required"`        // Key, shared by all versions.
	Name        string     `json:"name,omitempty"`                 // Human-readable name.
	Version     int        `json:"version" validate:"required"`    // Version, starting at 1.
}

// Activity returns the activity with the given ID.
func (v ProcessDefinition) Activity(activityId string) (Activity, bool) {
	for _, activity := range v.Activities {
		if activity.Id == activityId {
			return activity, true
		}
	}
	return Activity{}, false
}

func (v ProcessDefinition) String() string {
	return fmt.Sprintf("%s:%d", v.Key, v.Version)
}

// ProcessDefinitionCriteria specifies the results, returned by a process definition query.
type ProcessDefinitionCriteria struct {
	Id string `json:"id,omitempty"` // Process definition filter.

	Key     string `json:"key,omitempty"`     // Key filter.
	Version int    `json:"version,omitempty"` // Version filter.
}

// ProcessInstance is an instance of a process definition.
type ProcessInstance struct {
	Id string `json:"id" validate:"required"` // Process instance ID.

	ParentId string `json:"parentId,omitempty"` // ID of the calling process instance.

	ProcessDefinitionId  string `json:"processDefinitionId" validate:"required"`  // ID of the related process definition.
	ProcessDefinitionKey string `json:"processDefinitionKey" validate:"required"` // Key of the related process definition.

	ActivityId  string        `json:"activityId,omitempty"`          // ID of the current activity. Empty, when ended.
	BusinessKey string        `json:"businessKey,omitempty"`         // Key, used to correlate a process instance with a business entity.
	CreatedAt   time.Time     `json:"createdAt" validate:"required"` // Creation time.
	CreatedBy   string        `json:"createdBy" validate:"required"` // ID of the worker that created the process instance.
	EndedAt     *time.Time    `json:"endedAt,omitempty"`             // End time.
	State       InstanceState `json:"state" validate:"required"`     // Current state.
}

func (v ProcessInstance) HasParent() bool {
	return v.ParentId != ""
}

func (v ProcessInstance) IsEnded() bool {
	return v.EndedAt != nil
}

func (v ProcessInstance) String() string {
	return v.Id
}

// ProcessInstanceCriteria specifies the results, returned by a process instance query.
type ProcessInstanceCriteria struct {
	Id string `json:"id,omitempty"` // Process instance filter.

	ParentId string `json:"parentId,omitempty"` // Calling process instance filter.

	ProcessDefinitionId  string `json:"processDefinitionId,omitempty"`  // Process definition filter.
	ProcessDefinitionKey string `json:"processDefinitionKey,omitempty"` // Process definition key filter.

	BusinessKey string          `json:"businessKey,omitempty"`                    // Business key filter.
	States      []InstanceState `json:"states,omitempty" validate:"max=9,unique"` // States to include.
}

// Task is a unit of work, performed by a human user.
type Task struct {
	Id string `json:"id" validate:"required"` // Task ID.

	ProcessDefinitionId string `json:"processDefinitionId" validate:"required"` // ID of the related process definition.
	ProcessInstanceId   string `json:"processInstanceId" validate:"required"`   // ID of the enclosing process instance.

	ActivityId      string     `json:"activityId" validate:"required"` // ID of the related user task activity.
	Assignee        string     `json:"assignee,omitempty"`             // User, the task is assigned to.
	CandidateGroups []string   `json:"candidateGroups,omitempty"`      // Groups, allowed to claim the task.
	CandidateUsers  []string   `json:"candidateUsers,omitempty"`       // Users, allowed to claim the task.
	CompletedAt     *time.Time `json:"completedAt,omitempty"`          // Completion time.
	CompletedBy     string     `json:"completedBy,omitempty"`          // ID of the worker that completed the task.
	CreatedAt       time.Time  `json:"createdAt" validate:"required"`  // Creation time.
	Description     string     `json:"description,omitempty"`          // Task description.
	DueAt           *time.Time `json:"dueAt,omitempty"`                // Due date.
	FollowUpAt      *time.Time `json:"followUpAt,omitempty"`           // Follow-up date.
	Name            string     `json:"name,omitempty"`                 // Task name.
}

func (v Task) IsCompleted() bool {
	return v.CompletedAt != nil
}

func (v Task) String() string {
	return fmt.Sprintf("%s:%s", v.Id, v.ActivityId)
}

// TaskCriteria specifies the results, returned by a task query.
type TaskCriteria struct {
	Id string `json:"id,omitempty"` // Task filter.

	ProcessInstanceId string `json:"processInstanceId,omitempty"` // Process instance filter.

	ActivityId       string `json:"activityId,omitempty"` // Activity filter.
	Assignee         string `json:"assignee,omitempty"`   // Assignee filter.
	ExcludeCompleted bool   `json:"excludeCompleted"`     // Determines if completed tasks are returned.
}

// A timer defines a point in time using a time value, a CRON expression or a duration.
type Timer struct {
	// A point in time.
	Time time.Time `json:"time"`
	// CRON expression that specifies a cyclic timer.
	TimeCycle string `json:"timeCycle,omitempty" validate:"cron"`
	// Duration based timer that uses the engine's time to calculate a point in time.
	TimeDuration ISO8601Duration `json:"timeDuration" validate:"iso8601_duration"`
}

func (t Timer) String() string {
	if !t.Time.IsZero() {
		return t.Time.UTC().Truncate(time.Millisecond).Format(time.RFC3339Nano)
	} else if t.TimeCycle != "" {
		return t.TimeCycle
	} else if !t.TimeDuration.IsZero() {
		return t.TimeDuration.String()
	} else {
		return ""
	}
}

// Variable is data, identified by a name, that exists in the scope of a process instance or case instance.
type Variable struct {
	CaseInstanceId    string `json:"caseInstanceId,omitempty"`    // ID of the case instance - set if the variable exists at case instance scope.
	ProcessInstanceId string `json:"processInstanceId,omitempty"` // ID of the process instance - set if the variable exists at process instance scope.

	CreatedAt time.Time `json:"createdAt" validate:"required"` // Creation time.
	CreatedBy string    `json:"createdBy" validate:"required"` // ID of the worker that created the variable.
	Encoding  string    `json:"encoding" validate:"required"`  // Encoding of the variable value - e.g. `json`.
	Name      string    `json:"name" validate:"required"`      // Variable name.
	UpdatedAt time.Time `json:"updatedAt" validate:"required"` // Last modification time.
	UpdatedBy string    `json:"updatedBy" validate:"required"` // ID of the worker that updated the variable.
	Value     string    `json:"value" validate:"required"`     // Variable value.
}

func (v Variable) String() string {
	if v.ProcessInstanceId != "" {
		return fmt.Sprintf("%s/%s", v.ProcessInstanceId, v.Name)
	}
	return fmt.Sprintf("%s/%s", v.CaseInstanceId, v.Name)
}

// VariableCriteria specifies the results, returned by a variable query.
type VariableCriteria struct {
	CaseInstanceId    string `json:"caseInstanceId,omitempty"`    // Case instance filter.
	ProcessInstanceId string `json:"processInstanceId,omitempty"` // Process instance filter.

	Names []string `json:"names,omitempty"` // Names of variables to include.
}
