package internal

import (
	"fmt"
	"time"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type ProcessInstanceEntity struct {
	Id string

	ParentId pgtype.Text

	ProcessDefinitionId  string
	ProcessDefinitionKey string

	ActivityId  pgtype.Text
	BusinessKey pgtype.Text
	CreatedAt   time.Time
	CreatedBy   string
	EndedAt     pgtype.Timestamp
	State       engine.InstanceState
}

func (e ProcessInstanceEntity) ProcessInstance() engine.ProcessInstance {
	return engine.ProcessInstance{
		Id: e.Id,

		ParentId: e.ParentId.String,

		ProcessDefinitionId:  e.ProcessDefinitionId,
		ProcessDefinitionKey: e.ProcessDefinitionKey,

		ActivityId:  e.ActivityId.String,
		BusinessKey: e.BusinessKey.String,
		CreatedAt:   e.CreatedAt,
		CreatedBy:   e.CreatedBy,
		EndedAt:     timeOrNil(e.EndedAt),
		State:       e.State,
	}
}

type ProcessInstanceRepository interface {
	Insert(*ProcessInstanceEntity) error
	Select(id string) (*ProcessInstanceEntity, error)
	SelectByParent(parentId string) ([]*ProcessInstanceEntity, error)
	Update(*ProcessInstanceEntity) error

	Query(engine.ProcessInstanceCriteria, engine.QueryOptions) ([]engine.ProcessInstance, error)
}

func CreateProcessInstance(ctx Context, cmd engine.CreateProcessInstanceCmd) (engine.ProcessInstance, error) {
	const title = "failed to create process instance"

	if err := validateCmd(title, cmd); err != nil {
		return engine.ProcessInstance{}, err
	}

	processDefinition, err := selectInstantiableProcessDefinition(ctx, title, cmd.ProcessDefinitionKey, cmd.Version)
	if err != nil {
		return engine.ProcessInstance{}, err
	}

	processInstance, err := startProcessInstance(ctx, processDefinition, nil, cmd.BusinessKey, cmd.WorkerId, cmd.Variables)
	if err != nil {
		return engine.ProcessInstance{}, err
	}

	return processInstance.ProcessInstance(), nil
}

func ResumeProcessInstance(ctx Context, cmd engine.ResumeProcessInstanceCmd) error {
	const title = "failed to resume process instance"

	if err := validateCmd(title, cmd); err != nil {
		return err
	}

	processInstance, err := selectProcessInstance(ctx, title, cmd.Id)
	if err != nil {
		return err
	}

	if processInstance.State != engine.InstanceSuspended {
		return engine.Error{
			Type:   engine.ErrorConflict,
			Title:  title,
			Detail: fmt.Sprintf("process instance %s is not suspended, but %s", processInstance.Id, processInstance.State),
		}
	}

	processInstance.State = engine.InstanceActive
	if err := ctx.ProcessInstances().Update(processInstance); err != nil {
		return err
	}

	return setJobsSuspended(ctx, processInstance.Id, false)
}

func SuspendProcessInstance(ctx Context, cmd engine.SuspendProcessInstanceCmd) error {
	const title = "failed to suspend process instance"

	if err := validateCmd(title, cmd); err != nil {
		return err
	}

	processInstance, err := selectProcessInstance(ctx, title, cmd.Id)
	if err != nil {
		return err
	}

	if processInstance.State != engine.InstanceActive {
		return engine.Error{
			Type:   engine.ErrorConflict,
			Title:  title,
			Detail: fmt.Sprintf("process instance %s is not active, but %s", processInstance.Id, processInstance.State),
		}
	}

	processInstance.State = engine.InstanceSuspended
	if err := ctx.ProcessInstances().Update(processInstance); err != nil {
		return err
	}

	return setJobsSuspended(ctx, processInstance.Id, true)
}

func TerminateProcessInstance(ctx Context, cmd engine.TerminateProcessInstanceCmd) error {
	const title = "failed to terminate process instance"

	if err := validateCmd(title, cmd); err != nil {
		return err
	}

	processInstance, err := selectProcessInstance(ctx, title, cmd.Id)
	if err != nil {
		return err
	}

	if processInstance.State.IsEnded() {
		return engine.Error{
			Type:   engine.ErrorConflict,
			Title:  title,
			Detail: fmt.Sprintf("process instance %s is ended", processInstance.Id),
		}
	}

	return terminateProcessInstance(ctx, processInstance)
}

func terminateProcessInstance(ctx Context, processInstance *ProcessInstanceEntity) error {
	children, err := ctx.ProcessInstances().SelectByParent(processInstance.Id)
	if err != nil {
		return err
	}

	for _, child := range children {
		if child.State.IsEnded() {
			continue
		}
		if err := terminateProcessInstance(ctx, child); err != nil {
			return err
		}
	}

	activityInstances, err := ctx.ActivityInstances().SelectActive(processInstance.Id)
	if err != nil {
		return err
	}

	for _, activityInstance := range activityInstances {
		activityInstance.EndedAt = timestamp(ctx.Time())
		activityInstance.State = engine.InstanceTerminated
		if err := ctx.ActivityInstances().Update(activityInstance); err != nil {
			return err
		}
	}

	processInstance.ActivityId = pgtype.Text{}
	processInstance.EndedAt = timestamp(ctx.Time())
	processInstance.State = engine.InstanceTerminated

	return ctx.ProcessInstances().Update(processInstance)
}

func selectInstantiableProcessDefinition(ctx Context, title string, key string, version int) (engine.ProcessDefinition, error) {
	entity, err := ctx.ProcessDefinitions().SelectByKey(key, version)
	if err == pgx.ErrNoRows {
		versionString := "latest"
		if version != 0 {
			versionString = fmt.Sprintf("%d", version)
		}
		return engine.ProcessDefinition{}, engine.Error{
			Type:   engine.ErrorNotFound,
			Title:  title,
			Detail: fmt.Sprintf("process definition %s:%s could not be found", key, versionString),
		}
	}
	if err != nil {
		return engine.ProcessDefinition{}, err
	}

	if entity.IsSuspended {
		return engine.ProcessDefinition{}, engine.Error{
			Type:   engine.ErrorConflict,
			Title:  title,
			Detail: fmt.Sprintf("process definition %s:%d is suspended", entity.Key, entity.Version),
		}
	}

	return entity.ProcessDefinition(), nil
}

func selectProcessInstance(ctx Context, title string, id string) (*ProcessInstanceEntity, error) {
	processInstance, err := ctx.ProcessInstances().Select(id)
	if err == pgx.ErrNoRows {
		return nil, engine.Error{
			Type:   engine.ErrorNotFound,
			Title:  title,
			Detail: fmt.Sprintf("process instance %s could not be found", id),
		}
	}
	return processInstance, err
}

func startProcessInstance(
	ctx Context,
	processDefinition engine.ProcessDefinition,
	parent *ProcessInstanceEntity,
	businessKey string,
	workerId string,
	variables map[string]*engine.Data,
) (*ProcessInstanceEntity, error) {
	processInstance := ProcessInstanceEntity{
		Id: newId(),

		ProcessDefinitionId:  processDefinition.Id,
		ProcessDefinitionKey: processDefinition.Key,

		BusinessKey: text(businessKey),
		CreatedAt:   ctx.Time(),
		CreatedBy:   workerId,
		State:       engine.InstanceActive,
	}

	if parent != nil {
		processInstance.ParentId = text(parent.Id)
	}

	if err := ctx.ProcessInstances().Insert(&processInstance); err != nil {
		return nil, err
	}

	if err := setVariables(ctx, variableScope{processInstanceId: processInstance.Id}, variables, workerId); err != nil {
		return nil, err
	}

	if err := enterActivity(ctx, processDefinition, &processInstance, 0); err != nil {
		return nil, err
	}

	if err := ctx.ProcessInstances().Update(&processInstance); err != nil {
		return nil, err
	}

	return &processInstance, nil
}

// enterActivity creates an activity instance and, depending on the activity type, a task, a job or a called process instance.
// The caller must update the process instance.
func enterActivity(ctx Context, processDefinition engine.ProcessDefinition, processInstance *ProcessInstanceEntity, index int) error {
	activity := processDefinition.Activities[index]

	activityInstance := ActivityInstanceEntity{
		Id: newId(),

		ProcessInstanceId: processInstance.Id,

		ActivityId:   activity.Id,
		ActivityType: activity.Type,
		CreatedAt:    ctx.Time(),
		State:        engine.InstanceActive,
	}

	if err := ctx.ActivityInstances().Insert(&activityInstance); err != nil {
		return err
	}

	processInstance.ActivityId = text(activity.Id)

	switch activity.Type {
	case engine.ActivityCallActivity:
		calledProcessDefinition, err := selectInstantiableProcessDefinition(ctx, "failed to call process", activity.CalledProcessDefinitionKey, 0)
		if err != nil {
			return err
		}

		_, err = startProcessInstance(ctx, calledProcessDefinition, processInstance, processInstance.BusinessKey.String, processInstance.CreatedBy, nil)
		return err
	case engine.ActivityServiceTask:
		retries := activity.Retries
		if retries == 0 {
			retries = ctx.Options().JobRetries
		}

		job := JobEntity{
			Id: newId(),

			ProcessDefinitionId: processDefinition.Id,
			ProcessInstanceId:   processInstance.Id,

			ActivityId: activity.Id,
			CreatedAt:  ctx.Time(),
			DueAt:      ctx.Time(),
			Retries:    retries,
			Type:       engine.JobExecute,
		}

		return ctx.Jobs().Insert(&job)
	case engine.ActivityTimerEvent:
		dueAt, err := evaluateTimer(*activity.Timer, ctx.Time())
		if err != nil {
			return fmt.Errorf("failed to evaluate timer of activity %s: %v", activity.Id, err)
		}

		job := JobEntity{
			Id: newId(),

			ProcessDefinitionId: processDefinition.Id,
			ProcessInstanceId:   processInstance.Id,

			ActivityId: activity.Id,
			CreatedAt:  ctx.Time(),
			DueAt:      dueAt,
			Retries:    ctx.Options().JobRetries,
			Type:       engine.JobTimer,
		}

		return ctx.Jobs().Insert(&job)
	case engine.ActivityUserTask:
		task := TaskEntity{
			Id: newId(),

			ProcessDefinitionId: processDefinition.Id,
			ProcessInstanceId:   processInstance.Id,

			ActivityId:      activity.Id,
			Assignee:        text(activity.Assignee),
			CandidateGroups: activity.CandidateGroups,
			CandidateUsers:  activity.CandidateUsers,
			CreatedAt:       ctx.Time(),
			Description:     text(activity.Description),
			Name:            text(activity.Name),
		}

		if !activity.DueDate.IsZero() {
			task.DueAt = timestamp(activity.DueDate.Calculate(ctx.Time()))
		}
		if !activity.FollowUpDate.IsZero() {
			task.FollowUpAt = timestamp(activity.FollowUpDate.Calculate(ctx.Time()))
		}

		return ctx.Tasks().Insert(&task)
	default:
		return engine.Error{
			Type:   engine.ErrorBug,
			Title:  "failed to enter activity",
			Detail: fmt.Sprintf("activity %s has unsupported type %s", activity.Id, activity.Type),
		}
	}
}

// leaveActivity completes the active activity instance and enters the next activity.
// After the last activity, the process instance is completed and a calling process instance is continued.
func leaveActivity(ctx Context, processInstance *ProcessInstanceEntity, activityId string) error {
	activityInstances, err := ctx.ActivityInstances().SelectActive(processInstance.Id)
	if err != nil {
		return err
	}

	for _, activityInstance := range activityInstances {
		if activityInstance.ActivityId != activityId {
			continue
		}

		activityInstance.EndedAt = timestamp(ctx.Time())
		activityInstance.State = engine.InstanceCompleted
		if err := ctx.ActivityInstances().Update(activityInstance); err != nil {
			return err
		}
	}

	definitionEntity, err := ctx.ProcessDefinitions().Select(processInstance.ProcessDefinitionId)
	if err != nil {
		return fmt.Errorf("failed to select process definition %s: %v", processInstance.ProcessDefinitionId, err)
	}

	processDefinition := definitionEntity.ProcessDefinition()

	next := len(processDefinition.Activities)
	for i, activity := range processDefinition.Activities {
		if activity.Id == activityId {
			next = i + 1
			break
		}
	}

	if next < len(processDefinition.Activities) {
		if err := enterActivity(ctx, processDefinition, processInstance, next); err != nil {
			return err
		}
		return ctx.ProcessInstances().Update(processInstance)
	}

	processInstance.ActivityId = pgtype.Text{}
	processInstance.EndedAt = timestamp(ctx.Time())
	processInstance.State = engine.InstanceCompleted

	if err := ctx.ProcessInstances().Update(processInstance); err != nil {
		return err
	}

	if !processInstance.ParentId.Valid {
		return nil
	}

	parent, err := ctx.ProcessInstances().Select(processInstance.ParentId.String)
	if err != nil {
		return fmt.Errorf("failed to select calling process instance %s: %v", processInstance.ParentId.String, err)
	}

	if parent.State.IsEnded() {
		return nil
	}

	return leaveActivity(ctx, parent, parent.ActivityId.String)
}
