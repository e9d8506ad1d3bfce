package assertions

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/gclaussn/go-bpmn-assert/engine"
)

// TaskAssert provides assertions for a task of a process instance.
type TaskAssert struct {
	*assertion
}

// Actual queries and returns the current state of the task.
func (a *TaskAssert) Actual() engine.Task {
	a.t.Helper()

	task, err := a.actual()
	if err != nil {
		fail(a.t, err, a.chain)
	}
	return task
}

func (a *TaskAssert) HasCandidateGroup(candidateGroup string) *TaskAssert {
	a.t.Helper()

	task, err := a.actual()
	if err == nil && !slices.Contains(task.CandidateGroups, candidateGroup) {
		err = a.mismatch(fmt.Sprintf("to have candidate group %q", candidateGroup), list(task.CandidateGroups))
	}

	a.check(signature("HasCandidateGroup", candidateGroup), err)
	return a
}

func (a *TaskAssert) HasCandidateUser(candidateUser string) *TaskAssert {
	a.t.Helper()

	task, err := a.actual()
	if err == nil && !slices.Contains(task.CandidateUsers, candidateUser) {
		err = a.mismatch(fmt.Sprintf("to have candidate user %q", candidateUser), list(task.CandidateUsers))
	}

	a.check(signature("HasCandidateUser", candidateUser), err)
	return a
}

// HasDefinitionKey asserts that the task belongs to the user task activity with the given ID.
func (a *TaskAssert) HasDefinitionKey(activityId string) *TaskAssert {
	a.t.Helper()

	task, err := a.actual()
	if err == nil && task.ActivityId != activityId {
		err = a.mismatch(fmt.Sprintf("to have definition key %q", activityId), strconv.Quote(task.ActivityId))
	}

	a.check(signature("HasDefinitionKey", activityId), err)
	return a
}

func (a *TaskAssert) HasDescription(description string) *TaskAssert {
	a.t.Helper()

	task, err := a.actual()
	if err == nil && task.Description != description {
		err = a.mismatch(fmt.Sprintf("to have description %q", description), strconv.Quote(task.Description))
	}

	a.check(signature("HasDescription", description), err)
	return a
}

func (a *TaskAssert) HasDueDate(dueDate time.Time) *TaskAssert {
	a.t.Helper()

	task, err := a.actual()
	if err == nil && (task.DueAt == nil || !task.DueAt.Equal(dueDate)) {
		err = a.mismatch("to have due date "+formatTime(dueDate), formatTimePtr(task.DueAt))
	}

	a.check(signature("HasDueDate", formatTime(dueDate)), err)
	return a
}

func (a *TaskAssert) HasFollowUpDate(followUpDate time.Time) *TaskAssert {
	a.t.Helper()

	task, err := a.actual()
	if err == nil && (task.FollowUpAt == nil || !task.FollowUpAt.Equal(followUpDate)) {
		err = a.mismatch("to have follow-up date "+formatTime(followUpDate), formatTimePtr(task.FollowUpAt))
	}

	a.check(signature("HasFollowUpDate", formatTime(followUpDate)), err)
	return a
}

func (a *TaskAssert) HasName(name string) *TaskAssert {
	a.t.Helper()

	task, err := a.actual()
	if err == nil && task.Name != name {
		err = a.mismatch(fmt.Sprintf("to have name %q", name), strconv.Quote(task.Name))
	}

	a.check(signature("HasName", name), err)
	return a
}

func (a *TaskAssert) IsAssignedTo(assignee string) *TaskAssert {
	a.t.Helper()

	task, err := a.actual()
	if err == nil && task.Assignee != assignee {
		err = a.mismatch(fmt.Sprintf("to be assigned to %q", assignee), strconv.Quote(task.Assignee))
	}

	a.check(signature("IsAssignedTo", assignee), err)
	return a
}

func (a *TaskAssert) IsCompleted() *TaskAssert {
	a.t.Helper()

	task, err := a.actual()
	if err == nil && !task.IsCompleted() {
		err = a.mismatch("to be completed", "open")
	}

	a.check(signature("IsCompleted"), err)
	return a
}

func (a *TaskAssert) IsNotAssigned() *TaskAssert {
	a.t.Helper()

	task, err := a.actual()
	if err == nil && task.Assignee != "" {
		err = a.mismatch("not to be assigned", fmt.Sprintf("assigned to %q", task.Assignee))
	}

	a.check(signature("IsNotAssigned"), err)
	return a
}

func (a *TaskAssert) IsNotCompleted() *TaskAssert {
	a.t.Helper()

	task, err := a.actual()
	if err == nil && task.IsCompleted() {
		err = a.mismatch("not to be completed", "completed by "+strconv.Quote(task.CompletedBy))
	}

	a.check(signature("IsNotCompleted"), err)
	return a
}

func (a *TaskAssert) actual() (engine.Task, error) {
	results, err := a.q.QueryTasks(context.Background(), engine.TaskCriteria{Id: a.id})
	if err != nil {
		return engine.Task{}, a.queryError(err)
	}
	if len(results) == 0 {
		return engine.Task{}, a.notFound()
	}
	return results[0], nil
}

// JobAssert provides assertions for a job of a process instance.
type JobAssert struct {
	*assertion
}

// Actual queries and returns the current state of the job.
func (a *JobAssert) Actual() engine.Job {
	a.t.Helper()

	job, err := a.actual()
	if err != nil {
		fail(a.t, err, a.chain)
	}
	return job
}

func (a *JobAssert) HasActivityId(activityId string) *JobAssert {
	a.t.Helper()

	job, err := a.actual()
	if err == nil && job.ActivityId != activityId {
		err = a.mismatch(fmt.Sprintf("to have activity ID %q", activityId), strconv.Quote(job.ActivityId))
	}

	a.check(signature("HasActivityId", activityId), err)
	return a
}

func (a *JobAssert) HasDueDate(dueDate time.Time) *JobAssert {
	a.t.Helper()

	job, err := a.actual()
	if err == nil && !job.DueAt.Equal(dueDate) {
		err = a.mismatch("to have due date "+formatTime(dueDate), formatTime(job.DueAt))
	}

	a.check(signature("HasDueDate", formatTime(dueDate)), err)
	return a
}

// HasError asserts that the last attempt to complete the job failed with the given error or any error, if message is empty.
func (a *JobAssert) HasError(message string) *JobAssert {
	a.t.Helper()

	job, err := a.actual()
	if err == nil {
		switch {
		case !job.HasError():
			err = a.mismatch("to have an error", "none")
		case message != "" && job.Error != message:
			err = a.mismatch(fmt.Sprintf("to have error %q", message), strconv.Quote(job.Error))
		}
	}

	a.check(signature("HasError", message), err)
	return a
}

func (a *JobAssert) HasRetries(retries int) *JobAssert {
	a.t.Helper()

	job, err := a.actual()
	if err == nil && job.Retries != retries {
		err = a.mismatch(fmt.Sprintf("to have %d retries", retries), strconv.Itoa(job.Retries))
	}

	a.check(signature("HasRetries", retries), err)
	return a
}

func (a *JobAssert) IsCompleted() *JobAssert {
	a.t.Helper()

	job, err := a.actual()
	if err == nil && !job.IsCompleted() {
		err = a.mismatch("to be completed", "open")
	}

	a.check(signature("IsCompleted"), err)
	return a
}

func (a *JobAssert) IsNotCompleted() *JobAssert {
	a.t.Helper()

	job, err := a.actual()
	if err == nil && job.IsCompleted() {
		err = a.mismatch("not to be completed", "completed at "+formatTimePtr(job.CompletedAt))
	}

	a.check(signature("IsNotCompleted"), err)
	return a
}

func (a *JobAssert) IsSuspended() *JobAssert {
	a.t.Helper()

	job, err := a.actual()
	if err == nil && !job.IsSuspended {
		err = a.mismatch("to be suspended", "active")
	}

	a.check(signature("IsSuspended"), err)
	return a
}

func (a *JobAssert) actual() (engine.Job, error) {
	results, err := a.q.QueryJobs(context.Background(), engine.JobCriteria{Id: a.id})
	if err != nil {
		return engine.Job{}, a.queryError(err)
	}
	if len(results) == 0 {
		return engine.Job{}, a.notFound()
	}
	return results[0], nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return "none"
	}
	return formatTime(*t)
}
