package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"gopkg.in/yaml.v3"
)

// scenario is the content of a scenario file.
type scenario struct {
	Name   string  `yaml:"name"`
	Setup  setup   `yaml:"setup,omitempty"`
	Checks []check `yaml:"checks"`

	file string
}

// setup creates definitions and instances before the checks of a scenario run.
type setup struct {
	ProcessDefinitions []processDefinitionSpec `yaml:"processDefinitions,omitempty"`
	ProcessInstances   []instanceSpec          `yaml:"processInstances,omitempty"`
	CaseDefinitions    []caseDefinitionSpec    `yaml:"caseDefinitions,omitempty"`
	CaseInstances      []instanceSpec          `yaml:"caseInstances,omitempty"`
}

type processDefinitionSpec struct {
	Key        string         `yaml:"key"`
	Name       string         `yaml:"name,omitempty"`
	Activities []activitySpec `yaml:"activities"`
}

type activitySpec struct {
	Id   string `yaml:"id"`
	Name string `yaml:"name,omitempty"`
	Type string `yaml:"type"`

	Assignee        string   `yaml:"assignee,omitempty"`
	CandidateGroups []string `yaml:"candidateGroups,omitempty"`
	CandidateUsers  []string `yaml:"candidateUsers,omitempty"`
	Description     string   `yaml:"description,omitempty"`
	DueDate         string   `yaml:"dueDate,omitempty"`
	FollowUpDate    string   `yaml:"followUpDate,omitempty"`

	CalledProcessDefinitionKey string     `yaml:"calledProcessDefinitionKey,omitempty"`
	Retries                    int        `yaml:"retries,omitempty"`
	Timer                      *timerSpec `yaml:"timer,omitempty"`
}

type timerSpec struct {
	Time         time.Time `yaml:"time,omitempty"`
	TimeCycle    string    `yaml:"timeCycle,omitempty"`
	TimeDuration string    `yaml:"timeDuration,omitempty"`
}

type caseDefinitionSpec struct {
	Key       string         `yaml:"key"`
	Name      string         `yaml:"name,omitempty"`
	PlanItems []planItemSpec `yaml:"planItems"`
}

type planItemSpec struct {
	Id               string `yaml:"id"`
	Name             string `yaml:"name,omitempty"`
	ParentId         string `yaml:"parentId,omitempty"`
	Type             string `yaml:"type"`
	ManualActivation bool   `yaml:"manualActivation,omitempty"`
	Required         bool   `yaml:"required,omitempty"`
}

// instanceSpec describes a process instance or a case instance, depending on the list it is part of.
type instanceSpec struct {
	DefinitionKey string              `yaml:"definitionKey"`
	Version       int                 `yaml:"version,omitempty"`
	BusinessKey   string              `yaml:"businessKey,omitempty"`
	Variables     map[string]dataSpec `yaml:"variables,omitempty"`
}

type dataSpec struct {
	Encoding string `yaml:"encoding"`
	Value    string `yaml:"value"`
}

// check selects a single entity and applies the expected steps to it.
type check struct {
	Name string `yaml:"name,omitempty"`

	ProcessDefinition *definitionSelector      `yaml:"processDefinition,omitempty"`
	ProcessInstance   *processInstanceSelector `yaml:"processInstance,omitempty"`
	CaseDefinition    *definitionSelector      `yaml:"caseDefinition,omitempty"`
	CaseInstance      *caseInstanceSelector    `yaml:"caseInstance,omitempty"`

	Expect []step `yaml:"expect,omitempty"`
}

// definitionSelector selects a process or case definition by key. If version is 0, the latest version is selected.
type definitionSelector struct {
	Key     string `yaml:"key"`
	Version int    `yaml:"version,omitempty"`
}

type processInstanceSelector struct {
	BusinessKey          string `yaml:"businessKey,omitempty"`
	ProcessDefinitionKey string `yaml:"processDefinitionKey,omitempty"`
	State                string `yaml:"state,omitempty"`
}

type caseInstanceSelector struct {
	BusinessKey       string `yaml:"businessKey,omitempty"`
	CaseDefinitionKey string `yaml:"caseDefinitionKey,omitempty"`
	State             string `yaml:"state,omitempty"`
}

// step is a single key mapping, like "hasBusinessKey: order-1", or a plain name, like "isActive".
type step struct {
	name string
	arg  *yaml.Node
	line int
}

func (s *step) UnmarshalYAML(node *yaml.Node) error {
	switch {
	case node.Kind == yaml.ScalarNode:
		s.name = node.Value
	case node.Kind == yaml.MappingNode && len(node.Content) == 2:
		s.name = node.Content[0].Value
		s.arg = node.Content[1]
	default:
		return fmt.Errorf("line %d: step must be a name or a mapping with a single key", node.Line)
	}

	if s.name == "" {
		return fmt.Errorf("line %d: step name is empty", node.Line)
	}

	s.line = node.Line
	return nil
}

func (s step) String() string {
	return fmt.Sprintf("%s (line %d)", s.name, s.line)
}

// loadScenario reads and validates a scenario file. Unknown fields are rejected.
func loadScenario(path string) (*scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file %s: %v", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(b))
	decoder.KnownFields(true)

	var s scenario
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file %s: %v", path, err)
	}

	s.file = path

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario file %s: %v", path, err)
	}

	return &s, nil
}

func (s *scenario) validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if len(s.Checks) == 0 {
		return errors.New("at least one check is required")
	}

	for i, c := range s.Checks {
		var n int
		if c.ProcessDefinition != nil {
			n++
		}
		if c.ProcessInstance != nil {
			n++
		}
		if c.CaseDefinition != nil {
			n++
		}
		if c.CaseInstance != nil {
			n++
		}

		if n != 1 {
			return fmt.Errorf("check %s must select exactly one of processDefinition, processInstance, caseDefinition or caseInstance", c.label(i))
		}
	}

	return nil
}

// label returns the name of the check or its position, if the check is unnamed.
func (c check) label(i int) string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("#%d", i+1)
}

// apply executes the setup of a scenario, creating definitions before instances.
func (s setup) apply(ctx context.Context, e engine.Engine) error {
	for _, spec := range s.ProcessDefinitions {
		cmd, err := spec.toCmd()
		if err != nil {
			return fmt.Errorf("process definition %s: %v", spec.Key, err)
		}
		if _, err := e.CreateProcessDefinition(ctx, cmd); err != nil {
			return fmt.Errorf("failed to create process definition %s: %v", spec.Key, err)
		}
	}

	for _, spec := range s.CaseDefinitions {
		cmd, err := spec.toCmd()
		if err != nil {
			return fmt.Errorf("case definition %s: %v", spec.Key, err)
		}
		if _, err := e.CreateCaseDefinition(ctx, cmd); err != nil {
			return fmt.Errorf("failed to create case definition %s: %v", spec.Key, err)
		}
	}

	for _, spec := range s.ProcessInstances {
		_, err := e.CreateProcessInstance(ctx, engine.CreateProcessInstanceCmd{
			ProcessDefinitionKey: spec.DefinitionKey,
			BusinessKey:          spec.BusinessKey,
			Variables:            spec.variables(),
			Version:              spec.Version,
			WorkerId:             program,
		})
		if err != nil {
			return fmt.Errorf("failed to create process instance of %s: %v", spec.DefinitionKey, err)
		}
	}

	for _, spec := range s.CaseInstances {
		_, err := e.CreateCaseInstance(ctx, engine.CreateCaseInstanceCmd{
			CaseDefinitionKey: spec.DefinitionKey,
			BusinessKey:       spec.BusinessKey,
			Variables:         spec.variables(),
			Version:           spec.Version,
			WorkerId:          program,
		})
		if err != nil {
			return fmt.Errorf("failed to create case instance of %s: %v", spec.DefinitionKey, err)
		}
	}

	return nil
}

func (spec processDefinitionSpec) toCmd() (engine.CreateProcessDefinitionCmd, error) {
	activities := make([]engine.Activity, len(spec.Activities))
	for i, a := range spec.Activities {
		activityType := engine.MapActivityType(a.Type)
		if activityType == 0 {
			return engine.CreateProcessDefinitionCmd{}, fmt.Errorf("activity %s has invalid type %q", a.Id, a.Type)
		}

		activities[i] = engine.Activity{
			Id:   a.Id,
			Name: a.Name,
			Type: activityType,

			Assignee:        a.Assignee,
			CandidateGroups: a.CandidateGroups,
			CandidateUsers:  a.CandidateUsers,
			Description:     a.Description,
			DueDate:         engine.ISO8601Duration(a.DueDate),
			FollowUpDate:    engine.ISO8601Duration(a.FollowUpDate),

			CalledProcessDefinitionKey: a.CalledProcessDefinitionKey,
			Retries:                    a.Retries,
		}

		if a.Timer != nil {
			activities[i].Timer = &engine.Timer{
				Time:         a.Timer.Time,
				TimeCycle:    a.Timer.TimeCycle,
				TimeDuration: engine.ISO8601Duration(a.Timer.TimeDuration),
			}
		}
	}

	return engine.CreateProcessDefinitionCmd{
		Activities: activities,
		Key:        spec.Key,
		Name:       spec.Name,
		WorkerId:   program,
	}, nil
}

func (spec caseDefinitionSpec) toCmd() (engine.CreateCaseDefinitionCmd, error) {
	planItems := make([]engine.PlanItem, len(spec.PlanItems))
	for i, p := range spec.PlanItems {
		planItemType := engine.MapPlanItemType(p.Type)
		if planItemType == 0 {
			return engine.CreateCaseDefinitionCmd{}, fmt.Errorf("plan item %s has invalid type %q", p.Id, p.Type)
		}

		planItems[i] = engine.PlanItem{
			Id:                 p.Id,
			Name:               p.Name,
			ParentId:           p.ParentId,
			Type:               planItemType,
			IsManualActivation: p.ManualActivation,
			IsRequired:         p.Required,
		}
	}

	return engine.CreateCaseDefinitionCmd{
		Key:       spec.Key,
		Name:      spec.Name,
		PlanItems: planItems,
		WorkerId:  program,
	}, nil
}

func (spec instanceSpec) variables() map[string]*engine.Data {
	if len(spec.Variables) == 0 {
		return nil
	}

	variables := make(map[string]*engine.Data, len(spec.Variables))
	for name, data := range spec.Variables {
		variables[name] = &engine.Data{Encoding: data.Encoding, Value: data.Value}
	}
	return variables
}
