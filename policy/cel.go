package policy

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// Rule variables.
const (
	VarObligation  = "obligation"
	VarActor       = "actor"
	VarStatus      = "status"
	VarAttachments = "attachments"
)

type celEvaluator struct {
	env      *cel.Env
	mu       sync.RWMutex
	programs map[string]cel.Program
}

func newCELEvaluator() (*celEvaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable(VarObligation, cel.DynType),
		cel.Variable(VarActor, cel.DynType),
		cel.Variable(VarStatus, cel.StringType),
		cel.Variable(VarAttachments, cel.ListType(cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &celEvaluator{env: env, programs: map[string]cel.Program{}}, nil
}

func (e *celEvaluator) compile(expr string) error {
	_, err := e.program(expr)
	return err
}

func (e *celEvaluator) program(expr string) (cel.Program, error) {
	e.mu.RLock()
	prg, ok := e.programs[expr]
	e.mu.RUnlock()
	if ok {
		return prg, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if prg, ok = e.programs[expr]; ok {
		return prg, nil
	}
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile: %w", issues.Err())
	}
	prg, err := e.env.Program(ast,
		cel.InterruptCheckFrequency(100),
		cel.CostLimit(10000),
	)
	if err != nil {
		return nil, fmt.Errorf("program: %w", err)
	}
	e.programs[expr] = prg
	return prg, nil
}

func (e *celEvaluator) evaluate(expr string, vars map[string]any) (bool, error) {
	prg, err := e.program(expr)
	if err != nil {
		return false, err
	}
	input := map[string]any{
		VarObligation:  map[string]any{},
		VarActor:       map[string]any{},
		VarStatus:      "",
		VarAttachments: []string{},
	}
	for k, v := range vars {
		input[k] = v
	}
	out, _, err := prg.Eval(input)
	if err != nil {
		return false, fmt.Errorf("eval: %w", err)
	}
	val, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("result not bool")
	}
	return val, nil
}
