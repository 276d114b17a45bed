package harness

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/roach88/fetchqb/internal/rule"
	"github.com/roach88/fetchqb/internal/session"
)

// Option configures Run.
type Option func(*runConfig)

type runConfig struct {
	logger   zerolog.Logger
	recorder session.Recorder
}

// WithLogger routes session logs to l. Runs are silent by default.
func WithLogger(l zerolog.Logger) Option {
	return func(c *runConfig) { c.logger = l }
}

// WithRecorder attaches a metrics recorder to the session.
func WithRecorder(r session.Recorder) Option {
	return func(c *runConfig) { c.recorder = r }
}

// Run executes a scenario in a fresh session and evaluates its
// expectations. The returned error is for edits that could not be
// applied as written (for example a value that is not a scalar);
// failed expectations are reported in Result.Errors.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	result := NewResult()
	var mu sync.Mutex
	onChange := func(c session.Change) {
		mu.Lock()
		result.Emitted = append(result.Emitted, c)
		mu.Unlock()
	}

	sessOpts := []session.Option{
		session.WithLogger(cfg.logger),
		session.WithIDGenerator(session.NewFixedGenerator("scenario-" + scenario.Name)),
		session.WithPreserveWildcards(scenario.PreserveWildcards),
	}
	if scenario.Entity != "" {
		sessOpts = append(sessOpts, session.WithEntityPlaceholder(scenario.Entity))
	}
	if cfg.recorder != nil {
		sessOpts = append(sessOpts, session.WithRecorder(cfg.recorder))
	}
	sess := session.New(onChange, sessOpts...)

	if err := sess.Load(scenario.Source); err != nil && strings.TrimSpace(scenario.Source) != "" {
		result.LoadError = err.Error()
	}
	if len(scenario.Fields) > 0 {
		sess.SetFields(scenario.Fields)
	}

	for i, edit := range scenario.Edits {
		err := apply(sess, edit)
		var valueErr *valueError
		if errors.As(err, &valueErr) {
			return nil, fmt.Errorf("edits[%d]: %w", i, err)
		}
		checkEditError(result, i, edit, err)
	}

	snap := sess.Snapshot()
	result.XML = sess.XML()
	result.Fields = rule.FieldNames(snap.Fields)
	result.Entity = snap.EntityName
	result.Conditions = rule.CountConditions(snap.Rule)

	for _, msg := range EvaluateExpect(result, scenario.Expect) {
		result.AddError(msg)
	}
	return result, nil
}

// valueError marks an edit whose value cannot become a rule.Value.
type valueError struct {
	err error
}

func (e *valueError) Error() string { return "value: " + e.err.Error() }
func (e *valueError) Unwrap() error { return e.err }

func apply(sess *session.Session, e Edit) error {
	path := session.Path(e.Path)

	switch e.Op {
	case OpAddCondition:
		value, err := rule.ValueFrom(e.Value)
		if err != nil {
			return &valueError{err: err}
		}
		_, err = sess.AddCondition(path, rule.NewCondition(e.Field, e.Operator, value))
		return err
	case OpAddGroup:
		_, err := sess.AddGroup(path, rule.ParseConjunction(e.Conjunction))
		return err
	case OpRemove:
		return sess.Remove(path)
	case OpUpdate:
		value, err := rule.ValueFrom(e.Value)
		if err != nil {
			return &valueError{err: err}
		}
		return sess.UpdateCondition(path, e.Field, e.Operator, value)
	case OpSetConjunction:
		return sess.SetConjunction(path, rule.ParseConjunction(e.Conjunction))
	case OpMove:
		return sess.Move(path, e.Index)
	case OpSetFields:
		sess.SetFields(e.Fields)
		return nil
	case OpLoad:
		// Decode failures reset the session; expectations see the result.
		_ = sess.Load(e.Source)
		return nil
	case OpRefresh:
		sess.Refresh()
		return nil
	default:
		return fmt.Errorf("unknown op %q", e.Op)
	}
}

func checkEditError(result *Result, i int, edit Edit, err error) {
	switch {
	case edit.Error == "" && err != nil:
		result.AddError(fmt.Sprintf("edits[%d] %s: unexpected error: %v", i, edit.Op, err))
	case edit.Error != "" && err == nil:
		result.AddError(fmt.Sprintf("edits[%d] %s: expected error containing %q, got none", i, edit.Op, edit.Error))
	case edit.Error != "" && !strings.Contains(err.Error(), edit.Error):
		result.AddError(fmt.Sprintf("edits[%d] %s: expected error containing %q, got %q", i, edit.Op, edit.Error, err.Error()))
	}
}
