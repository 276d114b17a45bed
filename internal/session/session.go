package session

import (
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/roach88/fetchqb/internal/fetchxml"
	"github.com/roach88/fetchqb/internal/fields"
	"github.com/roach88/fetchqb/internal/metrics"
	"github.com/roach88/fetchqb/internal/rule"
)

// Change is handed to the change callback after every emission.
type Change struct {
	SessionID string `json:"session_id"`
	Seq       int64  `json:"seq"`
	XML       string `json:"xml"`

	// Recovered is set when encoding failed and XML is fetchxml.EmptyQuery.
	Recovered bool `json:"recovered,omitempty"`
}

// Recorder receives conversion outcomes. *metrics.Collector implements it.
type Recorder interface {
	RecordParse(outcome string)
	RecordSerialize(outcome string)
	RecordEmit()
}

type nopRecorder struct{}

func (nopRecorder) RecordParse(string)     {}
func (nopRecorder) RecordSerialize(string) {}
func (nopRecorder) RecordEmit()            {}

// Snapshot is a deep copy of session state.
type Snapshot struct {
	ID         string
	Rule       *rule.Group
	Fields     []rule.Field
	EntityName string
}

// Session is one editing session. Create it with New.
type Session struct {
	mu sync.Mutex

	id       string
	onChange func(Change)
	decoder  *fetchxml.Decoder
	encoder  *fetchxml.Encoder
	recorder Recorder
	logger   zerolog.Logger

	tree     *rule.Group
	external []rule.Field
	parsed   []rule.Field
	entity   string
	seq      int64
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger. The default discards.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithRecorder sets the outcome recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Session) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithIDGenerator sets the session ID source. The default is UUIDv7.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Session) {
		s.id = g.Generate()
	}
}

// WithEntityPlaceholder sets the entity name used when none was captured.
func WithEntityPlaceholder(name string) Option {
	return func(s *Session) {
		if name != "" {
			s.encoder.EntityPlaceholder = name
		}
	}
}

// WithPreserveWildcards keeps like values verbatim on Load.
func WithPreserveWildcards(preserve bool) Option {
	return func(s *Session) {
		s.decoder.PreserveWildcards = preserve
	}
}

// New creates an empty session: an empty AND tree, no fields and the
// placeholder entity. onChange may be nil.
func New(onChange func(Change), opts ...Option) *Session {
	s := &Session{
		onChange: onChange,
		decoder:  &fetchxml.Decoder{},
		encoder:  fetchxml.NewEncoder(),
		recorder: nopRecorder{},
		logger:   zerolog.Nop(),
		tree:     rule.NewGroup(rule.And),
		parsed:   []rule.Field{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = UUIDv7Generator{}.Generate()
	}
	s.entity = s.encoder.EntityPlaceholder
	s.logger = s.logger.With().Str("session", s.id).Logger()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Load replaces the session state with the decoded source. The tree is
// replaced wholesale and the entity name recaptured. Undecodable input
// resets the session to an empty query; the returned error reports why
// (a *fetchxml.DecodeError) but the session stays usable. Load does not
// emit.
func (s *Session) Load(xmlText string) error {
	res, err := s.decoder.Decode(xmlText)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		outcome := metrics.OutcomeRecovered
		var decErr *fetchxml.DecodeError
		if errors.As(err, &decErr) {
			outcome = strings.ToLower(string(decErr.Reason))
		}
		s.recorder.RecordParse(outcome)
		s.logger.Warn().Err(err).Msg("source not decodable, session reset to empty query")
		res = fetchxml.ZeroResult()
	} else {
		s.recorder.RecordParse(metrics.OutcomeOK)
	}

	s.tree = res.Rule
	s.parsed = res.Fields
	s.entity = res.EntityName
	if s.entity == "" {
		s.entity = s.encoder.EntityPlaceholder
	}

	s.logger.Debug().
		Str("entity", s.entity).
		Int("conditions", rule.CountConditions(s.tree)).
		Int("fields", len(s.parsed)).
		Msg("source loaded")
	return err
}

// SetFields replaces the externally supplied field descriptors and emits.
// External descriptors take precedence over inferred ones.
func (s *Session) SetFields(external []rule.Field) {
	s.mu.Lock()
	s.external = append([]rule.Field(nil), external...)
	change := s.serializeLocked()
	s.mu.Unlock()

	s.emit(change)
}

// Fields returns the field list visible to the editor: external
// descriptors, then parsed attributes, then every field the tree references.
func (s *Session) Fields() []rule.Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fieldsLocked()
}

func (s *Session) fieldsLocked() []rule.Field {
	return fields.Resolve(s.external, fetchxml.InferFields(s.parsed, s.tree))
}

// EntityName returns the entity name carried by the session.
func (s *Session) EntityName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entity
}

// XML serializes the current state without emitting.
func (s *Session) XML() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.encoder.Serialize(s.tree, s.entity, s.fieldsLocked())
}

// Snapshot returns a deep copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		ID:         s.id,
		Rule:       rule.Clone(s.tree).(*rule.Group),
		Fields:     s.fieldsLocked(),
		EntityName: s.entity,
	}
}

// Refresh re-serializes the current state and emits it.
func (s *Session) Refresh() {
	s.mu.Lock()
	change := s.serializeLocked()
	s.mu.Unlock()

	s.emit(change)
}

// serializeLocked encodes the current state and assigns the next sequence
// number. Callers hold s.mu and pass the result to emit after unlocking.
func (s *Session) serializeLocked() Change {
	s.seq++
	change := Change{SessionID: s.id, Seq: s.seq}

	out, err := s.encoder.Encode(s.tree, s.entity, s.fieldsLocked())
	if err != nil {
		s.recorder.RecordSerialize(metrics.OutcomeRecovered)
		s.logger.Warn().Err(err).Int64("seq", s.seq).Msg("serialization failed, emitting empty query")
		change.XML = fetchxml.EmptyQuery
		change.Recovered = true
		return change
	}

	s.recorder.RecordSerialize(metrics.OutcomeOK)
	change.XML = out
	return change
}

func (s *Session) emit(change Change) {
	s.recorder.RecordEmit()
	if s.onChange != nil {
		s.onChange(change)
	}
}
