package session

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"csvquery/adapters/excel"
	"csvquery/domain/core"
	"csvquery/domain/dataset"
	"csvquery/internal/errors"
	"csvquery/internal/profiling"
	"csvquery/internal/usage"
	"csvquery/models"
	"csvquery/ports"

	"golang.org/x/sync/semaphore"
)

// Entry is one answered question. Entries are append-only.
type Entry struct {
	ID         core.ID   `json:"id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Model      string    `json:"model,omitempty"`
	Source     string    `json:"source,omitempty"`
	AskedAt    time.Time `json:"asked_at"`
	AnsweredAt time.Time `json:"answered_at"`
}

// Dependencies are shared by every session
type Dependencies struct {
	Reader   *excel.DataReader
	Agent    ports.Agent
	Usage    *usage.Service
	Timeout  time.Duration
	Overview profiling.Options
}

// Session holds at most one table and the transcript of questions asked about it
type Session struct {
	id   core.ID
	deps Dependencies
	sem  *semaphore.Weighted

	mu         sync.RWMutex
	source     string
	table      *dataset.Table
	overview   *profiling.OverviewReport
	transcript []Entry
	createdAt  time.Time
	lastActive time.Time
}

// New creates an empty session
func New(id core.ID, deps Dependencies) *Session {
	if deps.Reader == nil {
		deps.Reader = excel.NewDataReader(nil)
	}
	if deps.Timeout <= 0 {
		deps.Timeout = 60 * time.Second
	}
	if len(deps.Overview.Sections) == 0 && deps.Overview.PreviewRows == 0 {
		deps.Overview = profiling.DefaultOptions()
	}

	now := time.Now()
	return &Session{
		id:         id,
		deps:       deps,
		sem:        semaphore.NewWeighted(1),
		createdAt:  now,
		lastActive: now,
	}
}

// ID returns the session identifier
func (s *Session) ID() core.ID {
	return s.id
}

// Load parses an uploaded file and makes it the current table. On failure the
// previous table stays current.
func (s *Session) Load(filename string, data []byte) (*profiling.OverviewReport, error) {
	table, err := s.deps.Reader.LoadFile(filename, data)
	if err != nil {
		log.Printf("[Session] %s: upload %q rejected: %v", s.id, filename, err)
		return nil, err
	}

	overview := profiling.Summarize(table, s.deps.Overview)

	s.mu.Lock()
	s.source = filename
	s.table = table
	s.overview = &overview
	s.lastActive = time.Now()
	s.mu.Unlock()

	log.Printf("[Session] %s: loaded %q (%d rows, %d columns)", s.id, filename, table.RowCount(), table.ColumnCount())
	return &overview, nil
}

// Ask sends question to the agent with the table that is current right now and
// appends the answer to the transcript. Failed questions leave the transcript unchanged.
func (s *Session) Ask(ctx context.Context, question string) (Entry, error) {
	if strings.TrimSpace(question) == "" {
		return Entry{}, errors.InvalidInput("please enter a question")
	}

	s.mu.RLock()
	source, table, overview := s.source, s.table, s.overview
	s.mu.RUnlock()
	if table == nil {
		return Entry{}, errors.InvalidInput("upload a CSV file first")
	}

	// One question at a time per session so answers never interleave.
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return Entry{}, errors.AgentError("the question was cancelled", err)
	}
	defer s.sem.Release(1)

	callCtx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
	defer cancel()

	askedAt := time.Now()
	resp, err := s.deps.Agent.Ask(callCtx, ports.AgentRequest{
		Question: question,
		Table:    table,
		Overview: overview,
	})
	answeredAt := time.Now()

	if err == nil && (resp == nil || strings.TrimSpace(resp.Answer) == "") {
		err = errors.AgentError("the agent returned an empty answer", nil)
	}
	if err != nil && !errors.HasCode(err, errors.CodeAgentError) {
		err = errors.AgentError("the agent could not answer the question", err)
	}

	record := &models.QuestionLog{
		ID:           core.NewUUID(),
		SessionID:    s.id.String(),
		Question:     question,
		TableRows:    table.RowCount(),
		TableColumns: table.ColumnCount(),
		LatencyMS:    answeredAt.Sub(askedAt).Milliseconds(),
		CreatedAt:    askedAt,
	}

	if err != nil {
		log.Printf("[Session] %s: question failed after %v: %v", s.id, answeredAt.Sub(askedAt), err)
		msg := err.Error()
		record.ErrorMessage = &msg
		s.deps.Usage.Record(ctx, record)
		return Entry{}, err
	}

	entry := Entry{
		ID:         core.ID(record.ID.String()),
		Question:   question,
		Answer:     resp.Answer,
		Model:      resp.Model,
		Source:     source,
		AskedAt:    askedAt,
		AnsweredAt: answeredAt,
	}

	s.mu.Lock()
	s.transcript = append(s.transcript, entry)
	s.lastActive = answeredAt
	s.mu.Unlock()

	record.Answer = &entry.Answer
	record.Model = resp.Model
	record.PromptTokens = resp.PromptTokens
	record.CompletionTokens = resp.CompletionTokens
	record.TotalTokens = resp.TotalTokens
	s.deps.Usage.Record(ctx, record)

	return entry, nil
}

// Transcript returns a copy of the answered questions in submission order
func (s *Session) Transcript() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Table returns the current table, or nil before the first upload
func (s *Session) Table() *dataset.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// Overview returns the report of the current table, or nil before the first upload
func (s *Session) Overview() *profiling.OverviewReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overview
}

// Source returns the filename of the current table
func (s *Session) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// touch marks the session as used at now
func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	if now.After(s.lastActive) {
		s.lastActive = now
	}
	s.mu.Unlock()
}

// LastActive returns when the session was last looked up, loaded a table or received an answer
func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}
