package core

import (
	"io"
	"log/slog"
	"sync"
	"time"
)

// StateKind discriminates SessionState variants for logging and rendering.
type StateKind string

const (
	KindIdle         StateKind = "idle"
	KindAwaitingPick StateKind = "awaiting_pick"
	KindReadingFile  StateKind = "reading_file"
	KindRejectedFile StateKind = "rejected_file"
	KindLoaded       StateKind = "loaded"
	KindDecodeFailed StateKind = "decode_failed"
)

// SessionState is the single source of truth for what the UI should
// currently show. Exactly one variant is active at a time; the machine
// replaces the whole value on every transition and never mutates a
// published state, so snapshots are safe to read concurrently.
type SessionState interface {
	Kind() StateKind
}

// Idle is the initial state: no file, no error.
type Idle struct{}

// AwaitingPick means a file picker has been requested and the machine is
// parked until the user responds. Picking nothing leaves it here.
type AwaitingPick struct{}

// ReadingFile means an accepted file's content is being read.
type ReadingFile struct {
	FileName string
}

// RejectedFile means pre-read validation refused the file.
type RejectedFile struct {
	FileName  string
	Rejection *Rejection
}

// Loaded means records are on display with the current sort selection.
type Loaded struct {
	FileName string
	Records  []Record
	Sort     SortState
}

// DecodeFailed means the file was read but its content did not decode.
type DecodeFailed struct {
	FileName string
	Err      error
}

func (Idle) Kind() StateKind         { return KindIdle }
func (AwaitingPick) Kind() StateKind { return KindAwaitingPick }
func (ReadingFile) Kind() StateKind  { return KindReadingFile }
func (RejectedFile) Kind() StateKind { return KindRejectedFile }
func (Loaded) Kind() StateKind       { return KindLoaded }
func (DecodeFailed) Kind() StateKind { return KindDecodeFailed }

// Intent is a user gesture or async completion delivered to a Session.
type Intent interface {
	intent()
}

// RequestUpload asks for a file picker to be opened.
type RequestUpload struct{}

// FilePicked reports the user's chosen file. Open is called once, off
// the intent loop, to read the content; it must not have side effects
// beyond the read itself.
type FilePicked struct {
	Meta FileMeta
	Open func() (io.ReadCloser, error)
}

// ReadCompleted delivers the full file content after an async read.
type ReadCompleted struct {
	Text string
}

// ReadFailed delivers an async read failure.
type ReadFailed struct {
	Err error
}

// SortBy reports a click on a column header.
type SortBy struct {
	Column Column
}

// Clear discards any records or error and returns to Idle.
type Clear struct{}

func (RequestUpload) intent() {}
func (FilePicked) intent()    {}
func (ReadCompleted) intent() {}
func (ReadFailed) intent()    {}
func (SortBy) intent()        {}
func (Clear) intent()         {}

// intentQueueSize bounds the per-session intent backlog. A full queue
// drops the intent rather than blocking the producer.
const intentQueueSize = 32

// Session runs one interaction's state machine. Intents are processed
// one at a time on a dedicated goroutine; async file reads post their
// completion back into the same queue, so no state is ever visible
// mid-transition.
type Session struct {
	id        string
	validator *Validator
	logger    *slog.Logger

	intents chan Intent
	done    chan struct{}
	once    sync.Once

	mu         sync.RWMutex
	state      SessionState
	lastActive time.Time

	listenerMu sync.Mutex
	listeners  []chan SessionState
}

// NewSession creates a Session in the Idle state and starts its intent
// loop. Callers must eventually Close it.
func NewSession(id string, validator *Validator, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		id:         id,
		validator:  validator,
		logger:     logger.With("session_id", id),
		intents:    make(chan Intent, intentQueueSize),
		done:       make(chan struct{}),
		state:      Idle{},
		lastActive: time.Now(),
	}
	go s.run()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Snapshot returns the current state. The returned value is immutable.
func (s *Session) Snapshot() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// LastActive reports when the session last processed an intent.
func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

// Post enqueues an intent. It reports false if the session is closed or
// its queue is full; the intent is dropped in either case.
func (s *Session) Post(in Intent) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.intents <- in:
		return true
	case <-s.done:
		return false
	default:
		s.logger.Warn("intent queue full, dropping intent", "intent", intentName(in))
		return false
	}
}

// Subscribe registers a listener that receives the state after each
// processed intent, including intents that were ignored (the unchanged
// state is re-sent so waiters always observe progress). Slow listeners
// miss updates rather than stalling the intent loop.
func (s *Session) Subscribe() chan SessionState {
	ch := make(chan SessionState, 8)
	s.listenerMu.Lock()
	s.listeners = append(s.listeners, ch)
	s.listenerMu.Unlock()
	return ch
}

// Unsubscribe removes a listener registered with Subscribe.
func (s *Session) Unsubscribe(ch chan SessionState) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	for i, l := range s.listeners {
		if l == ch {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

func (s *Session) notify(state SessionState) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	for _, l := range s.listeners {
		select {
		case l <- state:
		default:
		}
	}
}

// Close stops the intent loop. Pending intents are discarded.
func (s *Session) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *Session) run() {
	for {
		select {
		case <-s.done:
			return
		case in := <-s.intents:
			s.handle(in)
		}
	}
}

// handle applies one intent to the current state. Intents that make no
// sense in the current state are dropped, not treated as errors.
func (s *Session) handle(in Intent) {
	state := s.Snapshot()

	switch in := in.(type) {
	case RequestUpload:
		switch state.(type) {
		case Idle, RejectedFile, Loaded, DecodeFailed:
			s.setState(AwaitingPick{})
		default:
			s.ignore(in, state)
		}

	case FilePicked:
		if _, ok := state.(AwaitingPick); !ok {
			s.ignore(in, state)
			return
		}
		if err := s.validator.Validate(in.Meta); err != nil {
			rej := err.(*Rejection)
			s.logger.Info("file rejected",
				"file", in.Meta.Name,
				"size", in.Meta.Size,
				"content_type", in.Meta.ContentType,
				"reason", rej.Reason.String(),
			)
			s.setState(RejectedFile{FileName: in.Meta.Name, Rejection: rej})
			return
		}
		s.setState(ReadingFile{FileName: in.Meta.Name})
		go s.read(in.Open)

	case ReadCompleted:
		reading, ok := state.(ReadingFile)
		if !ok {
			s.ignore(in, state)
			return
		}
		records, err := Decode(in.Text)
		if err != nil {
			s.logger.Info("decode failed", "file", reading.FileName, "error", err)
			s.setState(DecodeFailed{FileName: reading.FileName, Err: err})
			return
		}
		s.logger.Info("file loaded", "file", reading.FileName, "rows", len(records))
		s.setState(Loaded{FileName: reading.FileName, Records: records})

	case ReadFailed:
		reading, ok := state.(ReadingFile)
		if !ok {
			s.ignore(in, state)
			return
		}
		s.logger.Warn("file read failed", "file", reading.FileName, "error", in.Err)
		s.setState(DecodeFailed{FileName: reading.FileName, Err: in.Err})

	case SortBy:
		loaded, ok := state.(Loaded)
		if !ok {
			s.ignore(in, state)
			return
		}
		records, next := ApplySort(loaded.Records, in.Column, loaded.Sort)
		s.setState(Loaded{FileName: loaded.FileName, Records: records, Sort: next})

	case Clear:
		// Accepted from every state, including mid-read: the read's
		// completion will arrive in a non-ReadingFile state and be
		// dropped there.
		s.setState(Idle{})
	}
}

// read performs the async file read and posts the outcome back into the
// intent queue. It never touches session state directly.
func (s *Session) read(open func() (io.ReadCloser, error)) {
	rc, err := open()
	if err != nil {
		s.Post(ReadFailed{Err: err})
		return
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		s.Post(ReadFailed{Err: err})
		return
	}
	s.Post(ReadCompleted{Text: string(data)})
}

func (s *Session) setState(next SessionState) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	s.lastActive = time.Now()
	s.mu.Unlock()
	s.logger.Debug("state transition", "from", prev.Kind(), "to", next.Kind())
	s.notify(next)
}

func (s *Session) ignore(in Intent, state SessionState) {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
	s.logger.Debug("intent ignored", "intent", intentName(in), "state", state.Kind())
	s.notify(state)
}

func intentName(in Intent) string {
	switch in.(type) {
	case RequestUpload:
		return "request_upload"
	case FilePicked:
		return "file_picked"
	case ReadCompleted:
		return "read_completed"
	case ReadFailed:
		return "read_failed"
	case SortBy:
		return "sort_by"
	case Clear:
		return "clear"
	default:
		return "unknown"
	}
}
