package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/csvdeck/csvdeck/internal/core"
	"github.com/csvdeck/csvdeck/internal/logging"
	"github.com/csvdeck/csvdeck/internal/web/views"
)

// formOverhead is slack added to the transport-level body cap so a file
// right at the upload limit still fits beside its multipart framing.
const formOverhead = 64 * 1024

// errNoFile is returned when the upload form carries no file part.
var errNoFile = errors.New("no file provided")

// handleIndex starts a fresh session and sends the browser to its page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	http.Redirect(w, r, "/session/"+sess.ID(), http.StatusSeeOther)
}

// handleSessionPage renders the full page for a session.
func (s *Server) handleSessionPage(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		// An expired session ID in the address bar just means "start over".
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.Page(sess.ID(), sess.Snapshot(), s.cfg.Upload.MaxFileSize).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
	}
}

// handleCreateSession starts a session for API clients.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	writeJSON(w, map[string]string{"session_id": sess.ID()})
}

// handleState reports the current session state without advancing it.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}
	s.renderState(w, r, sess.ID(), sess.Snapshot())
}

// handleUpload accepts a CSV file for the session. The file's declared
// size and content type are validated by the session machine before the
// content is read; the handler stays on the request until the machine
// settles so the multipart file remains readable for the async read.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	maxBody := s.cfg.Upload.MaxFileSize + formOverhead
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseMultipartForm(maxBody); err != nil {
		s.respondError(w, r, fmt.Errorf("file too large or invalid form: %w", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errNoFile, http.StatusBadRequest)
		return
	}
	defer file.Close()

	meta := core.FileMeta{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	}

	ch := sess.Subscribe()
	defer sess.Unsubscribe(ch)

	if !sess.Post(core.RequestUpload{}) || !sess.Post(core.FilePicked{
		Meta: meta,
		Open: func() (io.ReadCloser, error) { return file, nil },
	}) {
		s.respondError(w, r, errors.New("session busy"), http.StatusServiceUnavailable)
		return
	}

	state, err := waitFor(r.Context(), ch, func(st core.SessionState) bool {
		switch st.Kind() {
		case core.KindRejectedFile, core.KindLoaded, core.KindDecodeFailed, core.KindIdle:
			return true
		}
		return false
	})
	if err != nil {
		s.respondError(w, r, err, http.StatusGatewayTimeout)
		return
	}

	s.respondAfterIntent(w, r, sess.ID(), state)
}

// handleSort applies a column-header click to the session.
func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	column, err := core.ParseColumn(chi.URLParam(r, "column"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	state, err := s.postAndWait(r.Context(), sess, core.SortBy{Column: column})
	if err != nil {
		s.respondError(w, r, err, http.StatusGatewayTimeout)
		return
	}
	s.respondAfterIntent(w, r, sess.ID(), state)
}

// handleClear discards the session's records or error.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	state, err := s.postAndWait(r.Context(), sess, core.Clear{})
	if err != nil {
		s.respondError(w, r, err, http.StatusGatewayTimeout)
		return
	}
	s.respondAfterIntent(w, r, sess.ID(), state)
}

// handleExport downloads the loaded records, in display order, as CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	loaded, ok := sess.Snapshot().(core.Loaded)
	if !ok {
		s.respondError(w, r, errors.New("no records loaded"), http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="records.csv"`)
	_, _ = io.WriteString(w, core.EncodeCSV(loaded.Records))
}

// session resolves the sessionID URL parameter.
func (s *Server) session(r *http.Request) (*core.Session, error) {
	return s.sessions.Get(chi.URLParam(r, "sessionID"))
}

// postAndWait posts a single intent and waits until the machine has
// processed it, returning the state it settled on.
func (s *Server) postAndWait(ctx context.Context, sess *core.Session, in core.Intent) (core.SessionState, error) {
	ch := sess.Subscribe()
	defer sess.Unsubscribe(ch)

	if !sess.Post(in) {
		return nil, errors.New("session busy")
	}
	return waitFor(ctx, ch, func(core.SessionState) bool { return true })
}

// waitFor drains state events until pred accepts one or ctx expires.
func waitFor(ctx context.Context, ch <-chan core.SessionState, pred func(core.SessionState) bool) (core.SessionState, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case st := <-ch:
			if pred(st) {
				return st, nil
			}
		}
	}
}

// respondAfterIntent returns the new state to API clients, or sends the
// browser back to the session page.
func (s *Server) respondAfterIntent(w http.ResponseWriter, r *http.Request, sessionID string, state core.SessionState) {
	if wantsJSON(r) {
		writeJSON(w, stateToJSON(state))
		return
	}
	http.Redirect(w, r, "/session/"+sessionID, http.StatusSeeOther)
}

// renderState writes the current state as JSON or as an HTML fragment.
func (s *Server) renderState(w http.ResponseWriter, r *http.Request, sessionID string, state core.SessionState) {
	if wantsJSON(r) {
		writeJSON(w, stateToJSON(state))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.StatePanel(sessionID, state).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render state", "error", err)
	}
}

// recordJSON is the wire shape of one record. An absent parent ID is
// null, not zero.
type recordJSON struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parentId"`
}

type sortJSON struct {
	Column    string `json:"column"`
	Direction string `json:"direction"`
}

type stateJSON struct {
	State    string       `json:"state"`
	FileName string       `json:"fileName,omitempty"`
	Records  []recordJSON `json:"records,omitempty"`
	Sort     *sortJSON    `json:"sort,omitempty"` // nil while order is "as read"
	Error    string       `json:"error,omitempty"`
	Code     string       `json:"code,omitempty"`
}

func stateToJSON(state core.SessionState) stateJSON {
	out := stateJSON{State: string(state.Kind())}

	switch st := state.(type) {
	case core.ReadingFile:
		out.FileName = st.FileName
	case core.RejectedFile:
		out.FileName = st.FileName
		msg := core.MapError(st.Rejection)
		out.Error = msg.Message
		out.Code = msg.Code
	case core.DecodeFailed:
		out.FileName = st.FileName
		msg := core.MapError(st.Err)
		out.Error = msg.Message
		out.Code = msg.Code
	case core.Loaded:
		out.FileName = st.FileName
		out.Records = make([]recordJSON, len(st.Records))
		for i, rec := range st.Records {
			rj := recordJSON{ID: rec.ID, Name: rec.Name}
			if rec.ParentID.Valid {
				v := rec.ParentID.Int64
				rj.ParentID = &v
			}
			out.Records[i] = rj
		}
		if st.Sort.Applied {
			out.Sort = &sortJSON{
				Column:    st.Sort.Column.String(),
				Direction: st.Sort.Direction.String(),
			}
		}
	}

	return out
}
