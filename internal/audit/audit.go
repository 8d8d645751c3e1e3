package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"medilink-server/internal/models"
)

// Entry is one immutable audit record. Time is UTC ISO-8601.
type Entry struct {
	Role    models.Role `json:"role"`
	UserID  string      `json:"userID"`
	Route   string      `json:"route"`
	Success bool        `json:"success"`
	Time    string      `json:"time"`
}

// Recorder persists audit entries. The sink is write-only; nothing in the
// service ever reads it back.
type Recorder interface {
	Record(entry Entry) error
}

// RecorderFunc is a function adapter for Recorder.
type RecorderFunc func(entry Entry) error

func (f RecorderFunc) Record(entry Entry) error {
	return f(entry)
}

// Per-role sink files, line-delimited JSON.
var roleFiles = map[models.Role]string{
	models.RolePatient:    "patientLog.json",
	models.RoleDoctor:     "doctorLog.json",
	models.RolePharmacist: "pharmacyLog.json",
}

// FileRecorder appends entries to a per-role JSONL file and mirrors each one
// as a structured log event. Appends are serialized by a mutex; the files
// are never rewritten.
type FileRecorder struct {
	dir    string
	logger zerolog.Logger
	mu     sync.Mutex
}

// NewFileRecorder creates a FileRecorder writing under dir.
func NewFileRecorder(dir string, logger zerolog.Logger) *FileRecorder {
	return &FileRecorder{dir: dir, logger: logger}
}

// Record appends one entry to the role's sink file.
func (r *FileRecorder) Record(entry Entry) error {
	name, ok := roleFiles[entry.Role]
	if !ok {
		return fmt.Errorf("no audit sink for role %q", entry.Role)
	}
	if entry.UserID == "" || entry.Route == "" {
		return fmt.Errorf("audit entry missing user or route")
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(r.dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return err
	}
	// The close error matters here: a failed flush means the entry may not
	// have reached the sink.
	if err := f.Close(); err != nil {
		return err
	}

	r.logger.Info().
		Str("role", string(entry.Role)).
		Str("user_id", entry.UserID).
		Str("route", entry.Route).
		Bool("success", entry.Success).
		Str("time", entry.Time).
		Msg("audit")
	return nil
}
