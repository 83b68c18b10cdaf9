package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hayderhassan/InsightSphere/pkg/apperrors"
	"github.com/hayderhassan/InsightSphere/pkg/models"
	"github.com/hayderhassan/InsightSphere/pkg/semantic"
)

// EditMode scopes which part of the semantic config an edit session may change.
type EditMode string

const (
	EditModeFull    EditMode = "full"
	EditModeTarget  EditMode = "target"
	EditModeTime    EditMode = "time"
	EditModeMetrics EditMode = "metrics"
)

// IsValidEditMode checks if the given mode is valid.
func IsValidEditMode(m EditMode) bool {
	switch m {
	case EditModeFull, EditModeTarget, EditModeTime, EditModeMetrics:
		return true
	}
	return false
}

// Title is the heading shown for the edit dialog of this mode.
func (m EditMode) Title() string {
	switch m {
	case EditModeTarget:
		return "Edit target label"
	case EditModeTime:
		return "Edit time field"
	case EditModeMetrics:
		return "Edit key fields"
	default:
		return "Dataset semantics"
	}
}

// Description is the help text shown for the edit dialog of this mode.
func (m EditMode) Description() string {
	switch m {
	case EditModeTarget:
		return "Choose the column that represents the outcome or label, such as passed/failed, churned/not, fraud/not."
	case EditModeTime:
		return "Choose the column that stores dates, timestamps, or elapsed time such as duration or days_since_signup."
	case EditModeMetrics:
		return "Select the numeric fields you care about most, such as scores, revenue, or duration. These will be prioritised in charts."
	default:
		return "Choose which columns represent your target, key metrics and time, and adjust detected types if needed."
	}
}

// EditSessionView is the current state of an edit session. Candidates are
// recomputed from the session's overrides every time a view is built.
type EditSessionView struct {
	ID           uuid.UUID                 `json:"id"`
	DatasetID    uuid.UUID                 `json:"dataset_id"`
	Mode         EditMode                  `json:"mode"`
	Title        string                    `json:"title"`
	Description  string                    `json:"description"`
	Columns      []models.ColumnMeta       `json:"columns"`
	Overrides    models.TypeOverrides      `json:"overrides"`
	Candidates   models.SemanticCandidates `json:"candidates"`
	Selection    models.Selection          `json:"selection"`
	OtherMetrics []string                  `json:"other_metrics"`
	ExpiresAt    time.Time                 `json:"expires_at"`
}

// EditSessionPatch is a batch of edits applied as one step. Fields are
// applied in declaration order, overrides in column name order. If any edit
// fails, none of them are kept.
type EditSessionPatch struct {
	SetOverrides   models.TypeOverrides
	ClearOverrides []string
	Target         *string
	Time           *string
	ToggleMetrics  []string
}

// EditSessionStore holds in-flight semantic edits. A session snapshots the
// dataset's columns when it opens, so later analysis updates do not reset
// edits in progress.
type EditSessionStore interface {
	// Open starts a session seeded from the dataset's saved config.
	Open(ctx context.Context, datasetID uuid.UUID, mode EditMode) (*EditSessionView, error)
	Get(id uuid.UUID) (*EditSessionView, error)

	// SetOverride and ClearOverride are only allowed in full mode.
	SetOverride(id uuid.UUID, column string, t models.LogicalType) (*EditSessionView, error)
	ClearOverride(id uuid.UUID, column string) (*EditSessionView, error)

	// SetTarget and SetTime clear the role when column is empty.
	SetTarget(id uuid.UUID, column string) (*EditSessionView, error)
	SetTime(id uuid.UUID, column string) (*EditSessionView, error)
	ToggleMetric(id uuid.UUID, column string) (*EditSessionView, error)

	// Apply runs every edit in patch or none of them.
	Apply(id uuid.UUID, patch EditSessionPatch) (*EditSessionView, error)

	// Commit saves the session and removes it. Scoped modes only change
	// their own field; everything else comes from the config saved at
	// commit time. A failed save keeps the session open.
	Commit(ctx context.Context, id uuid.UUID) (*models.DatasetSemanticConfig, error)
	Cancel(id uuid.UUID) error

	// Prune removes expired sessions and returns how many were removed.
	Prune() int
}

type editSession struct {
	id        uuid.UUID
	datasetID uuid.UUID
	mode      EditMode
	columns   []models.ColumnMeta
	overrides models.TypeOverrides
	selection models.Selection
	touched   time.Time

	// committing is set while a commit is saving; edits and other commits
	// are refused until it finishes.
	committing bool
}

type editSessionStore struct {
	mu          sync.Mutex
	sessions    map[uuid.UUID]*editSession
	semantic    SemanticService
	ttl         time.Duration
	maxSessions int
	now         func() time.Time
	logger      *zap.Logger
}

// NewEditSessionStore creates an in-memory edit session store. Sessions
// expire after ttl without activity. maxSessions <= 0 means no limit.
func NewEditSessionStore(semanticService SemanticService, ttl time.Duration, maxSessions int, logger *zap.Logger) EditSessionStore {
	return newEditSessionStore(semanticService, ttl, maxSessions, time.Now, logger)
}

func newEditSessionStore(semanticService SemanticService, ttl time.Duration, maxSessions int, now func() time.Time, logger *zap.Logger) *editSessionStore {
	return &editSessionStore{
		sessions:    make(map[uuid.UUID]*editSession),
		semantic:    semanticService,
		ttl:         ttl,
		maxSessions: maxSessions,
		now:         now,
		logger:      logger.Named("edit-sessions"),
	}
}

func (s *editSessionStore) Open(ctx context.Context, datasetID uuid.UUID, mode EditMode) (*EditSessionView, error) {
	if !IsValidEditMode(mode) {
		return nil, fmt.Errorf("%w: unknown edit mode %q", apperrors.ErrInvalidInput, mode)
	}

	// Load outside the lock; the snapshot is what the session edits.
	cols, err := s.semantic.GetColumns(ctx, datasetID, nil)
	if err != nil {
		return nil, err
	}

	sess := &editSession{
		id:        uuid.New(),
		datasetID: datasetID,
		mode:      mode,
		columns:   cols.Columns,
		overrides: cols.Overrides.Clone(),
		selection: models.SelectionFromConfig(cols.SavedConfig),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		s.pruneLocked(now)
		if len(s.sessions) >= s.maxSessions {
			return nil, fmt.Errorf("%w: too many open edit sessions (limit %d)", apperrors.ErrConflict, s.maxSessions)
		}
	}
	sess.touched = now
	s.sessions[sess.id] = sess

	s.logger.Debug("Edit session opened",
		zap.String("session_id", sess.id.String()),
		zap.String("dataset_id", datasetID.String()),
		zap.String("mode", string(mode)))

	return s.viewLocked(sess), nil
}

func (s *editSessionStore) Get(id uuid.UUID) (*EditSessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.liveLocked(id)
	if err != nil {
		return nil, err
	}
	sess.touched = s.now()
	return s.viewLocked(sess), nil
}

func (s *editSessionStore) SetOverride(id uuid.UUID, column string, t models.LogicalType) (*EditSessionView, error) {
	return s.update(id, func(sess *editSession) error { return sess.setOverride(column, t) })
}

func (s *editSessionStore) ClearOverride(id uuid.UUID, column string) (*EditSessionView, error) {
	return s.update(id, func(sess *editSession) error { return sess.clearOverride(column) })
}

func (s *editSessionStore) SetTarget(id uuid.UUID, column string) (*EditSessionView, error) {
	return s.update(id, func(sess *editSession) error { return sess.setTarget(column) })
}

func (s *editSessionStore) SetTime(id uuid.UUID, column string) (*EditSessionView, error) {
	return s.update(id, func(sess *editSession) error { return sess.setTime(column) })
}

func (s *editSessionStore) ToggleMetric(id uuid.UUID, column string) (*EditSessionView, error) {
	return s.update(id, func(sess *editSession) error { return sess.toggleMetric(column) })
}

func (s *editSessionStore) Apply(id uuid.UUID, patch EditSessionPatch) (*EditSessionView, error) {
	return s.update(id, func(sess *editSession) error {
		for _, column := range slices.Sorted(maps.Keys(patch.SetOverrides)) {
			if err := sess.setOverride(column, patch.SetOverrides[column]); err != nil {
				return err
			}
		}
		for _, column := range patch.ClearOverrides {
			if err := sess.clearOverride(column); err != nil {
				return err
			}
		}
		if patch.Target != nil {
			if err := sess.setTarget(*patch.Target); err != nil {
				return err
			}
		}
		if patch.Time != nil {
			if err := sess.setTime(*patch.Time); err != nil {
				return err
			}
		}
		for _, column := range patch.ToggleMetrics {
			if err := sess.toggleMetric(column); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *editSessionStore) Commit(ctx context.Context, id uuid.UUID) (*models.DatasetSemanticConfig, error) {
	s.mu.Lock()
	sess, err := s.liveLocked(id)
	if err == nil && sess.committing {
		err = fmt.Errorf("%w: edit session %s is already being committed", apperrors.ErrConflict, id)
	}
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	sess.committing = true
	mode := sess.mode
	datasetID := sess.datasetID
	columns := sess.columns
	selection := models.Selection{
		Target:  sess.selection.Target,
		Metrics: slices.Clone(sess.selection.Metrics),
		Time:    sess.selection.Time,
	}
	overrides := sess.overrides.Clone()
	s.mu.Unlock()

	req := SaveConfigRequest{
		TargetColumn:  &selection.Target,
		MetricColumns: selection.Metrics,
		TimeColumn:    &selection.Time,
		ColumnTypes:   overrides,
	}
	if mode != EditModeFull {
		req, err = s.scopedRequest(ctx, datasetID, columns, mode, selection)
		if err != nil {
			s.finishCommit(id)
			return nil, err
		}
	}

	saved, err := s.semantic.SaveConfig(ctx, datasetID, req)
	if err != nil {
		s.finishCommit(id)
		return nil, err
	}

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	s.logger.Info("Edit session committed",
		zap.String("session_id", id.String()),
		zap.String("dataset_id", datasetID.String()),
		zap.String("mode", string(mode)))
	return saved, nil
}

// finishCommit reopens a session whose commit failed.
func (s *editSessionStore) finishCommit(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.committing = false
		sess.touched = s.now()
	}
}

// scopedRequest merges the session's field into the currently saved config.
func (s *editSessionStore) scopedRequest(ctx context.Context, datasetID uuid.UUID, columns []models.ColumnMeta, mode EditMode, sel models.Selection) (SaveConfigRequest, error) {
	var current models.SemanticConfig
	saved, err := s.semantic.GetConfig(ctx, datasetID)
	switch {
	case err == nil:
		current = saved.Config
	case errors.Is(err, apperrors.ErrNotFound):
	default:
		return SaveConfigRequest{}, err
	}

	req := SaveConfigRequest{
		TargetColumn:  current.TargetColumn,
		MetricColumns: current.Metrics(),
		TimeColumn:    current.TimeColumn,
		ColumnTypes:   semantic.SeedOverrides(columns, &current),
	}
	switch mode {
	case EditModeTarget:
		req.TargetColumn = &sel.Target
	case EditModeTime:
		req.TimeColumn = &sel.Time
	case EditModeMetrics:
		req.MetricColumns = sel.Metrics
	}
	return req, nil
}

func (s *editSessionStore) Cancel(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.liveLocked(id); err != nil {
		return err
	}
	delete(s.sessions, id)
	return nil
}

func (s *editSessionStore) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruneLocked(s.now())
}

func (s *editSessionStore) pruneLocked(now time.Time) int {
	removed := 0
	for id, sess := range s.sessions {
		if !sess.committing && s.expired(sess, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Debug("Pruned expired edit sessions", zap.Int("removed", removed))
	}
	return removed
}

func (s *editSessionStore) expired(sess *editSession, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.touched) > s.ttl
}

// update applies fn to a copy of a live session and swaps the copy in when
// fn succeeds. A failing fn leaves the session unchanged except for its
// activity time.
func (s *editSessionStore) update(id uuid.UUID, fn func(*editSession) error) (*EditSessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.liveLocked(id)
	if err != nil {
		return nil, err
	}
	sess.touched = s.now()
	if sess.committing {
		return nil, fmt.Errorf("%w: edit session %s is being committed", apperrors.ErrConflict, id)
	}

	draft := sess.clone()
	if err := fn(draft); err != nil {
		return nil, err
	}
	s.sessions[id] = draft
	return s.viewLocked(draft), nil
}

// liveLocked returns the session, removing it when it has expired.
func (s *editSessionStore) liveLocked(id uuid.UUID) (*editSession, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: edit session %s", apperrors.ErrNotFound, id)
	}
	if s.expired(sess, s.now()) {
		delete(s.sessions, id)
		return nil, fmt.Errorf("%w: edit session %s", apperrors.ErrSessionExpired, id)
	}
	return sess, nil
}

func (s *editSessionStore) viewLocked(sess *editSession) *EditSessionView {
	candidates := semantic.SelectCandidates(sess.columns, sess.overrides)
	return &EditSessionView{
		ID:          sess.id,
		DatasetID:   sess.datasetID,
		Mode:        sess.mode,
		Title:       sess.mode.Title(),
		Description: sess.mode.Description(),
		Columns:     sess.columns,
		Overrides:   sess.overrides.Clone(),
		Candidates:  candidates,
		Selection: models.Selection{
			Target:  sess.selection.Target,
			Metrics: slices.Clone(sess.selection.Metrics),
			Time:    sess.selection.Time,
		},
		OtherMetrics: semantic.ResolveOtherMetrics(sess.columns, candidates.MetricCandidates, sess.selection.Metrics),
		ExpiresAt:    sess.touched.Add(s.ttl),
	}
}

// clone copies the session's editable state. Columns are a read-only
// snapshot and stay shared.
func (sess *editSession) clone() *editSession {
	c := *sess
	c.overrides = sess.overrides.Clone()
	c.selection.Metrics = slices.Clone(sess.selection.Metrics)
	return &c
}

func (sess *editSession) setOverride(column string, t models.LogicalType) error {
	if err := sess.requireMode(EditModeFull, "column type overrides"); err != nil {
		return err
	}
	if err := sess.requireColumn("column_types", column); err != nil {
		return err
	}
	if !models.IsValidLogicalType(t) {
		return fmt.Errorf("%w: column_types: invalid logical type %q for column %q", apperrors.ErrInvalidSelection, t, column)
	}
	sess.overrides[column] = t
	return nil
}

func (sess *editSession) clearOverride(column string) error {
	if err := sess.requireMode(EditModeFull, "column type overrides"); err != nil {
		return err
	}
	delete(sess.overrides, column)
	return nil
}

// setTarget and setTime clear the role when column is empty.
func (sess *editSession) setTarget(column string) error {
	if err := sess.requireMode(EditModeTarget, "target_column"); err != nil {
		return err
	}
	if column != "" {
		if err := sess.requireColumn("target_column", column); err != nil {
			return err
		}
	}
	sess.selection.Target = column
	return nil
}

func (sess *editSession) setTime(column string) error {
	if err := sess.requireMode(EditModeTime, "time_column"); err != nil {
		return err
	}
	if column != "" {
		if err := sess.requireColumn("time_column", column); err != nil {
			return err
		}
	}
	sess.selection.Time = column
	return nil
}

func (sess *editSession) toggleMetric(column string) error {
	if err := sess.requireMode(EditModeMetrics, "metric_columns"); err != nil {
		return err
	}
	if i := slices.Index(sess.selection.Metrics, column); i >= 0 {
		sess.selection.Metrics = slices.Delete(sess.selection.Metrics, i, i+1)
		return nil
	}
	if err := sess.requireColumn("metric_columns", column); err != nil {
		return err
	}
	sess.selection.Metrics = append(sess.selection.Metrics, column)
	return nil
}

// requireMode allows an edit in full mode or in the given scoped mode.
func (sess *editSession) requireMode(allowed EditMode, field string) error {
	if sess.mode == EditModeFull || sess.mode == allowed {
		return nil
	}
	return fmt.Errorf("%w: %s cannot be edited in %s mode", apperrors.ErrInvalidSelection, field, sess.mode)
}

func (sess *editSession) requireColumn(field, column string) error {
	for _, c := range sess.columns {
		if c.Name == column {
			return nil
		}
	}
	return fmt.Errorf("%w: %s: unknown column %q", apperrors.ErrInvalidSelection, field, column)
}

var _ EditSessionStore = (*editSessionStore)(nil)
