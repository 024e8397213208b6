package approval

import (
	"github.com/wurt83ow/workreport/internal/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// State of an ad-hoc entry, derived from its evaluation fields.
type State string

const (
	StatePending  State = "PENDING"
	StateApproved State = "APPROVED"
	StateRejected State = "REJECTED"
)

// quickRejectComment is the default rejection note, matching the one-click
// reject action in the director view.
const quickRejectComment = "Rejected"

type Log interface {
	Info(string, ...zapcore.Field)
}

type Storage interface {
	GetAdHocEntry(string) (models.AdHocTaskEntry, string, error)
	UpdateAdHocEntry(string, models.AdHocTaskEntry) error
}

type Events interface {
	Emit(models.Event)
}

// Machine governs the PENDING -> APPROVED/REJECTED lifecycle of a single
// ad-hoc entry. Writes are serialized by the storage, last write wins.
type Machine struct {
	storage Storage
	events  Events
	log     Log
}

func NewMachine(storage Storage, events Events, log Log) *Machine {
	return &Machine{
		storage: storage,
		events:  events,
		log:     log,
	}
}

// StateOf derives the lifecycle state from the entry's evaluation fields.
// No explicit state column exists; the fields are the state.
func StateOf(e models.AdHocTaskEntry) State {
	if e.Approved {
		return StateApproved
	}

	if e.DirectorRating != nil || e.DirectorComment != "" {
		return StateRejected
	}

	return StatePending
}

// Evaluate runs one transition. Approval requires a positive approvedScore;
// rejection stores rating/comment and clears any score. A rejected transition
// leaves the stored entry untouched.
func (m *Machine) Evaluate(entryID string, rating models.Rating, comment string, approve bool, approvedScore *float64) (models.AdHocTaskEntry, error) {
	entry, reportID, err := m.storage.GetAdHocEntry(entryID)
	if err != nil {
		return models.AdHocTaskEntry{}, err
	}

	if approve {
		if approvedScore == nil || *approvedScore <= 0 {
			return models.AdHocTaskEntry{}, models.NewValidationError("approvedScore", "must be a positive number of hours when approving")
		}

		if rating != "" && !rating.Valid() {
			return models.AdHocTaskEntry{}, models.NewValidationError("rating", "unknown rating value")
		}

		entry.Approved = true
		score := *approvedScore
		entry.ApprovedScore = &score

		if rating != "" {
			r := rating
			entry.DirectorRating = &r
		}

		entry.DirectorComment = comment
	} else {
		// APPROVED is terminal: the engine defines no way back.
		if StateOf(entry) == StateApproved {
			return models.AdHocTaskEntry{}, models.NewValidationError("approve", "entry is already approved")
		}

		if !rating.Valid() {
			return models.AdHocTaskEntry{}, models.NewValidationError("rating", "a valid rating is required when rejecting")
		}

		r := rating
		entry.Approved = false
		entry.ApprovedScore = nil
		entry.DirectorRating = &r
		entry.DirectorComment = comment
	}

	if err := m.storage.UpdateAdHocEntry(reportID, entry); err != nil {
		return models.AdHocTaskEntry{}, err
	}

	m.log.Info("ad-hoc entry evaluated: ",
		zap.String("entryId", entryID),
		zap.String("state", string(StateOf(entry))),
	)

	m.emit(entryID, reportID, entry)

	return entry, nil
}

// QuickReject rejects an entry with the default rating and comment, without
// requiring the director to fill in a score. Re-running it on an already
// rejected entry succeeds and re-stamps the defaults.
func (m *Machine) QuickReject(entryID string) (models.AdHocTaskEntry, error) {
	return m.Evaluate(entryID, models.RatingAverage, quickRejectComment, false, nil)
}

func (m *Machine) emit(entryID, reportID string, entry models.AdHocTaskEntry) {
	if m.events == nil {
		return
	}

	m.events.Emit(models.Event{
		Type:       models.EventAdHocEvaluated,
		SubjectIDs: []string{entryID, reportID},
		Payload:    entry,
	})
}
