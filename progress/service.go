// Package progress implements campaign-instance play-through state:
// the append-only event log with per-branch sequence numbering,
// point-in-time snapshots, and branch forking.
package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dm-vYzion/StoryForge/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	// ErrSnapshotNotFound is returned when a fork names a snapshot that
	// does not exist or belongs to another instance.
	ErrSnapshotNotFound = errors.New("progress: snapshot not found for this instance")

	// ErrNoSnapshot is returned when a branch has no snapshot yet.
	ErrNoSnapshot = errors.New("progress: no snapshot found")

	// ErrUnknownEventType is returned for types outside the event enum.
	ErrUnknownEventType = errors.New("progress: unknown event type")
)

// Service owns all event/snapshot/branch bookkeeping for campaign
// instances.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a progress Service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// allocateSequences atomically reserves n consecutive sequence numbers
// for (instanceID, branchID) and returns the first one. The increment
// and the event inserts share one transaction, so two concurrent
// appends to the same branch serialize on the counter row instead of
// racing on a read-then-write.
func allocateSequences(tx *gorm.DB, instanceID int64, branchID string, n int64) (int64, error) {
	res := tx.Model(&model.BranchCounter{}).
		Where("instance_id = ? AND branch_id = ?", instanceID, branchID).
		Update("last_sequence", gorm.Expr("last_sequence + ?", n))
	if res.Error != nil {
		return 0, res.Error
	}

	if res.RowsAffected == 0 {
		// First allocation on this branch: create the counter row. If a
		// concurrent transaction creates it first, fall back to the update.
		counter := &model.BranchCounter{InstanceID: instanceID, BranchID: branchID, LastSequence: n}
		err := tx.Create(counter).Error
		if err == nil {
			return 1, nil
		}
		if !isUniqueViolation(err) {
			return 0, err
		}
		res = tx.Model(&model.BranchCounter{}).
			Where("instance_id = ? AND branch_id = ?", instanceID, branchID).
			Update("last_sequence", gorm.Expr("last_sequence + ?", n))
		if res.Error != nil {
			return 0, res.Error
		}
	}

	var counter model.BranchCounter
	if err := tx.Where("instance_id = ? AND branch_id = ?", instanceID, branchID).
		First(&counter).Error; err != nil {
		return 0, err
	}
	return counter.LastSequence - n + 1, nil
}

// CurrentSequence returns the last allocated event sequence for a
// branch, 0 when no event has been appended yet.
func (s *Service) CurrentSequence(instanceID int64, branchID string) (int64, error) {
	var counter model.BranchCounter
	err := s.db.Where("instance_id = ? AND branch_id = ?", instanceID, branchID).
		First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return counter.LastSequence, nil
}

// Append adds one event to the branch timeline and touches the owning
// instance's lastPlayedAt.
func (s *Service) Append(instanceID int64, branchID, eventType string, payload datatypes.JSON) (*model.Event, error) {
	if !model.ValidEventType(eventType) {
		return nil, ErrUnknownEventType
	}
	if payload == nil {
		payload = datatypes.JSON([]byte("{}"))
	}

	var event *model.Event
	err := s.db.Transaction(func(tx *gorm.DB) error {
		seq, err := allocateSequences(tx, instanceID, branchID, 1)
		if err != nil {
			return err
		}
		event = &model.Event{
			InstanceID: instanceID,
			BranchID:   branchID,
			Sequence:   seq,
			Type:       eventType,
			Payload:    payload,
		}
		if err := tx.Create(event).Error; err != nil {
			return err
		}
		return touchInstance(tx, instanceID)
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// TransferRequest describes an inventory move between pc/party/world.
type TransferRequest struct {
	InstanceItemID string
	From           model.ItemLocation
	To             model.ItemLocation
	Quantity       int
}

// AppendTransfer records a transfer as two consecutive events: ItemLost
// from the source, then ItemGained at the destination. Both sequences
// come from one atomic allocation so no other event can slot between
// them. Inventory sufficiency is not checked; the log is the record,
// the client owns the projection.
func (s *Service) AppendTransfer(instanceID int64, branchID string, req TransferRequest) (lost, gained *model.Event, err error) {
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	lostPayload, err := json.Marshal(model.ItemMovedPayload{
		InstanceItemID: req.InstanceItemID,
		From:           &req.From,
		Quantity:       req.Quantity,
	})
	if err != nil {
		return nil, nil, err
	}
	gainedPayload, err := json.Marshal(model.ItemMovedPayload{
		InstanceItemID: req.InstanceItemID,
		To:             &req.To,
		Quantity:       req.Quantity,
	})
	if err != nil {
		return nil, nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		seq, err := allocateSequences(tx, instanceID, branchID, 2)
		if err != nil {
			return err
		}
		lost = &model.Event{
			InstanceID: instanceID,
			BranchID:   branchID,
			Sequence:   seq,
			Type:       model.EventItemLost,
			Payload:    datatypes.JSON(lostPayload),
		}
		gained = &model.Event{
			InstanceID: instanceID,
			BranchID:   branchID,
			Sequence:   seq + 1,
			Type:       model.EventItemGained,
			Payload:    datatypes.JSON(gainedPayload),
		}
		if err := tx.Create(lost).Error; err != nil {
			return err
		}
		if err := tx.Create(gained).Error; err != nil {
			return err
		}
		return touchInstance(tx, instanceID)
	})
	if err != nil {
		return nil, nil, err
	}
	return lost, gained, nil
}

// UseRequest describes an item consumption.
type UseRequest struct {
	InstanceItemID string
	PcID           string
	TargetID       string
	Quantity       int
}

// AppendUse records a single ItemUsed event.
func (s *Service) AppendUse(instanceID int64, branchID string, req UseRequest) (*model.Event, error) {
	if req.Quantity <= 0 {
		req.Quantity = 1
	}
	payload, err := json.Marshal(model.ItemUsedPayload{
		InstanceItemID: req.InstanceItemID,
		UsedByPcID:     req.PcID,
		TargetID:       req.TargetID,
		Quantity:       req.Quantity,
	})
	if err != nil {
		return nil, err
	}
	return s.Append(instanceID, branchID, model.EventItemUsed, datatypes.JSON(payload))
}

// EventFilter narrows an event query. Zero values mean "no filter";
// FromSequence/ToSequence are inclusive bounds.
type EventFilter struct {
	BranchID     string
	Type         string
	FromSequence *int64
	ToSequence   *int64
}

// Events lists events for an instance, ascending by sequence.
func (s *Service) Events(instanceID int64, filter EventFilter) ([]model.Event, error) {
	q := s.db.Where("instance_id = ?", instanceID)
	if filter.BranchID != "" {
		q = q.Where("branch_id = ?", filter.BranchID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.FromSequence != nil {
		q = q.Where("sequence >= ?", *filter.FromSequence)
	}
	if filter.ToSequence != nil {
		q = q.Where("sequence <= ?", *filter.ToSequence)
	}

	var events []model.Event
	if err := q.Order("sequence asc").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// CreateSnapshot persists a client-computed state checkpoint at the
// branch's current event sequence (0 when the branch has no events) and
// repoints the instance's current snapshot.
func (s *Service) CreateSnapshot(instanceID int64, branchID string, state datatypes.JSON) (*model.Snapshot, error) {
	var snapshot *model.Snapshot
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var counter model.BranchCounter
		seq := int64(0)
		err := tx.Where("instance_id = ? AND branch_id = ?", instanceID, branchID).
			First(&counter).Error
		if err == nil {
			seq = counter.LastSequence
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		snapshot = &model.Snapshot{
			InstanceID: instanceID,
			BranchID:   branchID,
			Sequence:   seq,
			State:      state,
		}
		if err := tx.Create(snapshot).Error; err != nil {
			return err
		}
		return tx.Model(&model.CampaignInstance{}).
			Where("id = ?", instanceID).
			Updates(map[string]interface{}{
				"current_snapshot_id": snapshot.ID,
				"last_played_at":      time.Now(),
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// LatestSnapshot resolves the most recent snapshot for an instance,
// optionally scoped to a branch. Resolution is a query ordered by
// sequence then creation time, so the denormalized pointer on the
// instance can never make this answer drift.
func (s *Service) LatestSnapshot(instanceID int64, branchID string) (*model.Snapshot, error) {
	q := s.db.Where("instance_id = ?", instanceID)
	if branchID != "" {
		q = q.Where("branch_id = ?", branchID)
	}
	var snapshot model.Snapshot
	err := q.Order("sequence desc").Order("created_at desc").First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Fork creates a new instance row for a what-if branch of inst. The
// starting state comes from fromSnapshotID if given (must belong to
// inst), else the instance's current snapshot; with no resolvable
// snapshot the branch starts empty. A BranchCreated event at sequence 0
// records the provenance either way.
func (s *Service) Fork(inst *model.CampaignInstance, fromSnapshotID *int64, newBranchName string) (*model.CampaignInstance, error) {
	newBranchID := newBranchName
	if newBranchID == "" {
		newBranchID = "branch_" + uuid.NewString()[:8]
	}

	var source *model.Snapshot
	if fromSnapshotID != nil {
		var snap model.Snapshot
		err := s.db.First(&snap, *fromSnapshotID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && snap.InstanceID != inst.ID) {
			return nil, ErrSnapshotNotFound
		}
		if err != nil {
			return nil, err
		}
		source = &snap
	} else if inst.CurrentSnapshotID != nil {
		var snap model.Snapshot
		if err := s.db.First(&snap, *inst.CurrentSnapshotID).Error; err == nil {
			source = &snap
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	var forked *model.CampaignInstance
	err := s.db.Transaction(func(tx *gorm.DB) error {
		forked = &model.CampaignInstance{
			UserID:        inst.UserID,
			CampaignDefID: inst.CampaignDefID,
			WorldID:       inst.WorldID,
			BranchID:      newBranchID,
			Title:         fmt.Sprintf("%s (%s)", inst.Title, newBranchID),
			SelectedPcIDs: inst.SelectedPcIDs,
			LastPlayedAt:  time.Now(),
		}
		if err := tx.Create(forked).Error; err != nil {
			return err
		}

		if source != nil {
			copied := &model.Snapshot{
				InstanceID: forked.ID,
				BranchID:   newBranchID,
				Sequence:   source.Sequence,
				State:      source.State,
			}
			if err := tx.Create(copied).Error; err != nil {
				return err
			}
			if err := tx.Model(&model.CampaignInstance{}).
				Where("id = ?", forked.ID).
				Update("current_snapshot_id", copied.ID).Error; err != nil {
				return err
			}
			forked.CurrentSnapshotID = &copied.ID
		}

		// Event numbering on the new branch restarts at 1; the synthetic
		// BranchCreated marker sits at 0 below it.
		counter := &model.BranchCounter{InstanceID: forked.ID, BranchID: newBranchID, LastSequence: 0}
		if err := tx.Create(counter).Error; err != nil {
			return err
		}

		payload := model.BranchCreatedPayload{
			ParentBranchID:   inst.BranchID,
			ParentInstanceID: inst.ID,
			FromSnapshotID:   fromSnapshotID,
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		return tx.Create(&model.Event{
			InstanceID: forked.ID,
			BranchID:   newBranchID,
			Sequence:   0,
			Type:       model.EventBranchCreated,
			Payload:    datatypes.JSON(raw),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("branch forked",
		zap.Int64("parent_instance", inst.ID),
		zap.Int64("forked_instance", forked.ID),
		zap.String("branch", newBranchID),
	)
	return forked, nil
}

func touchInstance(tx *gorm.DB, instanceID int64) error {
	return tx.Model(&model.CampaignInstance{}).
		Where("id = ?", instanceID).
		Update("last_played_at", time.Now()).Error
}

// isUniqueViolation detects duplicate-key errors from common database drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") ||
		strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "already exists")
}

// IsUniqueViolation reports whether err is a duplicate-key error, for
// callers that need to map residual sequence collisions to a conflict
// response.
func IsUniqueViolation(err error) bool { return isUniqueViolation(err) }
