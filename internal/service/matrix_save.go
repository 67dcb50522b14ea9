package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"krankenhaus-matrix/internal/matrix"
)

// Kind names the registry a save addresses
type Kind string

const (
	KindHospital Kind = "hospital"
	KindCapacity Kind = "capacity"
	KindService  Kind = "service"
	KindSystem   Kind = "system"
)

type Action string

const (
	ActionAdd    Action = "add"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
	ActionUpdate Action = "update"
)

var (
	// ErrUnsupportedSave is returned for kind/action combinations the save contract does not know
	ErrUnsupportedSave = errors.New("unsupported save")
	// ErrInvalidPayload is returned when a save payload cannot be decoded
	ErrInvalidPayload = errors.New("invalid payload")
)

// SaveRequest is the generic save contract: kind, action and the entity (or {id} for delete)
type SaveRequest struct {
	Kind    Kind            `json:"kind" binding:"required,oneof=hospital capacity service system"`
	Action  Action          `json:"action" binding:"required,oneof=add edit delete update"`
	Payload json.RawMessage `json:"payload" binding:"required"`
	Confirm bool            `json:"confirm"`
}

// SaveResult reports what a save did. Found is false for edits and deletes of unknown ids.
type SaveResult struct {
	Kind   Kind        `json:"kind"`
	Action Action      `json:"action"`
	Found  bool        `json:"found"`
	Data   interface{} `json:"data,omitempty"`
}

type idPayload struct {
	ID int64 `json:"id"`
}

// Save dispatches a generic save to the typed operation of its kind
func (s *MatrixService) Save(actor Actor, req SaveRequest) (SaveResult, error) {
	res := SaveResult{Kind: req.Kind, Action: req.Action}

	switch req.Kind {
	case KindHospital:
		switch req.Action {
		case ActionAdd:
			h, err := decodeHospital(req.Payload)
			if err != nil {
				return res, err
			}
			added, err := s.AddHospital(actor, h)
			if err != nil {
				return res, err
			}
			res.Found, res.Data = true, added
			return res, nil
		case ActionEdit:
			h, err := decodeHospital(req.Payload)
			if err != nil {
				return res, err
			}
			res.Found, err = s.EditHospital(actor, h)
			if res.Found {
				res.Data = h
			}
			return res, err
		case ActionDelete:
			var p idPayload
			if err := decode(req.Payload, &p); err != nil {
				return res, err
			}
			var err error
			res.Found, err = s.DeleteHospital(actor, p.ID, req.Confirm)
			return res, err
		}

	case KindCapacity, KindService:
		category := matrix.ItemCategory(req.Kind)
		switch req.Action {
		case ActionAdd, ActionEdit:
			var item matrix.Item
			if err := decode(req.Payload, &item); err != nil {
				return res, err
			}
			item.Category = category
			if req.Action == ActionAdd {
				added, err := s.AddItem(actor, item)
				if err != nil {
					return res, err
				}
				res.Found, res.Data = true, added
				return res, nil
			}
			var err error
			res.Found, err = s.EditItem(actor, item)
			if res.Found {
				res.Data = item
			}
			return res, err
		case ActionDelete:
			var p idPayload
			if err := decode(req.Payload, &p); err != nil {
				return res, err
			}
			var err error
			res.Found, err = s.DeleteItem(actor, category, p.ID, req.Confirm)
			return res, err
		}

	case KindSystem:
		if req.Action == ActionUpdate {
			cfg := s.store.System()
			if err := decode(req.Payload, &cfg); err != nil {
				return res, err
			}
			saved, err := s.UpdateSystem(actor, cfg)
			if err != nil {
				return res, err
			}
			res.Found, res.Data = true, saved
			return res, nil
		}
	}

	return res, fmt.Errorf("%w: %s %s", ErrUnsupportedSave, req.Action, req.Kind)
}

// SavePVA is the pre-notification save contract for one cell
func (s *MatrixService) SavePVA(actor Actor, key matrix.CellKey, action Action, p matrix.PVA, confirm bool) (SaveResult, error) {
	res := SaveResult{Kind: "pva", Action: action}
	var err error
	switch action {
	case ActionAdd:
		var added matrix.PVA
		added, err = s.AddPVA(actor, key, p)
		if err == nil {
			res.Found, res.Data = true, added
		}
	case ActionEdit:
		res.Found, err = s.EditPVA(actor, key, p)
		if res.Found {
			res.Data = p
		}
	case ActionDelete:
		res.Found, err = s.DeletePVA(actor, key, p.ID, confirm)
	default:
		err = fmt.Errorf("%w: %s pva", ErrUnsupportedSave, action)
	}
	return res, err
}

// decodeHospital treats a missing active flag as active
func decodeHospital(raw json.RawMessage) (matrix.Hospital, error) {
	h := matrix.Hospital{Active: true}
	err := decode(raw, &h)
	return h, err
}

func decode(raw json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}
