package sync

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskSyncContact = "sync:contact"

const TaskSyncStageUpdate = "sync:stage_update"

const TaskSyncTagAdd = "sync:tag_add"

const TaskSyncTagRemove = "sync:tag_remove"

// ContactPayload carries the minimal contact data pushed to the CRM.
type ContactPayload struct {
	ExternalID string `json:"externalId,omitempty"`
	FirstName  string `json:"firstName,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Source     string `json:"source,omitempty"`
}

// StageUpdatePayload moves a CRM contact to a mapped pipeline stage.
type StageUpdatePayload struct {
	ContactID string `json:"contactId"`
	StageName string `json:"stageName"`
}

// TagPayload adds or removes one tag on a CRM contact.
type TagPayload struct {
	ContactID string `json:"contactId"`
	TagName   string `json:"tagName"`
}

func NewContactSyncTask(payload ContactPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSyncContact, data), nil
}

func ParseContactPayload(task *asynq.Task) (ContactPayload, error) {
	var payload ContactPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ContactPayload{}, err
	}
	return payload, nil
}

func NewStageUpdateTask(payload StageUpdatePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSyncStageUpdate, data), nil
}

func ParseStageUpdatePayload(task *asynq.Task) (StageUpdatePayload, error) {
	var payload StageUpdatePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return StageUpdatePayload{}, err
	}
	return payload, nil
}

func NewTagAddTask(payload TagPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSyncTagAdd, data), nil
}

func NewTagRemoveTask(payload TagPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSyncTagRemove, data), nil
}

func ParseTagPayload(task *asynq.Task) (TagPayload, error) {
	var payload TagPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return TagPayload{}, err
	}
	return payload, nil
}
