package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type RegistrationStatus string

const (
	RegistrationInProgress RegistrationStatus = "IN_PROGRESS"
	RegistrationCompleted  RegistrationStatus = "COMPLETED"
)

// Document keys other parts of the application depend on positionally.
// These names are a persisted contract and must not change.
const (
	DocKeyStep1         = "step1"
	DocKeyStep2         = "step2"
	DocKeyStep3         = "step3"
	DocKeyStep4         = "step4"
	DocKeyStep5         = "step5"
	DocKeyFinal         = "final"
	DocKeyStepStore     = "step_store"
	DocKeyStoreDBID     = "storeDbId"
	DocKeyStorePublicID = "storePublicId"
)

// JSONDocument is the accumulated wizard document, stored as JSONB.
// Nested maps hold whatever each wizard page submitted; explicit nulls
// survive a round trip so a cleared field stays cleared.
type JSONDocument map[string]interface{}

// Value implements database/sql/driver.Valuer
func (d JSONDocument) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

// Scan implements database/sql.Scanner
func (d *JSONDocument) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan JSONDocument")
	}

	return json.Unmarshal(bytes, d)
}

// SubObject returns the nested map at key, or nil when absent or not a map.
func (d JSONDocument) SubObject(key string) map[string]interface{} {
	if d == nil {
		return nil
	}
	if m, ok := d[key].(map[string]interface{}); ok {
		return m
	}
	return nil
}

// StringAt returns the string at key inside the nested map m, or "".
// JSON numbers and nulls read as "".
func StringAt(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// NumSteps is the number of completion flags tracked per registration.
const NumSteps = 6

// RegistrationProgress is one active onboarding attempt. Completion flags
// are derived state: they are recomputed from the document and the step
// counters on every read and write, and only ever move false -> true.
type RegistrationProgress struct {
	ID     uint `gorm:"primarykey" json:"id"`
	UserID uint `gorm:"index;not null" json:"user_id"`

	CurrentStep int `gorm:"default:1" json:"current_step"` // 1..9

	Step1Completed bool `gorm:"default:false" json:"step_1_completed"`
	Step2Completed bool `gorm:"default:false" json:"step_2_completed"`
	Step3Completed bool `gorm:"default:false" json:"step_3_completed"`
	Step4Completed bool `gorm:"default:false" json:"step_4_completed"`
	Step5Completed bool `gorm:"default:false" json:"step_5_completed"`
	Step6Completed bool `gorm:"default:false" json:"step_6_completed"`

	CompletedSteps int `gorm:"default:0" json:"completed_steps"` // always equals the count of true flags

	FormData JSONDocument       `gorm:"type:jsonb" json:"form_data"`
	Status   RegistrationStatus `gorm:"type:varchar(20);default:'IN_PROGRESS';index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RegistrationProgress) TableName() string {
	return "registration_progresses"
}

// Flags returns the six completion flags as an array.
func (p *RegistrationProgress) Flags() [NumSteps]bool {
	return [NumSteps]bool{
		p.Step1Completed, p.Step2Completed, p.Step3Completed,
		p.Step4Completed, p.Step5Completed, p.Step6Completed,
	}
}

// SetFlags writes the six completion flags and the derived count.
func (p *RegistrationProgress) SetFlags(flags [NumSteps]bool, count int) {
	p.Step1Completed = flags[0]
	p.Step2Completed = flags[1]
	p.Step3Completed = flags[2]
	p.Step4Completed = flags[3]
	p.Step5Completed = flags[4]
	p.Step6Completed = flags[5]
	p.CompletedSteps = count
}

// StorePublicID returns the public id embedded in the document, or "".
func (p *RegistrationProgress) StorePublicID() string {
	return StringAt(p.FormData.SubObject(DocKeyStepStore), DocKeyStorePublicID)
}

// StoreDBID returns the draft's database id embedded in the document, or 0.
func (p *RegistrationProgress) StoreDBID() uint {
	stepStore := p.FormData.SubObject(DocKeyStepStore)
	if stepStore == nil {
		return 0
	}
	// JSON round-trips store numbers as float64
	switch v := stepStore[DocKeyStoreDBID].(type) {
	case float64:
		return uint(v)
	case int:
		return uint(v)
	case uint:
		return v
	}
	return 0
}
