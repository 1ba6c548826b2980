package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// jsonDBType picks the native JSON column type of the active dialect
func jsonDBType(db *gorm.DB) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "JSONB"
	default:
		return "JSON"
	}
}

func marshalColumn(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func unmarshalColumn(value interface{}, dest interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dest)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported JSON column value %T", value)
	}
}

// StringList is a JSON encoded list of free-form tags
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return marshalColumn([]string(l))
}

func (l *StringList) Scan(value interface{}) error {
	*l = StringList{}
	return unmarshalColumn(value, (*[]string)(l))
}

func (StringList) GormDataType() string { return "json" }

func (StringList) GormDBDataType(db *gorm.DB, _ *schema.Field) string { return jsonDBType(db) }

// Attachment is an uploaded file referenced by a record
type Attachment struct {
	Name       string    `json:"name,omitempty"`
	Caption    string    `json:"caption,omitempty"`
	URL        string    `json:"url"`
	PublicID   string    `json:"publicId,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Attachments is a JSON encoded list of Attachment
type Attachments []Attachment

func (a Attachments) Value() (driver.Value, error) {
	if a == nil {
		a = Attachments{}
	}
	return marshalColumn([]Attachment(a))
}

func (a *Attachments) Scan(value interface{}) error {
	*a = Attachments{}
	return unmarshalColumn(value, (*[]Attachment)(a))
}

func (Attachments) GormDataType() string { return "json" }

func (Attachments) GormDBDataType(db *gorm.DB, _ *schema.Field) string { return jsonDBType(db) }
