package models

import "time"

// Product represents a catalogue item whose changes are recorded in the action log.
type Product struct {
	Base
	Name       string     `gorm:"not null" json:"name"`
	Category   string     `gorm:"index" json:"category"`
	Price      float64    `gorm:"not null;default:0" json:"price"`
	Provider   string     `json:"provider"`
	Detail     string     `json:"detail"`
	OnlineTime *time.Time `json:"online_time,omitempty"`
}

// AuditFields implements Auditable. Bookkeeping timestamps are left out so
// that an update only reports the properties a caller actually changed.
func (p *Product) AuditFields() []Field {
	return []Field{
		FieldOf("id", p.ID),
		FieldOf("name", p.Name),
		FieldOf("category", p.Category),
		FieldOf("price", p.Price),
		FieldOf("provider", p.Provider),
		FieldOf("detail", p.Detail),
		FieldOf("online_time", p.OnlineTime),
	}
}
