package models

import "time"

// ScheduleBlock é um trecho do expediente semanal recorrente de um profissional.
// Pode haver mais de um bloco por dia (manhã e tarde, por exemplo).
type ScheduleBlock struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	StaffID uint `gorm:"index:idx_schedule_staff_weekday" json:"staff_id"`

	Weekday int `gorm:"index:idx_schedule_staff_weekday" json:"weekday"` // 0=domingo .. 6=sábado

	StartTime string `gorm:"size:5" json:"start_time"` // "09:00"
	EndTime   string `gorm:"size:5" json:"end_time"`   // "17:00"

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
