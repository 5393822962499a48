package models

import "time"

type Branch struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:100;not null" json:"name"`
	Slug     string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Phone    string `gorm:"size:20" json:"phone"`
	Address  string `gorm:"size:255" json:"address"`
	Timezone string `gorm:"size:64" json:"timezone"`

	MinBookingNoticeMin int `gorm:"default:120" json:"min_booking_notice_min"`
	MaxBookingAheadDays int `gorm:"default:60" json:"max_booking_ahead_days"`
	BufferBeforeMin     int `gorm:"default:0" json:"buffer_before_min"`
	BufferAfterMin      int `gorm:"default:0" json:"buffer_after_min"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
