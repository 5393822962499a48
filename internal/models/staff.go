package models

import "time"

type Staff struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	BranchID uint   `gorm:"index" json:"branch_id"`
	Branch   Branch `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"branch"`

	Name   string `gorm:"size:100;not null" json:"name"`
	Phone  string `gorm:"size:20" json:"phone"`
	Active bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Pluralização de "staff" varia conforme o dicionário; fixamos o nome da tabela.
func (Staff) TableName() string { return "staffs" }

// StaffService marca quais serviços cada profissional está habilitado a executar.
type StaffService struct {
	StaffID   uint `gorm:"primaryKey" json:"staff_id"`
	ServiceID uint `gorm:"primaryKey" json:"service_id"`
}
