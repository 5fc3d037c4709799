package model

// 勤務ロール（医師・看護師など）。シフト側の意味付けはロスター側が持つ
type Role struct {
	ID   int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}

const (
	RoleNameDoctor = "DOCTOR"
	RoleNameNurse  = "NURSE"
	RoleNameStaff  = "STAFF"
	RoleNameAdmin  = "ADMIN"
)
