package models

type AllowedEmailDomain struct {
	Base
	Domain string `gorm:"type:varchar(255);uniqueIndex;not null" json:"domain"`
}
