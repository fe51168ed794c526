package models

// ReturnNumberSequenceModel holds the last issued return number for a year
type ReturnNumberSequenceModel struct {
	Year      int   `gorm:"primaryKey;autoIncrement:false"`
	LastValue int64 `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ReturnNumberSequenceModel) TableName() string {
	return "return_number_sequences"
}
