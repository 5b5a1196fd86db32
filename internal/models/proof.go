package models

// Proof is an uploaded certificate or sample. Proof links stored on the
// profile are separate.
type Proof struct {
	BaseModel
	UserID   string        `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Title    string        `gorm:"size:200;not null" json:"title"`
	FileURL  string        `gorm:"not null" json:"file_url"`
	FilePath string        `json:"-"`
	FileType ProofFileType `gorm:"type:varchar(10);not null" json:"file_type"`
}

func (Proof) TableName() string {
	return "user_proofs"
}
