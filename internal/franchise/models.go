package franchise

// Franchise is a partner organization that can be assigned territories. It
// does not own the territory lifecycle; territories reference it by id.
type Franchise struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"uniqueIndex;not null" json:"name"`
	Contact string `json:"contact"`
	Region  string `json:"region"`
}

func (Franchise) TableName() string {
	return "tawkr.franchises"
}
