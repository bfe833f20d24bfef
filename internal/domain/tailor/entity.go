package tailor

import "time"

// Tailor represents the tailors table: the directory record the engine
// resolves display snapshots and user-to-tailor mappings against. Profile
// editing itself lives outside the engine.
type Tailor struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;uniqueIndex"`
	Name      string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Tailor) TableName() string {
	return "tailors"
}
