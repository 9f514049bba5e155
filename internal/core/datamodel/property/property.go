package property

import "time"

type Property struct {
	ID         int64     `gorm:"primaryKey"`
	LandlordID int64     `gorm:"column:landlord_id;not null"`
	Name       string    `gorm:"column:name;not null"`
	Location   string    `gorm:"column:location"`
	CreatedAt  time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt  time.Time `gorm:"column:updated_at;default:now()"`

	Floors []Floor `gorm:"foreignKey:PropertyID"`
}

func (Property) TableName() string {
	return "properties"
}

type Floor struct {
	ID         int64  `gorm:"primaryKey"`
	PropertyID int64  `gorm:"column:property_id;not null"`
	Number     int    `gorm:"column:number;not null"`
	Name       string `gorm:"column:name"`

	Rooms []Room `gorm:"foreignKey:FloorID"`
}

func (Floor) TableName() string {
	return "floors"
}

type Room struct {
	ID       int64  `gorm:"primaryKey"`
	FloorID  int64  `gorm:"column:floor_id;not null"`
	Number   string `gorm:"column:number;not null"`
	RoomType string `gorm:"column:room_type"`
	Occupied bool   `gorm:"column:occupied;default:false"`
}

func (Room) TableName() string {
	return "rooms"
}
