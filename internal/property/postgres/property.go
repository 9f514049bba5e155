package postgres

import (
	"gorm.io/gorm"

	propertymodel "github.com/Ngechemoris1/payup/internal/core/datamodel/property"
	propertypkg "github.com/Ngechemoris1/payup/internal/property"
)

type PropertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) propertypkg.RepositoryAPI {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) Create(p *propertymodel.Property) error {
	return r.db.Create(p).Error
}

func (r *PropertyRepository) GetByID(id int64) (*propertymodel.Property, error) {
	var p propertymodel.Property
	err := r.db.Preload("Floors").Preload("Floors.Rooms").First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PropertyRepository) GetByLandlordID(landlordID int64) ([]*propertymodel.Property, error) {
	var properties []*propertymodel.Property
	err := r.db.Where("landlord_id = ?", landlordID).Order("name ASC").Find(&properties).Error
	return properties, err
}

func (r *PropertyRepository) Update(p *propertymodel.Property) error {
	return r.db.Save(p).Error
}

func (r *PropertyRepository) Delete(id int64) error {
	return r.db.Delete(&propertymodel.Property{}, id).Error
}

func (r *PropertyRepository) CreateFloor(f *propertymodel.Floor) error {
	return r.db.Create(f).Error
}

func (r *PropertyRepository) CreateRoom(room *propertymodel.Room) error {
	return r.db.Create(room).Error
}

func (r *PropertyRepository) GetRoomByID(id int64) (*propertymodel.Room, error) {
	var room propertymodel.Room
	if err := r.db.First(&room, id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *PropertyRepository) SetRoomOccupied(id int64, occupied bool) error {
	return r.db.Model(&propertymodel.Room{}).Where("id = ?", id).
		Update("occupied", occupied).Error
}

func (r *PropertyRepository) GetVacantRooms(propertyID int64) ([]*propertymodel.Room, error) {
	var rooms []*propertymodel.Room
	err := r.db.
		Joins("JOIN floors ON floors.id = rooms.floor_id").
		Where("floors.property_id = ? AND rooms.occupied = ?", propertyID, false).
		Find(&rooms).Error
	return rooms, err
}
