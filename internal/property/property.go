package property

import (
	propertymodel "github.com/Ngechemoris1/payup/internal/core/datamodel/property"
)

type RepositoryAPI interface {
	Create(p *propertymodel.Property) error
	GetByID(id int64) (*propertymodel.Property, error)
	GetByLandlordID(landlordID int64) ([]*propertymodel.Property, error)
	Update(p *propertymodel.Property) error
	Delete(id int64) error

	CreateFloor(f *propertymodel.Floor) error
	CreateRoom(r *propertymodel.Room) error
	GetRoomByID(id int64) (*propertymodel.Room, error)
	SetRoomOccupied(id int64, occupied bool) error
	GetVacantRooms(propertyID int64) ([]*propertymodel.Room, error)
}

type ServiceAPI interface {
	CreateProperty(req *CreatePropertyRequest) (*propertymodel.Property, error)
	GetProperty(id int64) (*propertymodel.Property, error)
	ListProperties(landlordID int64) ([]*propertymodel.Property, error)
	DeleteProperty(id int64) error

	AddFloor(propertyID int64, req *CreateFloorRequest) (*propertymodel.Floor, error)
	AddRoom(req *CreateRoomRequest) (*propertymodel.Room, error)
	ListVacantRooms(propertyID int64) ([]*propertymodel.Room, error)
}
