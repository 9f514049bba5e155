package property

import (
	propertymodel "github.com/Ngechemoris1/payup/internal/core/datamodel/property"

	errors "github.com/Ngechemoris1/payup/internal"
	"github.com/Ngechemoris1/payup/internal/core/common/validation"
)

type CreatePropertyRequest struct {
	LandlordID int64  `json:"landlord_id"`
	Name       string `json:"name"`
	Location   string `json:"location"`
}

func (r *CreatePropertyRequest) Validate() error {
	validator := validation.NewValidator()

	validator.Field("name", r.Name).Required().MaxLength(120)
	validator.Field("landlord_id", r.LandlordID).MinInt(1, errors.ErrCodeValidationFailed)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type CreateFloorRequest struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

type CreateRoomRequest struct {
	FloorID  int64  `json:"floor_id"`
	Number   string `json:"number"`
	RoomType string `json:"room_type"`
}

func (r *CreateRoomRequest) Validate() error {
	validator := validation.NewValidator()

	validator.Field("number", r.Number).Required()
	validator.Field("floor_id", r.FloorID).MinInt(1, errors.ErrCodeValidationFailed)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type PropertyView struct {
	ID         int64       `json:"id"`
	LandlordID int64       `json:"landlord_id"`
	Name       string      `json:"name"`
	Location   string      `json:"location,omitempty"`
	Floors     []FloorView `json:"floors,omitempty"`
}

type FloorView struct {
	ID     int64      `json:"id"`
	Number int        `json:"number"`
	Name   string     `json:"name,omitempty"`
	Rooms  []RoomView `json:"rooms,omitempty"`
}

type RoomView struct {
	ID       int64  `json:"id"`
	Number   string `json:"number"`
	RoomType string `json:"room_type,omitempty"`
	Occupied bool   `json:"occupied"`
}

func ToView(p *propertymodel.Property) *PropertyView {
	view := &PropertyView{
		ID:         p.ID,
		LandlordID: p.LandlordID,
		Name:       p.Name,
		Location:   p.Location,
	}
	for _, f := range p.Floors {
		floorView := FloorView{ID: f.ID, Number: f.Number, Name: f.Name}
		for _, room := range f.Rooms {
			floorView.Rooms = append(floorView.Rooms, RoomView{
				ID:       room.ID,
				Number:   room.Number,
				RoomType: room.RoomType,
				Occupied: room.Occupied,
			})
		}
		view.Floors = append(view.Floors, floorView)
	}
	return view
}

func ToViews(properties []*propertymodel.Property) []*PropertyView {
	views := make([]*PropertyView, len(properties))
	for i, p := range properties {
		views[i] = ToView(p)
	}
	return views
}
