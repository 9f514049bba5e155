package property

import (
	"log/slog"

	errors "github.com/Ngechemoris1/payup/internal"
	propertymodel "github.com/Ngechemoris1/payup/internal/core/datamodel/property"
)

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) CreateProperty(req *CreatePropertyRequest) (*propertymodel.Property, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := &propertymodel.Property{
		LandlordID: req.LandlordID,
		Name:       req.Name,
		Location:   req.Location,
	}

	if err := s.repo.Create(p); err != nil {
		s.logger.Error("failed to create property", "error", err, "name", req.Name)
		return nil, errors.NewInternalError("failed to create property", err)
	}

	s.logger.Info("property created", "property_id", p.ID, "name", p.Name)
	return p, nil
}

func (s *Service) GetProperty(id int64) (*propertymodel.Property, error) {
	p, err := s.repo.GetByID(id)
	if err != nil {
		return nil, errors.ErrPropertyNotFound
	}
	return p, nil
}

func (s *Service) ListProperties(landlordID int64) ([]*propertymodel.Property, error) {
	return s.repo.GetByLandlordID(landlordID)
}

func (s *Service) DeleteProperty(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return errors.ErrPropertyNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete property", "error", err, "property_id", id)
		return errors.NewInternalError("failed to delete property", err)
	}
	return nil
}

func (s *Service) AddFloor(propertyID int64, req *CreateFloorRequest) (*propertymodel.Floor, error) {
	if _, err := s.repo.GetByID(propertyID); err != nil {
		return nil, errors.ErrPropertyNotFound
	}

	f := &propertymodel.Floor{
		PropertyID: propertyID,
		Number:     req.Number,
		Name:       req.Name,
	}
	if err := s.repo.CreateFloor(f); err != nil {
		s.logger.Error("failed to create floor", "error", err, "property_id", propertyID)
		return nil, errors.NewInternalError("failed to create floor", err)
	}
	return f, nil
}

func (s *Service) AddRoom(req *CreateRoomRequest) (*propertymodel.Room, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	room := &propertymodel.Room{
		FloorID:  req.FloorID,
		Number:   req.Number,
		RoomType: req.RoomType,
	}
	if err := s.repo.CreateRoom(room); err != nil {
		s.logger.Error("failed to create room", "error", err, "floor_id", req.FloorID)
		return nil, errors.NewInternalError("failed to create room", err)
	}
	return room, nil
}

func (s *Service) ListVacantRooms(propertyID int64) ([]*propertymodel.Room, error) {
	if _, err := s.repo.GetByID(propertyID); err != nil {
		return nil, errors.ErrPropertyNotFound
	}
	return s.repo.GetVacantRooms(propertyID)
}
