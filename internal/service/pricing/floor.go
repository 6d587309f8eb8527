package pricing

import (
	"github.com/openrides/openrides/internal/domain/request"
)

// Config holds the floor-price table
type Config struct {
	BaseFare      map[request.ServiceType]float64
	VehicleOffset map[request.VehicleType]float64
}

// DefaultConfig returns the deployed floor-price table
func DefaultConfig() Config {
	return Config{
		BaseFare: map[request.ServiceType]float64{
			request.ServiceRide:     70,
			request.ServiceDelivery: 90,
		},
		VehicleOffset: map[request.VehicleType]float64{
			request.VehicleTricycle:   0,
			request.VehicleMotorcycle: 20,
			request.VehicleCar:        45,
			request.VehicleTaxi:       45,
		},
	}
}

// Service computes the floor-price heuristic. The floor is a suggested
// minimum only; a low bid is flagged, never rejected.
type Service struct {
	config Config
}

// NewService creates a new pricing service
func NewService(config Config) *Service {
	return &Service{config: config}
}

// Floor returns the minimum recommended bid for a service and vehicle type
func (s *Service) Floor(serviceType request.ServiceType, vehicleType request.VehicleType) float64 {
	return s.config.BaseFare[serviceType] + s.config.VehicleOffset[vehicleType]
}

// CheckBid reports whether the bid falls below the floor, and the floor
// itself as the suggested minimum
func (s *Service) CheckBid(serviceType request.ServiceType, vehicleType request.VehicleType, amount float64) (tooLow bool, suggestedMinimum float64) {
	floor := s.Floor(serviceType, vehicleType)
	return amount < floor, floor
}
