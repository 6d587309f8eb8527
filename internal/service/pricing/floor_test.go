package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openrides/openrides/internal/domain/request"
)

func TestFloor(t *testing.T) {
	svc := NewService(DefaultConfig())

	tests := []struct {
		name        string
		serviceType request.ServiceType
		vehicleType request.VehicleType
		expected    float64
	}{
		{"ride on tricycle", request.ServiceRide, request.VehicleTricycle, 70},
		{"ride on motorcycle", request.ServiceRide, request.VehicleMotorcycle, 90},
		{"ride in car", request.ServiceRide, request.VehicleCar, 115},
		{"ride in taxi", request.ServiceRide, request.VehicleTaxi, 115},
		{"delivery on tricycle", request.ServiceDelivery, request.VehicleTricycle, 90},
		{"delivery on motorcycle", request.ServiceDelivery, request.VehicleMotorcycle, 110},
		{"delivery by car", request.ServiceDelivery, request.VehicleCar, 135},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, svc.Floor(tt.serviceType, tt.vehicleType))
		})
	}
}

func TestCheckBid(t *testing.T) {
	svc := NewService(DefaultConfig())

	tooLow, min := svc.CheckBid(request.ServiceRide, request.VehicleMotorcycle, 80)
	assert.True(t, tooLow)
	assert.Equal(t, float64(90), min)

	tooLow, min = svc.CheckBid(request.ServiceRide, request.VehicleMotorcycle, 90)
	assert.False(t, tooLow)
	assert.Equal(t, float64(90), min)

	tooLow, _ = svc.CheckBid(request.ServiceDelivery, request.VehicleTaxi, 200)
	assert.False(t, tooLow)
}
