package vehicle

type RegisterVehicleRequest struct {
	PlateNumber   string `json:"plate_number" binding:"required,max=20"`
	Category      string `json:"category" binding:"required,oneof=car bus truck motorcycle emergency government"`
	CapacityClass string `json:"capacity_class" binding:"omitempty,max=20"`
}

type AssignRFIDRequest struct {
	RFIDTag string `json:"rfid_tag" binding:"required,min=4,max=64"`
}

type VehicleResponse struct {
	ID            uint    `json:"id"`
	PlateNumber   string  `json:"plate_number"`
	Category      string  `json:"category"`
	CapacityClass string  `json:"capacity_class"`
	RFIDTag       *string `json:"rfid_tag"`
	IsActive      bool    `json:"is_active"`
}

type VehicleListResponse struct {
	Vehicles []VehicleResponse `json:"vehicles"`
}
