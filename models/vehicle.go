package models

// VehicleRecord holds the canonical vehicle under appraisal. Decoded attributes come from
// the upstream VIN decode, user attributes from the detail form. Empty strings mean unknown.
type VehicleRecord struct {
	VIN     string `json:"vin" bson:"vin"`
	ZipCode string `json:"zipCode" bson:"zipCode"`
	City    string `json:"city" bson:"city"`
	State   string `json:"state" bson:"state"`

	Make                string `json:"make" bson:"make"`
	Model               string `json:"model" bson:"model"`
	Year                string `json:"year" bson:"year"`
	EngineLiters        string `json:"engineLiters" bson:"engineLiters"`
	EngineCylinders     string `json:"engineCylinders" bson:"engineCylinders"`
	EngineConfiguration string `json:"engineConfiguration" bson:"engineConfiguration"`
	AverageMileage      string `json:"averageMileage" bson:"averageMileage"`
	ImageURL            string `json:"imageUrl" bson:"imageUrl"`

	Mileage        string `json:"mileage" bson:"mileage"`
	ExteriorColor  string `json:"exteriorColor" bson:"exteriorColor"`
	InteriorColor  string `json:"interiorColor" bson:"interiorColor"`
	BodyType       string `json:"bodyType" bson:"bodyType"`
	Transmission   string `json:"transmission" bson:"transmission"`
	FuelType       string `json:"fuelType" bson:"fuelType"`
	EngineType     string `json:"engineType" bson:"engineType"`
	BodyEngineType string `json:"bodyEngineType" bson:"bodyEngineType"`
}

// FieldError describes one invalid vehicle detail field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Completion is the progress summary of the vehicle detail form
type Completion struct {
	CompletedCount int          `json:"completedCount"`
	TotalFields    int          `json:"totalFields"`
	AllValid       bool         `json:"allValid"`
	Errors         []FieldError `json:"errors,omitempty"`
}
