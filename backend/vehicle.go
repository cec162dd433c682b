package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/linesmerrill/vehicle-intake-api/models"
)

type vinResponse struct {
	Make                flexString `json:"make"`
	Model               flexString `json:"model"`
	Year                flexString `json:"year"`
	BodyType            flexString `json:"bodytype"`
	Transmission        flexString `json:"transmission"`
	FuelType            flexString `json:"fueltype"`
	Liters              flexString `json:"liters"`
	Cylinders           flexString `json:"cylinders"`
	EngineConfiguration flexString `json:"engineconfiguration"`
	AverageMileage      flexString `json:"average_mileage"`
	City                flexString `json:"city"`
	State               flexString `json:"state"`
	ImageURL            flexString `json:"image_url"`
}

func (v vinResponse) record(vin, zip string) models.VehicleRecord {
	return models.VehicleRecord{
		VIN:                 vin,
		ZipCode:             zip,
		City:                string(v.City),
		State:               string(v.State),
		Make:                string(v.Make),
		Model:               string(v.Model),
		Year:                string(v.Year),
		BodyType:            string(v.BodyType),
		Transmission:        string(v.Transmission),
		FuelType:            string(v.FuelType),
		EngineLiters:        string(v.Liters),
		EngineCylinders:     string(v.Cylinders),
		EngineConfiguration: string(v.EngineConfiguration),
		AverageMileage:      string(v.AverageMileage),
		ImageURL:            string(v.ImageURL),
	}
}

// DecodeVIN calls GET /vehicle/default-values-by-vin
func (c *Client) DecodeVIN(ctx context.Context, vin, zip string) (models.VehicleRecord, error) {
	var resp vinResponse
	q := url.Values{"vin": {vin}, "zip": {zip}}
	if err := c.do(ctx, http.MethodGet, "/vehicle/default-values-by-vin", q, "", nil, &resp); err != nil {
		return models.VehicleRecord{}, err
	}
	return resp.record(vin, zip), nil
}

type zipResponse struct {
	City      string     `json:"city"`
	StateName string     `json:"state_name"`
	ZipCode   flexString `json:"zipcode"`
}

// CityStateByZip calls GET /location/city-state-by-zip
func (c *Client) CityStateByZip(ctx context.Context, zip string) (models.Location, error) {
	var resp zipResponse
	if err := c.do(ctx, http.MethodGet, "/location/city-state-by-zip", url.Values{"zipcode": {zip}}, "", nil, &resp); err != nil {
		return models.Location{}, err
	}
	if resp.City == "" && resp.StateName == "" {
		return models.Location{}, &APIError{Status: http.StatusNotFound, Message: "zip code not found"}
	}
	return models.Location{City: resp.City, State: resp.StateName, ZipCode: string(resp.ZipCode)}, nil
}
