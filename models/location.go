package models

// Location is a resolved ZIP code
type Location struct {
	City    string `json:"city" bson:"city"`
	State   string `json:"state" bson:"state"`
	ZipCode string `json:"zipcode" bson:"zipcode"`
}

// Empty reports whether the location carries no city and no state
func (l Location) Empty() bool {
	return l.City == "" && l.State == ""
}

// LocationResult is what the resolver delivers for one ZIP input. ReadOnly tells the detail
// form to lock city/state because they came from the lookup.
type LocationResult struct {
	Input    string   `json:"input"`
	Location Location `json:"location"`
	ReadOnly bool     `json:"readOnly"`
	Error    string   `json:"error,omitempty"`
}
