package models

// QuestionAnswer is one questionnaire entry in the offer payload
type QuestionAnswer struct {
	QuestionKey  string `json:"question_key"`
	QuestionText string `json:"question_text"`
	Answer       string `json:"answer"`
	Details      string `json:"details"`
}

// OfferVehicle carries the vehicle attributes in upstream field names
type OfferVehicle struct {
	VIN            string `json:"vin"`
	ZipCode        string `json:"zipcode"`
	Make           string `json:"make"`
	Model          string `json:"model"`
	Year           string `json:"year"`
	Mileage        string `json:"mileage"`
	ExteriorColor  string `json:"exterior_color"`
	InteriorColor  string `json:"interior_color"`
	BodyType       string `json:"body_type"`
	Transmission   string `json:"transmission"`
	FuelType       string `json:"fuel_type"`
	EngineType     string `json:"engine_type"`
	BodyEngineType string `json:"body_engine_type"`
	City           string `json:"city"`
	State          string `json:"state"`
}

// OfferRequest is the payload sent to POST /offer/instant-cash
type OfferRequest struct {
	Vehicle      OfferVehicle     `json:"vehicle"`
	Questions    []QuestionAnswer `json:"questions"`
	Deductions   DeductionResult  `json:"deductions"`
	User         Identity         `json:"user_info"`
	AuctionScope string           `json:"auction_scope"`
	OfferTerms   string           `json:"offer_terms"`
	Images       []string         `json:"images,omitempty"`
	RelistID     string           `json:"relist_id,omitempty"`
}

// OfferResult is the upstream instant-cash response
type OfferResult struct {
	OfferAmount   float64  `json:"offer_amount" bson:"offerAmount"`
	CarSummary    string   `json:"car_summary" bson:"carSummary"`
	IsAuctionable bool     `json:"is_auctionable" bson:"isAuctionable"`
	ProductID     string   `json:"product_id" bson:"productId"`
	EmailSent     bool     `json:"email_sent" bson:"emailSent"`
	Timestamp     string   `json:"timestamp" bson:"timestamp"`
	UserInfo      Identity `json:"user_info" bson:"userInfo"`
}

// AuctionStart is the upstream POST /auction/start response
type AuctionStart struct {
	ProductID        string `json:"product_id" bson:"productId"`
	AuctionStartedAt string `json:"auction_started_at" bson:"auctionStartedAt"`
	AuctionEndsAt    string `json:"auction_ends_at" bson:"auctionEndsAt"`
}
