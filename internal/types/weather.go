package types

// Observation is a single daily reading taken at a station. Precipitation
// and Temperature are nil when the station did not report them.
type Observation struct {
	StationID     string   `gorm:"column:station"`
	Date          string   `gorm:"column:date"`
	Precipitation *float64 `gorm:"column:prcp"`
	Temperature   *float64 `gorm:"column:tobs"`
}

// TableName implements the gorm Tabler interface
func (Observation) TableName() string {
	return "measurement"
}

// Station holds the descriptive metadata for an observation site
type Station struct {
	StationID string  `gorm:"column:station"`
	Name      string  `gorm:"column:name"`
	Latitude  float64 `gorm:"column:latitude"`
	Longitude float64 `gorm:"column:longitude"`
	Elevation float64 `gorm:"column:elevation"`
}

// TableName implements the gorm Tabler interface
func (Station) TableName() string {
	return "station"
}

// TemperatureObservation is one row of the tobs endpoint
type TemperatureObservation struct {
	Date        string   `json:"Date"`
	Temperature *float64 `json:"Temperature"`
}

// TemperatureAggregate summarizes the temperatures of a set of observations.
// All three fields are nil when the set is empty.
type TemperatureAggregate struct {
	Min *float64 `json:"Min Temperature"`
	Avg *float64 `json:"Average Temperature"`
	Max *float64 `json:"Max Temperature"`
}

// StationActivity is the number of observations recorded by a station
type StationActivity struct {
	StationID string `json:"station"`
	Count     int    `json:"count"`
}
