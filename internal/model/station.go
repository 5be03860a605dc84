package model

// Station is a row in the `stations` table. Trains reference stations
// twice, once as source and once as destination.
type Station struct {
	ID   uint64 // stations.id
	Name string // stations.name
}
