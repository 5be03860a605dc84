package model

// Train mirrors the `trains` table. Departure and arrival times are
// free-form strings (e.g. "08:30") and TravelDays lists the operating
// days as entered by the administrator (e.g. "Mon,Wed,Fri").
//
// Fields:
//  ID            – primary key identifier.
//  Number        – unique public train number.
//  Name          – display name of the train.
//  SourceID      – origin station (stations.id).
//  DestinationID – destination station (stations.id).
//  DepartureTime – scheduled departure, free-form.
//  ArrivalTime   – scheduled arrival, free-form.
//  TravelDays    – operating days, free-form.
type Train struct {
	ID            uint64 // trains.id
	Number        string // trains.train_number
	Name          string // trains.name
	SourceID      uint64 // trains.source_id
	DestinationID uint64 // trains.destination_id
	DepartureTime string // trains.departure_time
	ArrivalTime   string // trains.arrival_time
	TravelDays    string // trains.travel_days
}
