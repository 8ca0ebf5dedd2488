package config

type WorkerKeyStruct struct {
	CatalogEventsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	CatalogEventsQueue: "catalog_events_queue",
}
