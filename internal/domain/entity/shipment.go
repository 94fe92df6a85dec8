package entity

import "time"

// PoolShipment es una tripleta pre-comprada {carrier, tracking, labelType}
// cargada desde Excel. Se consume como mucho una vez (pull atómico que
// elimina la fila).
type PoolShipment struct {
	ID        string
	Carrier   string // almacenado en minúsculas
	Tracking  string
	LabelType string
	CreatedAt time.Time
}
