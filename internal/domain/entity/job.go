package entity

import "time"

// Tipos de job programado.
const (
	JobKindAutoLogout = "auto_logout"
)

// ScheduledJob es un trabajo diferido durable: reemplaza el mapa de timers en
// memoria del diseño original para que el auto-logout sobreviva reinicios.
type ScheduledJob struct {
	ID        string
	Kind      string
	RunAt     time.Time
	Payload   map[string]string
	Done      bool
	CreatedAt time.Time
}
