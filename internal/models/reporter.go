package models

import "time"

// ReporterProfile представляет профиль пользователя, отправившего сигнал.
// Используется только для снимка данных о здоровье в момент сигнала.
type ReporterProfile struct {
	ReporterID  string    `json:"reporter_id"`
	Name        string    `json:"name"`
	Mobile      string    `json:"mobile"`
	Age         int       `json:"age"`
	DateOfBirth time.Time `json:"date_of_birth"`
	Allergies   string    `json:"allergies"`
}
