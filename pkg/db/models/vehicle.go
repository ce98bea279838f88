package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/doctorauto/patio-sync/pkg/enums"
)

// Vehicle is one physical vehicle tracked through the shop. The plate is the
// durable identity key: a recreated board card with the same plate is still
// the same vehicle.
type Vehicle struct {
	ID           uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Placa        string              `gorm:"type:text;not null;uniqueIndex:idx_veiculos_placa"`
	Modelo       string              `gorm:"type:text;not null"`
	TrelloCardID *string             `gorm:"type:text"`
	DataEntrada  time.Time           `gorm:"type:timestamptz;not null"`
	DataSaida    *time.Time          `gorm:"type:timestamptz"`
	Status       enums.VehicleStatus `gorm:"type:text;not null;default:'ativo'"`
	CreatedAt    time.Time           `gorm:"type:timestamptz;default:now()"`
	UpdatedAt    time.Time           `gorm:"type:timestamptz;default:now()"`
}

func (Vehicle) TableName() string { return "veiculos" }
