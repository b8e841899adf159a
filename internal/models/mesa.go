package models

import "time"

type MesaEstado string

const (
	MesaDisponible MesaEstado = "disponible"
	MesaOcupada    MesaEstado = "ocupada"
	MesaReservada  MesaEstado = "reservada"
)

type Mesa struct {
	ID        int        `json:"id"`
	Numero    int        `json:"numero"`
	Capacidad int        `json:"capacidad"`
	Estado    MesaEstado `json:"estado"`
	CreatedAt time.Time  `json:"created_at"`
}
