package dto

import (
	"github.com/cesargomez89/strume/internal/app"
	"github.com/cesargomez89/strume/internal/deps"
)

type ErrorResponse struct {
	Detail string `json:"detail"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type FilesResponse struct {
	Email string            `json:"email"`
	Files []app.LibraryFile `json:"files"`
}

type PoolStatus struct {
	Size   int `json:"size"`
	Active int `json:"active"`
}

type HealthResponse struct {
	Status   string        `json:"status"`
	Binaries []deps.Status `json:"binaries"`
	Pool     PoolStatus    `json:"pool"`
	Tasks    int           `json:"tasks"`
}
