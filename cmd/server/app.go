package main

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/diewo77/blog-api/internal/server"
)

// NewApp bundles the full route table so main and the end-to-end tests share
// the exact same handler.
func NewApp(dbConn *gorm.DB) http.Handler {
	return server.New(dbConn)
}
