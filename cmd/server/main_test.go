package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/Chenxiaohui126/battery-management-system/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestNewHTTPServerKeepsEventStreamOpen(t *testing.T) {
	cfg := &config.ServerConfig{Port: 9090, ReadTimeout: 15 * time.Second}
	srv := newHTTPServer(cfg, http.NotFoundHandler())

	assert.Equal(t, ":9090", srv.Addr)
	assert.Equal(t, 15*time.Second, srv.ReadTimeout)
	assert.Zero(t, srv.WriteTimeout)
}
