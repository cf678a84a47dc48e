package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"
)

var startTime = time.Now()

// Health returns the handler for GET /health. It pings the injected
// connection, so it reports on whichever database the router was
// wired with.
func Health(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK
		dbStatus := "connected"
		if err := pingDB(r.Context(), db); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
			dbStatus = "unreachable"
		}

		WriteJSON(w, code, Envelope{
			"success":  status == "ok",
			"status":   status,
			"database": dbStatus,
			"uptime":   time.Since(startTime).Round(time.Second).String(),
		})
	}
}

func pingDB(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("no database connection")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
