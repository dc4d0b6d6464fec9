package db

import "log"

// RunMigrations connects, applies the schema (SQL migrations or AutoMigrate,
// same switch as ConnectAndMigrate) and closes the connection. This is the
// -migrate-only entry point: deploy scripts run it before starting the server.
func RunMigrations() error {
	gdb, err := ConnectAndMigrate()
	if err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	log.Println("migrations applied")
	return sqlDB.Close()
}
