package models

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// InitDB initializes the database connection
func InitDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto migrate the database models
	err = db.AutoMigrate(
		&Patient{},
		&Doctor{},
		&Pharmacy{},
		&Enrollment{},
		&Prescription{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}
