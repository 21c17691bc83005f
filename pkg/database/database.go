package database

import (
	"fmt"
	"log"

	"jig_platform_backend/internal/config"
	"jig_platform_backend/internal/model"

	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig, migrate bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if migrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Println("Database migration completed")
	}

	return db, nil
}

// Migrate 建表并补默认数据
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Activity{},
		&model.Module{},
		&model.AdditionalResource{},
		&model.Theme{},
	)
	if err != nil {
		return err
	}

	// 默认主题（为空则插入内置配色）
	var count int64
	db.Model(&model.Theme{}).Count(&count)
	if count == 0 {
		defaultThemes := []model.Theme{
			{Code: "blank", Name: "空白", Colors: datatypes.JSON(`{"background":"#ffffff","accent":"#1a73e8"}`), Enabled: true},
			{Code: "chalkboard", Name: "黑板", Colors: datatypes.JSON(`{"background":"#2e3b2e","accent":"#f3f0c0"}`), Enabled: true},
			{Code: "notebook", Name: "笔记本", Colors: datatypes.JSON(`{"background":"#fdf6e3","accent":"#d33682"}`), Enabled: true},
			{Code: "space", Name: "太空", Colors: datatypes.JSON(`{"background":"#0b0d2a","accent":"#8be9fd"}`), Enabled: true},
		}
		for _, t := range defaultThemes {
			db.Create(&t)
		}
	}

	return nil
}
