// 手动回填模块完成度脚本
//
// 旧数据的 is_complete 列可能与实际内容不一致（早期版本保存时不重算）。
// 此脚本重新解析每个草稿的内容并修正该列，仅用于一次性数据修复。
//
// 用法: go run scripts/backfill_complete.go

package main

import (
	"encoding/json"
	"log"
	"os"

	"jig_platform_backend/internal/body"
	"jig_platform_backend/internal/config"
	"jig_platform_backend/internal/model"
	"jig_platform_backend/pkg/database"
	"jig_platform_backend/pkg/logger"

	"gopkg.in/yaml.v3"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database, false)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	var modules []model.Module
	if err := db.Find(&modules).Error; err != nil {
		log.Fatalf("读取模块失败: %v", err)
	}

	fixed := 0
	for i := range modules {
		m := &modules[i]
		var b body.Body
		if err := json.Unmarshal(m.Body, &b); err != nil {
			log.Printf("模块 %s 内容无法解析，跳过: %v", m.ModuleID, err)
			continue
		}
		complete := b.IsComplete()
		if complete == m.IsComplete {
			continue
		}
		if err := db.Model(&model.Module{}).Where("id = ?", m.ID).
			Update("is_complete", complete).Error; err != nil {
			log.Printf("模块 %s 更新失败: %v", m.ModuleID, err)
			continue
		}
		fixed++
	}

	log.Printf("完成！共修正 %d 条记录", fixed)
}
