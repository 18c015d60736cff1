package main

import (
	"github.com/keyan-next/internal/config"
	"github.com/keyan-next/internal/constants"
	"github.com/keyan-next/internal/logger"
	"github.com/keyan-next/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 基础数据：系统角色 / 权限目录 / 默认院系
	if err := models.InitSystemRoles(); err != nil {
		stdLog.Printf("Failed to init system roles: %v", err)
	}
	if err := models.InitPermissionCatalog(); err != nil {
		stdLog.Printf("Failed to init permission catalog: %v", err)
	}
	if err := models.InitDefaultDepartments(); err != nil {
		stdLog.Printf("Failed to init departments: %v", err)
	}

	// 成果类型与子类
	types := []models.ResearchType{
		{
			Name:        "科研项目",
			Description: "纵向与横向科研项目",
			Subtypes: []models.ResearchSubtype{
				{Name: "纵向项目"},
				{Name: "横向项目"},
			},
		},
		{
			Name:        "学术成果",
			Description: "论文、专利、著作与奖励",
			Subtypes: []models.ResearchSubtype{
				{Name: "学术论文"},
				{Name: "发明专利"},
				{Name: "出版著作"},
				{Name: "科技奖励"},
			},
		},
	}
	for _, t := range types {
		var existing models.ResearchType
		if err := models.DB.Where("name = ?", t.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&t).Error; err != nil {
				stdLog.Printf("Failed to create research type %s: %v", t.Name, err)
			} else {
				stdLog.Printf("Created research type: %s", t.Name)
			}
		} else {
			stdLog.Printf("Research type already exists: %s", t.Name)
		}
	}

	// 示例用户
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash password: %v", err)
	}
	users := []models.User{
		{
			Email:          "reviewer@example.com",
			PasswordHash:   string(hash),
			FullName:       "科研管理员",
			Role:           constants.RoleResearchAdmin,
			IsActive:       true,
			Department:     "计算机科学与技术学院",
			DepartmentCode: "CS",
		},
		{
			Email:          "teacher@example.com",
			PasswordHash:   string(hash),
			FullName:       "张三",
			Role:           constants.RoleTeacher,
			IsActive:       true,
			Department:     "计算机科学与技术学院",
			DepartmentCode: "CS",
			Title:          "副教授",
		},
		{
			Email:        "teacher2@example.com",
			PasswordHash: string(hash),
			FullName:     "李四",
			Role:         constants.RoleTeacher,
			IsActive:     true,
		},
	}
	for _, user := range users {
		var existing models.User
		if err := models.DB.Where("email = ?", user.Email).First(&existing).Error; err != nil {
			if err := models.DB.Create(&user).Error; err != nil {
				stdLog.Printf("Failed to create user %s: %v", user.Email, err)
			} else {
				stdLog.Printf("Created user: %s", user.Email)
			}
		} else {
			stdLog.Printf("User already exists: %s", user.Email)
		}
	}

	stdLog.Println("Seed completed")
}
