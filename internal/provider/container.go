package provider

import (
	"github.com/keyan-next/internal/authz"
	"github.com/keyan-next/internal/cache"
	"github.com/keyan-next/internal/config"
	"github.com/keyan-next/internal/logger"
	"github.com/keyan-next/internal/models"
	"github.com/keyan-next/internal/queue"
	"github.com/keyan-next/internal/repository"
	"github.com/keyan-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo    repository.UserRepository
	RoleRepo    repository.RoleRepository
	CatalogRepo repository.PermissionCatalogRepository
	ItemRepo    repository.ResearchItemRepository
	TypeRepo    repository.ResearchTypeRepository
	AuditRepo   repository.AuditLogRepository
	NoticeRepo  repository.NoticeRepository
	DeptRepo    repository.DepartmentRepository

	// Services
	AuthzService      *authz.Service
	AuthService       *service.AuthService
	UserService       *service.UserService
	RBACService       *service.RBACService
	ResearchService   *service.ResearchService
	AuditService      *service.AuditService
	NoticeService     *service.NoticeService
	DepartmentService *service.DepartmentService
	StatsService      *service.StatsService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.RoleRepo = repository.NewRoleRepository(db)
	c.CatalogRepo = repository.NewPermissionCatalogRepository(db)
	c.ItemRepo = repository.NewResearchItemRepository(db)
	c.TypeRepo = repository.NewResearchTypeRepository(db)
	c.AuditRepo = repository.NewAuditLogRepository(db)
	c.NoticeRepo = repository.NewNoticeRepository(db)
	c.DeptRepo = repository.NewDepartmentRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.syncAuthzFromStore(); err != nil {
		logger.Errorw("provider_sync_authz_failed", "error", err)
		panic(err)
	}

	c.AuthService = service.NewAuthService(c.Config, c.UserRepo, c.RoleRepo)
	c.AuditService = service.NewAuditService(c.AuditRepo)
	c.DepartmentService = service.NewDepartmentService(c.DeptRepo)
	c.UserService = service.NewUserService(c.UserRepo, c.AuthService, c.DepartmentService)
	c.RBACService = service.NewRBACService(c.RoleRepo, c.CatalogRepo, c.AuthzService)
	c.StatsService = service.NewStatsService(c.ItemRepo)

	var notifier service.StatsNotifier
	if c.QueueClient != nil && c.QueueClient.Enabled() {
		notifier = c.QueueClient
	}
	c.ResearchService = service.NewResearchService(c.ItemRepo, c.TypeRepo, c.UserRepo, c.AuditService, notifier)
	c.NoticeService = service.NewNoticeService(c.NoticeRepo, c.DepartmentService)
}

// syncAuthzFromStore 启动时按关系表快照重建执行索引
func (c *Container) syncAuthzFromStore() error {
	roles, err := c.RoleRepo.List()
	if err != nil {
		return err
	}
	permissions := make(map[string][]string, len(roles))
	for _, role := range roles {
		codes := make([]string, 0, len(role.Permissions))
		for _, perm := range role.Permissions {
			codes = append(codes, perm.Code)
		}
		permissions[role.Name] = codes
	}
	return c.AuthzService.SyncAll(permissions)
}
