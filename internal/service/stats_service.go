package service

import (
	"context"
	"time"

	"github.com/keyan-next/internal/cache"
	"github.com/keyan-next/internal/constants"
	"github.com/keyan-next/internal/logger"
	"github.com/keyan-next/internal/repository"
)

// StatsService 成果统计服务
// 统计按派生分类聚合；快照写入 Redis，未启用缓存时每次现算。
type StatsService struct {
	itemRepo repository.ResearchItemRepository
}

// NewStatsService 创建统计服务实例
func NewStatsService(itemRepo repository.ResearchItemRepository) *StatsService {
	return &StatsService{itemRepo: itemRepo}
}

// Get 获取统计快照，缓存命中直接返回
func (s *StatsService) Get(ctx context.Context) (*cache.ResearchStats, error) {
	if cached, hit, err := cache.GetResearchStats(ctx); err == nil && hit {
		return cached, nil
	} else if err != nil {
		logger.Warnw("stats_cache_read_failed", "error", err)
	}

	stats, err := s.compute()
	if err != nil {
		return nil, err
	}
	if err := cache.SetResearchStats(ctx, stats); err != nil {
		logger.Warnw("stats_cache_write_failed", "error", err)
	}
	return stats, nil
}

// Refresh 重算统计快照并写入缓存
func (s *StatsService) Refresh(ctx context.Context) error {
	stats, err := s.compute()
	if err != nil {
		return err
	}
	return cache.SetResearchStats(ctx, stats)
}

func (s *StatsService) compute() (*cache.ResearchStats, error) {
	byStatus, err := s.itemRepo.CountByStatus()
	if err != nil {
		return nil, err
	}
	var total int64
	for _, count := range byStatus {
		total += count
	}

	approved, err := s.itemRepo.ListByStatus(constants.ResearchStatusApproved)
	if err != nil {
		return nil, err
	}
	byCategory := make(map[string]int64)
	for _, item := range approved {
		subtypeName, typeName := "", ""
		if item.Subtype != nil {
			subtypeName = item.Subtype.Name
			if item.Subtype.Type != nil {
				typeName = item.Subtype.Type.Name
			}
		}
		byCategory[CategoryOf(subtypeName, typeName)]++
	}

	return &cache.ResearchStats{
		Total:         total,
		ByStatus:      byStatus,
		ByCategory:    byCategory,
		ApprovedTotal: byStatus[constants.ResearchStatusApproved],
		GeneratedAt:   time.Now().Unix(),
	}, nil
}
