package cache

import (
	"context"
	"time"
)

const statsCacheTTL = 10 * time.Minute

const statsCacheKey = "stats:research:categories"

// ResearchStats 科研成果统计快照
type ResearchStats struct {
	Total         int64            `json:"total"`
	ByStatus      map[string]int64 `json:"by_status"`
	ByCategory    map[string]int64 `json:"by_category"`
	GeneratedAt   int64            `json:"generated_at"` // Unix 秒
	ApprovedTotal int64            `json:"approved_total"`
}

// GetResearchStats 获取统计快照
func GetResearchStats(ctx context.Context) (*ResearchStats, bool, error) {
	var stats ResearchStats
	hit, err := GetJSON(ctx, statsCacheKey, &stats)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &stats, true, nil
}

// SetResearchStats 写入统计快照
func SetResearchStats(ctx context.Context, stats *ResearchStats) error {
	if stats == nil {
		return nil
	}
	return SetJSON(ctx, statsCacheKey, stats, statsCacheTTL)
}

// DelResearchStats 删除统计快照
func DelResearchStats(ctx context.Context) error {
	return Del(ctx, statsCacheKey)
}
