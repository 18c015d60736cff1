package cache

import (
	"context"
	"encoding/json"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/keyan-next/internal/config"

	"github.com/redis/go-redis/v9"
)

// 服务端缓存统一走这里：未启用时所有入口直接短路，
// 调用方不需要自行判断 Redis 是否可用。

const defaultKeyPrefix = "ky"

var store struct {
	client *redis.Client
	prefix string
}

// InitRedis 初始化 Redis 客户端并做一次连通性探测
// 探测失败不禁用缓存，Redis 恢复后读写自动生效。
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		store.client = nil
		store.prefix = ""
		return nil
	}

	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	store.prefix = strings.TrimSpace(cfg.Prefix)
	if store.prefix == "" {
		store.prefix = defaultKeyPrefix
	}
	store.client = redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return store.client.Ping(ctx).Err()
}

// Enabled 判断缓存是否启用
func Enabled() bool {
	return store.client != nil
}

// Client 获取 Redis 客户端，未启用时返回 nil
func Client() *redis.Client {
	return store.client
}

// GetJSON 读取并反序列化缓存值，返回是否命中
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !Enabled() {
		return false, nil
	}
	raw, err := store.client.Get(ctx, namespaced(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 序列化并写入缓存值
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !Enabled() {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return store.client.Set(ctx, namespaced(key), payload, ttl).Err()
}

// Del 删除缓存键
func Del(ctx context.Context, key string) error {
	if !Enabled() {
		return nil
	}
	return store.client.Del(ctx, namespaced(key)).Err()
}

// namespaced 给业务键加上实例前缀，多套部署共用 Redis 时互不串键
func namespaced(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return store.prefix
	}
	return store.prefix + ":" + key
}
